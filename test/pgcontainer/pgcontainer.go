package pgcontainer

import (
	"context"
	"log"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/0xBetacoding/pgxkit/pkg/dbx"
)

const (
	postgresContainerImage = "docker.io/postgres:16-alpine"
	postgresContainerPort  = "5432/tcp"

	MainDbName     = "main-db"
	MainDbUser     = "postgres"
	MainDbPassword = "password"
)

// PgContainer represents the postgres container used by the integration tests.
type PgContainer struct {
	Container  *postgres.PostgresContainer
	MappedPort nat.Port
	Host       string
	DbName     string
	DbUser     string
	DbPassword string
}

// StartPostgresContainerWithInitScript starts a postgres container and runs
// the given init script before handing it back.
func StartPostgresContainerWithInitScript(ctx context.Context, t *testing.T, initScriptPath string) *PgContainer {
	pg, err := postgres.Run(ctx,
		postgresContainerImage,
		postgres.WithInitScripts(filepath.Clean(initScriptPath)),
		postgres.WithDatabase(MainDbName),
		postgres.WithUsername(MainDbUser),
		postgres.WithPassword(MainDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second)),
	)

	require.NoError(t, err)
	require.NotNil(t, pg)

	mappedPort, err := pg.MappedPort(ctx, postgresContainerPort)
	require.NoError(t, err)

	host, err := pg.Host(ctx)
	require.NoError(t, err)

	log.Printf("Postgres running at %s:%s", host, mappedPort.Port())

	return &PgContainer{
		Container:  pg,
		MappedPort: mappedPort,
		Host:       host,
		DbName:     MainDbName,
		DbUser:     MainDbUser,
		DbPassword: MainDbPassword,
	}
}

// ConnConfig builds the dbx connection configuration pointing at the container.
func (c *PgContainer) ConnConfig(t *testing.T) dbx.ConnConfig {
	port, err := strconv.Atoi(c.MappedPort.Port())
	require.NoError(t, err)

	return dbx.ConnConfig{
		Host:     c.Host,
		Port:     port,
		DBName:   c.DbName,
		User:     c.DbUser,
		Password: c.DbPassword,
		Props:    map[string]string{"sslmode": "disable"},
	}
}

// StopContainer terminates the container.
func (c *PgContainer) StopContainer(ctx context.Context, t *testing.T) {
	err := c.Container.Terminate(ctx)
	require.NoError(t, err)
}
