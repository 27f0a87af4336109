package configmgr

import (
	"time"

	"github.com/0xBetacoding/pgxkit/pkg/dbx"
)

// DatabaseSettings - database config struct.
// This struct represents the database configuration and is expected to be in the following YAML format:
/*
host: "localhost"
port: 5432
name: "main-db"
user: "postgres"
password: "password"
props:
  sslmode: "disable"
pool:
  name: "main-pool"
  maxConns: 10
  minIdle: 2
  idleTimeoutMs: 300000
  acquireTimeoutMs: 10000
*/
type DatabaseSettings struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Name     string            `mapstructure:"name"`
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Props    map[string]string `mapstructure:"props"`
	Pool     *PoolSettings     `mapstructure:"pool"`
}

// PoolSettings - pool sizing section. Timeouts are in milliseconds.
type PoolSettings struct {
	Name             string            `mapstructure:"name"`
	MaxConns         int32             `mapstructure:"maxConns"`
	MinIdle          int32             `mapstructure:"minIdle"`
	IdleTimeoutMs    int64             `mapstructure:"idleTimeoutMs"`
	AcquireTimeoutMs int64             `mapstructure:"acquireTimeoutMs"`
	Props            map[string]string `mapstructure:"props"`
}

// ToConnConfig converts the settings into a dbx.ConnConfig.
func (s *DatabaseSettings) ToConnConfig() dbx.ConnConfig {
	return dbx.ConnConfig{
		Host:     s.Host,
		Port:     s.Port,
		DBName:   s.Name,
		User:     s.User,
		Password: s.Password,
		Props:    s.Props,
	}
}

// ToPoolConfig converts the pool section into a dbx.PoolConfig, applying the
// defaults for every field left unset.
func (s *DatabaseSettings) ToPoolConfig() dbx.PoolConfig {
	if s.Pool == nil {
		return dbx.NewPoolConfig("")
	}

	poolConf := dbx.NewPoolConfig(s.Pool.Name)

	if s.Pool.MaxConns > 0 {
		poolConf.MaxConns = s.Pool.MaxConns
	}

	if s.Pool.MinIdle > 0 {
		poolConf.MinIdle = s.Pool.MinIdle
	}

	if s.Pool.IdleTimeoutMs > 0 {
		poolConf.IdleTimeout = time.Duration(s.Pool.IdleTimeoutMs) * time.Millisecond
	}

	if s.Pool.AcquireTimeoutMs > 0 {
		poolConf.AcquireTimeout = time.Duration(s.Pool.AcquireTimeoutMs) * time.Millisecond
	}

	poolConf.Props = s.Pool.Props

	return poolConf
}
