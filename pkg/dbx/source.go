package dbx

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xBetacoding/pgxkit/pkg/errorx"
	"github.com/0xBetacoding/pgxkit/pkg/logx"
)

// ConnSource acquires live database connections and can be shut down to
// release everything it owns. Additional implementations (for example a test
// double handing out canned connections) only need these two operations.
type ConnSource interface {
	// Acquire returns a live connection, failing with *errorx.ConnectionError
	// when the underlying transport cannot produce one.
	Acquire(ctx context.Context) (Conn, error)
	// Shutdown releases resources owned by the source itself. Idempotent.
	Shutdown(ctx context.Context) error
}

//###################################
//#         Direct source           #
//###################################

// DirectSource opens a brand new physical connection on every Acquire.
// It owns nothing persistent, so Shutdown is a no-op.
type DirectSource struct {
	dbConf ConnConfig
}

// NewDirectSource - DirectSource constructor. The configuration is validated here.
func NewDirectSource(dbConf ConnConfig) (*DirectSource, error) {
	if err := dbConf.Validate(); err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, "invalid connection configuration")
	}

	return &DirectSource{dbConf: dbConf}, nil
}

// Acquire opens a new connection using the configured connection string.
func (s *DirectSource) Acquire(ctx context.Context) (Conn, error) {
	conn, err := pgx.Connect(ctx, s.dbConf.ConnString())
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error connecting to DB=%s, HOST=%s, PORT=%d",
			s.dbConf.DBName, s.dbConf.Host, s.dbConf.Port), err)

		return nil, errorx.NewConnectionErrorWrapper(err, "error connecting to %s:%d/%s",
			s.dbConf.Host, s.dbConf.Port, s.dbConf.DBName)
	}

	return &directConn{conn: conn}, nil
}

// Shutdown - no-op, the source holds no persistent resources.
func (s *DirectSource) Shutdown(ctx context.Context) error {
	return nil
}

//###################################
//#         Pooled source           #
//###################################

// PoolSource hands out connections from a pgxpool.Pool sized and timed by a
// PoolConfig. Acquire blocks up to the configured acquisition timeout.
type PoolSource struct {
	pool     *pgxpool.Pool
	dbConf   ConnConfig
	poolConf PoolConfig
	shutdown sync.Once
}

// NewPoolSource creates the underlying connection pool. Both configurations
// are validated before the pool is dialed. The given prepared statements are
// installed on every connection the pool establishes.
func NewPoolSource(ctx context.Context, dbConf ConnConfig, poolConf PoolConfig, preparedStatements ...PreparedStatement) (*PoolSource, error) {
	if err := dbConf.Validate(); err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, "invalid connection configuration")
	}

	if err := poolConf.Validate(); err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, "invalid pool configuration")
	}

	pgxConf, err := pgxpool.ParseConfig(dbConf.ConnStringWith(poolConf.Props))
	if err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, "error parsing connection string")
	}

	pgxConf.MaxConns = poolConf.MaxConns
	pgxConf.MinConns = poolConf.MinIdle
	pgxConf.MaxConnIdleTime = poolConf.IdleTimeout
	pgxConf.ConnConfig.RuntimeParams["application_name"] = poolConf.PoolName

	// Setup prepared statements
	pgxConf.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return setupPreparedStatements(ctx, conn, preparedStatements...)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxConf)
	if err != nil {
		return nil, errorx.NewConnectionErrorWrapper(err, "error creating connection pool %s", poolConf.PoolName)
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Created Connection Pool %s: DB=%s, HOST=%s, PORT=%d",
		poolConf.PoolName, dbConf.DBName, dbConf.Host, dbConf.Port))

	return &PoolSource{pool: pool, dbConf: dbConf, poolConf: poolConf}, nil
}

// Acquire gets a connection from the pool, blocking up to the configured
// acquisition timeout.
func (s *PoolSource) Acquire(ctx context.Context) (Conn, error) {
	acquireCtx := ctx

	if s.poolConf.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, s.poolConf.AcquireTimeout)
		defer cancel()
	}

	conn, err := s.pool.Acquire(acquireCtx)
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error acquiring connection from pool %s", s.poolConf.PoolName), err)
		return nil, errorx.NewConnectionErrorWrapper(err, "error acquiring connection from pool %s", s.poolConf.PoolName)
	}

	return &pooledConn{conn: conn}, nil
}

// Shutdown closes the pool and all idle connections it holds. Safe to call
// more than once.
func (s *PoolSource) Shutdown(ctx context.Context) error {
	s.shutdown.Do(func() {
		s.pool.Close()
		logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Connection Pool %s Successfully Closed!", s.poolConf.PoolName))
	})

	return nil
}

// Pool exposes the underlying pool for monitoring or advanced tuning.
func (s *PoolSource) Pool() *pgxpool.Pool {
	return s.pool
}

func setupPreparedStatements(ctx context.Context, conn *pgx.Conn, preparedStatements ...PreparedStatement) error {
	for _, stmt := range preparedStatements {
		_, err := conn.Prepare(ctx, stmt.GetName(), stmt.GetQuery())
		if err != nil {
			return errorx.NewConnectionErrorWrapper(err, "failed to prepare statement '%s'", stmt.GetName())
		}
	}

	return nil
}
