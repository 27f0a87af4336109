package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the narrow transaction handle bound by a TxScope. pgx.Tx satisfies it.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is an exclusively owned database session. Whoever acquires it releases
// it, unless it is bound as a transaction connection, in which case only the
// TxScope may release it.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults
	Begin(ctx context.Context) (Tx, error)
	// Release returns the session to its source: a pooled connection goes
	// back to the pool, a direct one is closed.
	Release(ctx context.Context) error
}

// directConn adapts a dedicated *pgx.Conn to the Conn contract.
type directConn struct {
	conn *pgx.Conn
}

func (c *directConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *directConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *directConn) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	return c.conn.SendBatch(ctx, batch)
}

func (c *directConn) Begin(ctx context.Context) (Tx, error) {
	return c.conn.Begin(ctx)
}

func (c *directConn) Release(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// pooledConn adapts a *pgxpool.Conn to the Conn contract.
type pooledConn struct {
	conn *pgxpool.Conn
}

func (c *pooledConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c *pooledConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *pooledConn) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	return c.conn.SendBatch(ctx, batch)
}

func (c *pooledConn) Begin(ctx context.Context) (Tx, error) {
	return c.conn.Begin(ctx)
}

func (c *pooledConn) Release(ctx context.Context) error {
	c.conn.Release()
	return nil
}
