package dbx_test

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/0xBetacoding/pgxkit/pkg/dbx"
)

// fakeSource satisfies the two-operation ConnSource contract with canned
// connections.
type fakeSource struct {
	queued     []*fakeConn
	handed     []*fakeConn
	acquires   int
	shutdowns  int
	acquireErr error
}

func (s *fakeSource) Acquire(ctx context.Context) (dbx.Conn, error) {
	s.acquires++

	if s.acquireErr != nil {
		return nil, s.acquireErr
	}

	var conn *fakeConn
	if len(s.queued) > 0 {
		conn = s.queued[0]
		s.queued = s.queued[1:]
	} else {
		conn = &fakeConn{}
	}

	s.handed = append(s.handed, conn)

	return conn, nil
}

func (s *fakeSource) Shutdown(ctx context.Context) error {
	s.shutdowns++
	return nil
}

type capturedStmt struct {
	sql  string
	args []any
}

type fakeConn struct {
	queries      []capturedStmt
	queryResults []*fakeRows
	queryErr     error

	execs    []capturedStmt
	execTags []pgconn.CommandTag
	execErr  error

	batches      []*pgx.Batch
	batchResults *fakeBatchResults

	tx       *fakeTx
	beginErr error

	releases   int
	releaseErr error
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.queries = append(c.queries, capturedStmt{sql: sql, args: args})

	if c.queryErr != nil {
		return nil, c.queryErr
	}

	if len(c.queryResults) == 0 {
		return &fakeRows{tag: pgconn.NewCommandTag("SELECT 0")}, nil
	}

	rows := c.queryResults[0]
	c.queryResults = c.queryResults[1:]

	return rows, nil
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, capturedStmt{sql: sql, args: args})

	if c.execErr != nil {
		return pgconn.CommandTag{}, c.execErr
	}

	if len(c.execTags) == 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}

	tag := c.execTags[0]
	c.execTags = c.execTags[1:]

	return tag, nil
}

func (c *fakeConn) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	c.batches = append(c.batches, batch)

	if c.batchResults == nil {
		c.batchResults = &fakeBatchResults{}
	}

	return c.batchResults
}

func (c *fakeConn) Begin(ctx context.Context) (dbx.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}

	if c.tx == nil {
		c.tx = &fakeTx{}
	}

	return c.tx, nil
}

func (c *fakeConn) Release(ctx context.Context) error {
	c.releases++
	return c.releaseErr
}

type fakeTx struct {
	commits     int
	rollbacks   int
	commitErr   error
	rollbackErr error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return t.rollbackErr
}

// fakeRows implements pgx.Rows over an in-memory result set.
type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
	closes  int
	err     error
	scanErr error
	tag     pgconn.CommandTag
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}

	r.idx++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	row := r.rows[r.idx-1]

	for i, d := range dest {
		if i >= len(row) {
			break
		}

		if err := assignValue(d, row[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *fakeRows) Close() {
	r.closes++
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return r.tag
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	descs := make([]pgconn.FieldDescription, 0, len(r.columns))
	for _, col := range r.columns {
		descs = append(descs, pgconn.FieldDescription{Name: col})
	}

	return descs
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

func (r *fakeRows) RawValues() [][]byte {
	return nil
}

func (r *fakeRows) Conn() *pgx.Conn {
	return nil
}

func assignValue(dest any, value any) error {
	switch d := dest.(type) {
	case *any:
		*d = value
	case *int64:
		switch v := value.(type) {
		case int64:
			*d = v
		case int:
			*d = int64(v)
		default:
			return fmt.Errorf("cannot scan %T into *int64", value)
		}
	case *string:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into *string", value)
		}

		*d = v
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}

	return nil
}

type fakeBatchResults struct {
	tags     []pgconn.CommandTag
	execErrs []error
	idx      int
	closes   int
	closeErr error
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := r.idx
	r.idx++

	if i < len(r.execErrs) && r.execErrs[i] != nil {
		return pgconn.CommandTag{}, r.execErrs[i]
	}

	if i < len(r.tags) {
		return r.tags[i], nil
	}

	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) {
	return &fakeRows{}, nil
}

func (r *fakeBatchResults) QueryRow() pgx.Row {
	return nil
}

func (r *fakeBatchResults) Close() error {
	r.closes++
	return r.closeErr
}
