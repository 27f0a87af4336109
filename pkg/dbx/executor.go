package dbx

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/0xBetacoding/pgxkit/pkg/errorx"
	"github.com/0xBetacoding/pgxkit/pkg/logx"
)

// Executor runs parameterized statements. Every operation follows the same
// template: reuse the transaction-bound connection when the calling chain has
// one (and never release it), otherwise acquire a fresh connection from the
// source and release it when the operation ends, on every exit path.
// Parameters bind positionally: argument i fills placeholder $i+1.
type Executor struct {
	source ConnSource
	scope  *TxScope
}

// NewExecutor - Executor constructor.
func NewExecutor(source ConnSource, scope *TxScope) *Executor {
	return &Executor{source: source, scope: scope}
}

// Scope returns the transaction scope this executor consults.
func (ex *Executor) Scope() *TxScope {
	return ex.scope
}

// resolve returns the connection to run on and whether it was freshly
// acquired, in which case the caller owns its release.
func (ex *Executor) resolve(ctx context.Context) (conn Conn, fresh bool, err error) {
	if conn, ok := ex.scope.Current(ctx); ok {
		return conn, false, nil
	}

	conn, err = ex.source.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	return conn, true, nil
}

func (ex *Executor) release(ctx context.Context, conn Conn) {
	if err := conn.Release(ctx); err != nil {
		logx.GetLogger().LogWarning(ctx, "error releasing connection", err)
	}
}

// Query executes a read query and hands the live cursor to the caller.
// Closing the cursor also releases the connection when it was freshly
// acquired; a transaction-bound connection stays open.
func (ex *Executor) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, fresh, err := ex.resolve(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		if fresh {
			ex.release(ctx, conn)
		}

		return nil, errorx.NewQueryErrorWrapper(err, "error executing query '%s'", sql)
	}

	if !fresh {
		return rows, nil
	}

	return &ownedRows{Rows: rows, release: func() { ex.release(ctx, conn) }}, nil
}

// Update executes a write statement and returns the number of affected rows.
func (ex *Executor) Update(ctx context.Context, sql string, args ...any) (int64, error) {
	conn, fresh, err := ex.resolve(ctx)
	if err != nil {
		return 0, err
	}

	if fresh {
		defer ex.release(ctx, conn)
	}

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("Error executing query '%s'", sql), err)

		return 0, errorx.NewQueryErrorWrapper(err, "error executing query '%s'", sql)
	}

	return tag.RowsAffected(), nil
}

// InsertReturningID executes an insert and reads back the generated key, if
// the statement reports one (typically via a RETURNING clause). ok is false
// with a nil error when the insert produced no key. An insert affecting zero
// rows fails with a QueryError wrapping errorx.ErrNoRowsAffected.
func (ex *Executor) InsertReturningID(ctx context.Context, sql string, args ...any) (id int64, ok bool, err error) {
	conn, fresh, err := ex.resolve(ctx)
	if err != nil {
		return 0, false, err
	}

	if fresh {
		defer ex.release(ctx, conn)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return 0, false, errorx.NewQueryErrorWrapper(err, "error executing insert '%s'", sql)
	}

	var hasKey bool

	if rows.Next() {
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return 0, false, errorx.NewQueryErrorWrapper(scanErr, "error reading generated key for '%s'", sql)
		}

		hasKey = true
	}

	rows.Close()

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, false, errorx.NewQueryErrorWrapper(rowsErr, "error executing insert '%s'", sql)
	}

	if rows.CommandTag().RowsAffected() == 0 {
		return 0, false, errorx.NewQueryErrorWrapper(errorx.ErrNoRowsAffected, "insert '%s'", sql)
	}

	return id, hasKey, nil
}

// BatchUpdate binds each parameter set against the base statement, executes
// everything as one batch and returns the per-statement affected row counts
// in input order. An empty input returns an empty result without touching
// the connection source.
func (ex *Executor) BatchUpdate(ctx context.Context, sql string, paramSets [][]any) ([]int64, error) {
	if len(paramSets) == 0 {
		return []int64{}, nil
	}

	conn, fresh, err := ex.resolve(ctx)
	if err != nil {
		return nil, err
	}

	if fresh {
		defer ex.release(ctx, conn)
	}

	batch := &pgx.Batch{}
	for _, params := range paramSets {
		batch.Queue(sql, params...)
	}

	results := conn.SendBatch(ctx, batch)

	counts := make([]int64, 0, len(paramSets))

	for range paramSets {
		tag, execErr := results.Exec()
		if execErr != nil {
			_ = results.Close()
			return nil, errorx.NewQueryErrorWrapper(execErr, "error executing batch for '%s'", sql)
		}

		counts = append(counts, tag.RowsAffected())
	}

	if closeErr := results.Close(); closeErr != nil {
		return nil, errorx.NewQueryErrorWrapper(closeErr, "error closing batch results for '%s'", sql)
	}

	return counts, nil
}

// QueryOne executes a read query, maps the first row if present and discards
// the rest. ok is false with a nil error on an empty result. A mapper error
// propagates to the caller untranslated.
func QueryOne[T any](ctx context.Context, ex *Executor, sql string, mapper RowMapper[T], args ...any) (T, bool, error) {
	var zero T

	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return zero, false, err
	}

	defer rows.Close()

	if rows.Next() {
		result, mapErr := mapper(rows)
		if mapErr != nil {
			return zero, false, mapErr
		}

		return result, true, nil
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return zero, false, errorx.NewQueryErrorWrapper(rowsErr, "error reading result of query '%s'", sql)
	}

	return zero, false, nil
}

// QueryAll executes a read query and maps every row in cursor order. An empty
// result yields an empty slice. A mapper error propagates untranslated.
func QueryAll[T any](ctx context.Context, ex *Executor, sql string, mapper RowMapper[T], args ...any) ([]T, error) {
	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	results := make([]T, 0)

	for rows.Next() {
		result, mapErr := mapper(rows)
		if mapErr != nil {
			return nil, mapErr
		}

		results = append(results, result)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errorx.NewQueryErrorWrapper(rowsErr, "error reading result of query '%s'", sql)
	}

	return results, nil
}

// ownedRows couples a cursor with the release of the freshly acquired
// connection backing it. Close is safe to call more than once.
type ownedRows struct {
	pgx.Rows
	release func()
	once    sync.Once
}

func (r *ownedRows) Close() {
	r.Rows.Close()
	r.once.Do(r.release)
}
