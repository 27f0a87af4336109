package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Statement pairs a SQL text with its positional parameters as one immutable
// value, so callers can build reusable query objects instead of passing text
// and parameters separately.
type Statement struct {
	sql  string
	args []any
}

// NewStatement - Statement constructor. The argument slice is copied.
func NewStatement(sql string, args ...any) Statement {
	return Statement{sql: sql, args: append([]any(nil), args...)}
}

// SQL returns the statement text.
func (s Statement) SQL() string {
	return s.sql
}

// Args returns a copy of the positional parameters.
func (s Statement) Args() []any {
	return append([]any(nil), s.args...)
}

// The statement-based forms below extract text and parameters and delegate to
// the text+parameters forms; no additional behavior.

// QueryStatement - Query with a Statement descriptor.
func (ex *Executor) QueryStatement(ctx context.Context, stmt Statement) (pgx.Rows, error) {
	return ex.Query(ctx, stmt.sql, stmt.args...)
}

// UpdateStatement - Update with a Statement descriptor.
func (ex *Executor) UpdateStatement(ctx context.Context, stmt Statement) (int64, error) {
	return ex.Update(ctx, stmt.sql, stmt.args...)
}

// InsertStatement - InsertReturningID with a Statement descriptor.
func (ex *Executor) InsertStatement(ctx context.Context, stmt Statement) (int64, bool, error) {
	return ex.InsertReturningID(ctx, stmt.sql, stmt.args...)
}

// BatchUpdateStatement - BatchUpdate using the descriptor's text as the base
// statement for every parameter set.
func (ex *Executor) BatchUpdateStatement(ctx context.Context, stmt Statement, paramSets [][]any) ([]int64, error) {
	return ex.BatchUpdate(ctx, stmt.sql, paramSets)
}

// QueryOneStatement - QueryOne with a Statement descriptor.
func QueryOneStatement[T any](ctx context.Context, ex *Executor, stmt Statement, mapper RowMapper[T]) (T, bool, error) {
	return QueryOne(ctx, ex, stmt.sql, mapper, stmt.args...)
}

// QueryAllStatement - QueryAll with a Statement descriptor.
func QueryAllStatement[T any](ctx context.Context, ex *Executor, stmt Statement, mapper RowMapper[T]) ([]T, error) {
	return QueryAll(ctx, ex, stmt.sql, mapper, stmt.args...)
}
