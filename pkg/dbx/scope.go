package dbx

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/0xBetacoding/pgxkit/pkg/errorx"
	"github.com/0xBetacoding/pgxkit/pkg/logx"
)

// txBinding associates one connection with one open transaction. It travels
// inside the context of the call chain that began it; once committed or
// rolled back it stays in the context but reports inactive.
type txBinding struct {
	mu     sync.Mutex
	conn   Conn
	tx     Tx
	txID   string
	active bool
}

func (b *txBinding) isActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.active
}

func (b *txBinding) deactivate() {
	b.mu.Lock()
	b.active = false
	b.mu.Unlock()
}

type txBindingKey struct{}

// TxScope binds at most one connection per call chain as the active
// transaction connection. The binding is carried by the context, so two
// goroutines with independent contexts each hold their own transaction
// without interference. Begin returns the derived context that carries the
// binding; every later call on that chain must use it.
type TxScope struct {
	source ConnSource
}

// NewTxScope - TxScope constructor.
func NewTxScope(source ConnSource) *TxScope {
	return &TxScope{source: source}
}

// Begin acquires a connection, opens a transaction on it and returns a
// context carrying the binding. Fails with a TransactionError wrapping
// errorx.ErrTxAlreadyActive if the context already carries a live binding;
// the existing binding is left untouched.
func (s *TxScope) Begin(ctx context.Context) (context.Context, error) {
	if binding, ok := bindingFrom(ctx); ok && binding.isActive() {
		return ctx, errorx.NewTransactionErrorWrapper(errorx.ErrTxAlreadyActive,
			"cannot begin transaction, %s is still open", binding.txID)
	}

	conn, err := s.source.Acquire(ctx)
	if err != nil {
		return ctx, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		if relErr := conn.Release(ctx); relErr != nil {
			logx.GetLogger().LogWarning(ctx, "error releasing connection after failed begin", relErr)
		}

		return ctx, errorx.NewTransactionErrorWrapper(err, "error starting transaction")
	}

	binding := &txBinding{
		conn:   conn,
		tx:     tx,
		txID:   uuid.NewString(),
		active: true,
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("began transaction %s", binding.txID))

	return context.WithValue(ctx, txBindingKey{}, binding), nil
}

// Commit commits the transaction bound to the calling chain. If the commit
// itself fails, a rollback is attempted on the same transaction and the
// original commit failure is reported, wrapped; a failure of that rollback is
// logged and never takes precedence. On every path the binding is cleared and
// the connection released.
func (s *TxScope) Commit(ctx context.Context) error {
	binding, ok := activeBinding(ctx)
	if !ok {
		return errorx.NewTransactionErrorWrapper(errorx.ErrNoActiveTx, "cannot commit")
	}

	defer s.unbind(ctx, binding)

	if commitErr := binding.tx.Commit(ctx); commitErr != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error committing transaction %s", binding.txID), commitErr)

		if rbErr := binding.tx.Rollback(ctx); rbErr != nil {
			logx.GetLogger().LogWarning(ctx,
				fmt.Sprintf("rollback after failed commit of transaction %s also failed", binding.txID), rbErr)
		}

		return errorx.NewTransactionErrorWrapper(commitErr,
			"transaction %s commit failed, transaction has been rolled back", binding.txID)
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("committed transaction %s", binding.txID))

	return nil
}

// Rollback rolls back the transaction bound to the calling chain. On every
// path the binding is cleared and the connection released.
func (s *TxScope) Rollback(ctx context.Context) error {
	binding, ok := activeBinding(ctx)
	if !ok {
		return errorx.NewTransactionErrorWrapper(errorx.ErrNoActiveTx, "cannot rollback")
	}

	defer s.unbind(ctx, binding)

	if err := binding.tx.Rollback(ctx); err != nil {
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error rolling back transaction %s", binding.txID), err)
		return errorx.NewTransactionErrorWrapper(err, "transaction %s rollback failed", binding.txID)
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("rolled back transaction %s", binding.txID))

	return nil
}

// Current returns the connection bound to the calling chain, if a transaction
// is active. Read-only, no side effects.
func (s *TxScope) Current(ctx context.Context) (Conn, bool) {
	if binding, ok := activeBinding(ctx); ok {
		return binding.conn, true
	}

	return nil, false
}

// IsActive reports whether a transaction is active on the calling chain.
func (s *TxScope) IsActive(ctx context.Context) bool {
	_, ok := activeBinding(ctx)
	return ok
}

// unbind clears the binding and releases the connection. Deferred by Commit
// and Rollback so it runs even when the database call fails or panics.
func (s *TxScope) unbind(ctx context.Context, binding *txBinding) {
	binding.deactivate()

	if err := binding.conn.Release(ctx); err != nil {
		logx.GetLogger().LogWarning(ctx,
			fmt.Sprintf("error releasing connection of transaction %s", binding.txID), err)
	}
}

func bindingFrom(ctx context.Context) (*txBinding, bool) {
	binding, ok := ctx.Value(txBindingKey{}).(*txBinding)
	return binding, ok
}

func activeBinding(ctx context.Context) (*txBinding, bool) {
	binding, ok := bindingFrom(ctx)
	if !ok || !binding.isActive() {
		return nil, false
	}

	return binding, true
}
