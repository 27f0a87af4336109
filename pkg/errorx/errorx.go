//nolint:errname
package errorx

import (
	"errors"
	"fmt"
)

// Sentinel causes. They are attached as the wrapped error of the typed
// errors below so callers can match them with errors.Is.
var (
	// ErrTxAlreadyActive - begin was called while a transaction is already
	// bound to the calling chain.
	ErrTxAlreadyActive = errors.New("transaction already active")

	// ErrNoActiveTx - commit or rollback was called with no transaction bound
	// to the calling chain.
	ErrNoActiveTx = errors.New("no active transaction")

	// ErrNoRowsAffected - an insert requesting generated keys affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Sprintf("%s: %v", ge.message, ge.err)
	}

	return ge.message
}

// Unwrap - return the wrapped error, if any.
func (ge *GeneralError) Unwrap() error {
	return ge.err
}

// CONNECTION ERROR

// ConnectionError - failure acquiring a connection or shutting down a source:
// network failure, authentication failure, pool exhaustion or timeout.
type ConnectionError struct {
	message string
	err     error
}

// NewConnectionError - ConnectionError constructor.
func NewConnectionError(msg string, args ...any) *ConnectionError {
	return &ConnectionError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewConnectionErrorWrapper - ConnectionError constructor for wrapper of another error.
func NewConnectionErrorWrapper(err error, msg string, args ...any) *ConnectionError {
	return &ConnectionError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ce *ConnectionError) Error() string {
	if ce.err != nil {
		return fmt.Sprintf("%s: %v", ce.message, ce.err)
	}

	return ce.message
}

// Unwrap - return the wrapped error, if any.
func (ce *ConnectionError) Unwrap() error {
	return ce.err
}

// TRANSACTION ERROR

// TransactionError - transaction state machine violation, or a commit/rollback
// failure reported by the database. Wraps ErrTxAlreadyActive or ErrNoActiveTx
// for state violations.
type TransactionError struct {
	message string
	err     error
}

// NewTransactionError - TransactionError constructor.
func NewTransactionError(msg string, args ...any) *TransactionError {
	return &TransactionError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewTransactionErrorWrapper - TransactionError constructor for wrapper of another error.
func NewTransactionErrorWrapper(err error, msg string, args ...any) *TransactionError {
	return &TransactionError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (te *TransactionError) Error() string {
	if te.err != nil {
		return fmt.Sprintf("%s: %v", te.message, te.err)
	}

	return te.message
}

// Unwrap - return the wrapped error, if any.
func (te *TransactionError) Unwrap() error {
	return te.err
}

// QUERY ERROR

// QueryError - statement preparation, execution or result access failure.
// Wraps ErrNoRowsAffected for the insert-with-generated-key zero rows case.
type QueryError struct {
	message string
	err     error
}

// NewQueryError - QueryError constructor.
func NewQueryError(msg string, args ...any) *QueryError {
	return &QueryError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewQueryErrorWrapper - QueryError constructor for wrapper of another error.
func NewQueryErrorWrapper(err error, msg string, args ...any) *QueryError {
	return &QueryError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (qe *QueryError) Error() string {
	if qe.err != nil {
		return fmt.Sprintf("%s: %v", qe.message, qe.err)
	}

	return qe.message
}

// Unwrap - return the wrapped error, if any.
func (qe *QueryError) Unwrap() error {
	return qe.err
}
