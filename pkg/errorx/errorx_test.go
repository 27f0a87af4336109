package errorx_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0xBetacoding/pgxkit/pkg/errorx"
)

func TestErrorMessagesIncludeWrappedCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errorx.NewConnectionErrorWrapper(cause, "error connecting to %s:%d/%s", "localhost", 5432, "test")

	assert.Equal(t, "error connecting to localhost:5432/test: dial tcp: connection refused", err.Error())
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := errorx.NewQueryError("error executing query '%s'", "SELECT 1")

	assert.Equal(t, "error executing query 'SELECT 1'", err.Error())
}

func TestSentinelsAreMatchableThroughWrappers(t *testing.T) {
	txErr := errorx.NewTransactionErrorWrapper(errorx.ErrTxAlreadyActive, "cannot begin")
	assert.ErrorIs(t, txErr, errorx.ErrTxAlreadyActive)

	queryErr := errorx.NewQueryErrorWrapper(errorx.ErrNoRowsAffected, "insert 'INSERT ...'")
	assert.ErrorIs(t, queryErr, errorx.ErrNoRowsAffected)
}

func TestTypedErrorsAreMatchableWithAs(t *testing.T) {
	var connErr *errorx.ConnectionError

	wrapped := errorx.NewGeneralErrorWrapper(errorx.NewConnectionError("pool exhausted"), "setup failed")
	assert.ErrorAs(t, wrapped, &connErr)
}
