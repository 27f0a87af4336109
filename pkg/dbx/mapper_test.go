package dbx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xBetacoding/pgxkit/pkg/dbx"
)

type account struct {
	ID       int64  `db:"id"`
	Owner    string `db:"owner"`
	Internal string `db:"-"`
	NoTag    string
}

func TestStructMapperMatchesColumnsByTag(t *testing.T) {
	ctx := context.Background()
	rows := &fakeRows{
		columns: []string{"id", "owner", "unmapped"},
		rows: [][]any{
			{int64(1), "alice", "junk"},
			{int64(2), "bob", "junk"},
		},
	}
	conn := &fakeConn{queryResults: []*fakeRows{rows}}
	source := &fakeSource{queued: []*fakeConn{conn}}
	ex := newExecutor(source)

	accounts, err := dbx.QueryAll(ctx, ex, "SELECT id, owner, unmapped FROM accounts ORDER BY id", dbx.StructMapper[account]())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "alice", accounts[0].Owner)
	assert.Equal(t, int64(2), accounts[1].ID)
	assert.Equal(t, "bob", accounts[1].Owner)

	// Columns without a tagged field are discarded, untagged fields stay zero.
	assert.Empty(t, accounts[0].Internal)
	assert.Empty(t, accounts[0].NoTag)
}

func TestStructMapperRejectsNonStructTypes(t *testing.T) {
	rows := &fakeRows{columns: []string{"v"}, rows: [][]any{{"a"}}}
	require.True(t, rows.Next())

	_, err := dbx.StructMapper[string]()(rows)
	assert.Error(t, err)
}
