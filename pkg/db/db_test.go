package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "lightwalker.db"), 0)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"role_models", "activity_templates", "activity_preferences", "completions"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, MemoryPath, 0)
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	err = db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO completions (id, activity_id, title, day, completed_at) VALUES ('c1', 'a', 't', '2026-03-10', 'x')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions`).Scan(&count))
	assert.Zero(t, count)
}

func TestIsUniqueConstraintError(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, MemoryPath, 0)
	require.NoError(t, err)
	defer db.Close()

	insert := `INSERT INTO role_models (id, slug, name, created_at, updated_at) VALUES (?, 'lincoln', 'Lincoln', 'x', 'x')`
	_, err = db.ExecContext(ctx, insert, "1")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insert, "2")
	assert.True(t, IsUniqueConstraintError(err))
	assert.False(t, IsUniqueConstraintError(nil))
}

func TestCloseNil(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}
