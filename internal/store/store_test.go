package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jpl-au/smartbar/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Pragmas(t *testing.T) {
	db := openDB(t)

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var sync int
	require.NoError(t, db.QueryRow(`PRAGMA synchronous`).Scan(&sync))
	assert.Equal(t, 1, sync) // NORMAL
}

func TestExecEmbedded_Order(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{
		"sql/002_insert.sql": {Data: []byte(`INSERT INTO t (v) VALUES ('b');`)},
		"sql/001_create.sql": {Data: []byte(`CREATE TABLE IF NOT EXISTS t (v TEXT);`)},
		"sql/README":         {Data: []byte(`not sql`)},
	}

	require.NoError(t, store.ExecEmbedded(db, fsys, "sql"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestExecEmbedded_MissingDir(t *testing.T) {
	db := openDB(t)
	err := store.ExecEmbedded(db, fstest.MapFS{}, "sql")
	assert.Error(t, err)
}

func TestTx(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	_, err := db.Exec(`CREATE TABLE t (v TEXT)`)
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		err := store.Tx(ctx, db, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO t (v) VALUES ('kept')`)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Tx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO t (v) VALUES ('dropped')`); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestCheckpoint(t *testing.T) {
	db := openDB(t)
	require.NoError(t, store.Checkpoint(context.Background(), db))
}
