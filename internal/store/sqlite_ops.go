// sqlite_ops.go provides SQLite connection management shared by every
// smartbar database (search index, content store).
//
// Separated to isolate SQLite-specific concerns (pragmas, driver registration)
// from the packages that own a schema. This is the only place the index and
// content stores import the SQLite driver through.
//
// Design: WAL mode with synchronous NORMAL. The search index is a derived
// artefact that can always be rebuilt from the content store, so losing the
// last transaction on an OS crash is acceptable in exchange for write
// throughput during a full reindex.

package store

import (
	"context"
	"database/sql"
	"fmt"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// Open opens the SQLite database file at path with smartbar's pragmas applied.
// The caller owns the returned handle and must Close it.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// WAL lets queries from the palette run while a save hook is writing.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// SQLite serialises writers itself; wait instead of failing with
	// "database is locked" when a reindex and a save hook overlap.
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`PRAGMA synchronous=NORMAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	// Temp b-trees (ORDER BY rank, vocabulary scans) stay in memory.
	if _, err := db.Exec(`PRAGMA temp_store=MEMORY`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting temp store: %w", err)
	}

	return db, nil
}

// Tx executes fn within a database transaction, handling Begin/Commit/Rollback.
//
//	err := store.Tx(ctx, db, func(tx *sql.Tx) error {
//	    if _, err := tx.ExecContext(ctx, `DELETE ...`); err != nil {
//	        return err // triggers rollback
//	    }
//	    return nil // triggers commit
//	})
func Tx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Scanner abstracts sql.Row and sql.Rows so one scan function serves both.
type Scanner interface {
	Scan(dest ...any) error
}
