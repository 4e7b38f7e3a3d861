// checkpoint.go implements WAL checkpoint operations for SQLite.
//
// Design: TRUNCATE mode fully flushes the WAL and removes the -wal/-shm
// files, so the file size reported by index stats reflects the real
// footprint after a reindex.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Checkpoint writes all WAL data back to the main database file and truncates
// the WAL.
func Checkpoint(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}
