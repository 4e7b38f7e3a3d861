// sqlite.go implements Source on top of a SQLite database.
//
// The content store stands in for the host CMS's database: it is what save
// and delete hooks read from and what the authoriser consults for live
// status and authorship. Hosts with their own database implement Source
// instead.

package content

import (
	"context"
	"database/sql"
	"embed"

	"github.com/jpl-au/smartbar/internal/store"
)

//go:embed sql/*.sql
var schemas embed.FS

// SQLiteStore implements Source using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Source = (*SQLiteStore)(nil)

// Open opens the content database at path. Call Init before first use.
func Open(path string) (*SQLiteStore, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates tables if they don't exist.
func (s *SQLiteStore) Init() error {
	return store.ExecEmbedded(s.db, schemas, "sql")
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Checkpoint flushes the WAL into the database file.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	return store.Checkpoint(ctx, s.db)
}
