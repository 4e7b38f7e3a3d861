// schema.go provides schema execution helpers.
//
// Each package that owns tables embeds its own sql/ directory and runs it
// through ExecEmbedded at Init time. Files are executed in alphabetical order
// (hence the numeric prefixes like 001_, 002_) and must use IF NOT EXISTS so
// Init stays idempotent:
//
//	//go:embed sql/*.sql
//	var schemas embed.FS
//
//	func (s *Store) Init() error {
//	    return store.ExecEmbedded(s.db, schemas, "sql")
//	}

package store

import (
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// ExecEmbedded executes all .sql files from fsys/dir in alphabetical order.
func ExecEmbedded(db *sql.DB, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read schema directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", entry.Name(), err)
		}
	}
	return nil
}
