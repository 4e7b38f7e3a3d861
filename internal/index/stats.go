package index

import (
	"context"
	"os"
)

// Stats summarises the index.
type Stats struct {
	Documents int            `json:"documents"`
	SizeBytes int64          `json:"size_bytes"`
	ByKind    map[string]int `json:"by_kind"`
}

// Stats reports document counts and storage size. It never fails: anything
// it cannot read is reported as zero, and the size falls back to the size of
// the database file on disk.
func (s *Store) Stats(ctx context.Context) Stats {
	st := Stats{ByKind: map[string]int{}}

	if rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM documents GROUP BY kind ORDER BY kind`); err == nil {
		for rows.Next() {
			var kind string
			var n int
			if rows.Scan(&kind, &n) == nil {
				st.ByKind[kind] = n
				st.Documents += n
			}
		}
		rows.Close()
	}

	var pages, pageSize int64
	if s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&pages) == nil &&
		s.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&pageSize) == nil {
		st.SizeBytes = pages * pageSize
	}
	if st.SizeBytes == 0 && s.path != "" {
		if fi, err := os.Stat(s.path); err == nil {
			st.SizeBytes = fi.Size()
		}
	}
	return st
}
