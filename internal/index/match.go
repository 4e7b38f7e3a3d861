// match.go exposes raw FTS5 access for the query engine.
//
// Expressions are passed to MATCH verbatim. Callers own quoting, so prefix
// markers and boolean operators reach FTS5 untouched.

package index

import (
	"context"
	"fmt"

	"github.com/jpl-au/smartbar/internal/content"
)

// Hit is one ranked match. Rank is the raw bm25 value, where lower (more
// negative) is better.
type Hit struct {
	ID       string
	Kind     content.Kind
	EntityID int64
	Title    string
	Metadata map[string]string
	Rank     float64
}

// Match runs expr against the FTS table and returns up to limit hits,
// best first.
func (s *Store) Match(ctx context.Context, expr string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = -1
	}
	q := fmt.Sprintf(`SELECT d.id, d.kind, d.entity_id, d.title, d.metadata, %s AS score
		FROM documents_fts
		JOIN documents d ON d.seq = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY score, d.id
		LIMIT ?`, rankExpr)

	rows, err := s.db.QueryContext(ctx, q, expr, limit)
	if err != nil {
		return nil, unavailable("match", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var kind, meta string
		if err := rows.Scan(&h.ID, &kind, &h.EntityID, &h.Title, &meta, &h.Rank); err != nil {
			return nil, unavailable("scan match", err)
		}
		h.Kind = content.Kind(kind)
		h.Metadata = decodeMeta(meta)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("match", err)
	}
	return hits, nil
}

// Terms returns indexed vocabulary terms whose length in characters lies
// within [minLen, maxLen].
func (s *Store) Terms(ctx context.Context, minLen, maxLen int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term FROM documents_vocab
		WHERE length(term) BETWEEN ? AND ? ORDER BY term`, minLen, maxLen)
	if err != nil {
		return nil, unavailable("vocabulary", err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, unavailable("scan term", err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("vocabulary", err)
	}
	return terms, nil
}
