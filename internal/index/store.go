package index

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/store"
)

//go:embed sql/*.sql
var schemas embed.FS

// Store is the SQLite FTS5 search index.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the index at path and creates the schema if needed.
func Open(path string) (*Store, error) {
	db, err := store.Open(path)
	if err != nil {
		return nil, unavailable("open index", err)
	}
	if err := store.ExecEmbedded(db, schemas, "sql"); err != nil {
		db.Close()
		return nil, unavailable("init index", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert replaces the document for (doc.Kind, doc.EntityID). The id and the
// type and entity_id metadata are derived from the kind and entity id.
func (s *Store) Upsert(ctx context.Context, doc Document) error {
	if !doc.Kind.Valid() {
		return fmt.Errorf("upsert: unsupported kind %q", doc.Kind)
	}
	doc.ID = DocID(doc.Kind, doc.EntityID)

	meta := make(map[string]string, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta[MetaType] = string(doc.Kind)
	meta[MetaEntityID] = strconv.FormatInt(doc.EntityID, 10)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("upsert %s: marshal metadata: %w", doc.ID, err)
	}

	err = store.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE kind = ? AND entity_id = ?`,
			string(doc.Kind), doc.EntityID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO documents
			(id, kind, entity_id, title, content, excerpt, tags, category, metadata, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.ID, string(doc.Kind), doc.EntityID,
			doc.Title, doc.Content, doc.Excerpt, doc.Tags, doc.Category,
			string(metaJSON), time.Now().Unix())
		return err
	})
	if err != nil {
		return unavailable("upsert "+doc.ID, err)
	}
	return nil
}

// Delete removes the document for (kind, entityID). Deleting a document that
// is not indexed is not an error; the result is then false.
func (s *Store) Delete(ctx context.Context, kind content.Kind, entityID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE kind = ? AND entity_id = ?`,
		string(kind), entityID)
	if err != nil {
		return false, unavailable("delete "+DocID(kind, entityID), err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteEntity removes every document for entityID whatever its kind. It is
// used when the kind of a removed entity is no longer known.
func (s *Store) DeleteEntity(ctx context.Context, entityID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE entity_id = ?`, entityID)
	if err != nil {
		return false, unavailable("delete entity "+strconv.FormatInt(entityID, 10), err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Clear removes every document.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

// Optimize merges FTS segments and truncates the WAL.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO documents_fts(documents_fts) VALUES ('optimize')`); err != nil {
		return unavailable("optimize", err)
	}
	if err := store.Checkpoint(ctx, s.db); err != nil {
		return unavailable("checkpoint", err)
	}
	return nil
}

// Checkpoint flushes the WAL into the database file.
func (s *Store) Checkpoint(ctx context.Context) error {
	if err := store.Checkpoint(ctx, s.db); err != nil {
		return unavailable("checkpoint", err)
	}
	return nil
}

// Get returns a document by id.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, entity_id, title, content, excerpt, tags, category, metadata
		FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get "+id, err)
	}
	return doc, nil
}

// Count returns the number of documents of kind, or of all kinds when kind
// is empty.
func (s *Store) Count(ctx context.Context, kind content.Kind) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE kind = ?`, string(kind)).Scan(&n)
	}
	if err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

// IDs returns every document id in sorted order.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY id`)
	if err != nil {
		return nil, unavailable("list ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable("scan id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list ids", err)
	}
	return ids, nil
}

func scanDocument(sc store.Scanner) (*Document, error) {
	var d Document
	var kind, meta string
	if err := sc.Scan(&d.ID, &kind, &d.EntityID, &d.Title, &d.Content, &d.Excerpt, &d.Tags, &d.Category, &meta); err != nil {
		return nil, err
	}
	d.Kind = content.Kind(kind)
	d.Metadata = decodeMeta(meta)
	return &d, nil
}

// decodeMeta tolerates corrupt metadata; a document with unreadable
// metadata still matches, it just carries none.
func decodeMeta(s string) map[string]string {
	m := map[string]string{}
	_ = json.Unmarshal([]byte(s), &m)
	return m
}
