// write.go implements entity and account mutation for the SQLite store.
//
// Design: Put replaces an entity wholesale (row, terms and meta) inside one
// transaction, mirroring how a CMS save overwrites the stored item. The
// caller fires the index hooks afterwards.

package content

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jpl-au/smartbar/internal/store"
)

// Put creates or replaces an entity including its taxonomy labels and meta.
func (s *SQLiteStore) Put(ctx context.Context, e *Entity) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("put entity %d: unsupported kind %q", e.ID, e.Kind)
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}

	return store.Tx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO entities
			(id, kind, title, body, excerpt, status, author_id, mime_type, file_url, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, string(e.Kind), e.Title, e.Body, e.Excerpt, e.Status, e.AuthorID,
			e.MimeType, e.FileURL, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("put entity %d: %w", e.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_terms WHERE entity_id = ?`, e.ID); err != nil {
			return fmt.Errorf("clear terms: %w", err)
		}
		if err := insertTerms(ctx, tx, e.ID, TaxonomyTag, e.Tags); err != nil {
			return err
		}
		if err := insertTerms(ctx, tx, e.ID, TaxonomyCategory, e.Categories); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_meta WHERE entity_id = ?`, e.ID); err != nil {
			return fmt.Errorf("clear meta: %w", err)
		}
		for k, v := range e.Meta {
			if _, err := tx.ExecContext(ctx, `INSERT INTO entity_meta (entity_id, meta_key, meta_value) VALUES (?, ?, ?)`,
				e.ID, k, v); err != nil {
				return fmt.Errorf("put meta %s: %w", k, err)
			}
		}
		return nil
	})
}

func insertTerms(ctx context.Context, tx *sql.Tx, id int64, taxonomy string, labels []string) error {
	for i, label := range labels {
		if label == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO entity_terms (entity_id, taxonomy, label, position)
			VALUES (?, ?, ?, ?)`, id, taxonomy, label, i); err != nil {
			return fmt.Errorf("put %s %q: %w", taxonomy, label, err)
		}
	}
	return nil
}

// SetStatus changes an entity's lifecycle state, e.g. when it is trashed.
func (s *SQLiteStore) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE entities SET status = ?, modified_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes an entity. Returns false when it did not exist.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := store.Tx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete entity %d: %w", id, err)
		}
		n, _ := res.RowsAffected()
		removed = n > 0
		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_terms WHERE entity_id = ?`, id); err != nil {
			return fmt.Errorf("delete terms: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM entity_meta WHERE entity_id = ?`, id); err != nil {
			return fmt.Errorf("delete meta: %w", err)
		}
		return nil
	})
	return removed, err
}

// PutAccount creates or replaces a user account.
func (s *SQLiteStore) PutAccount(ctx context.Context, a *Account) error {
	role := a.Role
	if role == "" {
		role = "subscriber"
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO accounts (id, login, display_name, email, role)
		VALUES (?, ?, ?, ?, ?)`, a.ID, a.Login, a.DisplayName, a.Email, role)
	if err != nil {
		return fmt.Errorf("put account %s: %w", a.Login, err)
	}
	return nil
}
