// read.go implements entity and account retrieval for the SQLite store.

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Entity returns an entity with its taxonomy labels and metadata loaded.
func (s *SQLiteStore) Entity(ctx context.Context, id int64) (*Entity, error) {
	var e Entity
	var kind string
	err := s.db.QueryRowContext(ctx, `SELECT id, kind, title, body, excerpt, status, author_id, mime_type, file_url
		FROM entities WHERE id = ?`, id).
		Scan(&e.ID, &kind, &e.Title, &e.Body, &e.Excerpt, &e.Status, &e.AuthorID, &e.MimeType, &e.FileURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entity %d: %w", id, err)
	}
	e.Kind = Kind(kind)

	if err := s.loadTerms(ctx, &e); err != nil {
		return nil, err
	}
	if err := s.loadMeta(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) loadTerms(ctx context.Context, e *Entity) error {
	rows, err := s.db.QueryContext(ctx, `SELECT taxonomy, label FROM entity_terms
		WHERE entity_id = ? ORDER BY taxonomy, position, label`, e.ID)
	if err != nil {
		return fmt.Errorf("get terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tax, label string
		if err := rows.Scan(&tax, &label); err != nil {
			return fmt.Errorf("scan term: %w", err)
		}
		switch tax {
		case TaxonomyTag:
			e.Tags = append(e.Tags, label)
		case TaxonomyCategory:
			e.Categories = append(e.Categories, label)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadMeta(ctx context.Context, e *Entity) error {
	rows, err := s.db.QueryContext(ctx, `SELECT meta_key, meta_value FROM entity_meta WHERE entity_id = ?`, e.ID)
	if err != nil {
		return fmt.Errorf("get meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("scan meta: %w", err)
		}
		if e.Meta == nil {
			e.Meta = make(map[string]string)
		}
		e.Meta[k] = v
	}
	return rows.Err()
}

// ListIDs returns entity ids of a kind in id order.
func (s *SQLiteStore) ListIDs(ctx context.Context, kind Kind, statuses ...string) ([]int64, error) {
	q := `SELECT id FROM entities WHERE kind = ?`
	args := []any{string(kind)}

	if len(statuses) == 0 {
		q += ` AND status NOT IN (?, ?)`
		args = append(args, StatusTrash, StatusAutoDraft)
	} else {
		q += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, st := range statuses {
			args = append(args, st)
		}
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Meta returns a single metadata value as a string, or nil when absent.
func (s *SQLiteStore) Meta(ctx context.Context, id int64, key string) (any, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT meta_value FROM entity_meta WHERE entity_id = ? AND meta_key = ?`, id, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, nil
}

// Body returns the raw body of an entity.
func (s *SQLiteStore) Body(ctx context.Context, id int64) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM entities WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get body: %w", err)
	}
	return body, nil
}

// AccountsMatching performs a case-insensitive substring match over login,
// display name and email.
func (s *SQLiteStore) AccountsMatching(ctx context.Context, text string, limit int) ([]Account, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	pattern := "%" + escapeLike(text) + "%"

	rows, err := s.db.QueryContext(ctx, `SELECT id, login, display_name, email, role FROM accounts
		WHERE login LIKE ? ESCAPE '\' OR display_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'
		ORDER BY display_name, id LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("match accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Login, &a.DisplayName, &a.Email, &a.Role); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Account returns a single account.
func (s *SQLiteStore) Account(ctx context.Context, id int64) (*Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, `SELECT id, login, display_name, email, role FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Login, &a.DisplayName, &a.Email, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &a, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
