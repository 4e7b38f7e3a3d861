// export.go dumps the store back out in the fixture format, so a store can
// be snapshotted and replayed with Import.

package content

import (
	"context"
	"fmt"
)

// Accounts returns every account in id order.
func (s *SQLiteStore) Accounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, login, display_name, email, role FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
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

// Export returns every entity, whatever its status, and every account.
func (s *SQLiteStore) Export(ctx context.Context) (*Fixture, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM entities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	f := &Fixture{}
	for _, id := range ids {
		e, err := s.Entity(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("export entity %d: %w", id, err)
		}
		f.Entities = append(f.Entities, fixtureEntity(e))
	}

	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		f.Accounts = append(f.Accounts, FixtureAccount(a))
	}
	return f, nil
}

func fixtureEntity(e *Entity) FixtureEntity {
	return FixtureEntity{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Title:      e.Title,
		Body:       e.Body,
		Excerpt:    e.Excerpt,
		Status:     e.Status,
		Author:     e.AuthorID,
		Tags:       e.Tags,
		Categories: e.Categories,
		MimeType:   e.MimeType,
		FileURL:    e.FileURL,
		Meta:       e.Meta,
	}
}
