// import.go loads entities and accounts from a YAML fixture file.
//
// Hosts without a CMS database populate the content store this way. The
// fixture mirrors the Entity and Account shapes so a dump of an existing site
// can be replayed into a fresh store.

package content

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk import format.
type Fixture struct {
	Entities []FixtureEntity  `yaml:"entities"`
	Accounts []FixtureAccount `yaml:"accounts"`
}

// FixtureEntity is one entity in a fixture file.
type FixtureEntity struct {
	ID         int64             `yaml:"id"`
	Kind       string            `yaml:"kind"`
	Title      string            `yaml:"title,omitempty"`
	Body       string            `yaml:"body,omitempty"`
	Excerpt    string            `yaml:"excerpt,omitempty"`
	Status     string            `yaml:"status,omitempty"`
	Author     int64             `yaml:"author,omitempty"`
	Tags       []string          `yaml:"tags,omitempty"`
	Categories []string          `yaml:"categories,omitempty"`
	MimeType   string            `yaml:"mime_type,omitempty"`
	FileURL    string            `yaml:"file_url,omitempty"`
	Meta       map[string]string `yaml:"meta,omitempty"`
}

// FixtureAccount is one account in a fixture file.
type FixtureAccount struct {
	ID          int64  `yaml:"id"`
	Login       string `yaml:"login"`
	DisplayName string `yaml:"display_name,omitempty"`
	Email       string `yaml:"email,omitempty"`
	Role        string `yaml:"role,omitempty"`
}

// ImportResult reports what an import wrote.
type ImportResult struct {
	Entities []int64 `json:"entities"`
	Accounts int     `json:"accounts"`
}

// ParseFixture decodes a fixture and checks every entity has an id and a
// supported kind.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, e := range f.Entities {
		if e.ID <= 0 {
			return nil, fmt.Errorf("entity %d: id must be positive", i)
		}
		if !Kind(e.Kind).Valid() {
			return nil, fmt.Errorf("entity %d: unsupported kind %q", e.ID, e.Kind)
		}
	}
	for i, a := range f.Accounts {
		if a.ID <= 0 || a.Login == "" {
			return nil, fmt.Errorf("account %d: id and login are required", i)
		}
	}
	return &f, nil
}

// Entity converts a fixture entry to an Entity.
func (fe FixtureEntity) Entity() *Entity {
	e := &Entity{
		ID:         fe.ID,
		Kind:       Kind(fe.Kind),
		Title:      fe.Title,
		Body:       fe.Body,
		Excerpt:    fe.Excerpt,
		Status:     fe.Status,
		AuthorID:   fe.Author,
		Tags:       fe.Tags,
		Categories: fe.Categories,
		MimeType:   fe.MimeType,
		FileURL:    fe.FileURL,
		Meta:       fe.Meta,
	}
	if e.Kind == KindAttachment && e.Status == "" {
		e.Status = StatusInherit
	}
	return e
}

// Import writes every fixture entry into the store. Entries are replaced
// when they already exist.
func (s *SQLiteStore) Import(ctx context.Context, f *Fixture) (ImportResult, error) {
	var res ImportResult
	for _, a := range f.Accounts {
		acc := Account(a)
		if err := s.PutAccount(ctx, &acc); err != nil {
			return res, err
		}
		res.Accounts++
	}
	for _, fe := range f.Entities {
		if err := s.Put(ctx, fe.Entity()); err != nil {
			return res, err
		}
		res.Entities = append(res.Entities, fe.ID)
	}
	return res, nil
}

// ImportFile reads and imports a fixture file.
func (s *SQLiteStore) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	fh, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open fixture: %w", err)
	}
	defer fh.Close()

	f, err := ParseFixture(fh)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return s.Import(ctx, f)
}
