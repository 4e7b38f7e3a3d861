// Package content defines the system of record the search index is derived
// from: editable entities (posts, pages, products, media) and user accounts.
//
// The index never owns content. Every indexing and authorisation decision
// reads the live entity through the Reader interface, so the index can be
// cleared and rebuilt at any time without loss.
package content

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested entity or account does not exist.
var ErrNotFound = errors.New("entity not found")

// Kind is the coarse entity type discriminator stored with every index
// document and used for filtering.
type Kind string

// Entity kinds that can be indexed.
const (
	KindPost       Kind = "post"
	KindPage       Kind = "page"
	KindProduct    Kind = "product"
	KindAttachment Kind = "attachment"
)

// Kinds lists the indexable kinds.
var Kinds = []Kind{KindPost, KindPage, KindProduct, KindAttachment}

// Valid reports whether k is an indexable kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPost, KindPage, KindProduct, KindAttachment:
		return true
	}
	return false
}

// Lifecycle states. Status strings are stored and compared verbatim.
const (
	StatusPublish   = "publish"
	StatusPrivate   = "private"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusFuture    = "future"
	StatusTrash     = "trash"
	StatusInherit   = "inherit"
	StatusAutoDraft = "auto-draft"
)

// Taxonomies understood by the mapper.
const (
	TaxonomyTag      = "tag"
	TaxonomyCategory = "category"
)

// Entity is an editable content item as the system of record holds it.
type Entity struct {
	ID         int64
	Kind       Kind
	Title      string
	Body       string // raw body, may contain markup and shortcodes
	Excerpt    string
	Status     string
	AuthorID   int64
	Tags       []string
	Categories []string
	MimeType   string // attachments only
	FileURL    string // attachments only
	Meta       map[string]string
}

// Account is a user account. Accounts are matched live and never indexed.
type Account struct {
	ID          int64
	Login       string
	DisplayName string
	Email       string
	Role        string
}

// Reader defines the read operations the indexer, extractor and authoriser
// depend on.
type Reader interface {
	// Entity returns the entity with the given id, or ErrNotFound.
	Entity(ctx context.Context, id int64) (*Entity, error)

	// ListIDs returns ids of entities of the given kind. With no statuses it
	// returns every entity except trashed and auto-draft ones.
	ListIDs(ctx context.Context, kind Kind, statuses ...string) ([]int64, error)

	// Meta returns a metadata value, or nil when the key is absent.
	Meta(ctx context.Context, id int64, key string) (any, error)

	// Body returns the raw body of an entity.
	Body(ctx context.Context, id int64) (string, error)
}

// AccountSearcher queries user accounts directly in the system of record.
type AccountSearcher interface {
	// AccountsMatching returns accounts whose login, display name or email
	// contains text, ordered by display name.
	AccountsMatching(ctx context.Context, text string, limit int) ([]Account, error)

	// Account returns the account with the given id, or ErrNotFound.
	Account(ctx context.Context, id int64) (*Account, error)
}

// Source is the full system-of-record surface.
type Source interface {
	Reader
	AccountSearcher
}
