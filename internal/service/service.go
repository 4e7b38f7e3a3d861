// Package service defines the interface the CLI, HTTP API and MCP server use
// to drive the search engine. Transports depend on this interface rather than
// on the concrete engine, so they can be tested against fakes.
package service

import (
	"context"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/search"
)

// SaveFlags describe the save event that triggered OnSave.
type SaveFlags struct {
	// Autosave is set for periodic background saves of an edit in progress.
	Autosave bool `json:"autosave"`
	// Revision is set when the saved entity is a stored revision of another.
	Revision bool `json:"revision"`
}

// Skip reports whether a save with these flags leaves the index alone.
func (f SaveFlags) Skip() bool {
	return f.Autosave || f.Revision
}

// Stats reports the index state.
type Stats struct {
	index.Stats
	Size        string   `json:"size"`
	SearchTypes []string `json:"search_types"`
}

// Settings is the palette configuration shown to clients.
type Settings struct {
	Shortcut    string   `json:"shortcut"`
	SearchTypes []string `json:"search_types"`
}

// Service is the search engine surface.
//
// Always call Close() when done (use defer).
//
// Example:
//
//	svc, err := engine.New(cfg, engine.WithWorkspace(ws))
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	hits, err := svc.Search(ctx, actorID, "annual report", nil, 0)
type Service interface {
	// Close releases database resources.
	Close() error

	// IndexEntity loads the entity and writes its document, replacing any
	// previous one. Auto-drafts and unsupported kinds are skipped and report
	// false. A missing entity returns an error wrapping content.ErrNotFound.
	IndexEntity(ctx context.Context, id int64) (bool, error)

	// OnSave is the save hook: it indexes the entity unless the save was an
	// autosave or a revision.
	OnSave(ctx context.Context, id int64, flags SaveFlags) (bool, error)

	// RemoveFromIndex drops the entity's document. An empty kind removes
	// whatever kind the entity was indexed under. Removing something absent
	// is not an error and reports false.
	RemoveFromIndex(ctx context.Context, id int64, kind content.Kind) (bool, error)

	// ReindexAll clears the index and rebuilds it from the content store for
	// the configured search types. rep may be nil.
	ReindexAll(ctx context.Context, rep indexer.Reporter) (indexer.RebuildResult, error)

	// Search returns the hits visible to actorID. Nil types means the
	// configured search types; limit 0 means the configured limit.
	// Returns search.ErrForbidden if the actor may not search at all.
	Search(ctx context.Context, actorID int64, text string, types []content.SearchType, limit int) ([]search.Hit, error)

	// Stats reports document counts and index size. It never fails.
	Stats(ctx context.Context) Stats

	// Settings returns the sanitised palette settings.
	Settings() Settings

	// Import loads a fixture into the content store. Imported entities are
	// not indexed; run IndexEntity or ReindexAll afterwards.
	Import(ctx context.Context, f *content.Fixture) (content.ImportResult, error)

	// Export dumps every entity and account in the fixture format.
	Export(ctx context.Context) (*content.Fixture, error)

	// Checkpoint flushes both databases' WAL files.
	Checkpoint(ctx context.Context) error
}
