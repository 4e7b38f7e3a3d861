// Package indexer keeps the search index in step with the content store.
//
// The index is derived data. IndexEntity and Remove apply single changes as
// content is saved or deleted; RebuildAll throws the index away and walks
// the content store again. A rebuild interrupted part way leaves a partial
// index, and running it again repairs that.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/mapper"
	"github.com/jpl-au/smartbar/internal/metrics"
)

// Store is the index write surface.
type Store interface {
	Upsert(ctx context.Context, doc index.Document) error
	Delete(ctx context.Context, kind content.Kind, entityID int64) (bool, error)
	DeleteEntity(ctx context.Context, entityID int64) (bool, error)
	Clear(ctx context.Context) error
	Optimize(ctx context.Context) error
	Count(ctx context.Context, kind content.Kind) (int, error)
}

// Reporter receives rebuild progress. Start is called once per kind with
// the number of entities about to be indexed.
type Reporter interface {
	Start(label string, total int)
	Step()
	Finish()
}

// RebuildResult summarises a full rebuild.
type RebuildResult struct {
	Count       int            `json:"count"`
	Failed      int            `json:"failed"`
	ByKind      map[string]int `json:"by_kind"`
	Elapsed     time.Duration  `json:"-"`
	Seconds     float64        `json:"elapsed_seconds"`
	OptimizeErr error          `json:"-"`
}

// Indexer applies content changes to the index.
type Indexer struct {
	src     content.Reader
	store   Store
	mapper  *mapper.Mapper
	log     *zap.Logger
	onWrite func()
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ix *Indexer) { ix.log = l }
}

// OnWrite registers a callback run after every index write, used to drop
// cached query results.
func OnWrite(fn func()) Option {
	return func(ix *Indexer) { ix.onWrite = fn }
}

// New creates an Indexer.
func New(src content.Reader, st Store, m *mapper.Mapper, opts ...Option) *Indexer {
	ix := &Indexer{
		src:     src,
		store:   st,
		mapper:  m,
		log:     zap.NewNop(),
		onWrite: func() {},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexEntity indexes the entity with the given id. It reports false with a
// nil error when the entity is skipped: an unsupported kind or an
// auto-draft. Missing entities and store failures are returned as errors.
func (ix *Indexer) IndexEntity(ctx context.Context, id int64) (bool, error) {
	e, err := ix.src.Entity(ctx, id)
	if err != nil {
		return false, fmt.Errorf("index entity %d: %w", id, err)
	}
	return ix.index(ctx, e)
}

func (ix *Indexer) index(ctx context.Context, e *content.Entity) (bool, error) {
	if !e.Kind.Valid() || e.Status == content.StatusAutoDraft {
		metrics.IndexOpsTotal.WithLabelValues("upsert", "skipped").Inc()
		return false, nil
	}
	doc, err := ix.mapper.Build(ctx, e)
	if err != nil {
		metrics.IndexOpsTotal.WithLabelValues("upsert", "error").Inc()
		return false, err
	}
	if err := ix.store.Upsert(ctx, doc); err != nil {
		metrics.IndexOpsTotal.WithLabelValues("upsert", "error").Inc()
		return false, err
	}
	ix.onWrite()
	metrics.IndexOpsTotal.WithLabelValues("upsert", "ok").Inc()
	return true, nil
}

// Remove deletes the document for an entity. With an empty kind every
// document for the id is removed. Removing something that is not indexed
// reports false and no error.
func (ix *Indexer) Remove(ctx context.Context, id int64, kind content.Kind) (bool, error) {
	var removed bool
	var err error
	if kind == "" {
		removed, err = ix.store.DeleteEntity(ctx, id)
	} else {
		removed, err = ix.store.Delete(ctx, kind, id)
	}
	if err != nil {
		metrics.IndexOpsTotal.WithLabelValues("remove", "error").Inc()
		return false, err
	}
	if removed {
		ix.onWrite()
	}
	metrics.IndexOpsTotal.WithLabelValues("remove", "ok").Inc()
	return removed, nil
}

// RebuildAll clears the index and indexes every entity of the enabled
// search types in rebuild order: posts, pages, products, media. Accounts are
// never indexed. Failures on single entities are counted and logged and do
// not stop the pass. rep may be nil.
func (ix *Indexer) RebuildAll(ctx context.Context, types []content.SearchType, rep Reporter) (RebuildResult, error) {
	start := time.Now()
	res := RebuildResult{ByKind: map[string]int{}}

	if err := ix.store.Clear(ctx); err != nil {
		metrics.IndexOpsTotal.WithLabelValues("rebuild", "error").Inc()
		return res, err
	}
	ix.onWrite()

	for _, t := range content.RebuildOrder {
		if !slices.Contains(types, t) {
			continue
		}
		kind, _ := t.Kind()
		ids, err := ix.src.ListIDs(ctx, kind)
		if err != nil {
			metrics.IndexOpsTotal.WithLabelValues("rebuild", "error").Inc()
			return res.finish(start), fmt.Errorf("list %s: %w", t, err)
		}

		if rep != nil {
			rep.Start(string(t), len(ids))
		}
		for _, id := range ids {
			ok, err := ix.rebuildOne(ctx, id)
			switch {
			case err != nil:
				res.Failed++
				ix.log.Warn("rebuild: entity failed", zap.Int64("entity_id", id), zap.Error(err))
			case ok:
				res.Count++
				res.ByKind[string(kind)]++
			}
			if rep != nil {
				rep.Step()
			}
		}
		if rep != nil {
			rep.Finish()
		}
	}

	// Optimisation failing leaves a correct, if fragmented, index.
	if err := ix.store.Optimize(ctx); err != nil {
		res.OptimizeErr = err
		ix.log.Warn("rebuild: optimise failed", zap.Error(err))
	}
	ix.onWrite()

	if n, err := ix.store.Count(ctx, ""); err == nil {
		metrics.IndexDocuments.Set(float64(n))
	}
	metrics.IndexOpsTotal.WithLabelValues("rebuild", "ok").Inc()
	return res.finish(start), nil
}

func (ix *Indexer) rebuildOne(ctx context.Context, id int64) (bool, error) {
	e, err := ix.src.Entity(ctx, id)
	if errors.Is(err, content.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ix.index(ctx, e)
}

func (r RebuildResult) finish(start time.Time) RebuildResult {
	r.Elapsed = time.Since(start)
	r.Seconds = r.Elapsed.Seconds()
	return r
}
