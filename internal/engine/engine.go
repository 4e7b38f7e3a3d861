// Package engine is the composition root. It opens a workspace's content
// store and search index and wires the extractor, mapper, indexer, query
// engine and result assembler into one service.Service.
//
// Nothing here is global: every transport builds its own engine with New and
// closes it when done.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/extract"
	"github.com/jpl-au/smartbar/internal/format"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/logger"
	"github.com/jpl-au/smartbar/internal/mapper"
	"github.com/jpl-au/smartbar/internal/metrics"
	"github.com/jpl-au/smartbar/internal/query"
	"github.com/jpl-au/smartbar/internal/repo"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

// Engine implements service.Service over one workspace.
type Engine struct {
	ws      repo.Workspace
	log     *zap.Logger
	content *content.SQLiteStore
	index   *index.Store
	indexer *indexer.Indexer
	checker *auth.Checker

	mu     sync.RWMutex
	cfg    *config.Config
	query  *query.Engine
	search *search.Assembler
}

var _ service.Service = (*Engine)(nil)

type options struct {
	ws    *repo.Workspace
	log   *zap.Logger
	start string
}

// Option configures New.
type Option func(*options)

// WithWorkspace uses ws instead of discovering one.
func WithWorkspace(ws repo.Workspace) Option {
	return func(o *options) { o.ws = &ws }
}

// WithDir discovers the workspace starting from dir rather than the working
// directory.
func WithDir(dir string) Option {
	return func(o *options) { o.start = dir }
}

// WithLogger sets the logger. Without it one is built from cfg.Log.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// New opens the workspace and builds an engine from cfg. A nil cfg uses
// defaults for every setting.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.log == nil {
		l, err := logger.New(cfg.Log.Env, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		o.log = l
	}

	var ws repo.Workspace
	if o.ws != nil {
		ws = *o.ws
	} else {
		found, err := repo.Discover(o.start)
		if err != nil {
			return nil, err
		}
		ws = found
	}

	cs, err := content.Open(ws.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	if err := cs.Init(); err != nil {
		cs.Close()
		return nil, fmt.Errorf("init content store: %w", err)
	}
	idx, err := index.Open(ws.IndexPath)
	if err != nil {
		cs.Close()
		return nil, err
	}

	e := &Engine{
		ws:      ws,
		log:     o.log,
		content: cs,
		index:   idx,
		checker: auth.NewChecker(cs, cs),
	}
	if err := e.configure(cfg); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// configure builds the config-dependent parts. The query cache starts empty.
func (e *Engine) configure(cfg *config.Config) error {
	links, err := search.NewLinks(cfg.SiteURL(), cfg.AdminPath())
	if err != nil {
		return fmt.Errorf("site links: %w", err)
	}
	x := extract.New(e.content,
		extract.WithHeuristics(cfg.Heuristics()),
		extract.WithLogger(e.log),
	)
	q := query.New(e.index,
		query.WithCache(cfg.CacheSize(), cfg.CacheTTL()),
		query.WithFuzzy(cfg.Fuzzy()),
		query.WithLogger(e.log),
	)
	ix := indexer.New(e.content, e.index, mapper.New(x, e.log),
		indexer.WithLogger(e.log),
		indexer.OnWrite(q.Purge),
	)
	asm := search.New(q, e.content, e.checker, links,
		search.WithActions(search.NewStaticActions(links, cfg.Actions)),
		search.WithBoundary(cfg.Boundary()),
		search.WithCurrency(cfg.Currency()),
		search.WithLogger(e.log),
	)

	e.mu.Lock()
	e.cfg = cfg
	e.query = q
	e.search = asm
	e.indexer = ix
	e.mu.Unlock()
	return nil
}

// Reload applies a new configuration. In-flight calls finish against the
// old one.
func (e *Engine) Reload(cfg *config.Config) error {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if err := e.configure(cfg); err != nil {
		return err
	}
	e.log.Info("configuration reloaded", zap.String("path", cfg.Path()))
	return nil
}

// Workspace returns the workspace the engine serves.
func (e *Engine) Workspace() repo.Workspace {
	return e.ws
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// Config returns the active configuration.
func (e *Engine) Config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// Close releases both databases.
func (e *Engine) Close() error {
	_ = e.log.Sync()
	return errors.Join(e.index.Close(), e.content.Close())
}

func (e *Engine) current() (*config.Config, *indexer.Indexer, *search.Assembler) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.indexer, e.search
}

// IndexEntity implements service.Service.
func (e *Engine) IndexEntity(ctx context.Context, id int64) (bool, error) {
	_, ix, _ := e.current()
	return ix.IndexEntity(ctx, id)
}

// OnSave implements service.Service.
func (e *Engine) OnSave(ctx context.Context, id int64, flags service.SaveFlags) (bool, error) {
	if flags.Skip() {
		e.log.Debug("save skipped", zap.Int64("entity_id", id),
			zap.Bool("autosave", flags.Autosave), zap.Bool("revision", flags.Revision))
		return false, nil
	}
	return e.IndexEntity(ctx, id)
}

// RemoveFromIndex implements service.Service.
func (e *Engine) RemoveFromIndex(ctx context.Context, id int64, kind content.Kind) (bool, error) {
	_, ix, _ := e.current()
	return ix.Remove(ctx, id, kind)
}

// ReindexAll implements service.Service.
func (e *Engine) ReindexAll(ctx context.Context, rep indexer.Reporter) (indexer.RebuildResult, error) {
	cfg, ix, _ := e.current()
	res, err := ix.RebuildAll(ctx, cfg.Types(), rep)
	if err != nil {
		return res, err
	}
	e.log.Info("index rebuilt",
		zap.Int("documents", res.Count),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Search implements service.Service.
func (e *Engine) Search(ctx context.Context, actorID int64, text string, types []content.SearchType, limit int) ([]search.Hit, error) {
	cfg, _, asm := e.current()
	if types == nil {
		types = cfg.Types()
	}
	if limit <= 0 {
		limit = cfg.SearchLimit()
	}
	return asm.Search(ctx, actorID, text, types, limit)
}

// Stats implements service.Service.
func (e *Engine) Stats(ctx context.Context) service.Stats {
	cfg, _, _ := e.current()
	st := e.index.Stats(ctx)
	metrics.IndexDocuments.Set(float64(st.Documents))
	return service.Stats{
		Stats:       st,
		Size:        format.HumanSize(st.SizeBytes),
		SearchTypes: content.Strings(cfg.Types()),
	}
}

// Settings implements service.Service.
func (e *Engine) Settings() service.Settings {
	cfg, _, _ := e.current()
	return service.Settings{
		Shortcut:    cfg.KeyboardShortcut(),
		SearchTypes: content.Strings(cfg.Types()),
	}
}

// Import implements service.Service.
func (e *Engine) Import(ctx context.Context, f *content.Fixture) (content.ImportResult, error) {
	return e.content.Import(ctx, f)
}

// Export implements service.Service.
func (e *Engine) Export(ctx context.Context) (*content.Fixture, error) {
	return e.content.Export(ctx)
}

// Checkpoint implements service.Service.
func (e *Engine) Checkpoint(ctx context.Context) error {
	return errors.Join(e.index.Checkpoint(ctx), e.content.Checkpoint(ctx))
}
