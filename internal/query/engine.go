// Package query turns palette input into ranked index hits.
//
// A query runs in up to two phases. The prefix phase matches every token
// exactly and the last one as a prefix, which covers the common case of a
// user still typing. Only when it finds nothing does the fuzzy phase expand
// each term to indexed vocabulary within two edits and rerun the match with
// a score penalty. Store failures never escape as a panic or abort the other
// phase; the failing phase contributes no results and its error is returned
// next to whatever the engine did find.
package query

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/metrics"
)

// Phase names the query phase a result came from.
type Phase string

const (
	PhasePrefix Phase = "prefix"
	PhaseFuzzy  Phase = "fuzzy"
)

// Defaults.
const (
	DefaultLimit     = 20
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 300 * time.Second
)

// Result is one ranked match. Score is non-negative; higher is better.
type Result struct {
	DocumentID string            `json:"document_id"`
	Kind       content.Kind      `json:"kind"`
	EntityID   int64             `json:"entity_id"`
	Title      string            `json:"title"`
	Metadata   map[string]string `json:"metadata"`
	Score      float64           `json:"score"`
	Phase      Phase             `json:"phase"`
}

// Index is the part of the index store the engine reads.
type Index interface {
	Match(ctx context.Context, expr string, limit int) ([]index.Hit, error)
	Terms(ctx context.Context, minLen, maxLen int) ([]string, error)
}

// Engine runs queries against an index.
type Engine struct {
	idx   Index
	cache *expirable.LRU[string, []Result]
	fuzzy bool
	log   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache sets the result cache bounds. A size of zero or less disables
// caching.
func WithCache(size int, ttl time.Duration) Option {
	return func(e *Engine) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache = expirable.NewLRU[string, []Result](size, nil, ttl)
	}
}

// WithFuzzy enables or disables the fuzzy fallback phase.
func WithFuzzy(on bool) Option {
	return func(e *Engine) { e.fuzzy = on }
}

// WithLogger sets the logger phase failures are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an engine over idx. The cache is on with default bounds and
// fuzzy fallback is enabled unless options say otherwise.
func New(idx Index, opts ...Option) *Engine {
	e := &Engine{
		idx:   idx,
		cache: expirable.NewLRU[string, []Result](DefaultCacheSize, nil, DefaultCacheTTL),
		fuzzy: true,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query returns up to limit results for text, best first. Blank text yields
// no results and no error. A non-nil error means a phase failed; results
// from phases that did run are still returned.
func (e *Engine) Query(ctx context.Context, text string, limit int) ([]Result, error) {
	start := time.Now()
	defer func() { metrics.QueryDuration.Observe(time.Since(start).Seconds()) }()

	tokens := Tokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := cacheKey(tokens, limit)
	if e.cache != nil {
		if res, ok := e.cache.Get(key); ok {
			metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
			return slices.Clone(res), nil
		}
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
	}

	res, err := e.prefix(ctx, tokens, limit)
	if err != nil {
		e.log.Warn("prefix phase failed", zap.String("query", text), zap.Error(err))
	}
	if len(res) == 0 && e.fuzzy {
		var ferr error
		res, ferr = e.fuzzyPhase(ctx, tokens, limit)
		if ferr != nil {
			e.log.Warn("fuzzy phase failed", zap.String("query", text), zap.Error(ferr))
			if err == nil {
				err = ferr
			}
		}
	}

	if err == nil && e.cache != nil {
		e.cache.Add(key, slices.Clone(res))
	}
	return res, err
}

// Purge drops every cached result. Index writes call it so stale hits are
// never served.
func (e *Engine) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

func (e *Engine) prefix(ctx context.Context, tokens []string, limit int) ([]Result, error) {
	hits, err := e.idx.Match(ctx, PrefixExpr(tokens), limit)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(PhasePrefix), metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("prefix phase: %w", err)
	}
	observe(PhasePrefix, len(hits))
	return toResults(hits, PhasePrefix, 1), nil
}

func (e *Engine) fuzzyPhase(ctx context.Context, tokens []string, limit int) ([]Result, error) {
	terms := Terms(tokens)
	lo, hi, ok := vocabBounds(terms)
	if !ok {
		return nil, nil
	}
	vocab, err := e.idx.Terms(ctx, lo, hi)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(PhaseFuzzy), metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("fuzzy phase: %w", err)
	}
	expr, ok := FuzzyExpr(terms, vocab)
	if !ok {
		observe(PhaseFuzzy, 0)
		return nil, nil
	}
	hits, err := e.idx.Match(ctx, expr, limit)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(PhaseFuzzy), metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("fuzzy phase: %w", err)
	}
	observe(PhaseFuzzy, len(hits))
	return toResults(hits, PhaseFuzzy, FuzzyPenalty), nil
}

func observe(p Phase, n int) {
	outcome := metrics.OutcomeMatch
	if n == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.QueriesTotal.WithLabelValues(string(p), outcome).Inc()
}

// toResults converts raw bm25 ranks (negative, lower is better) to
// non-negative scores.
func toResults(hits []index.Hit, p Phase, factor float64) []Result {
	if len(hits) == 0 {
		return nil
	}
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = Result{
			DocumentID: h.ID,
			Kind:       h.Kind,
			EntityID:   h.EntityID,
			Title:      h.Title,
			Metadata:   h.Metadata,
			Score:      max(-h.Rank, 0) * factor,
			Phase:      p,
		}
	}
	return out
}

func cacheKey(tokens []string, limit int) string {
	return strconv.Itoa(limit) + "\x00" + strings.ToLower(strings.Join(tokens, " "))
}
