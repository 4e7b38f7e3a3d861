// Package search assembles palette results: it runs the query engine,
// drops whatever the actor may not see, adds live account matches and
// configured actions, and orders the lot for display.
//
// Authorisation always reads the live entity. The index only narrows the
// candidates; its recorded status is never trusted for access decisions.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/metrics"
	"github.com/jpl-au/smartbar/internal/query"
)

// ErrForbidden is returned when the actor may not search at all. It is
// distinct from a search that found nothing.
var ErrForbidden = errors.New("search forbidden")

// DefaultLimit bounds content and account results per search.
const DefaultLimit = 50

// MetaPrice is the entity meta key holding a product's price.
const MetaPrice = "_price"

// Querier runs ranked index queries.
type Querier interface {
	Query(ctx context.Context, text string, limit int) ([]query.Result, error)
}

// Actors resolves the acting account.
type Actors interface {
	Actor(ctx context.Context, id int64) (*auth.Actor, error)
}

// Assembler builds result lists.
type Assembler struct {
	q        Querier
	src      content.Source
	actors   Actors
	links    *Links
	actions  ActionSource
	boundary string
	currency string
	log      *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithActions adds a source of non-content results.
func WithActions(s ActionSource) Option {
	return func(a *Assembler) { a.actions = s }
}

// WithBoundary sets the capability required to search at all.
func WithBoundary(capability string) Option {
	return func(a *Assembler) {
		if capability != "" {
			a.boundary = capability
		}
	}
}

// WithCurrency sets the symbol product prices are shown with.
func WithCurrency(symbol string) Option {
	return func(a *Assembler) { a.currency = symbol }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// New creates an Assembler.
func New(q Querier, src content.Source, actors Actors, links *Links, opts ...Option) *Assembler {
	a := &Assembler{
		q:        q,
		src:      src,
		actors:   actors,
		links:    links,
		boundary: auth.CapRead,
		currency: "$",
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search returns the hits for text visible to actorID, restricted to the
// given search types. Blank text returns no hits. Index failures are logged
// and degrade to fewer results; only a failed boundary check or an
// unreadable actor are errors.
func (a *Assembler) Search(ctx context.Context, actorID int64, text string, types []content.SearchType, limit int) ([]Hit, error) {
	actor, err := a.actors.Actor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor %d: %w", actorID, err)
	}
	if !actor.Has(a.boundary) {
		return nil, ErrForbidden
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var hits []Hit
	if kinds := content.KindsFor(types); len(kinds) > 0 {
		hits = append(hits, a.content(ctx, actor, text, kinds, limit)...)
	}
	if slices.Contains(types, content.TypeUsers) {
		hits = append(hits, a.users(ctx, actor, text, limit)...)
	}
	if a.actions != nil {
		hits = append(hits, a.actions.Actions(ctx, text, actor)...)
	}

	return Group(a.links.Dedupe(hits)), nil
}

func (a *Assembler) content(ctx context.Context, actor *auth.Actor, text string, kinds []content.Kind, limit int) []Hit {
	results, err := a.q.Query(ctx, text, limit)
	if err != nil {
		a.log.Warn("search index query failed", zap.String("query", text), zap.Error(err))
	}

	var hits []Hit
	for _, r := range results {
		if !slices.Contains(kinds, r.Kind) {
			continue
		}
		e, err := a.src.Entity(ctx, r.EntityID)
		if err != nil {
			if !errors.Is(err, content.ErrNotFound) {
				a.log.Warn("load entity for hit", zap.String("document_id", r.DocumentID), zap.Error(err))
			}
			continue
		}
		// The index row may predate a kind change.
		if e.Kind != r.Kind {
			continue
		}
		if !CanView(actor, e) {
			metrics.SearchDenied.Inc()
			continue
		}
		hits = append(hits, a.render(ctx, e, r.Score))
	}
	return hits
}

func (a *Assembler) render(ctx context.Context, e *content.Entity, score float64) Hit {
	h := Hit{
		ID:    e.ID,
		Title: e.Title,
		URL:   a.links.EditEntity(e.ID),
		Score: score,
	}
	page := e.Kind == content.KindPage
	view := a.links.Preview(e.ID, page)
	if e.Status == content.StatusPublish {
		view = a.links.Permalink(e.ID, page)
	}

	switch e.Kind {
	case content.KindAttachment:
		h.Kind = KindMedia
		h.Icon = IconMedia
		h.ViewURL = e.FileURL
		h.Status = "file"
		if strings.HasPrefix(e.MimeType, "image/") {
			h.Status = "image"
		}
	case content.KindProduct:
		h.Kind = KindProduct
		h.Icon = IconProduct
		h.ViewURL = view
		h.Status = upperFirst(e.Status)
		if price := a.price(ctx, e); price != "" {
			h.Status += " - " + price
		}
	default:
		h.Kind = upperFirst(string(e.Kind))
		h.Icon = IconEdit
		h.ViewURL = view
		h.Status = e.Status
	}
	return h
}

// price formats a product's price, or returns "" when it has none.
func (a *Assembler) price(ctx context.Context, e *content.Entity) string {
	raw, ok := e.Meta[MetaPrice]
	if !ok {
		v, err := a.src.Meta(ctx, e.ID, MetaPrice)
		if err != nil || v == nil {
			return ""
		}
		raw = fmt.Sprint(v)
	}
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if f == 0 {
		return ""
	}
	return a.currency + strconv.FormatFloat(f, 'f', 2, 64)
}

func (a *Assembler) users(ctx context.Context, actor *auth.Actor, text string, limit int) []Hit {
	if !actor.Has(auth.CapListUsers) {
		return nil
	}
	accts, err := a.src.AccountsMatching(ctx, text, limit)
	if err != nil {
		a.log.Warn("account search failed", zap.String("query", text), zap.Error(err))
		return nil
	}
	hits := make([]Hit, 0, len(accts))
	for _, u := range accts {
		hits = append(hits, Hit{
			ID:      u.ID,
			Title:   u.DisplayName + " (" + u.Login + ")",
			Kind:    KindUser,
			URL:     a.links.EditUser(u.ID),
			ViewURL: a.links.Author(u.ID),
			Status:  u.Email,
			Icon:    IconUser,
			Score:   UserScore,
		})
	}
	return hits
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
