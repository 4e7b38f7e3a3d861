package query_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/query"
)

func newIndex(t *testing.T, docs ...index.Document) *index.Store {
	t.Helper()
	s, err := index.Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	for _, d := range docs {
		require.NoError(t, s.Upsert(context.Background(), d))
	}
	return s
}

func page(id int64, title, body string) index.Document {
	return index.Document{Kind: content.KindPage, EntityID: id, Title: title, Content: body}
}

func product(id int64, title string) index.Document {
	return index.Document{Kind: content.KindProduct, EntityID: id, Title: title}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"hello", "wor"}, query.Tokens("  hello \t wor "))
	assert.Equal(t, []string{"a-b"}, query.Tokens("- a-b ** ..."))
	assert.Empty(t, query.Tokens("   "))
}

func TestPrefixExpr(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"hello", "wor"}, `"hello" "wor"*`},
		{[]string{"w"}, `"w"`},
		{[]string{"wi"}, `"wi"*`},
		{[]string{"wid*"}, `"wid"*`},
		{[]string{`say"hi`}, `"say""hi"*`},
		{[]string{"c*", "x"}, `"c*" "x"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, query.PrefixExpr(tt.in), tt.in)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"widget", "widget", 0},
		{"wdiget", "widget", 1}, // transposition
		{"widgte", "widget", 1},
		{"anual", "annual", 1},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"café", "cafe", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, query.Distance(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, query.Distance(tt.b, tt.a), "%s/%s", tt.b, tt.a)
	}
}

func TestVariants(t *testing.T) {
	vocab := []string{"widget", "widgets", "wodget", "gadget", "width", "wide"}
	assert.Equal(t, []string{"widget", "widgets", "wodget"}, query.Variants("wdiget", vocab))
	assert.Nil(t, query.Variants("wi", vocab), "short terms are not expanded")

	many := []string{"aaaa", "aaab", "aaac", "aaad", "aaae", "aaaf", "aaag", "aaah", "aaai", "aaaj"}
	got := query.Variants("aaaa", many)
	assert.Len(t, got, query.MaxVariants)
	assert.Equal(t, "aaaa", got[0])
}

func TestFuzzyExpr(t *testing.T) {
	vocab := []string{"annual", "report", "widget"}

	expr, ok := query.FuzzyExpr([]string{"anual", "reprot"}, vocab)
	require.True(t, ok)
	assert.Equal(t, `"annual" AND "report"`, expr)

	_, ok = query.FuzzyExpr([]string{"zzzzzz"}, vocab)
	assert.False(t, ok)

	_, ok = query.FuzzyExpr([]string{"ab"}, vocab)
	assert.False(t, ok, "nothing to expand")
}

func TestTermsSplitsLikeTokenizer(t *testing.T) {
	assert.Equal(t, []string{"o", "brien", "widget"}, query.Terms([]string{"O'Brien", "Widget*"}))
}

func TestQuery_Prefix(t *testing.T) {
	idx := newIndex(t,
		page(1, "Hello World", ""),
		page(2, "Hello Wordsmith", ""),
		page(3, "Goodbye", "hello there"),
	)
	e := query.New(idx)

	res, err := e.Query(context.Background(), "hello wor", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, query.PhasePrefix, r.Phase)
		assert.Positive(t, r.Score)
		assert.Equal(t, content.KindPage, r.Kind)
	}
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)

	res, err = e.Query(context.Background(), "Hello World", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, int64(1), res[0].EntityID)
	assert.Equal(t, query.PhasePrefix, res[0].Phase)
}

func TestQuery_TitleOutranksBody(t *testing.T) {
	idx := newIndex(t,
		page(1, "Quarterly review", "annual budget discussion"),
		page(2, "Annual Budget", ""),
	)
	res, err := query.New(idx).Query(context.Background(), "annual", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "page_2", res[0].DocumentID)
}

func TestQuery_FuzzyFallback(t *testing.T) {
	idx := newIndex(t, product(9, "Blue Widget"))
	e := query.New(idx)

	exact, err := e.Query(context.Background(), "widget", 10)
	require.NoError(t, err)
	require.Len(t, exact, 1)

	res, err := e.Query(context.Background(), "wdiget", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "product_9", res[0].DocumentID)
	assert.Equal(t, query.PhaseFuzzy, res[0].Phase)
	assert.Less(t, res[0].Score, exact[0].Score)
}

func TestQuery_FuzzyDisabled(t *testing.T) {
	idx := newIndex(t, product(9, "Blue Widget"))
	res, err := query.New(idx, query.WithFuzzy(false)).Query(context.Background(), "wdiget", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestQuery_Blank(t *testing.T) {
	res, err := query.New(newIndex(t)).Query(context.Background(), "  ", 10)
	assert.NoError(t, err)
	assert.Empty(t, res)
}

func TestQuery_Limit(t *testing.T) {
	idx := newIndex(t,
		page(1, "Report one", ""),
		page(2, "Report two", ""),
		page(3, "Report three", ""),
	)
	res, err := query.New(idx).Query(context.Background(), "report", 2)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestQuery_CacheServesUntilPurged(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, page(1, "Annual Report", ""))
	e := query.New(idx, query.WithCache(10, time.Minute))

	res, err := e.Query(ctx, "annual", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)

	require.NoError(t, idx.Upsert(ctx, page(2, "Annual Budget", "")))

	res, err = e.Query(ctx, "annual", 10)
	require.NoError(t, err)
	assert.Len(t, res, 1, "served from cache")

	e.Purge()
	res, err = e.Query(ctx, "annual", 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestQuery_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, page(1, "Annual Report", ""))
	e := query.New(idx, query.WithCache(0, 0))

	_, err := e.Query(ctx, "annual", 10)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, page(2, "Annual Budget", "")))

	res, err := e.Query(ctx, "annual", 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

// brokenIndex fails every call.
type brokenIndex struct{ calls int }

func (b *brokenIndex) Match(context.Context, string, int) ([]index.Hit, error) {
	b.calls++
	return nil, index.ErrUnavailable
}

func (b *brokenIndex) Terms(context.Context, int, int) ([]string, error) {
	b.calls++
	return nil, index.ErrUnavailable
}

func TestQuery_StoreFailureYieldsEmptyWithError(t *testing.T) {
	b := &brokenIndex{}
	e := query.New(b)

	var res []query.Result
	var err error
	assert.NotPanics(t, func() {
		res, err = e.Query(context.Background(), "widget", 10)
	})
	assert.Empty(t, res)
	assert.ErrorIs(t, err, index.ErrUnavailable)
	assert.Equal(t, 2, b.calls, "fuzzy phase still attempted")

	// Failures are not cached.
	_, _ = e.Query(context.Background(), "widget", 10)
	assert.Equal(t, 4, b.calls)
}

// flakyIndex fails the prefix match only.
type flakyIndex struct{ *index.Store }

func (f flakyIndex) Match(ctx context.Context, expr string, limit int) ([]index.Hit, error) {
	if expr == `"widget"*` {
		return nil, errors.New("prefix boom")
	}
	return f.Store.Match(ctx, expr, limit)
}

func TestQuery_FuzzyRunsAfterPrefixFailure(t *testing.T) {
	idx := newIndex(t, product(9, "Blue Widget"))
	res, err := query.New(flakyIndex{idx}).Query(context.Background(), "widget", 10)
	assert.Error(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, query.PhaseFuzzy, res[0].Phase)
}
