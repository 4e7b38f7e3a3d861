package search_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/mapper"
	"github.com/jpl-au/smartbar/internal/query"
	"github.com/jpl-au/smartbar/internal/search"
)

const (
	adminID      = 1
	authorA      = 2
	subscriberB  = 3
	contributorC = 4
)

type env struct {
	src   *content.SQLiteStore
	ix    *indexer.Indexer
	links *search.Links
	asm   *search.Assembler
}

func newEnv(t *testing.T, opts ...search.Option) *env {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	src, err := content.Open(filepath.Join(dir, "content.db"))
	require.NoError(t, err)
	require.NoError(t, src.Init())
	t.Cleanup(func() { src.Close() })

	idx, err := index.Open(filepath.Join(dir, "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	for _, a := range []content.Account{
		{ID: adminID, Login: "admin", DisplayName: "Site Admin", Email: "admin@example.com", Role: auth.RoleAdministrator},
		{ID: authorA, Login: "alice", DisplayName: "Alice Annual", Email: "alice@example.com", Role: auth.RoleAuthor},
		{ID: subscriberB, Login: "bob", DisplayName: "Bob", Email: "bob@example.com", Role: auth.RoleSubscriber},
		{ID: contributorC, Login: "cat", DisplayName: "Cat", Email: "cat@example.com", Role: auth.RoleContributor},
	} {
		require.NoError(t, src.PutAccount(ctx, &a))
	}

	engine := query.New(idx, query.WithCache(0, 0))
	links, err := search.NewLinks("https://example.com", "")
	require.NoError(t, err)

	return &env{
		src:   src,
		ix:    indexer.New(src, idx, mapper.New(nil, nil), indexer.OnWrite(engine.Purge)),
		links: links,
		asm:   search.New(engine, src, auth.NewChecker(src, src), links, opts...),
	}
}

func (e *env) put(t *testing.T, ent *content.Entity) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.src.Put(ctx, ent))
	_, err := e.ix.IndexEntity(ctx, ent.ID)
	require.NoError(t, err)
}

func titles(hits []search.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Title
	}
	return out
}

func seedScenario(t *testing.T, e *env) {
	e.put(t, &content.Entity{ID: 10, Kind: content.KindPost, Title: "Annual Report 2024", Status: content.StatusPublish, AuthorID: adminID})
	e.put(t, &content.Entity{ID: 11, Kind: content.KindPage, Title: "Annual Budget Draft", Status: content.StatusDraft, AuthorID: authorA})
	e.put(t, &content.Entity{
		ID: 12, Kind: content.KindProduct, Title: "Widget Pro", Status: content.StatusPublish,
		Tags: []string{"clearance"}, Meta: map[string]string{search.MetaPrice: "19.5"},
	})
	e.put(t, &content.Entity{ID: 13, Kind: content.KindPost, Title: "Shipping notes", Body: "every widget ships free", Status: content.StatusPublish})
}

func TestSearch_Scenario(t *testing.T) {
	e := newEnv(t)
	seedScenario(t, e)
	ctx := context.Background()

	hits, err := e.asm.Search(ctx, subscriberB, "annual", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Report 2024"}, titles(hits))

	hits, err = e.asm.Search(ctx, subscriberB, "widget", content.AllTypes, 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Widget Pro", hits[0].Title)
	assert.Equal(t, search.KindProduct, hits[0].Kind)
	assert.Equal(t, "Publish - $19.50", hits[0].Status)
	assert.Greater(t, hits[0].Score, hits[1].Score)

	hits, err = e.asm.Search(ctx, subscriberB, "clearance", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget Pro"}, titles(hits))
}

func TestSearch_DraftVisibleToAuthorOnly(t *testing.T) {
	e := newEnv(t)
	seedScenario(t, e)
	ctx := context.Background()
	pages := []content.SearchType{content.TypePages}

	hits, err := e.asm.Search(ctx, authorA, "budget", pages, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Budget Draft"}, titles(hits))

	hits, err = e.asm.Search(ctx, subscriberB, "budget", pages, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Contributors can edit posts, not pages.
	hits, err = e.asm.Search(ctx, contributorC, "budget", pages, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = e.asm.Search(ctx, adminID, "budget", pages, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_UsesLiveStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.put(t, &content.Entity{ID: 20, Kind: content.KindPost, Title: "Secret plans", Status: content.StatusPublish, AuthorID: adminID})

	// Trashed in the content store without reindexing.
	require.NoError(t, e.src.SetStatus(ctx, 20, content.StatusTrash))

	hits, err := e.asm.Search(ctx, subscriberB, "secret", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = e.asm.Search(ctx, adminID, "secret", content.AllTypes, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, content.StatusTrash, hits[0].Status)
}

func TestSearch_DropsDeletedEntities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.put(t, &content.Entity{ID: 30, Kind: content.KindPost, Title: "Ghost", Status: content.StatusPublish})
	_, err := e.src.Delete(ctx, 30)
	require.NoError(t, err)

	hits, err := e.asm.Search(ctx, adminID, "ghost", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Forbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.asm.Search(ctx, 0, "annual", content.AllTypes, 0)
	assert.ErrorIs(t, err, search.ErrForbidden)

	_, err = e.asm.Search(ctx, 999, "annual", content.AllTypes, 0)
	assert.ErrorIs(t, err, search.ErrForbidden)

	strict := newEnv(t, search.WithBoundary("edit_posts"))
	_, err = strict.asm.Search(ctx, subscriberB, "annual", content.AllTypes, 0)
	assert.ErrorIs(t, err, search.ErrForbidden)
	_, err = strict.asm.Search(ctx, contributorC, "annual", content.AllTypes, 0)
	assert.NoError(t, err)
}

func TestSearch_BlankQuery(t *testing.T) {
	e := newEnv(t)
	hits, err := e.asm.Search(context.Background(), adminID, "   ", content.AllTypes, 0)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestSearch_KindFilter(t *testing.T) {
	e := newEnv(t)
	seedScenario(t, e)

	hits, err := e.asm.Search(context.Background(), adminID, "annual", []content.SearchType{content.TypePosts}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Report 2024"}, titles(hits))
}

func TestSearch_Users(t *testing.T) {
	e := newEnv(t)
	seedScenario(t, e)
	ctx := context.Background()

	hits, err := e.asm.Search(ctx, adminID, "alice", content.AllTypes, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	u := hits[0]
	assert.Equal(t, "Alice Annual (alice)", u.Title)
	assert.Equal(t, search.KindUser, u.Kind)
	assert.Equal(t, "alice@example.com", u.Status)
	assert.Equal(t, search.UserScore, u.Score)
	assert.Equal(t, "https://example.com/wp-admin/user-edit.php?user_id=2", u.URL)
	assert.Equal(t, "https://example.com/?author=2", u.ViewURL)

	// Users come after content.
	hits, err = e.asm.Search(ctx, adminID, "annual", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Report 2024", "Annual Budget Draft", "Alice Annual (alice)"}, titles(hits))

	// No list_users, no accounts.
	hits, err = e.asm.Search(ctx, authorA, "alice", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Rendering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.put(t, &content.Entity{ID: 40, Kind: content.KindAttachment, Title: "Logo banner", MimeType: "image/png", FileURL: "https://cdn.example.com/logo.png"})
	e.put(t, &content.Entity{ID: 41, Kind: content.KindAttachment, Title: "Banner brief", MimeType: "application/pdf", FileURL: "https://cdn.example.com/brief.pdf"})
	e.put(t, &content.Entity{ID: 42, Kind: content.KindPage, Title: "Banner page", Status: content.StatusPublish})
	e.put(t, &content.Entity{ID: 43, Kind: content.KindPost, Title: "Banner draft", Status: content.StatusPending, AuthorID: adminID})

	hits, err := e.asm.Search(ctx, adminID, "banner", content.AllTypes, 0)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	byID := map[int64]search.Hit{}
	for _, h := range hits {
		byID[h.ID] = h
	}
	assert.Equal(t, search.KindMedia, byID[40].Kind)
	assert.Equal(t, "image", byID[40].Status)
	assert.Equal(t, "https://cdn.example.com/logo.png", byID[40].ViewURL)
	assert.Equal(t, "file", byID[41].Status)

	assert.Equal(t, search.KindPage, byID[42].Kind)
	assert.Equal(t, "https://example.com/?page_id=42", byID[42].ViewURL)
	assert.Equal(t, "https://example.com/wp-admin/post.php?post=42&action=edit", byID[42].URL)

	assert.Equal(t, search.KindPost, byID[43].Kind)
	assert.Equal(t, content.StatusPending, byID[43].Status)
	assert.Equal(t, "https://example.com/?p=43&preview=true", byID[43].ViewURL)

	// Post, Page, Media order.
	assert.Equal(t, search.KindPost, hits[0].Kind)
	assert.Equal(t, search.KindPage, hits[1].Kind)
	assert.Equal(t, search.KindMedia, hits[2].Kind)
	assert.Equal(t, search.KindMedia, hits[3].Kind)
}

func TestSearch_ActionsAppendedAndDeduplicated(t *testing.T) {
	links, err := search.NewLinks("https://example.com", "")
	require.NoError(t, err)
	actions := search.NewStaticActions(links, []search.Action{
		{Title: "Manage widgets", URL: "widgets.php", Icon: "dashicons-screenoptions", Keywords: []string{"widgets", "sidebar"}},
		{Title: "Edit Widget Pro", URL: "post.php?post=12&action=edit", Keywords: []string{"widget pro"}},
		{Title: "Site settings", URL: "options-general.php", Keywords: []string{"settings"}, Capability: auth.CapManageOptions},
	})

	e := newEnv(t, search.WithActions(actions))
	seedScenario(t, e)

	hits, err := e.asm.Search(context.Background(), adminID, "widget", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget Pro", "Shipping notes", "Manage widgets"}, titles(hits))
	last := hits[len(hits)-1]
	assert.Equal(t, search.KindMenu, last.Kind)
	assert.Equal(t, "https://example.com/wp-admin/widgets.php", last.URL)

	hits, err = e.asm.Search(context.Background(), subscriberB, "settings", content.AllTypes, 0)
	require.NoError(t, err)
	assert.Empty(t, hits, "capability-gated action hidden")
}
