package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/repo"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

type fakeService struct {
	actor    int64
	text     string
	types    []content.SearchType
	limit    int
	flags    service.SaveFlags
	kind     content.Kind
	reloaded *config.Config
}

func (f *fakeService) Close() error { return nil }

func (f *fakeService) IndexEntity(_ context.Context, id int64) (bool, error) {
	if id == 404 {
		return false, content.ErrNotFound
	}
	return true, nil
}

func (f *fakeService) OnSave(ctx context.Context, id int64, flags service.SaveFlags) (bool, error) {
	f.flags = flags
	if flags.Skip() {
		return false, nil
	}
	return f.IndexEntity(ctx, id)
}

func (f *fakeService) RemoveFromIndex(_ context.Context, _ int64, kind content.Kind) (bool, error) {
	f.kind = kind
	return true, nil
}

func (f *fakeService) ReindexAll(context.Context, indexer.Reporter) (indexer.RebuildResult, error) {
	return indexer.RebuildResult{Count: 2, ByKind: map[string]int{"post": 2}}, nil
}

func (f *fakeService) Search(_ context.Context, actor int64, text string, types []content.SearchType, limit int) ([]search.Hit, error) {
	f.actor, f.text, f.types, f.limit = actor, text, types, limit
	if actor == 0 {
		return nil, search.ErrForbidden
	}
	return []search.Hit{{ID: 1, Title: "Annual Report", Kind: search.KindPost}}, nil
}

func (f *fakeService) Stats(context.Context) service.Stats {
	return service.Stats{Stats: index.Stats{Documents: 2}}
}

func (f *fakeService) Settings() service.Settings {
	return service.Settings{Shortcut: "ctrl+k", SearchTypes: []string{"posts"}}
}

func (f *fakeService) Import(context.Context, *content.Fixture) (content.ImportResult, error) {
	return content.ImportResult{}, nil
}

func (f *fakeService) Export(context.Context) (*content.Fixture, error) {
	return &content.Fixture{Entities: []content.FixtureEntity{{ID: 1, Kind: "post", Title: "Annual Report"}}}, nil
}

func (f *fakeService) Checkpoint(context.Context) error { return nil }

func (f *fakeService) Reload(cfg *config.Config) error {
	f.reloaded = cfg
	return nil
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "text content")
	return tc.Text
}

func withFake() (*handlers, *fakeService) {
	f := &fakeService{}
	h := &handlers{log: zap.NewNop()}
	h.set(f, repo.Workspace{}, &config.Config{})
	return h, f
}

func TestRequiresInit(t *testing.T) {
	h := &handlers{log: zap.NewNop()}
	ctx := context.Background()

	for name, fn := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search":   h.search,
		"index":    h.index,
		"remove":   h.remove,
		"reindex":  h.reindex,
		"stats":    h.stats,
		"settings": h.settings,
		"export":   h.exportFixture,
	} {
		res, err := fn(ctx, request(map[string]any{"query": "x", "id": float64(1)}))
		require.NoError(t, err, name)
		assert.True(t, res.IsError, name)
		assert.Equal(t, ErrNotInitialised, text(t, res), name)
	}
}

func TestSearchTool(t *testing.T) {
	h, f := withFake()

	res, err := h.search(context.Background(), request(map[string]any{
		"query": "annual",
		"actor": float64(7),
		"types": []any{"posts", "bogus", "users"},
		"limit": float64(5),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var hits []search.Hit
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Annual Report", hits[0].Title)

	assert.Equal(t, int64(7), f.actor)
	assert.Equal(t, []content.SearchType{content.TypePosts, content.TypeUsers}, f.types)
	assert.Equal(t, 5, f.limit)
}

func TestSearchToolTypesAsString(t *testing.T) {
	h, f := withFake()
	_, err := h.search(context.Background(), request(map[string]any{"query": "a", "actor": float64(1), "types": "media,pages"}))
	require.NoError(t, err)
	assert.Equal(t, []content.SearchType{content.TypeMedia, content.TypePages}, f.types)
}

func TestSearchToolErrors(t *testing.T) {
	h, _ := withFake()
	ctx := context.Background()

	res, err := h.search(ctx, request(map[string]any{"query": "a"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "may not search")

	res, err = h.search(ctx, request(map[string]any{"actor": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "query is required")

	res, err = h.search(ctx, request(map[string]any{"query": "a", "actor": float64(1), "limit": float64(-1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestIndexTools(t *testing.T) {
	h, f := withFake()
	ctx := context.Background()

	res, err := h.index(ctx, request(map[string]any{"id": float64(12)}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"indexed":true}`, text(t, res))

	res, err = h.index(ctx, request(map[string]any{"id": float64(404)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.index(ctx, request(map[string]any{"id": 1.5}))
	require.NoError(t, err)
	assert.Equal(t, errIDRequired, text(t, res))

	res, err = h.save(ctx, request(map[string]any{"id": float64(12), "autosave": true}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"indexed":false}`, text(t, res))
	assert.True(t, f.flags.Autosave)

	res, err = h.remove(ctx, request(map[string]any{"id": float64(12), "kind": "product"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":12,"removed":true}`, text(t, res))
	assert.Equal(t, content.KindProduct, f.kind)

	res, err = h.remove(ctx, request(map[string]any{"id": float64(12), "kind": "user"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.reindex(ctx, request(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"count": 2`)
}

func TestExportTool(t *testing.T) {
	h, _ := withFake()
	res, err := h.exportFixture(context.Background(), request(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), "title: Annual Report")
}

func TestSettingsAndStatsTools(t *testing.T) {
	h, _ := withFake()
	ctx := context.Background()

	res, err := h.settings(ctx, request(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"shortcut":"ctrl+k","search_types":["posts"]}`, text(t, res))

	res, err = h.stats(ctx, request(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"documents": 2`)

	var req mcp.ReadResourceRequest
	req.Params.URI = SettingsURI
	contents, err := h.readSettings(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "ctrl+k")
}

func TestConfigSetReloads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	h, f := withFake()
	ctx := context.Background()

	res, err := h.configSet(ctx, request(map[string]any{"key": "shortcut", "value": "ctrl+/"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	require.NotNil(t, f.reloaded)
	assert.Equal(t, "ctrl+/", f.reloaded.KeyboardShortcut())

	res, err = h.configGet(ctx, request(map[string]any{"key": "shortcut"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"shortcut":"ctrl+/"}`, text(t, res))

	res, err = h.configSet(ctx, request(map[string]any{"key": "nope", "value": "1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

const fixture = `
accounts:
  - {id: 1, login: admin, display_name: Site Admin, email: admin@example.com, role: administrator}
entities:
  - {id: 10, kind: post, title: Annual Report, status: publish, author: 1}
`

func TestInitImportSearch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	h := &handlers{dir: t.TempDir(), log: zap.NewNop()}
	t.Cleanup(h.close)
	ctx := context.Background()

	res, err := h.initWorkspace(ctx, request(nil))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	res, err = h.initWorkspace(ctx, request(nil))
	require.NoError(t, err)
	assert.True(t, res.IsError, "second init")

	res, err = h.importFixture(ctx, request(map[string]any{"yaml": fixture, "reindex": true}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), `"reindexed"`)

	res, err = h.search(ctx, request(map[string]any{"query": "annual", "actor": float64(1)}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "Annual Report")

	res, err = h.importFixture(ctx, request(map[string]any{"yaml": "entities: [{kind: post}]"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "fixture without id")
}

func TestExtensionHandler(t *testing.T) {
	called := false
	tool := extension.MCPTool{
		Tool: mcp.NewTool("test_tool"),
		Handler: func(_ context.Context, extCtx extension.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			called = true
			if extCtx == nil {
				return mcp.NewToolResultText("no workspace"), nil
			}
			return mcp.NewToolResultText(extCtx.Service().Settings().Shortcut), nil
		},
	}

	empty := &handlers{log: zap.NewNop()}
	res, err := empty.extensionHandler("test", tool)(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, ErrNotInitialised, text(t, res))
	assert.False(t, called)

	tool.Storeless = true
	res, err = empty.extensionHandler("test", tool)(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "no workspace", text(t, res))

	h, _ := withFake()
	res, err = h.extensionHandler("test", tool)(context.Background(), request(nil))
	require.NoError(t, err)
	assert.Equal(t, "ctrl+k", text(t, res))

	tool.Handler = func(context.Context, extension.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	}
	_, err = h.extensionHandler("test", tool)(context.Background(), request(nil))
	assert.ErrorContains(t, err, "extension test: boom")
}

func TestNewServer(t *testing.T) {
	h, _ := withFake()
	assert.NotNil(t, NewServer(h))
}
