package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/extract"
)

func TestKeyboardShortcut(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "ctrl+k"},
		{"ctrl+k", "ctrl+k"},
		{"ctrl+space", "ctrl+space"},
		{"ctrl+/", "ctrl+/"},
		{"alt+x", "ctrl+k"},
		{"CTRL+K", "ctrl+k"},
	}
	for _, tt := range tests {
		c := &Config{Shortcut: tt.in}
		assert.Equal(t, tt.want, c.KeyboardShortcut(), tt.in)
	}
}

func TestTypes(t *testing.T) {
	c := &Config{}
	assert.Equal(t, content.DefaultTypes, c.Types(), "unset uses defaults")

	c.SearchTypes = []string{"products", "bogus", "users", "products"}
	assert.Equal(t, []content.SearchType{content.TypeProducts, content.TypeUsers}, c.Types())

	c.SearchTypes = []string{"bogus"}
	assert.Empty(t, c.Types(), "configured but all invalid stays empty")
}

func TestDefaults(t *testing.T) {
	c := &Config{}
	assert.Equal(t, DefaultSiteURL, c.SiteURL())
	assert.Equal(t, DefaultAdminPath, c.AdminPath())
	assert.Equal(t, "$", c.Currency())
	assert.Equal(t, 50, c.SearchLimit())
	assert.True(t, c.Fuzzy())
	assert.Equal(t, "read", c.Boundary())
	assert.Equal(t, 1000, c.CacheSize())
	assert.Equal(t, 300*time.Second, c.CacheTTL())
	assert.Equal(t, extract.DefaultHeuristics(), c.Heuristics())
	assert.Equal(t, DefaultServerAddr, c.ServerAddr())
}

func TestSetGet(t *testing.T) {
	c := &Config{}

	require.NoError(t, c.Set("shortcut", "ctrl+space"))
	require.NoError(t, c.Set("search_types", "posts, products,nope"))
	require.NoError(t, c.Set("cache.ttl", "60"))
	require.NoError(t, c.Set("search.fuzzy", "FALSE"))
	require.NoError(t, c.Set("extract.min_alnum_ratio", "0.75"))
	require.NoError(t, c.Set("extract.skip_substrings", "css, _id"))

	v, err := c.Get("shortcut")
	require.NoError(t, err)
	assert.Equal(t, "ctrl+space", v)

	v, err = c.Get("search_types")
	require.NoError(t, err)
	assert.Equal(t, "posts,products", v)

	assert.Equal(t, time.Minute, c.CacheTTL())
	assert.False(t, c.Fuzzy())
	assert.Equal(t, 0.75, c.Heuristics().MinAlnumRatio)
	assert.Equal(t, []string{"css", "_id"}, c.Heuristics().SkipSubstrings)

	require.NoError(t, c.Set("cache.ttl", "2h"))
	assert.Equal(t, 2*time.Hour, c.CacheTTL())
}

func TestSetSanitisesShortcut(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Set("shortcut", "alt+f4"))
	assert.Equal(t, "ctrl+k", c.Shortcut)
}

func TestSetRejects(t *testing.T) {
	c := &Config{}
	tests := []struct{ key, value string }{
		{"search.limit", "0"},
		{"search.limit", "abc"},
		{"search.fuzzy", "maybe"},
		{"cache.size", "-1"},
		{"cache.ttl", "0"},
		{"cache.ttl", "2d"},
		{"cache.ttl", "soon"},
		{"extract.min_alnum_ratio", "1.5"},
		{"extract.min_length", "-3"},
		{"log.env", "staging"},
		{"log.level", "loud"},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, c.Set(tt.key, tt.value), ErrInvalidValue, "%s=%s", tt.key, tt.value)
	}
	assert.ErrorIs(t, c.Set("nope", "x"), ErrUnknownKey)
	_, err := c.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestIsSet(t *testing.T) {
	c := &Config{}
	for _, k := range ValidKeys() {
		assert.False(t, c.IsSet(k), k)
	}
	require.NoError(t, c.Set("cache.size", "0"))
	assert.True(t, c.IsSet("cache.size"))
	assert.Equal(t, 0, c.CacheSize(), "explicit zero disables the cache")
}

func TestAllCoversValidKeys(t *testing.T) {
	all := (&Config{}).All()
	assert.Len(t, all, len(ValidKeys()))
	for _, k := range ValidKeys() {
		assert.Contains(t, all, k)
		assert.True(t, IsValidKey(k))
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := LoadFile(path, ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, ScopeLocal, c.Scope())

	require.NoError(t, c.Set("shortcut", "ctrl+/"))
	require.NoError(t, c.Set("site.url", "https://shop.example"))
	require.NoError(t, c.Save())

	got, err := LoadFile(path, ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, "ctrl+/", got.KeyboardShortcut())
	assert.Equal(t, "https://shop.example", got.SiteURL())
	assert.Equal(t, path, got.Path())
}

func TestLoadFileActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
search_types: [posts, products]
actions:
  - title: Settings
    url: options-general.php
    icon: dashicons-admin-settings
    keywords: [options, preferences]
    capability: manage_options
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	c, err := LoadFile(path, ScopeGlobal)
	require.NoError(t, err)
	require.Len(t, c.Actions, 1)
	assert.Equal(t, "manage_options", c.Actions[0].Capability)
	assert.Equal(t, []string{"options", "preferences"}, c.Actions[0].Keywords)
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shortcut: [unterminated"), 0644))
	_, err := LoadFile(bad, ScopeLocal)
	assert.ErrorContains(t, err, "malformed config file")

	out := filepath.Join(dir, "out.yaml")
	require.NoError(t, os.WriteFile(out, []byte("cache:\n  ttl: 0\n"), 0644))
	_, err = LoadFile(out, ScopeLocal)
	assert.ErrorIs(t, err, ErrInvalidValue)

	act := filepath.Join(dir, "act.yaml")
	require.NoError(t, os.WriteFile(act, []byte("actions:\n  - title: Orphan\n"), 0644))
	_, err = LoadFile(act, ScopeLocal)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSaveNoPath(t *testing.T) {
	c := &Config{scope: Scope(99)}
	assert.ErrorIs(t, c.Save(), ErrNoConfigPath)
	assert.ErrorIs(t, c.SaveScope(Scope(99)), ErrNoConfigPath)
}

func TestLoadAtPrefersLocal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	local := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(local, []byte("shortcut: ctrl+space\n"), 0644))

	c, err := LoadAt(local)
	require.NoError(t, err)
	assert.Equal(t, ScopeLocal, c.Scope())
	assert.Equal(t, "ctrl+space", c.KeyboardShortcut())

	c, err = LoadAt(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, c.Scope())
	assert.Equal(t, GlobalPath(), c.Path())
}
