package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	root := t.TempDir()

	ws, err := Init(false, false, root)
	require.NoError(t, err)
	assert.FileExists(t, ws.ContentPath)
	assert.FileExists(t, ws.IndexPath)
	assert.FileExists(t, filepath.Join(ws.Dir, ".gitignore"))

	ignored, err := IsIgnored(ws.Dir, IndexFile)
	require.NoError(t, err)
	assert.True(t, ignored, "index is derived")

	ignored, err = IsIgnored(ws.Dir, ContentFile)
	require.NoError(t, err)
	assert.False(t, ignored, "content is shared by default")
}

func TestInitExisting(t *testing.T) {
	root := t.TempDir()
	_, err := Init(false, false, root)
	require.NoError(t, err)

	_, err = Init(false, false, root)
	assert.ErrorContains(t, err, "already exists")

	_, err = Init(true, false, root)
	assert.NoError(t, err)
}

func TestInitLocal(t *testing.T) {
	root := t.TempDir()
	ws, err := Init(false, true, root)
	require.NoError(t, err)

	ignored, err := IsIgnored(ws.Dir, ContentFile)
	require.NoError(t, err)
	assert.True(t, ignored)

	// Marking twice does not duplicate the entry.
	require.NoError(t, Ignore(ws.Dir, ContentFile))
	data, err := os.ReadFile(filepath.Join(ws.Dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(string(data), ContentFile))
}

func TestInitKeepsCustomGitignore(t *testing.T) {
	root := t.TempDir()
	ws, err := Init(false, true, root)
	require.NoError(t, err)

	_, err = Init(true, false, root)
	require.NoError(t, err)

	ignored, err := IsIgnored(ws.Dir, ContentFile)
	require.NoError(t, err)
	assert.True(t, ignored, "reinit keeps local markers")
}

func TestUnignore(t *testing.T) {
	root := t.TempDir()
	ws, err := Init(false, true, root)
	require.NoError(t, err)

	require.NoError(t, Unignore(ws.Dir, ContentFile))
	ignored, err := IsIgnored(ws.Dir, ContentFile)
	require.NoError(t, err)
	assert.False(t, ignored)

	data, err := os.ReadFile(filepath.Join(ws.Dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, defaultGitignore, string(data), "empty local section is dropped")

	// Unignoring something not listed is a no-op.
	require.NoError(t, Unignore(ws.Dir, ContentFile))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	ws, err := Init(false, false, root)
	require.NoError(t, err)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := Discover(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(ws.Dir)
	require.NoError(t, err)
	assert.Equal(t, want, got.Dir)
}

func TestDiscoverNotInitialised(t *testing.T) {
	_, err := Discover(t.TempDir())
	assert.ErrorIs(t, err, ErrNotInitialised)
}

func countLines(s, line string) int {
	n := 0
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == line {
			n++
		}
	}
	return n
}
