package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/smartbar/internal/index"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512B", HumanSize(512))
	assert.Equal(t, "1.5K", HumanSize(1536))
	assert.Equal(t, "2.0M", HumanSize(2<<20))
	assert.Equal(t, "1.0G", HumanSize(1<<30))
}

func TestHits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Hits(&buf, []search.Hit{
		{Kind: search.KindPost, Title: "Annual Report", Status: "publish", URL: "http://x/wp-admin/post.php?post=1&action=edit"},
	}))
	out := buf.String()
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "Annual Report")
	assert.Contains(t, out, "post.php?post=1")

	buf.Reset()
	require.NoError(t, Hits(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestHitsMarkdownGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HitsMarkdown(&buf, "widget", []search.Hit{
		{Kind: search.KindProduct, Title: "Blue [Widget]", URL: "u1", Status: "Publish"},
		{Kind: search.KindProduct, Title: "Red Widget", URL: "u2", Status: "Draft", ViewURL: "v2"},
		{Kind: search.KindPost, Title: "Widget news", URL: "u3", Status: "publish"},
	}))
	out := buf.String()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("## Product")))
	assert.Contains(t, out, `Blue \[Widget\]`)
	assert.Contains(t, out, "([view](v2))")
	assert.Contains(t, out, "## Post")
}

func TestStatsAndRebuild(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, service.Stats{
		Stats:       index.Stats{Documents: 3, SizeBytes: 4096, ByKind: map[string]int{"post": 2, "page": 1}},
		SearchTypes: []string{"posts", "pages"},
	}))
	assert.Contains(t, buf.String(), "Documents:    3")
	assert.Contains(t, buf.String(), "4.0K")

	buf.Reset()
	require.NoError(t, Rebuild(&buf, indexer.RebuildResult{Count: 5, Failed: 1, Seconds: 0.25, OptimizeErr: errors.New("busy")}))
	assert.Contains(t, buf.String(), "Indexed 5 documents in 0.25s (1 failed)")
	assert.Contains(t, buf.String(), "optimise failed: busy")
}
