package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/content"
)

func testLinks(t *testing.T) *Links {
	t.Helper()
	l, err := NewLinks("https://example.com/", "/wp-admin")
	require.NoError(t, err)
	return l
}

func TestNormalize(t *testing.T) {
	l := testLinks(t)
	abs := l.Normalize("https://example.com/wp-admin/post.php?post=1&action=edit")
	assert.Equal(t, "/wp-admin/post.php?post=1&action=edit", abs)
	assert.Equal(t, abs, l.Normalize("post.php?post=1&action=edit"))
	assert.Equal(t, abs, l.Normalize("/wp-admin/post.php?post=1&action=edit"))
	assert.NotEqual(t, abs, l.Normalize("post.php?post=2&action=edit"))
	assert.Equal(t, "/wp-admin/widgets.php", l.Normalize("widgets.php"))
}

func TestDedupe_KeepsFirst(t *testing.T) {
	l := testLinks(t)
	in := []Hit{
		{Title: "Widget Pro", Kind: KindProduct, URL: l.EditEntity(12)},
		{Title: "Shortcut", Kind: KindMenu, URL: "post.php?post=12&action=edit"},
		{Title: "Other", Kind: KindMenu, URL: "users.php"},
	}
	out := l.Dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Widget Pro", out[0].Title)
	assert.Equal(t, "Other", out[1].Title)
}

func TestGroup(t *testing.T) {
	in := []Hit{
		{Title: "m", Kind: KindMenu},
		{Title: "u", Kind: KindUser},
		{Title: "p1", Kind: KindPost},
		{Title: "x", Kind: "Custom"},
		{Title: "pr", Kind: KindProduct},
		{Title: "p2", Kind: KindPost},
		{Title: "md", Kind: KindMedia},
		{Title: "pg", Kind: KindPage},
	}
	var got []string
	for _, h := range Group(in) {
		got = append(got, h.Title)
	}
	assert.Equal(t, []string{"pr", "p1", "p2", "pg", "md", "u", "m", "x"}, got)
}

func TestCanView(t *testing.T) {
	sub := auth.NewActor(5, auth.RoleSubscriber)
	editor := auth.NewActor(6, auth.RoleEditor)

	tests := []struct {
		name  string
		actor *auth.Actor
		e     content.Entity
		want  bool
	}{
		{"published", sub, content.Entity{Kind: content.KindPost, Status: content.StatusPublish}, true},
		{"private other", sub, content.Entity{Kind: content.KindPost, Status: content.StatusPrivate, AuthorID: 9}, false},
		{"private own", sub, content.Entity{Kind: content.KindPost, Status: content.StatusPrivate, AuthorID: 5}, true},
		{"private editor", editor, content.Entity{Kind: content.KindPage, Status: content.StatusPrivate, AuthorID: 9}, true},
		{"future own", sub, content.Entity{Kind: content.KindPage, Status: content.StatusFuture, AuthorID: 5}, true},
		{"pending other", sub, content.Entity{Kind: content.KindPage, Status: content.StatusPending, AuthorID: 9}, false},
		{"trash own", sub, content.Entity{Kind: content.KindPost, Status: content.StatusTrash, AuthorID: 5}, false},
		{"trash editor", editor, content.Entity{Kind: content.KindPost, Status: content.StatusTrash}, true},
		{"product trash editor", editor, content.Entity{Kind: content.KindProduct, Status: content.StatusTrash}, false},
		{"inherit editor", editor, content.Entity{Kind: content.KindAttachment, Status: content.StatusInherit}, true},
		{"inherit subscriber", sub, content.Entity{Kind: content.KindAttachment, Status: content.StatusInherit}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanView(tt.actor, &tt.e))
		})
	}
}

func TestActionMatches(t *testing.T) {
	a := Action{Title: "Create a new user", Keywords: []string{"new user", "add user"}}
	assert.True(t, a.Matches("new"))
	assert.True(t, a.Matches("ADD USER now"), "query containing a keyword")
	assert.True(t, a.Matches("create"))
	assert.False(t, a.Matches("theme"))
	assert.False(t, a.Matches("  "))
}
