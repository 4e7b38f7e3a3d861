package search

import (
	"net/url"
	"strconv"
	"strings"
)

// Links builds the admin and public URLs hits point at.
type Links struct {
	site  *url.URL
	admin *url.URL
}

// NewLinks creates Links for a site root. The admin area lives under
// adminPath, "/wp-admin/" when empty.
func NewLinks(siteURL, adminPath string) (*Links, error) {
	site, err := url.Parse(strings.TrimRight(siteURL, "/") + "/")
	if err != nil {
		return nil, err
	}
	if adminPath == "" {
		adminPath = "/wp-admin/"
	}
	admin, err := site.Parse(strings.TrimRight(adminPath, "/") + "/")
	if err != nil {
		return nil, err
	}
	return &Links{site: site, admin: admin}, nil
}

// Admin resolves a path relative to the admin area. Absolute URLs are
// returned unchanged.
func (l *Links) Admin(ref string) string {
	u, err := l.admin.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func (l *Links) public(q url.Values) string {
	u := *l.site
	u.RawQuery = q.Encode()
	return u.String()
}

// EditEntity is the admin edit screen for an entity.
func (l *Links) EditEntity(id int64) string {
	return l.Admin("post.php?post=" + strconv.FormatInt(id, 10) + "&action=edit")
}

// Permalink is the public URL of a published entity.
func (l *Links) Permalink(id int64, page bool) string {
	key := "p"
	if page {
		key = "page_id"
	}
	return l.public(url.Values{key: {strconv.FormatInt(id, 10)}})
}

// Preview is the preview URL of an unpublished entity.
func (l *Links) Preview(id int64, page bool) string {
	key := "p"
	if page {
		key = "page_id"
	}
	return l.public(url.Values{key: {strconv.FormatInt(id, 10)}, "preview": {"true"}})
}

// EditUser is the admin screen for an account.
func (l *Links) EditUser(id int64) string {
	return l.Admin("user-edit.php?user_id=" + strconv.FormatInt(id, 10))
}

// Author is the public archive of an account's entities.
func (l *Links) Author(id int64) string {
	return l.public(url.Values{"author": {strconv.FormatInt(id, 10)}})
}

// Normalize reduces a URL to its path and query, resolving relative forms
// against the admin area first, so "post.php?post=1" and
// "https://example.com/wp-admin/post.php?post=1" compare equal.
func (l *Links) Normalize(raw string) string {
	u, err := l.admin.Parse(raw)
	if err != nil {
		return raw
	}
	key := u.EscapedPath()
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}

// Dedupe drops hits whose normalised URL was already seen, keeping the
// first.
func (l *Links) Dedupe(hits []Hit) []Hit {
	seen := make(map[string]bool, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		key := l.Normalize(h.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}
