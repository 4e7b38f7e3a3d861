package content

import "slices"

// SearchType is a user-facing "search in" option from the settings surface.
type SearchType string

// Search types offered in the settings.
const (
	TypePosts    SearchType = "posts"
	TypePages    SearchType = "pages"
	TypeMedia    SearchType = "media"
	TypeUsers    SearchType = "users"
	TypeProducts SearchType = "products"
)

// AllTypes is the closed set of search types.
var AllTypes = []SearchType{TypePosts, TypePages, TypeMedia, TypeUsers, TypeProducts}

// DefaultTypes is used when no search types have been configured.
var DefaultTypes = []SearchType{TypePosts, TypePages, TypeMedia, TypeUsers}

// RebuildOrder is the order a full reindex walks content kinds in.
var RebuildOrder = []SearchType{TypePosts, TypePages, TypeProducts, TypeMedia}

// Kind maps a search type to the entity kind it selects. Users have no kind.
func (t SearchType) Kind() (Kind, bool) {
	switch t {
	case TypePosts:
		return KindPost, true
	case TypePages:
		return KindPage, true
	case TypeProducts:
		return KindProduct, true
	case TypeMedia:
		return KindAttachment, true
	}
	return "", false
}

// Valid reports whether t is one of AllTypes.
func (t SearchType) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// ParseTypes converts raw strings to search types, dropping unknown values
// and duplicates while keeping the input order.
func ParseTypes(raw []string) []SearchType {
	out := make([]SearchType, 0, len(raw))
	for _, r := range raw {
		t := SearchType(r)
		if t.Valid() && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// KindsFor returns the entity kinds selected by types.
func KindsFor(types []SearchType) []Kind {
	var kinds []Kind
	for _, t := range types {
		if k, ok := t.Kind(); ok && !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Strings converts search types back to plain strings.
func Strings(types []SearchType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
