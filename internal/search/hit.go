package search

// Hit kinds, in the palette's display vocabulary.
const (
	KindProduct = "Product"
	KindPost    = "Post"
	KindPage    = "Page"
	KindMedia   = "Media"
	KindUser    = "User"
	KindMenu    = "Menu"
)

// GroupOrder is the order content kinds are emitted in. Any other kind
// follows them.
var GroupOrder = []string{KindProduct, KindPost, KindPage, KindMedia, KindUser}

// Icons per hit kind.
const (
	IconEdit    = "dashicons-edit"
	IconMedia   = "dashicons-admin-media"
	IconProduct = "dashicons-products"
	IconUser    = "dashicons-admin-users"
	IconGeneric = "dashicons-admin-generic"
)

// UserScore is the flat relevance given to live account matches.
const UserScore = 1.0

// Hit is one palette entry.
type Hit struct {
	ID      int64   `json:"id,omitempty"`
	Title   string  `json:"title"`
	Kind    string  `json:"type"`
	URL     string  `json:"url"`
	ViewURL string  `json:"view_url,omitempty"`
	Status  string  `json:"status,omitempty"`
	Icon    string  `json:"icon"`
	Score   float64 `json:"score"`
}

// Group orders hits by kind: GroupOrder first, everything else after, with
// the incoming order kept inside each group.
func Group(hits []Hit) []Hit {
	rank := make(map[string]int, len(GroupOrder))
	for i, k := range GroupOrder {
		rank[k] = i
	}
	groups := make([][]Hit, len(GroupOrder)+1)
	for _, h := range hits {
		i, ok := rank[h.Kind]
		if !ok {
			i = len(GroupOrder)
		}
		groups[i] = append(groups[i], h)
	}
	out := make([]Hit, 0, len(hits))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
