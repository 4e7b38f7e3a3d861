package search

import (
	"context"
	"strings"

	"github.com/jpl-au/smartbar/internal/auth"
)

// ActionSource supplies non-content results such as admin screens.
type ActionSource interface {
	Actions(ctx context.Context, text string, actor *auth.Actor) []Hit
}

// Action is a configured admin shortcut.
type Action struct {
	Title      string   `yaml:"title" json:"title"`
	URL        string   `yaml:"url" json:"url"`
	Icon       string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Keywords   []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Capability string   `yaml:"capability,omitempty" json:"capability,omitempty"`
}

// Matches reports whether text selects the action: the title contains it,
// or a keyword contains it or is contained in it, ignoring case.
func (a Action) Matches(text string) bool {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(a.Title), q) {
		return true
	}
	for _, k := range a.Keywords {
		k = strings.ToLower(k)
		if strings.Contains(k, q) || strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// StaticActions serves a fixed action list.
type StaticActions struct {
	links   *Links
	actions []Action
}

// NewStaticActions creates an ActionSource over actions. URLs are resolved
// against the admin area.
func NewStaticActions(links *Links, actions []Action) *StaticActions {
	return &StaticActions{links: links, actions: actions}
}

// Actions returns the matching actions the actor may use, as Menu hits.
func (s *StaticActions) Actions(_ context.Context, text string, actor *auth.Actor) []Hit {
	var hits []Hit
	for _, a := range s.actions {
		if a.Capability != "" && !actor.Has(a.Capability) {
			continue
		}
		if !a.Matches(text) {
			continue
		}
		icon := a.Icon
		if !strings.HasPrefix(icon, "dashicons-") {
			icon = IconGeneric
		}
		hits = append(hits, Hit{
			Title: a.Title,
			Kind:  KindMenu,
			URL:   s.links.Admin(a.URL),
			Icon:  icon,
		})
	}
	return hits
}
