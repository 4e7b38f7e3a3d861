package search

import (
	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/content"
)

// CanView applies the status policy: whether actor may see e in results.
// The live entity is consulted, never the status recorded in the index.
func CanView(a *auth.Actor, e *content.Entity) bool {
	switch e.Status {
	case content.StatusPublish:
		return a.Has(auth.CapRead)
	case content.StatusPrivate:
		return a.Has(auth.ReadPrivate(e.Kind)) || a.IsAuthor(e)
	case content.StatusDraft, content.StatusPending, content.StatusFuture:
		return a.Has(auth.EditAny(e.Kind)) || a.IsAuthor(e)
	case content.StatusTrash:
		return a.Has(auth.DeleteAny(e.Kind))
	}
	return a.Can(auth.MetaEditPost, e)
}
