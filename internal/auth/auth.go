// Package auth answers capability questions for actors, the role-based
// model the search results are filtered through.
//
// Primitive capabilities ("edit_pages", "list_users") come from the actor's
// role. Meta capabilities ("edit_post") name an action on one entity and are
// resolved against that entity's kind, status and author.
package auth

import (
	"context"
	"errors"

	"github.com/jpl-au/smartbar/internal/content"
)

// Actor is an account with its resolved capabilities. The zero Actor is
// anonymous and can do nothing.
type Actor struct {
	ID   int64
	Role string
	caps map[string]bool
}

// NewActor returns an actor holding the capabilities of role.
func NewActor(id int64, role string) *Actor {
	return &Actor{ID: id, Role: role, caps: RoleCapabilities(role)}
}

// Has reports whether the actor holds a primitive capability.
func (a *Actor) Has(capability string) bool {
	return a != nil && a.caps[capability]
}

// Can reports whether the actor holds capability, resolving meta
// capabilities against e. For primitive capabilities e is ignored.
func (a *Actor) Can(capability string, e *content.Entity) bool {
	if a == nil {
		return false
	}
	switch capability {
	case MetaEditPost, MetaDeletePost, MetaReadPost:
		if e == nil {
			return false
		}
		for _, c := range a.mapMeta(capability, e) {
			if !a.caps[c] {
				return false
			}
		}
		return true
	}
	return a.caps[capability]
}

// IsAuthor reports whether the actor wrote e.
func (a *Actor) IsAuthor(e *content.Entity) bool {
	return a != nil && e != nil && a.ID != 0 && e.AuthorID == a.ID
}

// mapMeta lists the primitive capabilities a meta capability needs for e.
func (a *Actor) mapMeta(meta string, e *content.Entity) []string {
	p := Plural(e.Kind)
	own := a.IsAuthor(e)

	switch meta {
	case MetaReadPost:
		if e.Status == content.StatusPrivate && !own {
			return []string{verbReadPrivate + "_" + p}
		}
		return []string{CapRead}

	case MetaDeletePost:
		caps := []string{verbDelete + "_" + p}
		if !own {
			caps = append(caps, verbDeleteOthers+"_"+p)
		}
		switch e.Status {
		case content.StatusPublish:
			caps = append(caps, verbDeletePublished+"_"+p)
		case content.StatusPrivate:
			caps = append(caps, verbDeletePrivate+"_"+p)
		}
		return caps
	}

	caps := []string{verbEdit + "_" + p}
	if !own {
		caps = append(caps, verbEditOthers+"_"+p)
	}
	switch e.Status {
	case content.StatusPublish:
		caps = append(caps, verbEditPublished+"_"+p)
	case content.StatusPrivate:
		caps = append(caps, verbEditPrivate+"_"+p)
	}
	return caps
}

// Plural returns the capability type for a kind. Attachments share the
// post capabilities.
func Plural(k content.Kind) string {
	switch k {
	case content.KindPage:
		return "pages"
	case content.KindProduct:
		return "products"
	}
	return "posts"
}

// ReadPrivate, EditAny and DeleteAny name the per-kind capabilities the
// status policy checks.
func ReadPrivate(k content.Kind) string { return verbReadPrivate + "_" + Plural(k) }
func EditAny(k content.Kind) string     { return verbEdit + "_" + Plural(k) }
func DeleteAny(k content.Kind) string   { return verbDelete + "_" + Plural(k) }

// Checker resolves actors from the account store.
type Checker struct {
	accounts content.AccountSearcher
	entities content.Reader
}

// NewChecker creates a Checker.
func NewChecker(accounts content.AccountSearcher, entities content.Reader) *Checker {
	return &Checker{accounts: accounts, entities: entities}
}

// Actor loads the actor for an account id. Unknown accounts and id 0 yield
// an anonymous actor; only store failures are errors.
func (c *Checker) Actor(ctx context.Context, id int64) (*Actor, error) {
	if id == 0 {
		return &Actor{}, nil
	}
	acct, err := c.accounts.Account(ctx, id)
	if errors.Is(err, content.ErrNotFound) {
		return &Actor{}, nil
	}
	if err != nil {
		return nil, err
	}
	return NewActor(acct.ID, acct.Role), nil
}

// Can reports whether actor id holds capability, optionally on entityID
// (zero for none). Any lookup failure denies. It is the by-id check for
// callers holding only account and entity ids; the search path loads the
// Actor once and calls Actor.Can per hit instead.
func (c *Checker) Can(ctx context.Context, actorID int64, capability string, entityID int64) bool {
	a, err := c.Actor(ctx, actorID)
	if err != nil {
		return false
	}
	if entityID == 0 {
		return a.Can(capability, nil)
	}
	e, err := c.entities.Entity(ctx, entityID)
	if err != nil {
		return false
	}
	return a.Can(capability, e)
}
