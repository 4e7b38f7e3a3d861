// context.go defines the Context interface for extension access to the engine.
//
// Extensions receive Context during Init(), not at construction, so they can
// register their commands before any workspace has been opened.

package extension

import (
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/repo"
	"github.com/jpl-au/smartbar/internal/service"
)

// Context provides extensions controlled access to smartbar internals.
type Context interface {
	// Service returns the search engine.
	Service() service.Service

	// Workspace returns the opened .smartbar workspace.
	Workspace() repo.Workspace

	// Config returns the active configuration.
	Config() *config.Config
}

// extContext implements Context.
type extContext struct {
	svc service.Service
	ws  repo.Workspace
	cfg *config.Config
}

// NewContext creates a new extension context.
func NewContext(svc service.Service, ws repo.Workspace, cfg *config.Config) Context {
	return &extContext{
		svc: svc,
		ws:  ws,
		cfg: cfg,
	}
}

func (c *extContext) Service() service.Service { return c.svc }

func (c *extContext) Workspace() repo.Workspace { return c.ws }

func (c *extContext) Config() *config.Config { return c.cfg }
