// Package core provides the core extension for smartbar.
// It registers commands: init, config, serve, mcp, guide, db, checkpoint, version.
package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct {
	svc service.Service
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Storeless     = (*Extension)(nil)
)

// Name returns "core" - this extension provides workspace and server commands.
func (e *Extension) Name() string { return "core" }

// Init keeps the shared engine for checkpoint.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns all core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newServeCmd(),
		newMCPCmd(),
		newGuideCmd(),
		newDBCmd(),
		e.newCheckpointCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns the guide tool; the engine tools live in internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return []extension.MCPTool{guideTool()}
}

// NoStoreCommands returns commands that manage their own engine lifecycle
// or need none.
// serve, mcp: long-running servers build and reload their own engine.
// db: manages gitignore, doesn't need a database connection.
// version: displays build info.
func (e *Extension) NoStoreCommands() []string {
	return []string{"serve", "mcp", "db", "version"}
}
