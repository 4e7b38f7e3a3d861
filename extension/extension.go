// Package extension provides the plugin architecture for smartbar. Extensions
// bundle related CLI commands and MCP tools and register at init time, so a
// feature can be added without touching the root command.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for smartbar extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions receive the shared engine before their commands run.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Storeless is an optional interface for extensions with commands that
// don't need an initialised workspace. Commands returned by NoStoreCommands()
// will not trigger engine construction in PersistentPreRunE.
//
// Use cases:
// 1. Bootstrap commands (like init) that run before a workspace exists
// 2. Long-running commands (serve, mcp) that manage their own engine
// 3. Utility commands that only touch files (config, db, guide, version)
type Storeless interface {
	NoStoreCommands() []string
}
