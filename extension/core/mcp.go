// mcp.go implements the "smartbar mcp" command.
//
// Unlike other commands that run and exit, mcp blocks handling requests over
// stdio, so it opens and closes its own engine.

package core

import (
	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

The server starts even without a workspace; call the smartbar_init tool to
create one.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return mcp.Serve(cmd.Dir())
		},
	}
}
