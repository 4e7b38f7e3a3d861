// Package index provides the indexing extension: it keeps the search index
// in step with the content store.
// Registers commands: import, export, index, rm, reindex.
//
// A host CMS drives these from its save and delete hooks; an operator uses
// them to load fixtures or repair the index by hand.

package index

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the index extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "index".
func (e *Extension) Name() string { return "index" }

// Init connects to the shared engine.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the index maintenance commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newImportCmd(),
		e.newExportCmd(),
		e.newIndexCmd(),
		e.newRmCmd(),
		e.newReindexCmd(),
	}
}

// MCPTools returns nil - index tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// parseID reads a positive entity id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entity id %q: must be a positive integer", arg)
	}
	return id, nil
}
