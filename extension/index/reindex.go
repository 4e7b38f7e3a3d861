// reindex.go implements the "smartbar reindex" command.

package index

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/internal/format"
)

func (e *Extension) newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from content",
		Long: `Clear search.db and index every entity of the configured search types.
Run it after changing search_types, after an import, or when search.db has
been deleted.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			res, err := e.rebuild(c)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("reindex: %w", err))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(res)
			}
			return format.Rebuild(cmd.Out(), res)
		},
	}
}
