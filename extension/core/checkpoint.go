// checkpoint.go implements the "smartbar checkpoint" command.
//
// Both databases run in WAL mode. Checkpoint folds the write-ahead logs back
// into the main files, which is worth doing before copying or committing
// content.db.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/internal/log"
)

func (e *Extension) newCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint",
		Short: "Flush the write-ahead logs into the databases",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			err := e.svc.Checkpoint(c.Context())
			log.Event("core:checkpoint", "checkpoint").Write(err)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("checkpoint: %w", err))
			}
			if cmd.JSON() {
				return cmd.PrintJSON(map[string]bool{"checkpointed": true})
			}
			fmt.Fprintln(cmd.Out(), "Checkpointed content.db and search.db")
			return nil
		},
	}
}
