// export.go implements the "smartbar export" command, the inverse of import.

package index

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/internal/exporter"
	"github.com/jpl-au/smartbar/internal/log"
)

func (e *Extension) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.yaml]",
		Short: "Export entities and accounts as a YAML fixture",
		Long: `Write the content store out in the import fixture format. Every entity is
included, whatever its status.

  smartbar export               # to stdout
  smartbar export site.yaml     # to a file (--force to overwrite)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			dst := ""
			if len(args) > 0 {
				dst = args[0]
			}
			w := cmd.Out()
			if cmd.JSON() {
				w = io.Discard
			}

			res, err := exporter.Run(c.Context(), w, e.svc, dst, exporter.Options{Force: cmd.Force()})
			log.Event("index:export", "export").
				Actor(cmd.Actor()).
				Target(dst).
				Count(res.Entities).
				Detail("accounts", res.Accounts).
				Write(err)
			if err != nil {
				return cmd.PrintJSONError(fmt.Errorf("export: %w", err))
			}

			if cmd.JSON() {
				return cmd.PrintJSON(res)
			}
			if res.Path != "" {
				fmt.Fprintf(cmd.Out(), "Exported %d entit%s and %d account(s) to %s\n",
					res.Entities, plural(res.Entities), res.Accounts, res.Path)
			}
			return nil
		},
	}
}
