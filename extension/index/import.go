// import.go implements the "smartbar import" command for loading fixtures.

package index

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/format"
	"github.com/jpl-au/smartbar/internal/indexer"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/progress"
)

func (e *Extension) newImportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Import entities and accounts from a YAML fixture",
		Long: `Load entities and accounts into the content store. Existing ids are
replaced. Imported entities are not searchable until indexed:

  smartbar import site.yaml --reindex

--dry-run parses and validates the fixture without writing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runImport,
	}
	c.Flags().Bool(extension.FlagReindex, false, "Rebuild the index after importing")
	c.Flags().BoolP(extension.FlagDryRun, "n", false, "Validate the fixture without importing")
	return c
}

type importResult struct {
	content.ImportResult
	DryRun  bool `json:"dry_run,omitempty"`
	Indexed *int `json:"indexed,omitempty"`
}

func (e *Extension) runImport(c *cobra.Command, args []string) error {
	ctx := c.Context()
	path := args[0]
	reindex, _ := c.Flags().GetBool(extension.FlagReindex)
	dryRun, _ := c.Flags().GetBool(extension.FlagDryRun)

	f, err := os.Open(path)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("import: %w", err))
	}
	defer f.Close()

	fx, err := content.ParseFixture(f)
	if err != nil {
		log.Event("index:import", "parse").Actor(cmd.Actor()).Target(path).Write(err)
		return cmd.PrintJSONError(fmt.Errorf("import %s: %w", path, err))
	}

	var res importResult
	if dryRun {
		res.DryRun = true
		for _, fe := range fx.Entities {
			res.Entities = append(res.Entities, fe.ID)
		}
		res.Accounts = len(fx.Accounts)
	} else {
		sp := progress.NewSpinner("Importing " + path)
		if !cmd.JSON() {
			sp.Start()
		}
		res.ImportResult, err = e.svc.Import(ctx, fx)
		sp.Stop()
		log.Event("index:import", "import").
			Actor(cmd.Actor()).
			Target(path).
			Count(len(res.Entities)).
			Detail("accounts", res.Accounts).
			Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("import %s: %w", path, err))
		}
	}

	var rebuild *indexer.RebuildResult
	if reindex && !dryRun {
		r, err := e.rebuild(c)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("import %s: %w", path, err))
		}
		rebuild = &r
		res.Indexed = &r.Count
	}

	if cmd.JSON() {
		return cmd.PrintJSON(res)
	}
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(cmd.Out(), "%s %d entit%s and %d account(s) from %s\n",
		verb, len(res.Entities), plural(len(res.Entities)), res.Accounts, path)
	if rebuild != nil {
		return format.Rebuild(cmd.Out(), *rebuild)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// rebuild runs a full reindex, with a progress line on stderr unless the
// output is JSON.
func (e *Extension) rebuild(c *cobra.Command) (indexer.RebuildResult, error) {
	var rep indexer.Reporter
	if !cmd.JSON() {
		rep = progress.NewRebuild()
	}
	res, err := e.svc.ReindexAll(c.Context(), rep)
	log.Event("index:reindex", "rebuild").
		Actor(cmd.Actor()).
		Count(res.Count).
		Write(err)
	return res, err
}
