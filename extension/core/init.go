// init.go implements the "smartbar init" command for workspace initialisation.
//
// Init creates .smartbar/ with an empty content store and index. It does NOT
// create config - that's managed separately via "smartbar config", as git
// keeps init and config apart. With --import a fixture is loaded and indexed
// straight away.

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/engine"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/repo"
)

const flagImport = "import"

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a smartbar workspace",
		Long: `Creates .smartbar/content.db and .smartbar/search.db in the current directory.

Use --dir to create in a different directory:
  smartbar init --dir /path/to/site

Use --local to keep the content database out of git:
  smartbar init --local

Use --import to load a YAML fixture and build the index:
  smartbar init --import fixtures/site.yaml

Add --no-index to import without indexing (run 'smartbar reindex' later).

Note: init does not create config. Use "smartbar config" to set up configuration.`,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark the content database as local (gitignored)")
	c.Flags().String(flagImport, "", "YAML fixture to import and index")
	c.Flags().Bool(extension.FlagNoIndex, false, "With --import, skip building the index")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	fixture, _ := c.Flags().GetString(flagImport)
	noIndex, _ := c.Flags().GetBool(extension.FlagNoIndex)
	dir := cmd.Dir()

	ws, err := repo.Init(cmd.Force(), local, dir)
	if abs, absErr := filepath.Abs(ws.Dir); absErr == nil {
		log.SetProject(abs)
	}

	log.Event("core:init", "init").
		Target(ws.Dir).
		Detail("dir", dir).
		Detail("local", local).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
	}

	result := map[string]any{"workspace": ws}
	if fixture != "" {
		count, err := importAndIndex(c.Context(), ws, fixture, !noIndex)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
		}
		result["indexed"] = count
	}

	if cmd.JSON() {
		return cmd.PrintJSON(result)
	}
	fmt.Fprintf(cmd.Out(), "Initialised smartbar workspace in %s\n", ws.Dir)
	if fixture != "" {
		if noIndex {
			fmt.Fprintf(cmd.Out(), "Imported %s (run 'smartbar reindex' to index it)\n", fixture)
		} else {
			fmt.Fprintf(cmd.Out(), "Imported %s and indexed %d document(s)\n", fixture, result["indexed"])
		}
	}
	return nil
}

// importAndIndex loads a fixture into a freshly created workspace and, when
// reindex is set, rebuilds its index. It returns the number indexed.
func importAndIndex(ctx context.Context, ws repo.Workspace, path string, reindex bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	fx, err := content.ParseFixture(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	cfg, err := config.LoadAt(ws.ConfigPath)
	if err != nil {
		return 0, err
	}
	eng, err := engine.New(cfg, engine.WithWorkspace(ws))
	if err != nil {
		return 0, err
	}
	defer eng.Close()

	imported, err := eng.Import(ctx, fx)
	log.Event("core:init", "import").Target(path).Count(len(imported.Entities)).Write(err)
	if err != nil || !reindex {
		return 0, err
	}
	res, err := eng.ReindexAll(ctx, nil)
	log.Event("core:init", "reindex").Count(res.Count).Write(err)
	return res.Count, err
}
