// config.go implements the "smartbar config" command for configuration management.
//
// Config follows a cascade model similar to git: local config
// (.smartbar/config.yaml) takes precedence over global (~/.smartbar/config.yaml).
// The --local flag forces use of local config even if it doesn't exist yet.

package core

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/repo"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  smartbar config                      # show config
  smartbar config shortcut             # show the palette shortcut
  smartbar config shortcut ctrl+space  # set it
  smartbar config search_types posts,products

Configuration locations:
  Global: ~/.smartbar/config.yaml
  Local:  .smartbar/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.

A running "smartbar serve" picks up changes without a restart.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.smartbar/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)

	var cfg *config.Config
	var err error
	if forceLocal {
		cfg, err = loadLocal()
	} else {
		cfg, err = cmd.LoadConfig()
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if cfg.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		all := cfg.All()
		log.Event("core:config", "list").Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(all)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.Out(), "%s: %s\n", k, all[k])
		}

	case 1:
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{args[0]: v})
		}
		fmt.Fprintln(cmd.Out(), v)

	case 2:
		// Write to the same place we read from
		if err := cfg.Set(args[0], args[1]); err != nil {
			log.Event("core:config", "set").Detail("key", args[0]).Write(err)
			return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := cfg.Save()
		// Values are not logged.
		log.Event("core:config", "set").Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		v, _ := cfg.Get(args[0])
		if cmd.JSON() {
			return cmd.PrintJSON(map[string]string{args[0]: v, "scope": scopeName})
		}
		fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", args[0], v, scopeName)
	}
	return nil
}

// loadLocal opens the local config of the workspace found from --dir, or
// .smartbar/config.yaml under --dir when there is none yet.
func loadLocal() (*config.Config, error) {
	if ws, err := repo.Discover(cmd.Dir()); err == nil {
		return config.LoadFile(ws.ConfigPath, config.ScopeLocal)
	}
	if d := cmd.Dir(); d != "" {
		return config.LoadFile(filepath.Join(d, config.LocalPath()), config.ScopeLocal)
	}
	return config.LoadScope(config.ScopeLocal)
}
