/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Extensions read flag values through the exported accessors rather than
// the variables, so they don't couple to cobra internals.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/repo"
)

var validOutputFormats = []string{"json"}

var (
	output string
	actor  int64
	force  bool
	dir    string
)

// out is the output writer for commands. Defaults to os.Stdout.
var out io.Writer = os.Stdout

// Out returns the output writer.
func Out() io.Writer { return out }

// Output returns the output format flag value.
func Output() string { return output }

// Force returns the force flag value.
func Force() bool { return force }

// Actor returns the account id commands act as.
// Priority: --actor flag > SMARTBAR_ACTOR env var > 0 (anonymous).
func Actor() int64 {
	if rootCmd.PersistentFlags().Changed("actor") {
		return actor
	}
	if v := os.Getenv("SMARTBAR_ACTOR"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id >= 0 {
			return id
		}
	}
	return 0
}

// Dir returns the explicit project directory if set.
// Priority: --dir flag > SMARTBAR_DIR env var > empty (use discovery).
func Dir() string {
	if dir != "" {
		return dir
	}
	return os.Getenv("SMARTBAR_DIR")
}

// LoadConfig reads the configuration for the workspace found from Dir. The
// workspace's local config wins over the global one.
func LoadConfig() (*config.Config, error) {
	local := config.LocalPath()
	if ws, err := repo.Discover(Dir()); err == nil {
		local = ws.ConfigPath
	}
	return config.LoadAt(local)
}

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON.
// Returns nil if error was printed (suppressing Cobra error), or the original error if not.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().Int64Var(&actor, "actor", 0, "Account id to act as (env SMARTBAR_ACTOR)")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Project directory (skip discovery, use explicit path)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
