// db.go implements the "smartbar db" command for workspace database status.
//
// DB is a NoStoreCommand because it manages gitignore entries without
// opening the databases, so it works on a workspace that is locked or
// mid-rebuild. The index is always local; the content database is shared
// unless marked local.

package core

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/format"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/repo"
)

// dbStatus describes one workspace database.
type dbStatus struct {
	File   string `json:"file"`
	Path   string `json:"path"`
	Size   string `json:"size"`
	Status string `json:"status"`
}

func newDBCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "db",
		Short: "Show or change whether the content database is committed",
		Long: `List the workspace databases or change the content database's
local/shared status.

  smartbar db            # list databases
  smartbar db --local    # keep content.db out of git
  smartbar db --share    # commit content.db

search.db is always local: it is rebuilt from content with 'smartbar reindex'.`,
		Args: cobra.NoArgs,
		RunE: runDB,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark the content database as local")
	c.Flags().BoolP(extension.FlagShare, "s", false, "Mark the content database as shared")
	c.MarkFlagsMutuallyExclusive(extension.FlagLocal, extension.FlagShare)
	return c
}

func runDB(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	share, _ := c.Flags().GetBool(extension.FlagShare)

	ws, err := repo.Discover(cmd.Dir())
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	switch {
	case local:
		err := repo.Ignore(ws.Dir, repo.ContentFile)
		log.Event("core:db", "ignore").Target(repo.ContentFile).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("db ignore: %w", err))
		}
	case share:
		err := repo.Unignore(ws.Dir, repo.ContentFile)
		log.Event("core:db", "unignore").Target(repo.ContentFile).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("db unignore: %w", err))
		}
	}

	dbs, err := listDBs(ws)
	log.Event("core:db", "list").Target(ws.Dir).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("db list: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(dbs)
	}
	for _, d := range dbs {
		fmt.Fprintf(cmd.Out(), "%-12s %8s  %s\n", d.File, d.Size, d.Status)
	}
	return nil
}

// listDBs reports both databases with their size and git status.
func listDBs(ws repo.Workspace) ([]dbStatus, error) {
	files := []struct{ name, path string }{
		{repo.ContentFile, ws.ContentPath},
		{repo.IndexFile, ws.IndexPath},
	}
	out := make([]dbStatus, 0, len(files))
	for _, f := range files {
		ignored, err := repo.IsIgnored(ws.Dir, f.name)
		if err != nil {
			return nil, err
		}
		st := dbStatus{File: f.name, Path: f.path, Status: "shared"}
		if ignored {
			st.Status = "local"
		}
		if info, err := os.Stat(f.path); err == nil {
			st.Size = format.HumanSize(info.Size())
		}
		out = append(out, st)
	}
	return out, nil
}
