// entity.go implements the per-entity commands "smartbar index" and
// "smartbar rm". They are what a CMS save or delete hook shells out to.

package index

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/service"
)

func (e *Extension) newIndexCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "index <id>",
		Short: "Index one entity",
		Long: `Write the search document for an entity, replacing any previous one.
Auto-drafts and kinds outside the configured search types are skipped.

--autosave and --revision describe the save that triggered the call. Either
one leaves the index untouched, so a save hook can pass its flags through:

  smartbar index 42 --autosave   # no-op`,
		Args: cobra.ExactArgs(1),
		RunE: e.runIndex,
	}
	c.Flags().Bool(extension.FlagAutosave, false, "The save was an autosave")
	c.Flags().Bool(extension.FlagRevision, false, "The saved entity is a revision")
	return c
}

func (e *Extension) runIndex(c *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	var flags service.SaveFlags
	flags.Autosave, _ = c.Flags().GetBool(extension.FlagAutosave)
	flags.Revision, _ = c.Flags().GetBool(extension.FlagRevision)

	indexed, err := e.svc.OnSave(c.Context(), id, flags)
	log.Event("index:index", "index").
		Actor(cmd.Actor()).
		Target(args[0]).
		Detail("indexed", indexed).
		Detail("autosave", flags.Autosave).
		Detail("revision", flags.Revision).
		Write(err)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return cmd.PrintJSONError(fmt.Errorf("index: entity %d not found", id))
		}
		return cmd.PrintJSONError(fmt.Errorf("index %d: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{"id": id, "indexed": indexed})
	}
	if indexed {
		fmt.Fprintf(cmd.Out(), "Indexed %d\n", id)
	} else {
		fmt.Fprintf(cmd.Out(), "Skipped %d\n", id)
	}
	return nil
}

func (e *Extension) newRmCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an entity from the index",
		Long: `Drop an entity's search document. The content store is not touched.

Without --kind the document is removed whatever kind it was indexed as.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runRm,
	}
	c.Flags().StringP(extension.FlagKind, "k", "", "Entity kind: post, page, attachment, product")
	_ = c.RegisterFlagCompletionFunc(extension.FlagKind, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		kinds := make([]string, len(content.Kinds))
		for i, k := range content.Kinds {
			kinds[i] = string(k)
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func (e *Extension) runRm(c *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	k, _ := c.Flags().GetString(extension.FlagKind)
	kind := content.Kind(k)
	if kind != "" && !kind.Valid() {
		return cmd.PrintJSONError(fmt.Errorf("unsupported kind %q", k))
	}

	removed, err := e.svc.RemoveFromIndex(c.Context(), id, kind)
	log.Event("index:rm", "remove").
		Actor(cmd.Actor()).
		Target(args[0]).
		Detail("kind", k).
		Detail("removed", removed).
		Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm %d: %w", id, err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{"id": id, "removed": removed})
	}
	if removed {
		fmt.Fprintf(cmd.Out(), "Removed %d\n", id)
	} else {
		fmt.Fprintf(cmd.Out(), "%d was not indexed\n", id)
	}
	return nil
}
