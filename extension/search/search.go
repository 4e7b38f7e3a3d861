// Package search provides the palette query commands.
// Registers commands: search, stats, settings.
package search

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/format"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/search"
	"github.com/jpl-au/smartbar/internal/service"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the search extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "search".
func (e *Extension) Name() string { return "search" }

// Init connects to the shared engine.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the query commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newSearchCmd(),
		e.newStatsCmd(),
		e.newSettingsCmd(),
	}
}

// MCPTools returns nil - search tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

func (e *Extension) newSearchCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a palette search as an account",
		Long: `Search the index the way the command palette does: prefix matching on
the last word, typo tolerance, permission filtering and grouping by type.

  smartbar search "annual rep" --actor 1
  smartbar search invoice --types posts,products --limit 5
  smartbar search "dashboard" --markdown

Without --actor (or SMARTBAR_ACTOR) the search runs as an anonymous visitor,
who may not search.`,
		Args: cobra.MinimumNArgs(1),
		RunE: e.runSearch,
	}
	c.Flags().StringSliceP(extension.FlagTypes, "t", nil, "Search types: posts, pages, media, users, products")
	c.Flags().IntP(extension.FlagLimit, "n", 0, "Maximum results (default: search.limit)")
	c.Flags().BoolP(extension.FlagMarkdown, "m", false, "Render results as markdown")
	_ = c.RegisterFlagCompletionFunc(extension.FlagTypes, func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return content.Strings(content.AllTypes), cobra.ShellCompDirectiveNoFileComp
	})
	return c
}

func (e *Extension) runSearch(c *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	rawTypes, _ := c.Flags().GetStringSlice(extension.FlagTypes)
	limit, _ := c.Flags().GetInt(extension.FlagLimit)
	markdown, _ := c.Flags().GetBool(extension.FlagMarkdown)

	if limit < 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be >= 0, got %d", limit))
	}
	var types []content.SearchType
	if len(rawTypes) > 0 {
		types = content.ParseTypes(rawTypes)
		if len(types) == 0 {
			return cmd.PrintJSONError(fmt.Errorf("no valid search types in %q", strings.Join(rawTypes, ",")))
		}
	}

	actor := cmd.Actor()
	hits, err := e.svc.Search(c.Context(), actor, query, types, limit)
	log.Event("search:search", "search").
		Actor(actor).
		Detail("query", query).
		Count(len(hits)).
		Write(err)
	if err != nil {
		if errors.Is(err, search.ErrForbidden) {
			return cmd.PrintJSONError(fmt.Errorf("account %d may not search", actor))
		}
		return cmd.PrintJSONError(fmt.Errorf("search %q: %w", query, err))
	}

	if cmd.JSON() {
		if hits == nil {
			hits = []search.Hit{}
		}
		return cmd.PrintJSON(hits)
	}
	if markdown {
		var buf bytes.Buffer
		if err := format.HitsMarkdown(&buf, query, hits); err != nil {
			return err
		}
		fmt.Fprint(cmd.Out(), render(buf.String()))
		return nil
	}
	if len(hits) == 0 {
		fmt.Fprintln(cmd.Out(), "No results")
		return nil
	}
	return format.Hits(cmd.Out(), hits)
}

// render styles markdown when stdout is a terminal.
func render(md string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return out
}

func (e *Extension) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index document counts and size",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			st := e.svc.Stats(c.Context())
			log.Event("search:stats", "read").Count(st.Documents).Write(nil)
			if cmd.JSON() {
				return cmd.PrintJSON(st)
			}
			return format.Stats(cmd.Out(), st)
		},
	}
}

func (e *Extension) newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the palette shortcut and search types",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := e.svc.Settings()
			if cmd.JSON() {
				return cmd.PrintJSON(s)
			}
			fmt.Fprintf(cmd.Out(), "Shortcut:     %s\n", s.Shortcut)
			fmt.Fprintf(cmd.Out(), "Search types: %s\n", strings.Join(s.SearchTypes, ", "))
			return nil
		},
	}
}
