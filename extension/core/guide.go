// guide.go implements the "smartbar guide" command and the smartbar_guide
// MCP tool.
//
// Guides are embedded in the binary via the guide package. Terminal output
// gets glamour rendering; pipes and redirects get raw markdown.

package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/guide"
	"github.com/jpl-au/smartbar/internal/log"
)

func newGuideCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show the smartbar usage guide",
		Long: `Outputs the smartbar guide for humans and LLMs.

  smartbar guide           # main guide
  smartbar guide search    # query syntax, ranking and permissions
  smartbar guide config    # settings reference`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			raw, _ := c.Flags().GetBool(extension.FlagRaw)
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			log.Event("core:guide", "read").Detail("topic", name).Write(err)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return cmd.PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
			}

			if cmd.JSON() {
				return cmd.PrintJSON(map[string]string{"topic": name, "content": content})
			}
			if raw {
				fmt.Fprint(cmd.Out(), content)
				return nil
			}
			fmt.Fprint(cmd.Out(), render(content))
			return nil
		},
	}
	c.Flags().BoolP(extension.FlagRaw, "r", false, "Print markdown without terminal styling")
	return c
}

// render styles markdown for a terminal and leaves it raw otherwise.
func render(md string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	rendered, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return rendered
}

func guideTool() extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("smartbar_guide",
			mcp.WithDescription("Read the smartbar guide. Omit topic for the main guide."),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g. search, config)")),
		),
		Handler:   readGuide,
		Storeless: true,
	}
}

// readGuide handles smartbar_guide tool calls.
func readGuide(_ context.Context, _ extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := ""
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		topic, _ = args["topic"].(string)
	}

	content, err := guide.Get(topic)

	log.Event("mcp:guide", "read").Detail("topic", topic).Write(err)

	if err != nil {
		topics, listErr := guide.List()
		if listErr != nil {
			return nil, fmt.Errorf("listing guides: %w", listErr)
		}
		return mcp.NewToolResultError(fmt.Sprintf("%v (available topics: %s)", err, strings.Join(topics, ", "))), nil
	}
	return mcp.NewToolResultText(content), nil
}
