// resources.go implements MCP resources for read-only engine state.
//
// Resources let a client load the palette settings or index stats as context
// without calling a tool.

package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	SettingsURI = "smartbar://settings"
	StatsURI    = "smartbar://stats"
)

// registerResources adds the settings and stats resources.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcp.NewResource(SettingsURI, "Settings",
			mcp.WithResourceDescription("Palette keyboard shortcut and search types"),
			mcp.WithMIMEType("application/json"),
		),
		h.readSettings,
	)

	s.AddResource(
		mcp.NewResource(StatsURI, "Index Stats",
			mcp.WithResourceDescription("Indexed document counts by kind and index size"),
			mcp.WithMIMEType("application/json"),
		),
		h.readStats,
	)
}

func (h *handlers) readSettings(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	svc := h.service()
	if svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}
	return jsonResource(req.Params.URI, svc.Settings())
}

func (h *handlers) readStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	svc := h.service()
	if svc == nil {
		return nil, errors.New(ErrNotInitialised)
	}
	return jsonResource(req.Params.URI, svc.Stats(ctx))
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
