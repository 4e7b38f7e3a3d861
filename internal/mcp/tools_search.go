// tools_search.go implements the read-side MCP tools: search, stats and
// settings.

package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/search"
)

// search handles smartbar_search tool calls.
func (h *handlers) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}

	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil //nolint:nilerr
	}
	actor := int64(getInt(req, "actor", 0))
	if actor < 0 {
		return mcp.NewToolResultError("actor must be a non-negative account id"), nil
	}
	limit := getInt(req, "limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be >= 0"), nil
	}

	var types []content.SearchType
	if raw := getStrings(req, "types"); raw != nil {
		types = content.ParseTypes(raw)
	}

	hits, err := svc.Search(ctx, actor, query, types, limit)

	log.Event("mcp:search", "search").Actor(actor).Detail("query", query).Count(len(hits)).Write(err)

	if errors.Is(err, search.ErrForbidden) {
		return mcp.NewToolResultError("account may not search"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	return jsonResult(hits)
}

// stats handles smartbar_stats tool calls.
func (h *handlers) stats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	st := svc.Stats(ctx)
	log.Event("mcp:stats", "stats").Count(st.Documents).Write(nil)
	return jsonResult(st)
}

// settings handles smartbar_settings tool calls.
func (h *handlers) settings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	return jsonResult(svc.Settings())
}
