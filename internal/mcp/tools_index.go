// tools_index.go implements the MCP tools that keep the index in sync:
// index, save, remove, reindex, import and export.

package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/exporter"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/service"
)

const errIDRequired = "id must be a positive integer"

// index handles smartbar_index tool calls.
func (h *handlers) index(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	id := getID(req)
	if id == 0 {
		return mcp.NewToolResultError(errIDRequired), nil
	}

	indexed, err := svc.IndexEntity(ctx, id)

	log.Event("mcp:index", "index").Target(strconv.FormatInt(id, 10)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"id": id, "indexed": indexed})
}

// save handles smartbar_save tool calls.
func (h *handlers) save(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	id := getID(req)
	if id == 0 {
		return mcp.NewToolResultError(errIDRequired), nil
	}
	flags := service.SaveFlags{
		Autosave: getBool(req, "autosave", false),
		Revision: getBool(req, "revision", false),
	}

	indexed, err := svc.OnSave(ctx, id, flags)

	log.Event("mcp:save", "index").Target(strconv.FormatInt(id, 10)).
		Detail("autosave", flags.Autosave).Detail("revision", flags.Revision).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"id": id, "indexed": indexed})
}

// remove handles smartbar_remove tool calls.
func (h *handlers) remove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	id := getID(req)
	if id == 0 {
		return mcp.NewToolResultError(errIDRequired), nil
	}
	kind := content.Kind(getString(req, "kind", ""))
	if kind != "" && !kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported kind %q", kind)), nil
	}

	removed, err := svc.RemoveFromIndex(ctx, id, kind)

	log.Event("mcp:remove", "remove").Target(strconv.FormatInt(id, 10)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"id": id, "removed": removed})
}

// reindex handles smartbar_reindex tool calls.
func (h *handlers) reindex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}

	result, err := svc.ReindexAll(ctx, nil)

	log.Event("mcp:reindex", "reindex").Count(result.Count).Detail("failed", result.Failed).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// importFixture handles smartbar_import tool calls.
func (h *handlers) importFixture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}
	data, err := req.RequireString("yaml")
	if err != nil {
		return mcp.NewToolResultError("yaml is required"), nil //nolint:nilerr
	}

	f, err := content.ParseFixture(strings.NewReader(data))
	if err != nil {
		log.Event("mcp:import", "import").Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := svc.Import(ctx, f)

	log.Event("mcp:import", "import").Count(len(result.Entities)).Detail("accounts", result.Accounts).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := map[string]any{"imported": result}
	if getBool(req, "reindex", false) {
		rebuilt, err := svc.ReindexAll(ctx, nil)
		log.Event("mcp:import", "reindex").Count(rebuilt.Count).Write(err)
		if err != nil {
			return mcp.NewToolResultError("import succeeded but reindex failed: " + err.Error()), nil
		}
		out["reindexed"] = rebuilt
	}
	return jsonResult(out)
}

// exportFixture handles smartbar_export tool calls.
func (h *handlers) exportFixture(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.requireInit()
	if res != nil {
		return res, nil
	}

	var b strings.Builder
	result, err := exporter.Run(ctx, &b, svc, "", exporter.Options{})

	log.Event("mcp:export", "export").Count(result.Entities).Detail("accounts", result.Accounts).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}
