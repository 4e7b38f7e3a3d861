// tools_init.go implements the MCP tool for initialising a workspace.
//
// This tool works without an existing workspace, allowing LLMs to bootstrap
// smartbar. Other tools require initialisation first.

package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/engine"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/repo"
)

// initWorkspace handles smartbar_init tool calls.
func (h *handlers) initWorkspace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	if h.service() != nil {
		return mcp.NewToolResultError("workspace already initialised"), nil
	}

	local := getBool(req, "local", false)

	ws, err := repo.Init(false, local, h.dir)

	log.Event("mcp:init", "init").Target(ws.Dir).Detail("local", local).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg, err := config.LoadAt(ws.ConfigPath)
	if err != nil {
		return mcp.NewToolResultError("init succeeded but config failed to load: " + err.Error()), nil
	}
	eng, err := engine.New(cfg, engine.WithWorkspace(ws), engine.WithLogger(h.log))
	if err != nil {
		return mcp.NewToolResultError("init succeeded but failed to open workspace: " + err.Error()), nil
	}
	log.SetProject(ws.Dir)
	h.set(eng, ws, cfg)

	h.log.Info("workspace initialised", zap.String("dir", ws.Dir), zap.Bool("local", local))

	if local {
		return mcp.NewToolResultText("workspace initialised (local - content gitignored)"), nil
	}
	return mcp.NewToolResultText("workspace initialised"), nil
}
