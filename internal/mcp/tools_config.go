// tools_config.go implements MCP tools for configuration management.
//
// A successful set is applied to the running engine with Reload, so new
// settings take effect without restarting the server.

package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/log"
)

// loadConfig reads the configuration for the open workspace, or the
// working directory before init.
func (h *handlers) loadConfig() (*config.Config, error) {
	h.mu.RLock()
	local := h.ws.ConfigPath
	h.mu.RUnlock()
	if local == "" {
		local = config.LocalPath()
	}
	return config.LoadAt(local)
}

// configGet handles smartbar_config_get tool calls.
func (h *handlers) configGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	cfg, err := h.loadConfig()
	if err != nil {
		log.Event("mcp:config_get", "get").Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	key := getString(req, "key", "")
	if key == "" {
		log.Event("mcp:config_get", "list").Write(nil)
		return jsonResult(cfg.All())
	}

	v, err := cfg.Get(key)

	log.Event("mcp:config_get", "get").Detail("key", key).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]string{key: v})
}

// configSet handles smartbar_config_set tool calls.
func (h *handlers) configSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) { //nolint:revive // ctx for future use
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}

	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value is required"), nil //nolint:nilerr
	}

	cfg, err := h.loadConfig()
	if err != nil {
		log.Event("mcp:config_set", "set").Detail("key", key).Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := cfg.Set(key, value); err != nil {
		log.Event("mcp:config_set", "set").Detail("key", key).Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	err = cfg.Save()

	// Values are not logged.
	log.Event("mcp:config_set", "set").Detail("key", key).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.mu.Lock()
	if h.svc != nil {
		h.cfg = cfg
	}
	r, ok := h.svc.(reloader)
	h.mu.Unlock()

	if ok {
		if err := r.Reload(cfg); err != nil {
			log.Event("mcp:config_set", "reload").Write(err)
			return mcp.NewToolResultText(fmt.Sprintf("%s = %s (warning: reload failed, restart server to apply: %v)", key, value, err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s = %s", key, value)), nil
}
