// Package mcp implements the Model Context Protocol server, exposing the
// smartbar engine to LLMs. Assistants can index entities, run palette
// searches as a given account and inspect or change settings.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/engine"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/logger"
	"github.com/jpl-au/smartbar/internal/repo"
	"github.com/jpl-au/smartbar/internal/service"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrNotInitialised is returned by tools when no workspace exists yet.
// The LLM should call smartbar_init before using other tools.
const ErrNotInitialised = "workspace not initialised - call smartbar_init first"

// Serve starts the MCP server over stdio for the workspace found from dir
// (empty for the working directory).
//
// The server starts even if no workspace exists, so an LLM can call
// smartbar_init instead of failing with an opaque error.
func Serve(dir string) error {
	h, err := open(dir)
	if err != nil {
		return err
	}
	defer h.close()

	s := NewServer(h)
	h.log.Info("smartbar MCP server ready", zap.String("version", Version), zap.String("transport", "stdio"))

	err = server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		h.log.Info("server stopped")
		return nil
	}
	return err
}

// open builds the handlers, opening the workspace if there is one.
func open(dir string) (*handlers, error) {
	ws, discoverErr := repo.Discover(dir)
	local := config.LocalPath()
	if discoverErr == nil {
		local = ws.ConfigPath
	}
	cfg, err := config.LoadAt(local)
	if err != nil {
		return nil, err
	}
	// stdout carries JSON-RPC; logger.New always writes to stderr.
	l, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	h := &handlers{dir: dir, log: l}
	if discoverErr != nil {
		if !errors.Is(discoverErr, repo.ErrNotInitialised) {
			return nil, discoverErr
		}
		l.Info("smartbar not initialised, starting in uninitialised mode - call smartbar_init to create a workspace")
		return h, nil
	}

	eng, err := engine.New(cfg, engine.WithWorkspace(ws), engine.WithLogger(l))
	if err != nil {
		l.Error("failed to open workspace", zap.Error(err))
		return nil, err
	}
	log.SetProject(ws.Dir)
	h.set(eng, ws, cfg)
	return h, nil
}

// reloader is implemented by services that can apply new settings in place.
type reloader interface {
	Reload(cfg *config.Config) error
}

// handlers provides MCP request handlers with access to the engine.
// The svc field is nil until a workspace exists.
type handlers struct {
	dir string
	log *zap.Logger

	mu  sync.RWMutex
	svc service.Service
	ws  repo.Workspace
	cfg *config.Config
}

func (h *handlers) set(svc service.Service, ws repo.Workspace, cfg *config.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.svc, h.ws, h.cfg = svc, ws, cfg
}

func (h *handlers) service() service.Service {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.svc
}

func (h *handlers) close() {
	if svc := h.service(); svc != nil {
		if err := svc.Close(); err != nil {
			h.log.Warn("closing engine", zap.Error(err))
		}
	}
	_ = h.log.Sync()
}

// requireInit returns the service, or an error result if the workspace is
// not initialised.
func (h *handlers) requireInit() (service.Service, *mcp.CallToolResult) {
	svc := h.service()
	if svc == nil {
		return nil, mcp.NewToolResultError(ErrNotInitialised)
	}
	return svc, nil
}

// extensionContext returns a Context over the open engine, or nil.
func (h *handlers) extensionContext() extension.Context {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.svc == nil {
		return nil
	}
	return extension.NewContext(h.svc, h.ws, h.cfg)
}

// NewServer creates the MCP server with every built-in and extension tool
// registered against h.
func NewServer(h *handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"smartbar",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)
	registerResources(s, h)
	registerTools(s, h)
	registerExtensionTools(s, h)
	return s
}

// registerTools exposes the engine operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	// Init - works without an existing workspace
	s.AddTool(
		mcp.NewTool("smartbar_init",
			mcp.WithDescription("Initialise a smartbar workspace. Call this first if other tools return 'workspace not initialised'."),
			mcp.WithBoolean("local", mcp.Description("If true, the content database is gitignored (not committed to version control)")),
		),
		h.initWorkspace,
	)

	s.AddTool(
		mcp.NewTool("smartbar_search",
			mcp.WithDescription("Run a command palette search as an account. Results are ranked, filtered by the account's permissions and grouped Product, Post, Page, Media, User, Menu."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text; the last word is prefix-matched")),
			mcp.WithNumber("actor", mcp.Required(), mcp.Description("Account id to search as (0 is an anonymous visitor)")),
			mcp.WithArray("types", mcp.Description("Search types: posts, pages, media, users, products (default: configured types)"), mcp.WithStringItems()),
			mcp.WithNumber("limit", mcp.Description("Maximum hits (default: configured limit)")),
		),
		h.search,
	)

	s.AddTool(
		mcp.NewTool("smartbar_index",
			mcp.WithDescription("Index one entity by id, replacing its previous document"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
		),
		h.index,
	)

	s.AddTool(
		mcp.NewTool("smartbar_save",
			mcp.WithDescription("Run the save hook for an entity. Autosaves and revisions leave the index alone."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
			mcp.WithBoolean("autosave", mcp.Description("The save was an autosave")),
			mcp.WithBoolean("revision", mcp.Description("The saved entity is a revision")),
		),
		h.save,
	)

	s.AddTool(
		mcp.NewTool("smartbar_remove",
			mcp.WithDescription("Remove an entity's document from the index"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Entity id")),
			mcp.WithString("kind", mcp.Description("Entity kind (post, page, attachment, product); default: whatever it was indexed as")),
		),
		h.remove,
	)

	s.AddTool(
		mcp.NewTool("smartbar_reindex",
			mcp.WithDescription("Clear the index and rebuild it from content for the configured search types"),
		),
		h.reindex,
	)

	s.AddTool(
		mcp.NewTool("smartbar_import",
			mcp.WithDescription("Import entities and accounts from a YAML fixture into the content store"),
			mcp.WithString("yaml", mcp.Required(), mcp.Description("Fixture with 'accounts' and 'entities' lists")),
			mcp.WithBoolean("reindex", mcp.Description("Rebuild the index after importing")),
		),
		h.importFixture,
	)

	s.AddTool(
		mcp.NewTool("smartbar_export",
			mcp.WithDescription("Export every entity and account as a YAML fixture that smartbar_import accepts"),
		),
		h.exportFixture,
	)

	s.AddTool(
		mcp.NewTool("smartbar_stats",
			mcp.WithDescription("Show index document counts by kind and index size"),
		),
		h.stats,
	)

	s.AddTool(
		mcp.NewTool("smartbar_settings",
			mcp.WithDescription("Show the palette keyboard shortcut and search types"),
		),
		h.settings,
	)

	s.AddTool(
		mcp.NewTool("smartbar_config_get",
			mcp.WithDescription("Get a configuration value, or all values if no key is given"),
			mcp.WithString("key", mcp.Description("Config key (e.g. shortcut, search_types, search.limit)")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("smartbar_config_set",
			mcp.WithDescription("Set a configuration value and apply it to the running server"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Config key")),
			mcp.WithString("value", mcp.Required(), mcp.Description("New value")),
		),
		h.configSet,
	)
}

// registerExtensionTools adds the tools contributed by extensions.
func registerExtensionTools(s *server.MCPServer, h *handlers) {
	for _, ext := range extension.All() {
		for _, t := range ext.MCPTools() {
			s.AddTool(t.Tool, h.extensionHandler(ext.Name(), t))
		}
	}
}

func (h *handlers) extensionHandler(name string, t extension.MCPTool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		extCtx := h.extensionContext()
		if extCtx == nil && !t.Storeless {
			return mcp.NewToolResultError(ErrNotInitialised), nil
		}
		res, err := t.Handler(ctx, extCtx, req)
		if err != nil {
			return nil, fmt.Errorf("extension %s: %w", name, err)
		}
		return res, nil
	}
}
