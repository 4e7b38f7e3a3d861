// serve.go implements the "smartbar serve" command for the HTTP API.
//
// Serve manages its own engine lifecycle instead of using the shared one
// from the root command: it runs until interrupted, and it watches the
// active config file so settings changes apply without a restart.

package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/cmd"
	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/engine"
	"github.com/jpl-au/smartbar/internal/httpapi"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/logger"
	"github.com/jpl-au/smartbar/internal/repo"
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve the search engine over HTTP for the palette front end and the
host CMS save/delete hooks.

  GET    /search?q=...&types=...&limit=...   (X-Smartbar-Actor: <account id>)
  GET    /settings
  GET    /stats
  POST   /reindex
  PUT    /entities/{id}/index
  POST   /entities/{id}/save
  DELETE /entities/{id}/index?kind=...
  GET    /health, /metrics

With server.api_keys configured, every route but /health and /metrics needs
"Authorization: Bearer <key>". Edits to the config file are applied live.`,
		RunE: runServe,
	}
	c.Flags().String(extension.FlagAddr, "", "Listen address (default: server.addr or "+config.DefaultServerAddr+")")
	return c
}

func runServe(c *cobra.Command, _ []string) error {
	ws, err := repo.Discover(cmd.Dir())
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	cfg, err := config.LoadAt(ws.ConfigPath)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	l, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	defer func() { _ = l.Sync() }()

	eng, err := engine.New(cfg, engine.WithWorkspace(ws), engine.WithLogger(l))
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("opening workspace: %w", err))
	}
	defer eng.Close()
	log.SetProject(ws.Dir)

	addr, _ := c.Flags().GetString(extension.FlagAddr)
	if addr == "" {
		addr = cfg.ServerAddr()
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watchConfig(ctx, eng, cfg, l); err != nil {
		l.Warn("config changes will need a restart", zap.Error(err))
	}

	srv := httpapi.New(eng,
		httpapi.WithAPIKeys(cfg.Server.APIKeys),
		httpapi.WithLogger(l),
	)
	err = srv.ListenAndServe(ctx, addr)
	log.Event("core:serve", "serve").Target(addr).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("serve: %w", err))
	}
	return nil
}

// watchConfig reloads the engine whenever the active config file changes.
// API keys and the listen address are read once at startup.
func watchConfig(ctx context.Context, eng *engine.Engine, cfg *config.Config, l *zap.Logger) error {
	path := cfg.Path()
	if path == "" {
		path = config.GlobalPath()
	}
	return config.Watch(ctx, path, cfg.Scope(),
		func(next *config.Config) {
			err := eng.Reload(next)
			log.Event("core:serve", "reload").Target(next.Path()).Write(err)
			if err != nil {
				l.Error("config reload failed", zap.Error(err))
			}
		},
		func(err error) {
			l.Warn("config not reloaded", zap.String("path", path), zap.Error(err))
		},
	)
}
