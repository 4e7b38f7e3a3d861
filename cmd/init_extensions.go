/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Extensions register during init() but aren't initialised until the first
// command that needs the engine runs. The engine is created once and shared
// across all extensions via the Context.

package cmd

import (
	"fmt"
	"sync"

	"github.com/jpl-au/smartbar/extension"
	"github.com/jpl-au/smartbar/internal/config"
	"github.com/jpl-au/smartbar/internal/engine"
	"github.com/jpl-au/smartbar/internal/log"
	"github.com/jpl-au/smartbar/internal/repo"
)

// noStoreCommands lists commands that bypass automatic engine construction.
// Built from the bootstrap commands plus extension-declared storeless commands.
var noStoreCommands map[string]bool

// buildNoStoreCommands creates the set of commands that skip engine
// construction: bootstrap commands that must work before "smartbar init",
// and anything an extension declares through extension.Storeless.
func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		"init":       true,
		"guide":      true,
		"config":     true,
		"help":       true,
		"completion": true,
	}

	for _, ext := range extension.All() {
		if s, ok := ext.(extension.Storeless); ok {
			for _, name := range s.NoStoreCommands() {
				cmds[name] = true
			}
		}
	}

	return cmds
}

// Global extension context, created during initialisation.
var (
	extContext extension.Context
	extService *engine.Engine
	initOnce   sync.Once
	initErr    error
)

// initExtensions opens the workspace, builds the engine and injects it into
// extensions. It runs at most once per process.
func initExtensions() error {
	initOnce.Do(func() {
		ws, err := repo.Discover(Dir())
		if err != nil {
			initErr = err
			return
		}

		cfg, err := config.LoadAt(ws.ConfigPath)
		if err != nil {
			initErr = err
			return
		}

		eng, err := engine.New(cfg, engine.WithWorkspace(ws))
		if err != nil {
			initErr = fmt.Errorf("opening workspace: %w", err)
			return
		}
		extService = eng

		// Set project identifier for audit logging
		log.SetProject(ws.Dir)

		extContext = extension.NewContext(eng, ws, cfg)
		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}

		// Build noStoreCommands after all extensions are registered
		noStoreCommands = buildNoStoreCommands()
	})
}
