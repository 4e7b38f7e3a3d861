// Package repo provides workspace initialisation and discovery for smartbar.
//
// A smartbar workspace is a .smartbar directory holding two SQLite databases:
// content.db, the system of record for entities and accounts, and search.db,
// the derived full-text index. This package handles:
//   - Initialising new workspaces (creating .smartbar/ and both databases)
//   - Discovering existing workspaces by walking up the directory tree
//   - Controlling git visibility via .gitignore (the index is always ignored)
//
// Discovery mirrors git: starting from a directory, walk up until a
// .smartbar directory containing content.db is found, or the filesystem root
// is reached.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/index"
)

const (
	// Dir is the directory name for the smartbar workspace.
	Dir = ".smartbar"
	// ContentFile is the content database filename.
	ContentFile = "content.db"
	// IndexFile is the search index database filename.
	IndexFile = "search.db"
)

// ErrNotInitialised is returned when no smartbar workspace is found.
var ErrNotInitialised = errors.New("smartbar not initialised (run 'smartbar init')")

// Workspace locates the files of one smartbar workspace.
type Workspace struct {
	Dir         string `json:"dir"`          // .smartbar directory
	ContentPath string `json:"content_path"` // content.db
	IndexPath   string `json:"index_path"`   // search.db
	ConfigPath  string `json:"config_path"`  // local config.yaml (may not exist)
}

// At returns the workspace rooted at the given .smartbar directory.
func At(dir string) Workspace {
	return Workspace{
		Dir:         dir,
		ContentPath: filepath.Join(dir, ContentFile),
		IndexPath:   filepath.Join(dir, IndexFile),
		ConfigPath:  filepath.Join(dir, "config.yaml"),
	}
}

// Init initialises a new workspace under dir (empty for the current
// directory) and returns it.
//
// Init does not write config; settings are managed with "smartbar config".
// With force an existing workspace is reset: both databases are removed and
// recreated empty. With local the content database is also kept out of git.
func Init(force, local bool, dir string) (Workspace, error) {
	if dir == "" {
		dir = "."
	}
	ws := At(filepath.Join(dir, Dir))

	if _, err := os.Stat(ws.ContentPath); err == nil {
		if !force {
			return ws, fmt.Errorf("workspace %s already exists (use --force to reinitialise)", ws.Dir)
		}
		for _, p := range []string{ws.ContentPath, ws.IndexPath} {
			if err := removeDB(p); err != nil {
				return ws, err
			}
		}
	}

	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return ws, fmt.Errorf("create directory: %w", err)
	}

	cs, err := content.Open(ws.ContentPath)
	if err != nil {
		return ws, fmt.Errorf("open content store: %w", err)
	}
	defer cs.Close()
	if err := cs.Init(); err != nil {
		return ws, fmt.Errorf("init content store: %w", err)
	}

	// index.Open applies its own schema.
	is, err := index.Open(ws.IndexPath)
	if err != nil {
		return ws, fmt.Errorf("open index: %w", err)
	}
	if err := is.Close(); err != nil {
		return ws, fmt.Errorf("close index: %w", err)
	}

	if err := writeGitignore(ws.Dir); err != nil {
		return ws, fmt.Errorf("write gitignore: %w", err)
	}
	if local {
		if err := Ignore(ws.Dir, ContentFile); err != nil {
			return ws, fmt.Errorf("ignore content database: %w", err)
		}
	}
	return ws, nil
}

// removeDB deletes a database file and its WAL sidecars.
func removeDB(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// Discover walks up from start (empty for the working directory) looking
// for a workspace.
func Discover(start string) (Workspace, error) {
	dir := start
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Workspace{}, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		ws := At(filepath.Join(dir, Dir))
		if _, err := os.Stat(ws.ContentPath); err == nil {
			return ws, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Workspace{}, ErrNotInitialised
		}
		dir = parent
	}
}
