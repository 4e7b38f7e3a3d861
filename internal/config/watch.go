package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a burst of file events must settle before the
// file is reloaded.
const WatchDebounce = 100 * time.Millisecond

// Watch reloads the config file at path whenever it changes and hands the
// result to apply, until ctx is done. The parent directory is watched so an
// editor may replace the file or create it later. A file that fails to load
// or validate goes to onErr and the previous settings stay in effect.
func Watch(ctx context.Context, path string, scope Scope, apply func(*Config), onErr func(error)) error {
	if path == "" {
		return ErrNoConfigPath
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()

		fire := make(chan struct{}, 1)
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || ev.Op == fsnotify.Chmod {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(WatchDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				} else {
					timer.Reset(WatchDebounce)
				}

			case <-fire:
				cfg, err := LoadFile(path, scope)
				if err != nil {
					onErr(err)
					continue
				}
				apply(cfg)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onErr(err)
			}
		}
	}()
	return nil
}
