package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/threatstage/internal/alert"
	"github.com/ppiankov/threatstage/internal/config"
	"github.com/ppiankov/threatstage/internal/orchestrator"
)

// Reloader watches the config file and hot-swaps the alert webhook set on
// change. Backend endpoints and the listen address need a restart.
type Reloader struct {
	watcher *fsnotify.Watcher
	orc     *orchestrator.Orchestrator
	path    string
	logger  *slog.Logger
}

// NewReloader creates a file watcher for the given config path. A missing
// file is not an error; it just is not watched.
func NewReloader(orc *orchestrator.Orchestrator, path string, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := watcher.Add(path); err != nil {
				watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", path, err)
			}
		}
	}

	return &Reloader{
		watcher: watcher,
		orc:     orc,
		path:    path,
		logger:  logger,
	}, nil
}

// Run watches for file changes and reloads the alert config. Blocks until
// ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.reload(); err != nil {
						r.logger.Error("hot-reload failed", "error", err)
					} else {
						r.logger.Info("hot-reload: alert config reloaded")
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() error {
	cfg, err := config.Load(r.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.orc.SetAlerts(alert.NewDispatcher(cfg.Alerts))
	return nil
}
