package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/technosupport/ts-sentinel/internal/classify"
)

// WatchThresholds monitors the config file and pushes changed density
// thresholds through apply. fsnotify is primary; a slow polling ticker runs
// alongside as a safety net for editors that replace rather than write.
func WatchThresholds(ctx context.Context, path string, apply func(classify.Thresholds) error, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if err := apply(cfg.Thresholds); err != nil {
			log.Warn("rejected reloaded thresholds", "error", err)
			return
		}
		log.Info("density thresholds reloaded", "medium", cfg.Thresholds.Medium,
			"high", cfg.Thresholds.High, "critical", cfg.Thresholds.Critical)
	}

	watcher, err := fsnotify.NewWatcher()
	usePolling := false
	if err != nil {
		log.Warn("fsnotify unavailable, falling back to polling", "error", err)
		usePolling = true
	} else if err := watcher.Add(path); err != nil {
		log.Warn("cannot watch config file, falling back to polling", "path", path, "error", err)
		usePolling = true
		watcher.Close()
	}

	if !usePolling {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						// editors often fire multiple events per save
						time.Sleep(100 * time.Millisecond)
						reload()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Warn("config watcher error", "error", err)
				}
			}
		}()
	}

	go func() {
		interval := 60 * time.Second
		if usePolling {
			interval = 10 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reload()
			}
		}
	}()
}
