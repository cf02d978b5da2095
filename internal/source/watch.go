package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch signals on changed whenever the watched location is modified, until
// ctx is cancelled. It supplements the fingerprint polling: the scheduler
// treats a signal as "run the extraction cycle now" instead of waiting for
// the next tick.
//
// For a file location the parent directory is watched, so editors that save
// via rename are still caught. Signals are dropped rather than queued when
// the receiver is busy.
func Watch(ctx context.Context, location string, changed chan<- struct{}, log zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchPath := location
	if info, err := os.Stat(location); err != nil || !info.IsDir() {
		watchPath = filepath.Dir(location)
	}

	if err := watcher.Add(watchPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchPath, err)
	}

	log.Debug().Str("path", watchPath).Msg("watching context source")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			select {
			case changed <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}
