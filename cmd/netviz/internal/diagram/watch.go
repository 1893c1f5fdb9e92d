package diagram

import (
	"context"
	"path/filepath"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"

	"github.com/recera/netviz/pkg/debug"
)

// Debounce is how long Watch waits for writes to settle before reloading.
const Debounce = 100 * time.Millisecond

// Watch reloads the store whenever its file changes and then calls onChange.
// It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(s.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(Debounce)
			} else {
				timer.Reset(Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				debug.Warn(ctx, "diagram reload failed", slog.Error(err))
				continue
			}
			debug.Info(ctx, "diagram reloaded", slog.F("path", s.path), slog.F("diagrams", len(s.IDs())))
			if onChange != nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Warn(ctx, "watcher error", slog.Error(err))
		}
	}
}
