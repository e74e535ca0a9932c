package questionbank

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the bank when files in its directory change, until ctx is
// cancelled. Bursts of events are debounced into one reload; a failed reload
// keeps the previous banks.
func (b *Bank) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(b.dir); err != nil {
		return fmt.Errorf("watch %s: %w", b.dir, err)
	}
	b.logger.Info("Watching question bank", "dir", b.dir)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isBankFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(b.debounce)
			} else {
				timer.Reset(b.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("Question bank watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := b.Reload(); err != nil {
				b.logger.Warn("Question bank reload failed, keeping previous version", "error", err)
				continue
			}
			b.logger.Info("Question bank reloaded", "roles", len(b.Roles()))
		}
	}
}
