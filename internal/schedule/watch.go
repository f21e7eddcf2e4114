package schedule

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch emits a value on the returned channel whenever the file at path is
// written, created, renamed or removed. Bursts are coalesced into one signal.
// The parent directory is watched rather than the file so editors that save by
// rename keep being observed. The channel closes when ctx is done.
func Watch(ctx context.Context, path string) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("schedule: resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("schedule: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("schedule: watch %s: %w", filepath.Dir(abs), err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		const settle = 100 * time.Millisecond
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("schedule: watcher: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != abs {
					continue
				}
				if pending == nil {
					pending = time.After(settle)
				}
			case <-pending:
				pending = nil
				select {
				case changes <- struct{}{}:
				default:
					// a signal is already queued
				}
			}
		}
	}()
	return changes, nil
}
