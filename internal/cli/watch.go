package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher waits after the last write before it
// re-evaluates, so editors that write in several steps trigger one run.
const settle = 100 * time.Millisecond

// RunWatch evaluates the script at path and evaluates it again each time the
// file changes, until ctx is cancelled. Script errors are printed and the
// watcher keeps going.
func RunWatch(ctx context.Context, opts Options, path string, w io.Writer) error {
	logger := NewLogger(opts)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	run := func() {
		snap, err := evaluate(ctx, opts, path)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return
		}
		if err := printResult(w, opts, snap); err != nil {
			logger.Error("Failed to print result", "error", err)
		}
	}

	run()
	printSystemMessage(w, "Watching '%s' for changes...", path)

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
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("Change detected", "event", event.Op.String(), "path", event.Name)
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)
		case <-fire:
			fire = nil
			printSystemMessage(w, "Change detected in '%s'.", path)
			run()
		}
	}
}
