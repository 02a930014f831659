// Package watcher re-processes notebooks as they change on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher debounces filesystem events on notebook files and hands settled
// paths to a processing callback. The pipeline is idempotent and the writer
// skips byte-identical rewrites, so events triggered by our own writes die
// out after one pass.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	process  func(path string) error
}

// New creates a watcher invoking process for every settled notebook change.
func New(process func(path string) error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, debounce: DefaultDebounce, process: process}, nil
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Add watches dir and every subdirectory the crawler would visit.
func (w *Watcher) Add(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == dir {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run blocks dispatching events until the context is canceled or the
// underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]time.Time)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directories join the watch set.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
					continue
				}
			}
			if !wantsEvent(ev) {
				continue
			}
			pending[ev.Name] = time.Now().Add(w.debounce)
			timer.Reset(w.debounce)

		case <-timer.C:
			now := time.Now()
			rearm := false
			for path, due := range pending {
				if due.After(now) {
					rearm = true
					continue
				}
				delete(pending, path)
				if err := w.process(path); err != nil {
					fmt.Printf("⚠️  %s: %v\n", path, err)
				}
			}
			if rearm {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return err

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func wantsEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return false
	}
	if !strings.HasSuffix(ev.Name, ".ipynb") {
		return false
	}
	// Checkpoint copies and our own temp files are not inputs.
	if strings.Contains(ev.Name, ".ipynb_checkpoints") {
		return false
	}
	return !strings.HasPrefix(filepath.Base(ev.Name), ".")
}
