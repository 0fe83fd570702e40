// Package watch reports filesystem changes in a workspace, coalesced into
// single notifications.
package watch

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/thiagokokada/gitfs-go/internal/debounce"
)

const DefaultDelay = 350 * time.Millisecond

// Watcher watches the workspace root, its .git directory and any directory
// passed to Add. It is safe for concurrent use.
type Watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	debounce *debounce.Debouncer
	watched  map[string]struct{}
	changes  chan struct{}
	wg       sync.WaitGroup
	closed   bool
}

// New starts watching root. Bursts of events closer than delay produce one
// value on Changes.
func New(root string, delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:      fsw,
		watched: make(map[string]struct{}),
		changes: make(chan struct{}, 1),
	}
	w.debounce = debounce.New(delay, w.notify)
	for path := range watchPaths(root) {
		if err := w.Add(path); err != nil {
			return nil, errors.Join(err, fsw.Close())
		}
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes delivers one value per settled burst of events. Values are
// dropped while a previous one is still unread.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Add watches dir as well. Adding a directory twice is a no-op.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("watch: watcher is closed")
	}
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	slog.Debug("adding path to FS watcher", slog.String("path", dir))
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	w.debounce.Stop()
	err := w.fs.Close()
	w.wg.Wait()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.debounce.Trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return !shouldIgnorePath(ev.Name)
}

// shouldIgnorePath filters git's transient lock files.
func shouldIgnorePath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".ipc":
		return true
	}
	return false
}

// watchPaths yields root and, when present, its .git directory.
func watchPaths(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if root == "" {
			return
		}
		if !yield(root) {
			return
		}
		gitDir := filepath.Join(root, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			yield(gitDir)
		}
	}
}
