package term

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"inlinechange/logger"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Add after Close
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports changes to individual files. It watches their parent
// directories so files replaced by rename (as most editors save) are still seen.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]bool
	closed  bool

	changes chan string
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher starts a watcher with no files
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		watcher: fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		changes: make(chan string, 64),
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts reporting changes to path
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Changes delivers the absolute path of each changed file
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops the watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.changes)
	return w.watcher.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	name := filepath.Clean(ev.Name)

	w.mu.Lock()
	tracked := w.files[name]
	w.mu.Unlock()
	if !tracked {
		return
	}

	select {
	case w.changes <- name:
	default:
		logger.Debug("watcher: dropping change to %s, queue full", name)
	}
}
