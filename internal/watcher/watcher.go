// Package watcher detects external on-disk changes to files the diff engine
// has open, so a host can tell when the session file was edited outside the
// editor. Events are debounced to coalesce rapid write bursts and published
// on the engine's event bus.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/diffstream/internal/event"
)

// Errors returned by watcher operations.
var (
	ErrClosed          = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
)

// FileEvent is the payload published on event.TopicFileChanged.
type FileEvent struct {
	// Path is the absolute path of the changed file.
	Path string

	// Removed is true when the file was deleted or renamed away.
	Removed bool
}

// Config holds watcher options.
type Config struct {
	// DebounceDelay is the window within which events for one path are
	// coalesced. Default: 100ms.
	DebounceDelay time.Duration
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounceDelay sets the debounce window.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) {
		c.DebounceDelay = d
	}
}

// Watcher publishes debounced file-change events for watched files.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	bus     *event.Bus
	config  Config
	watched map[string]bool
	pending map[string]*time.Timer
	closed  bool
	done    chan struct{}
}

// New creates a watcher publishing on the given bus.
func New(bus *event.Bus, opts ...Option) (*Watcher, error) {
	config := Config{DebounceDelay: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(&config)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		bus:     bus,
		config:  config,
		watched: make(map[string]bool),
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}

	go w.processLoop()
	return w, nil
}

// Watch starts watching a single file. The file's directory is watched so
// rename-and-replace saves are still observed.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.watched[abs] {
		return ErrAlreadyWatching
	}

	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.watched[abs] = true
	return nil
}

// Unwatch stops watching a file.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, abs)
	if timer, ok := w.pending[abs]; ok {
		timer.Stop()
		delete(w.pending, abs)
	}
}

// IsWatching returns true if the file is being watched.
func (w *Watcher) IsWatching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watched[abs]
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer close(w.done)

	for {
		select {
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(evt)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable for the engine; the
			// session keeps running on its in-memory state.
		}
	}
}

// handleEvent debounces and publishes an event for a watched file.
func (w *Watcher) handleEvent(evt fsnotify.Event) {
	path := filepath.Clean(evt.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.watched[path] {
		return
	}

	removed := evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename)

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.config.DebounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()

		if closed {
			return
		}
		w.bus.Publish(event.Event{
			Topic:   event.TopicFileChanged,
			Payload: FileEvent{Path: path, Removed: removed},
		})
	})
}
