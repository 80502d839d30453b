package view

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/diffstream/internal/document"
	"github.com/dshills/diffstream/internal/event"
)

// Errors returned by workspace operations.
var (
	ErrViewNotFound = errors.New("view not found")
)

// DiffSpec describes a two-pane diff presentation: the read-only before
// content (left) and the live document (right).
type DiffSpec struct {
	// Title is the diff view's tab title.
	Title string

	// BeforeContent is the left pane, supplied out-of-band.
	BeforeContent string

	// Doc is the live right-pane document.
	Doc *document.Document

	// Options control presentation.
	Options ShowOptions
}

// Workspace tracks the open views of one host window and publishes view
// lifecycle events on the bus. It is safe for concurrent use.
type Workspace struct {
	mu     sync.Mutex
	bus    *event.Bus
	views  []*View
	active *View

	// waiters holds channels waiting for a view on a path to appear.
	waiters map[string][]chan *View
}

// NewWorkspace creates an empty workspace publishing on the given bus.
func NewWorkspace(bus *event.Bus) *Workspace {
	return &Workspace{
		bus:     bus,
		waiters: make(map[string][]chan *View),
	}
}

// ShowDiff opens a two-pane diff view for the spec's document, or reuses an
// existing diff view on the same path, updating its before content and title.
// Unless PreserveFocus is set, the view becomes active.
func (w *Workspace) ShowDiff(spec DiffSpec) *View {
	w.mu.Lock()

	var v *View
	for _, existing := range w.views {
		if existing.isDiff && existing.Path() == spec.Doc.Path() {
			v = existing
			break
		}
	}

	created := false
	if v == nil {
		v = newView(spec.Title, spec.Doc, spec.Options)
		v.isDiff = true
		w.views = append(w.views, v)
		created = true
	}

	v.mu.Lock()
	v.title = spec.Title
	v.beforeContent = spec.BeforeContent
	v.mu.Unlock()

	focusTaken := false
	if !spec.Options.PreserveFocus {
		if w.active != v {
			w.active = v
			focusTaken = true
		}
	}

	waiting := w.waiters[v.Path()]
	delete(w.waiters, v.Path())
	w.mu.Unlock()

	for _, ch := range waiting {
		ch <- v
	}

	if created {
		w.bus.Publish(event.Event{Topic: event.TopicTabsChanged, Payload: v.ID()})
	}
	if focusTaken {
		w.bus.Publish(event.Event{Topic: event.TopicActiveViewChanged, Payload: v.ID()})
	}

	return v
}

// Show opens a plain (non-diff) view on a document, or reuses one.
func (w *Workspace) Show(doc *document.Document, opts ShowOptions) *View {
	w.mu.Lock()

	var v *View
	for _, existing := range w.views {
		if !existing.isDiff && existing.Path() == doc.Path() {
			v = existing
			break
		}
	}

	created := false
	if v == nil {
		v = newView(doc.Path(), doc, opts)
		w.views = append(w.views, v)
		created = true
	}

	focusTaken := false
	if !opts.PreserveFocus && w.active != v {
		w.active = v
		focusTaken = true
	}
	w.mu.Unlock()

	if created {
		w.bus.Publish(event.Event{Topic: event.TopicTabsChanged, Payload: v.ID()})
	}
	if focusTaken {
		w.bus.Publish(event.Event{Topic: event.TopicActiveViewChanged, Payload: v.ID()})
	}

	return v
}

// WaitForView returns a view on the path, waiting until one is shown or the
// context's deadline elapses. The open-view wait is bounded by the caller's
// deadline; there is no retry here.
func (w *Workspace) WaitForView(ctx context.Context, path string) (*View, error) {
	w.mu.Lock()
	for _, v := range w.views {
		if v.Path() == path && !v.IsClosed() {
			w.mu.Unlock()
			return v, nil
		}
	}

	ch := make(chan *View, 1)
	w.waiters[path] = append(w.waiters[path], ch)
	w.mu.Unlock()

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		w.mu.Lock()
		waiting := w.waiters[path]
		for i, waiter := range waiting {
			if waiter == ch {
				w.waiters[path] = append(waiting[:i], waiting[i+1:]...)
				break
			}
		}
		w.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Get returns a view by ID.
func (w *Workspace) Get(id string) (*View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, v := range w.views {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

// ViewsForPath returns all open views on a path.
func (w *Workspace) ViewsForPath(path string) []*View {
	w.mu.Lock()
	defer w.mu.Unlock()

	var result []*View
	for _, v := range w.views {
		if v.Path() == path {
			result = append(result, v)
		}
	}
	return result
}

// HasViewForPath returns true if any open view shows the path.
func (w *Workspace) HasViewForPath(path string) bool {
	return len(w.ViewsForPath(path)) > 0
}

// Active returns the currently active view, if any.
func (w *Workspace) Active() (*View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active, w.active != nil
}

// Activate makes a view active, publishing an active-view change.
func (w *Workspace) Activate(id string) error {
	w.mu.Lock()
	var v *View
	for _, existing := range w.views {
		if existing.ID() == id {
			v = existing
			break
		}
	}
	if v == nil {
		w.mu.Unlock()
		return ErrViewNotFound
	}
	changed := w.active != v
	w.active = v
	w.mu.Unlock()

	if changed {
		w.bus.Publish(event.Event{Topic: event.TopicActiveViewChanged, Payload: id})
	}
	return nil
}

// ChangeSelection records a selection change in a view and publishes it.
// The selection itself is host state; the engine only cares that it moved.
func (w *Workspace) ChangeSelection(id string) error {
	if _, ok := w.Get(id); !ok {
		return ErrViewNotFound
	}
	w.bus.Publish(event.Event{Topic: event.TopicSelectionChanged, Payload: id})
	return nil
}

// NotifyLayoutChanged publishes a tab-group layout change.
func (w *Workspace) NotifyLayoutChanged() {
	w.bus.Publish(event.Event{Topic: event.TopicLayoutChanged})
}

// Close closes a view. A view with unsaved modifications is skipped (returns
// false) so the host never has to raise a save-confirmation prompt; the user
// resolves it manually.
func (w *Workspace) Close(id string) bool {
	w.mu.Lock()

	idx := -1
	for i, v := range w.views {
		if v.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return false
	}

	v := w.views[idx]
	if v.IsDirty() {
		w.mu.Unlock()
		return false
	}

	w.views = append(w.views[:idx], w.views[idx+1:]...)
	v.markClosed()
	if w.active == v {
		w.active = nil
		if len(w.views) > 0 {
			w.active = w.views[len(w.views)-1]
		}
	}
	w.mu.Unlock()

	w.bus.Publish(event.Event{Topic: event.TopicTabsChanged, Payload: id})
	return true
}

// Count returns the number of open views.
func (w *Workspace) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.views)
}
