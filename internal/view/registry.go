package view

import "sync"

// Registry tracks, for one edit session, the views the session itself opened
// and whether the target document already had an open view before the
// session began. At close time, session-opened views are safe to close
// outright; a pre-existing view is reconciled instead of silently dropped.
type Registry struct {
	mu sync.Mutex

	// opened is the set of view IDs this session opened, in open order.
	opened []string
	known  map[string]bool

	// wasOpen records whether the target document was already open,
	// captured once at session start and immutable afterwards.
	wasOpen    bool
	wasOpenSet bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{known: make(map[string]bool)}
}

// RecordOpened adds a view ID opened by this session.
func (r *Registry) RecordOpened(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.known[id] {
		return
	}
	r.known[id] = true
	r.opened = append(r.opened, id)
}

// Opened returns the session-opened view IDs in open order.
func (r *Registry) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, len(r.opened))
	copy(ids, r.opened)
	return ids
}

// WasOpenedBySession returns true if this session opened the view.
func (r *Registry) WasOpenedBySession(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known[id]
}

// CaptureDocumentWasOpen records whether the target document was open before
// the session began. Only the first call takes effect.
func (r *Registry) CaptureDocumentWasOpen(open bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wasOpenSet {
		return
	}
	r.wasOpen = open
	r.wasOpenSet = true
}

// DocumentWasOpen returns the captured pre-session state.
func (r *Registry) DocumentWasOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wasOpen
}

// Reset clears the registry for the next session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.opened = nil
	r.known = make(map[string]bool)
	r.wasOpen = false
	r.wasOpenSet = false
}
