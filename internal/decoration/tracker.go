// Package decoration tracks the visual line annotations of a streaming diff
// view: a faded overlay over lines not yet overwritten by the stream, and a
// marker on the line currently being written.
//
// Decorations are purely visual and are recreated per session; nothing here
// is persisted.
package decoration

import "sync"

// Tracker maintains the two line-range overlays for one open view.
// All methods are thread-safe.
type Tracker struct {
	mu sync.RWMutex

	// pendingFrom and pendingTo bound the faded overlay as [from, to).
	pendingFrom int
	pendingTo   int

	// activeLine is the line currently being written, -1 when unset.
	activeLine int

	// lineCount is the document's current line count, used to clamp the
	// active line into [0, lineCount).
	lineCount int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{activeLine: -1}
}

// SetLineCount records the document's line count. The active line is
// re-clamped against the new count.
func (t *Tracker) SetLineCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n < 0 {
		n = 0
	}
	t.lineCount = n
	t.clampLocked()
}

// SetPending sets the faded overlay to cover [from, to).
func (t *Tracker) SetPending(from, to int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if from < 0 {
		from = 0
	}
	if to < from {
		to = from
	}
	t.pendingFrom = from
	t.pendingTo = to
	t.clampLocked()
}

// AdvancePending shifts the overlay's start forward to from. Shifting
// backward is ignored; the stream only moves down the document.
func (t *Tracker) AdvancePending(from int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if from > t.pendingFrom {
		t.pendingFrom = from
	}
	t.clampLocked()
}

// SetActiveLine moves the active-line marker. The line is clamped into
// [0, lineCount) and the faded overlay is pushed past it so the two overlays
// stay disjoint.
func (t *Tracker) SetActiveLine(line int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if line < 0 {
		line = 0
	}
	if t.lineCount > 0 && line >= t.lineCount {
		line = t.lineCount - 1
	}
	if t.lineCount == 0 {
		line = 0
	}
	t.activeLine = line

	if t.pendingFrom <= line {
		t.pendingFrom = line + 1
	}
	t.clampLocked()
}

// Clear removes both overlays.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pendingFrom = 0
	t.pendingTo = 0
	t.activeLine = -1
}

// Snapshot returns the current overlay state for rendering.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		PendingFrom: t.pendingFrom,
		PendingTo:   t.pendingTo,
		ActiveLine:  t.activeLine,
	}
}

// clampLocked enforces the overlay invariants. Must hold the write lock.
func (t *Tracker) clampLocked() {
	if t.activeLine >= 0 && t.pendingFrom <= t.activeLine {
		t.pendingFrom = t.activeLine + 1
	}
	if t.pendingTo < t.pendingFrom {
		t.pendingTo = t.pendingFrom
	}
}

// Snapshot is an immutable view of the tracker state.
type Snapshot struct {
	// PendingFrom and PendingTo bound the faded overlay as [from, to).
	PendingFrom int
	PendingTo   int

	// ActiveLine is the active-line marker, -1 when unset.
	ActiveLine int
}

// HasPending returns true if the faded overlay covers at least one line.
func (s Snapshot) HasPending() bool {
	return s.PendingTo > s.PendingFrom
}

// IsPending returns true if the line is inside the faded overlay.
func (s Snapshot) IsPending(line int) bool {
	return line >= s.PendingFrom && line < s.PendingTo
}

// IsActive returns true if the line carries the active-line marker.
func (s Snapshot) IsActive(line int) bool {
	return s.ActiveLine >= 0 && line == s.ActiveLine
}
