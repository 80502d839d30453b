// Package view models the host editor's view and tab surface for the diff
// engine: a workspace of open views, a two-pane diff presentation, and the
// per-session tab registry.
//
// The engine is headless; a presenter (terminal or otherwise) renders views,
// while the workspace tracks which views exist, which is active, and who
// opened them.
package view

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/diffstream/internal/document"
)

// Column identifies a tab-group column in the host window.
type Column int

const (
	// ColumnActive targets whichever column is currently active.
	ColumnActive Column = 0
	// ColumnOne is the first column.
	ColumnOne Column = 1
	// ColumnTwo is the second column.
	ColumnTwo Column = 2
)

// ShowOptions control how a view is presented.
type ShowOptions struct {
	// Preview opens the view as a preview tab.
	Preview bool

	// PreserveFocus shows the view without taking UI focus.
	PreserveFocus bool

	// Column is the target tab-group column.
	Column Column
}

// View is one open editor view. A diff view holds the read-only before
// content alongside the live document; a plain view holds only the document.
type View struct {
	mu sync.RWMutex

	id     string
	title  string
	column Column

	// doc is the live (right-pane) document.
	doc *document.Document

	// beforeContent is the read-only left pane of a diff view, supplied
	// out-of-band rather than read from disk.
	beforeContent string
	isDiff        bool

	preview bool

	// scrollTop is the first visible line.
	scrollTop    int
	visibleLines int

	closed bool
}

// defaultVisibleLines approximates a host viewport height.
const defaultVisibleLines = 40

func newView(title string, doc *document.Document, opts ShowOptions) *View {
	return &View{
		id:           uuid.NewString(),
		title:        title,
		column:       opts.Column,
		doc:          doc,
		preview:      opts.Preview,
		visibleLines: defaultVisibleLines,
	}
}

// ID returns the view's unique identifier.
func (v *View) ID() string { return v.id }

// Title returns the view title.
func (v *View) Title() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.title
}

// Column returns the view's tab-group column.
func (v *View) Column() Column {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.column
}

// Document returns the view's live document.
func (v *View) Document() *document.Document { return v.doc }

// Path returns the path of the view's document.
func (v *View) Path() string { return v.doc.Path() }

// IsDiff returns true for two-pane diff views.
func (v *View) IsDiff() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isDiff
}

// BeforeContent returns the read-only left pane content of a diff view.
func (v *View) BeforeContent() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.beforeContent
}

// IsPreview returns true if the view is a preview tab.
func (v *View) IsPreview() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.preview
}

// IsClosed returns true once the view has been closed.
func (v *View) IsClosed() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.closed
}

// IsDirty returns true if the view's document has unsaved modifications.
func (v *View) IsDirty() bool {
	return v.doc.IsDirty()
}

// SetVisibleLines sets the viewport height used by scroll calculations.
func (v *View) SetVisibleLines(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n > 0 {
		v.visibleLines = n
	}
}

// ScrollTop returns the first visible line.
func (v *View) ScrollTop() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollTop
}

// RevealTop scrolls the view to the top of the document.
func (v *View) RevealTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTop = 0
}

// ScrollToLine scrolls so the line stays visible with a small lookahead
// below it. Scrolling never goes above the top of the document.
func (v *View) ScrollToLine(line, lookahead int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	target := line + lookahead
	if target < v.scrollTop+v.visibleLines {
		if line < v.scrollTop {
			v.scrollTop = line
		}
		return
	}
	v.scrollTop = target - v.visibleLines + 1
	if v.scrollTop < 0 {
		v.scrollTop = 0
	}
}

// markClosed flags the view as closed. Called by the workspace.
func (v *View) markClosed() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
