// Package focus decides whether the diff view may steal UI focus.
//
// Auto-approved edits should not wrest keyboard or view focus away from a
// user who has started doing something else; but if the user has not touched
// anything, the engine may keep steering focus to show progress. The arbiter
// watches host interaction events and flips, permanently for the session, to
// focus preservation on the first genuine user interaction.
package focus

import (
	"sync"

	"github.com/dshills/diffstream/internal/config"
	"github.com/dshills/diffstream/internal/event"
)

// interactionTopics are the host events treated as user interaction.
var interactionTopics = []event.Topic{
	event.TopicSelectionChanged,
	event.TopicActiveViewChanged,
	event.TopicTabsChanged,
	event.TopicLayoutChanged,
}

// Arbiter is a per-session focus state machine. All methods are thread-safe.
type Arbiter struct {
	mu  sync.Mutex
	bus *event.Bus

	autoFocus     bool
	autoApproval  bool
	preserveFocus bool
	initialized   bool

	// suppress counts nested programmatic operations in flight. Events
	// arriving while it is non-zero are the engine's own doing, not the
	// user's. A counter rather than a flag, so overlapping programmatic
	// operations cannot under-suppress.
	suppress int

	// interacted latches on the first genuine user interaction; the
	// transition is one-way for the remainder of the session.
	interacted bool

	subs []*event.Subscription
}

// NewArbiter creates an arbiter listening on the given bus.
func NewArbiter(bus *event.Bus) *Arbiter {
	return &Arbiter{bus: bus}
}

// Init reads the focus-relevant settings once per session. Subsequent calls
// before Reset are no-ops, so configuration is never re-read mid-session.
func (a *Arbiter) Init(settings config.Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return
	}
	a.autoApproval = settings.AutoApproved()
	a.autoFocus = settings.DiffViewAutoFocus
	a.preserveFocus = a.autoApproval && !a.autoFocus
	a.initialized = true
}

// Arm discards any prior interaction listeners and, when both auto-approval
// and auto-focus are on, registers listeners for selection changes, active
// view changes, tab changes, and layout changes. Called at the start of
// every session open.
func (a *Arbiter) Arm() {
	a.mu.Lock()
	a.cancelLocked()

	if !a.autoApproval || !a.autoFocus || a.interacted {
		a.mu.Unlock()
		return
	}

	for _, topic := range interactionTopics {
		sub := a.bus.Subscribe(topic, a.onInteraction)
		a.subs = append(a.subs, sub)
	}
	a.mu.Unlock()
}

// onInteraction handles a host interaction event. Suppressed events are the
// engine's own operations and are ignored; anything else permanently
// disables auto-focus for the session.
func (a *Arbiter) onInteraction(event.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.suppress > 0 || a.interacted {
		return
	}

	a.interacted = true
	a.autoFocus = false
	a.preserveFocus = true
	a.cancelLocked()
}

// Suppress marks the start of a programmatic focus-affecting operation.
// Every Suppress must be paired with an Unsuppress; pairs nest.
func (a *Arbiter) Suppress() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suppress++
}

// Unsuppress marks the end of a programmatic focus-affecting operation.
func (a *Arbiter) Unsuppress() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.suppress > 0 {
		a.suppress--
	}
}

// AutoFocus reports whether the diff view may take focus.
func (a *Arbiter) AutoFocus() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.autoFocus
}

// PreserveFocus reports whether view operations must leave focus alone.
func (a *Arbiter) PreserveFocus() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.preserveFocus
}

// UserInteracted reports whether the one-way transition has fired.
func (a *Arbiter) UserInteracted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interacted
}

// Reset cancels all listeners and returns the arbiter to its initial state,
// ready for the next session to Init it.
func (a *Arbiter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.autoFocus = false
	a.autoApproval = false
	a.preserveFocus = false
	a.initialized = false
	a.suppress = 0
	a.interacted = false
}

// cancelLocked cancels all subscriptions. Must hold the lock.
func (a *Arbiter) cancelLocked() {
	for _, sub := range a.subs {
		sub.Cancel()
	}
	a.subs = nil
}
