// Package diagnostics provides point-in-time diagnostic snapshots and delta
// computation for the diff engine.
//
// The engine captures a snapshot before an edit session starts and compares
// it against a post-edit snapshot to surface only the problems the edit
// introduced.
package diagnostics

import (
	"sort"
	"sync"
)

// Severity is the severity of a diagnostic. Lower values are more severe,
// matching LSP conventions.
type Severity int

const (
	// SeverityError is a hard error.
	SeverityError Severity = 1
	// SeverityWarning is a warning.
	SeverityWarning Severity = 2
	// SeverityInformation is informational.
	SeverityInformation Severity = 3
	// SeverityHint is a hint.
	SeverityHint Severity = 4
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return "Unknown"
	}
}

// Position is a zero-based line/character position.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open position range.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Range is where the problem is located.
	Range Range

	// Severity is the problem severity.
	Severity Severity

	// Source names the tool that produced the diagnostic.
	Source string

	// Message is the human-readable description.
	Message string
}

// Snapshot is the full set of diagnostics at one point in time, keyed by
// absolute file path. It is a pure value with no identity beyond the session.
type Snapshot map[string][]Diagnostic

// Provider supplies the current diagnostics of the host.
type Provider interface {
	// Snapshot returns all current diagnostics keyed by file path.
	Snapshot() Snapshot
}

// MemoryProvider is an in-process Provider with settable diagnostics.
// It backs tests and hosts that push diagnostics from an external tool.
// MemoryProvider is safe for concurrent use.
type MemoryProvider struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{current: Snapshot{}}
}

// Ensure MemoryProvider implements Provider.
var _ Provider = (*MemoryProvider)(nil)

// Snapshot returns a copy of the current diagnostics.
func (p *MemoryProvider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := make(Snapshot, len(p.current))
	for path, diags := range p.current {
		copied := make([]Diagnostic, len(diags))
		copy(copied, diags)
		snap[path] = copied
	}
	return snap
}

// Set replaces the diagnostics for a path. An empty slice clears the path.
func (p *MemoryProvider) Set(path string, diags []Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(diags) == 0 {
		delete(p.current, path)
		return
	}

	copied := make([]Diagnostic, len(diags))
	copy(copied, diags)
	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Range.Start.Line != copied[j].Range.Start.Line {
			return copied[i].Range.Start.Line < copied[j].Range.Start.Line
		}
		return copied[i].Range.Start.Character < copied[j].Range.Start.Character
	})
	p.current[path] = copied
}

// Clear removes all diagnostics.
func (p *MemoryProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = Snapshot{}
}
