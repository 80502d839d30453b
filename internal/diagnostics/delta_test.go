package diagnostics

import (
	"strings"
	"testing"
)

func diag(line int, sev Severity, msg string) Diagnostic {
	return Diagnostic{
		Range:    Range{Start: Position{Line: line}},
		Severity: sev,
		Source:   "compiler",
		Message:  msg,
	}
}

func TestDeltaReportsOnlyNewEntries(t *testing.T) {
	before := Snapshot{
		"/a.go": {diag(1, SeverityError, "old error")},
	}
	after := Snapshot{
		"/a.go": {
			diag(1, SeverityError, "old error"),
			diag(5, SeverityError, "new error"),
		},
	}

	got := Delta(before, after, []string{"/a.go"}, SeverityError)
	if len(got) != 1 {
		t.Fatalf("Delta returned %d entries, want 1", len(got))
	}
	if got[0].Diagnostic.Message != "new error" {
		t.Errorf("Message = %q, want %q", got[0].Diagnostic.Message, "new error")
	}
}

func TestDeltaWarningOnlyChangeIsEmpty(t *testing.T) {
	before := Snapshot{}
	after := Snapshot{
		"/a.go": {diag(2, SeverityWarning, "unused variable")},
	}

	got := Delta(before, after, []string{"/a.go"}, SeverityError)
	if len(got) != 0 {
		t.Errorf("Delta returned %d entries, want 0 for warning-only change", len(got))
	}
	if msg := FormatEntries(got); msg != "" {
		t.Errorf("FormatEntries = %q, want empty", msg)
	}
}

func TestDeltaPathFilter(t *testing.T) {
	after := Snapshot{
		"/touched.go":   {diag(0, SeverityError, "broke this")},
		"/untouched.go": {diag(0, SeverityError, "not ours")},
	}

	got := Delta(Snapshot{}, after, []string{"/touched.go"}, SeverityError)
	if len(got) != 1 {
		t.Fatalf("Delta returned %d entries, want 1", len(got))
	}
	if got[0].Path != "/touched.go" {
		t.Errorf("Path = %q, want %q", got[0].Path, "/touched.go")
	}
}

func TestDeltaNoPathsMeansAll(t *testing.T) {
	after := Snapshot{
		"/a.go": {diag(0, SeverityError, "a")},
		"/b.go": {diag(0, SeverityError, "b")},
	}

	got := Delta(Snapshot{}, after, nil, SeverityError)
	if len(got) != 2 {
		t.Errorf("Delta returned %d entries, want 2", len(got))
	}
}

func TestDeltaResolvedProblemsNotReported(t *testing.T) {
	before := Snapshot{
		"/a.go": {diag(1, SeverityError, "fixed by the edit")},
	}
	after := Snapshot{}

	got := Delta(before, after, nil, SeverityError)
	if len(got) != 0 {
		t.Errorf("Delta returned %d entries, want 0 when problems were resolved", len(got))
	}
}

func TestFormatEntriesGroupsByFile(t *testing.T) {
	entries := []Entry{
		{Path: "/a.go", Diagnostic: diag(4, SeverityError, "bad type")},
		{Path: "/a.go", Diagnostic: diag(9, SeverityError, "missing return")},
	}

	msg := FormatEntries(entries)
	if !strings.Contains(msg, "/a.go") {
		t.Errorf("FormatEntries = %q, want file path present", msg)
	}
	// Lines are reported 1-based.
	if !strings.Contains(msg, "5:1 bad type") {
		t.Errorf("FormatEntries = %q, want 1-based line numbers", msg)
	}
	if !strings.Contains(msg, "10:1 missing return") {
		t.Errorf("FormatEntries = %q, want second entry", msg)
	}
}

func TestMemoryProviderSnapshotIsolated(t *testing.T) {
	p := NewMemoryProvider()
	p.Set("/a.go", []Diagnostic{diag(0, SeverityError, "x")})

	snap := p.Snapshot()
	snap["/a.go"][0].Message = "mutated"

	if got := p.Snapshot()["/a.go"][0].Message; got != "x" {
		t.Errorf("provider state mutated through snapshot: %q", got)
	}
}

func TestMemoryProviderSetEmptyClearsPath(t *testing.T) {
	p := NewMemoryProvider()
	p.Set("/a.go", []Diagnostic{diag(0, SeverityError, "x")})
	p.Set("/a.go", nil)

	if _, ok := p.Snapshot()["/a.go"]; ok {
		t.Error("path should be cleared after Set with empty slice")
	}
}
