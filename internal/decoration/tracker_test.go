package decoration

import (
	"testing"

	"pgregory.net/rapid"
)

func TestTrackerInitialState(t *testing.T) {
	tr := NewTracker()
	snap := tr.Snapshot()

	if snap.HasPending() {
		t.Error("new tracker should have no pending overlay")
	}
	if snap.ActiveLine != -1 {
		t.Errorf("ActiveLine = %d, want -1", snap.ActiveLine)
	}
}

func TestTrackerSetPending(t *testing.T) {
	tr := NewTracker()
	tr.SetLineCount(10)
	tr.SetPending(0, 10)

	snap := tr.Snapshot()
	if !snap.IsPending(0) || !snap.IsPending(9) {
		t.Error("lines 0 and 9 should be pending")
	}
	if snap.IsPending(10) {
		t.Error("line 10 should not be pending (exclusive bound)")
	}
}

func TestTrackerActiveLinePushesPending(t *testing.T) {
	tr := NewTracker()
	tr.SetLineCount(10)
	tr.SetPending(0, 10)
	tr.SetActiveLine(3)

	snap := tr.Snapshot()
	if snap.ActiveLine != 3 {
		t.Errorf("ActiveLine = %d, want 3", snap.ActiveLine)
	}
	for line := 0; line <= 3; line++ {
		if snap.IsPending(line) {
			t.Errorf("line %d should not be pending at or before the active line", line)
		}
	}
	if !snap.IsPending(4) {
		t.Error("line 4 should still be pending")
	}
}

func TestTrackerActiveLineClamped(t *testing.T) {
	tr := NewTracker()
	tr.SetLineCount(5)

	tr.SetActiveLine(99)
	if got := tr.Snapshot().ActiveLine; got != 4 {
		t.Errorf("ActiveLine = %d, want 4 (clamped)", got)
	}

	tr.SetActiveLine(-3)
	if got := tr.Snapshot().ActiveLine; got != 0 {
		t.Errorf("ActiveLine = %d, want 0 (clamped)", got)
	}
}

func TestTrackerAdvancePendingForwardOnly(t *testing.T) {
	tr := NewTracker()
	tr.SetLineCount(10)
	tr.SetPending(0, 10)

	tr.AdvancePending(4)
	if got := tr.Snapshot().PendingFrom; got != 4 {
		t.Errorf("PendingFrom = %d, want 4", got)
	}

	tr.AdvancePending(2) // backward shift ignored
	if got := tr.Snapshot().PendingFrom; got != 4 {
		t.Errorf("PendingFrom = %d, want 4 after backward shift", got)
	}
}

func TestTrackerClear(t *testing.T) {
	tr := NewTracker()
	tr.SetLineCount(10)
	tr.SetPending(0, 10)
	tr.SetActiveLine(5)

	tr.Clear()

	snap := tr.Snapshot()
	if snap.HasPending() {
		t.Error("pending overlay should be empty after Clear")
	}
	if snap.ActiveLine != -1 {
		t.Errorf("ActiveLine = %d, want -1 after Clear", snap.ActiveLine)
	}
}

// The overlays must stay disjoint and in bounds under any operation sequence.
func TestTrackerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := NewTracker()
		lineCount := rapid.IntRange(0, 200).Draw(t, "lineCount")
		tr.SetLineCount(lineCount)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				from := rapid.IntRange(-5, 210).Draw(t, "from")
				to := rapid.IntRange(-5, 210).Draw(t, "to")
				tr.SetPending(from, to)
			case 1:
				tr.AdvancePending(rapid.IntRange(-5, 210).Draw(t, "advance"))
			case 2:
				tr.SetActiveLine(rapid.IntRange(-5, 210).Draw(t, "line"))
			case 3:
				tr.Clear()
			}

			snap := tr.Snapshot()
			if snap.ActiveLine >= 0 {
				if lineCount > 0 && snap.ActiveLine >= lineCount {
					t.Fatalf("active line %d out of range [0, %d)", snap.ActiveLine, lineCount)
				}
				if snap.IsPending(snap.ActiveLine) {
					t.Fatalf("pending overlay overlaps active line %d", snap.ActiveLine)
				}
				for line := 0; line <= snap.ActiveLine; line++ {
					if snap.IsPending(line) {
						t.Fatalf("pending overlay covers line %d at or before active line %d", line, snap.ActiveLine)
					}
				}
			}
			if snap.PendingTo < snap.PendingFrom {
				t.Fatalf("pending range inverted: [%d, %d)", snap.PendingFrom, snap.PendingTo)
			}
		}
	})
}
