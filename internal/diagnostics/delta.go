package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// diagnosticKey identifies a diagnostic for delta comparison. Two snapshots
// reporting the same problem at the same location dedupe to one key even if
// the host re-emitted them.
type diagnosticKey struct {
	path     string
	line     int
	char     int
	severity Severity
	message  string
}

func keyOf(path string, d Diagnostic) diagnosticKey {
	return diagnosticKey{
		path:     path,
		line:     d.Range.Start.Line,
		char:     d.Range.Start.Character,
		severity: d.Severity,
		message:  d.Message,
	}
}

// Entry is a diagnostic paired with the file it belongs to.
type Entry struct {
	Path       string
	Diagnostic Diagnostic
}

// Delta returns the diagnostics present in after but absent from before,
// restricted to the given paths (all paths when none are given) and to
// severities at or above minSeverity.
func Delta(before, after Snapshot, paths []string, minSeverity Severity) []Entry {
	pathFilter := make(map[string]bool, len(paths))
	for _, p := range paths {
		pathFilter[p] = true
	}

	seen := make(map[diagnosticKey]bool)
	for path, diags := range before {
		for _, d := range diags {
			seen[keyOf(path, d)] = true
		}
	}

	var fresh []Entry
	for path, diags := range after {
		if len(pathFilter) > 0 && !pathFilter[path] {
			continue
		}
		for _, d := range diags {
			if d.Severity > minSeverity {
				continue
			}
			if seen[keyOf(path, d)] {
				continue
			}
			fresh = append(fresh, Entry{Path: path, Diagnostic: d})
		}
	}

	sort.Slice(fresh, func(i, j int) bool {
		if fresh[i].Path != fresh[j].Path {
			return fresh[i].Path < fresh[j].Path
		}
		if fresh[i].Diagnostic.Range.Start.Line != fresh[j].Diagnostic.Range.Start.Line {
			return fresh[i].Diagnostic.Range.Start.Line < fresh[j].Diagnostic.Range.Start.Line
		}
		return fresh[i].Diagnostic.Range.Start.Character < fresh[j].Diagnostic.Range.Start.Character
	})

	return fresh
}

// FormatEntries renders delta entries as human-readable text, grouped by
// file. Returns the empty string for an empty delta.
func FormatEntries(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	lastPath := ""
	for _, e := range entries {
		if e.Path != lastPath {
			if lastPath != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(e.Path)
			lastPath = e.Path
		}
		source := e.Diagnostic.Source
		if source == "" {
			source = "diagnostics"
		}
		// Report 1-based line numbers; positions are stored 0-based.
		fmt.Fprintf(&sb, "\n- [%s %s] %d:%d %s",
			source,
			e.Diagnostic.Severity,
			e.Diagnostic.Range.Start.Line+1,
			e.Diagnostic.Range.Start.Character+1,
			e.Diagnostic.Message,
		)
	}
	return sb.String()
}
