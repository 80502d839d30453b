package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// linePatch computes a human-readable line-level patch from intended
// to actual content. Removed lines are prefixed with "-", added lines
// with "+". Returns "" when the texts are identical.
func linePatch(intended, actual string) string {
	if intended == actual {
		return ""
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(intended, actual)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range splitPatchLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// splitPatchLines splits diff hunk text into lines, dropping the empty
// element a trailing newline would otherwise produce.
func splitPatchLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// firstDifferingLine returns the index of the first line where a and b
// differ, or -1 when they are line-for-line identical.
func firstDifferingLine(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

// normalizeForCompare prepares text for the user-edit comparison:
// line endings are unified to the given style and trailing whitespace
// (including the final newline) is trimmed.
func normalizeForCompare(text, eol string) string {
	if eol == "\r\n" {
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\n", "\r\n")
	} else {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return strings.TrimRight(text, " \t\r\n")
}
