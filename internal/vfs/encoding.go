package vfs

import (
	"bytes"
	"strings"
)

// LineEnding represents the line ending style of a document.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"
)

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// bomUTF8 is the UTF-8 byte order mark.
var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// DetectLineEnding detects the dominant line ending in content.
// Content containing any CRLF sequence is treated as CRLF, matching how the
// streamed content's own endings decide the style written back to disk.
func DetectLineEnding(content string) LineEnding {
	if strings.Contains(content, "\r\n") {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// StripBOM removes a single leading UTF-8 BOM from content if present.
// Returns the stripped content and whether a BOM was found.
func StripBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, bomUTF8) {
		return content[3:], true
	}
	return content, false
}

// StripAllBOMs removes leading UTF-8 BOM sequences repeatedly until none
// remain. Streamed content can arrive double-encoded, leaving a BOM behind
// after the first strip.
func StripAllBOMs(content string) string {
	b := []byte(content)
	for {
		stripped, found := StripBOM(b)
		if !found {
			return string(stripped)
		}
		b = stripped
	}
}

// NormalizeLineEndings converts all line endings in content to the given
// style.
func NormalizeLineEndings(content string, ending LineEnding) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if ending == LineEndingCRLF {
		normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	}
	return normalized
}

// CountLines counts the number of lines in content.
func CountLines(content string) int {
	if len(content) == 0 {
		return 0
	}

	lines := 1 + strings.Count(content, "\n")

	// Don't count a trailing newline as an extra line
	if strings.HasSuffix(content, "\n") {
		lines--
	}

	return lines
}
