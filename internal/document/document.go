// Package document provides open-document management for the diff engine.
//
// A Document tracks the live content of one open file, its clean/dirty state,
// and its line-ending style. The Store tracks all currently open documents and
// synchronizes them with the file system.
package document

import (
	"strings"
	"sync"
	"time"

	"github.com/dshills/diffstream/internal/vfs"
)

// Document represents an open file.
// It tracks the file's live content and metadata. All methods are thread-safe.
type Document struct {
	mu sync.RWMutex

	// path is the absolute path to the file.
	path string

	// version is incremented on each edit.
	version int64

	// content is the current document content. This may differ from disk
	// if the document is dirty.
	content string

	// savedContent is the content when the file was opened or last saved.
	savedContent string

	// lineEnding is the style content is normalized to when saved.
	lineEnding vfs.LineEnding

	openedAt   time.Time
	modifiedAt time.Time

	closed bool
}

// NewDocument creates a Document from file content. Leading BOM sequences are
// stripped, repeatedly, so double-encoded content cannot leave one behind.
func NewDocument(path string, content []byte) *Document {
	clean := vfs.StripAllBOMs(string(content))

	now := time.Now()
	return &Document{
		path:         path,
		version:      1,
		content:      clean,
		savedContent: clean,
		lineEnding:   vfs.DetectLineEnding(clean),
		openedAt:     now,
		modifiedAt:   now,
	}
}

// Path returns the document's absolute path.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

// Text returns the full document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// Version returns the current document version.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// IsDirty returns true if the document has unsaved changes.
func (d *Document) IsDirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content != d.savedContent
}

// IsClosed returns true if the document has been closed.
func (d *Document) IsClosed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// LineEnding returns the document's line-ending style.
func (d *Document) LineEnding() vfs.LineEnding {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lineEnding
}

// SetLineEnding sets the style content is normalized to on save.
func (d *Document) SetLineEnding(le vfs.LineEnding) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lineEnding = le
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return vfs.CountLines(d.content)
}

// Lines returns the document content split into lines, without newlines.
// A trailing newline does not produce a final empty line.
func (d *Document) Lines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return splitLines(d.content)
}

// SetText replaces the entire document content, stripping any BOM sequences
// from the new text.
func (d *Document) SetText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.content = vfs.StripAllBOMs(text)
	d.version++
	d.modifiedAt = time.Now()
}

// ReplaceLineRange replaces lines [from, to) with the given lines in one
// atomic edit. A `to` beyond the last line is clamped. Lines past the replaced
// range are preserved, including the original trailing newline state.
func (d *Document) ReplaceLineRange(from, to int, lines []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing := splitLines(d.content)
	if from < 0 {
		from = 0
	}
	if from > len(existing) {
		from = len(existing)
	}
	if to < from {
		to = from
	}
	if to > len(existing) {
		to = len(existing)
	}

	merged := make([]string, 0, from+len(lines)+len(existing)-to)
	merged = append(merged, existing[:from]...)
	merged = append(merged, lines...)
	merged = append(merged, existing[to:]...)

	text := strings.Join(merged, "\n")
	if strings.HasSuffix(d.content, "\n") && text != "" {
		text += "\n"
	}

	d.content = text
	d.version++
	d.modifiedAt = time.Now()
}

// TruncateLines deletes every line at index n and beyond in one atomic edit.
func (d *Document) TruncateLines(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing := splitLines(d.content)
	if n < 0 {
		n = 0
	}
	if n >= len(existing) {
		return
	}

	text := strings.Join(existing[:n], "\n")
	if strings.HasSuffix(d.content, "\n") && text != "" {
		text += "\n"
	}

	d.content = text
	d.version++
	d.modifiedAt = time.Now()
}

// ContentForSave returns the content normalized to the document's line-ending
// style, ready to write to disk.
func (d *Document) ContentForSave() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return []byte(vfs.NormalizeLineEndings(d.content, d.lineEnding))
}

// MarkSaved records the current content as the on-disk state.
func (d *Document) MarkSaved() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.savedContent = d.content
}

// MarkClosed marks the document as closed.
func (d *Document) MarkClosed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// splitLines splits content into lines without newlines. A trailing newline
// does not produce a final empty line; empty content yields no lines.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
