package diffview

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/diffstream/internal/config"
	"github.com/dshills/diffstream/internal/decoration"
	"github.com/dshills/diffstream/internal/diagnostics"
	"github.com/dshills/diffstream/internal/document"
	"github.com/dshills/diffstream/internal/event"
	"github.com/dshills/diffstream/internal/focus"
	"github.com/dshills/diffstream/internal/logging"
	"github.com/dshills/diffstream/internal/vfs"
	"github.com/dshills/diffstream/internal/view"
)

// EditType classifies a session by whether it creates or modifies a file.
type EditType string

const (
	// EditTypeNone means no session is active.
	EditTypeNone EditType = ""
	// EditTypeCreate means the session is creating a new file.
	EditTypeCreate EditType = "create"
	// EditTypeModify means the session is modifying an existing file.
	EditTypeModify EditType = "modify"
)

const (
	// defaultViewWaitTimeout bounds the wait for the diff view to become
	// available. Opening a view can hang on slow or headless hosts.
	defaultViewWaitTimeout = 10 * time.Second

	// defaultScrollLookahead is how many lines past the active line the
	// view keeps visible while streaming.
	defaultScrollLookahead = 4

	dirPerm = 0o755
)

// Result is what SaveChanges reports back to the caller.
type Result struct {
	// NewProblemsMessage lists error-severity diagnostics introduced by
	// the edit, formatted for display. Empty when none were introduced.
	NewProblemsMessage string

	// UserEdits is a line patch from the intended content to what the
	// user actually left in the document. Empty when they match.
	UserEdits string

	// FinalContent is the content that was saved.
	FinalContent string
}

// session holds the state of one in-flight edit operation.
type session struct {
	relPath         string
	absPath         string
	editType        EditType
	originalContent string
	newContent      string
	streamedLines   []string
	createdDirs     []string
	preDiagnostics  diagnostics.Snapshot
	lineEnding      vfs.LineEnding
	viewID          string
	isEditing       bool
}

// Controller drives one streaming diff session at a time: it opens a
// two-pane diff view for a file, applies incremental content to the live
// side, and commits or rolls back the result.
//
// Callers must serialize Open/Update/SaveChanges/RevertChanges; the
// controller provides no internal locking across these calls.
type Controller struct {
	cfg       config.Settings
	fs        vfs.FS
	store     *document.Store
	workspace *view.Workspace
	tracker   *decoration.Tracker
	arbiter   *focus.Arbiter
	registry  *view.Registry
	diags     diagnostics.Provider
	log       *logging.Logger

	workdir     string
	viewTimeout time.Duration
	lookahead   int

	sess *session
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithViewTimeout overrides the bounded wait for the diff view.
func WithViewTimeout(d time.Duration) Option {
	return func(c *Controller) { c.viewTimeout = d }
}

// WithScrollLookahead overrides the streaming scroll lookahead.
func WithScrollLookahead(n int) Option {
	return func(c *Controller) { c.lookahead = n }
}

// NewController creates a diff session controller. Relative paths passed
// to Open are resolved against workdir.
func NewController(
	cfg config.Settings,
	store *document.Store,
	workspace *view.Workspace,
	bus *event.Bus,
	diags diagnostics.Provider,
	workdir string,
	opts ...Option,
) *Controller {
	c := &Controller{
		cfg:         cfg,
		fs:          store.FS(),
		store:       store,
		workspace:   workspace,
		tracker:     decoration.NewTracker(),
		arbiter:     focus.NewArbiter(bus),
		registry:    view.NewRegistry(),
		diags:       diags,
		workdir:     workdir,
		viewTimeout: defaultViewWaitTimeout,
		lookahead:   defaultScrollLookahead,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.New(logging.DefaultConfig()).WithComponent("diffview")
	}
	return c
}

// IsEditing reports whether a session is currently mid-stream.
func (c *Controller) IsEditing() bool {
	return c.sess != nil && c.sess.isEditing
}

// EditType returns the active session's edit type, or EditTypeNone.
func (c *Controller) EditType() EditType {
	if c.sess == nil {
		return EditTypeNone
	}
	return c.sess.editType
}

// Tracker exposes the decoration state for presentation layers.
func (c *Controller) Tracker() *decoration.Tracker {
	return c.tracker
}

// Arbiter exposes the focus arbitration state.
func (c *Controller) Arbiter() *focus.Arbiter {
	return c.arbiter
}

// Open starts a session for relPath: snapshots diagnostics and original
// content, creates missing parent directories (recorded for rollback),
// shows a two-pane diff view, and marks the whole document pending. A new
// Open implicitly discards any prior session.
func (c *Controller) Open(ctx context.Context, relPath string, column view.Column) error {
	var prior *session
	if c.sess != nil {
		prior = c.sess
		c.Reset()
	}

	absPath, err := c.resolvePath(relPath)
	if err != nil {
		return NewOperationError("open", relPath, err)
	}

	editType := EditTypeModify
	if !c.fs.Exists(absPath) {
		editType = EditTypeCreate
	}
	// A retried open after a failed or interrupted create attempt must
	// not misclassify the leftover empty file as a modification.
	priorCreate := prior != nil && prior.absPath == absPath && prior.editType == EditTypeCreate
	if priorCreate {
		editType = EditTypeCreate
	}

	// A dirty open copy would make the on-disk snapshot stale. Flush it
	// first so the pre-edit snapshot is authoritative.
	if editType == EditTypeModify && c.store.IsDirty(absPath) {
		if err := c.store.Save(ctx, absPath); err != nil {
			return NewOperationError("open", absPath, err).WithContext("flushing dirty document")
		}
	}

	pre := c.diags.Snapshot()

	var original string
	if editType == EditTypeModify {
		data, err := c.fs.ReadFile(absPath)
		if err != nil {
			return NewOperationError("open", absPath, err)
		}
		original = vfs.StripAllBOMs(string(data))
	}

	var createdDirs []string
	if priorCreate {
		createdDirs = prior.createdDirs
	}
	if editType == EditTypeCreate {
		newDirs, err := vfs.CreateDirectories(c.fs, absPath, dirPerm)
		if err != nil {
			return NewOperationError("open", absPath, err).WithContext("creating parent directories")
		}
		createdDirs = append(createdDirs, newDirs...)
	}

	// Session state is live from here: if a later step fails, the
	// created file and directories stay reachable for RevertChanges.
	c.sess = &session{
		relPath:         relPath,
		absPath:         absPath,
		editType:        editType,
		originalContent: original,
		createdDirs:     createdDirs,
		preDiagnostics:  pre,
	}

	var doc *document.Document
	if editType == EditTypeCreate && !c.fs.Exists(absPath) {
		doc, err = c.store.Create(ctx, absPath)
	} else {
		doc, err = c.store.Open(ctx, absPath)
	}
	if err != nil {
		return NewOperationError("open", absPath, err)
	}
	c.sess.lineEnding = doc.LineEnding()

	c.registry.CaptureDocumentWasOpen(c.workspace.HasViewForPath(absPath))

	c.arbiter.Init(c.cfg)
	c.arbiter.Arm()

	title := diffTitle(absPath, editType)

	c.arbiter.Suppress()
	v := c.workspace.ShowDiff(view.DiffSpec{
		Title:         title,
		BeforeContent: original,
		Doc:           doc,
		Options: view.ShowOptions{
			PreserveFocus: c.arbiter.PreserveFocus(),
			Column:        column,
		},
	})
	c.arbiter.Unsuppress()

	waitCtx, cancel := context.WithTimeout(ctx, c.viewTimeout)
	defer cancel()
	if _, err := c.workspace.WaitForView(waitCtx, absPath); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewOperationError("open", absPath, ErrViewTimeout)
		}
		return NewOperationError("open", absPath, err)
	}

	c.registry.RecordOpened(v.ID())

	c.tracker.SetLineCount(doc.LineCount())
	c.tracker.SetPending(0, doc.LineCount())
	v.RevealTop()

	c.sess.viewID = v.ID()
	c.sess.isEditing = true

	c.log.Debug("opened %s session for %s", editType, absPath)
	return nil
}

// Update applies the accumulated stream content to the live document.
// When isFinal is false, the trailing line is dropped because the stream
// may still be mid-line. When isFinal is true, leftover lines from a
// previously longer document are removed, the original's trailing
// newline is preserved, and all decorations are cleared.
func (c *Controller) Update(ctx context.Context, accumulated string, isFinal bool) error {
	if c.sess == nil || !c.sess.isEditing {
		return NewOperationError("update", "", ErrSessionNotOpen)
	}
	s := c.sess

	v, ok := c.workspace.Get(s.viewID)
	if !ok || v.IsClosed() {
		return NewOperationError("update", s.absPath, ErrViewClosed)
	}
	doc := v.Document()

	content := vfs.StripAllBOMs(accumulated)
	// The intended content decides the line-ending style; detect it
	// before the internal LF normalization discards the evidence.
	s.lineEnding = vfs.DetectLineEnding(content)
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	s.newContent = normalized

	if isFinal {
		final := normalized
		if s.editType == EditTypeModify &&
			strings.HasSuffix(strings.ReplaceAll(s.originalContent, "\r\n", "\n"), "\n") &&
			final != "" && !strings.HasSuffix(final, "\n") {
			final += "\n"
		}
		doc.SetText(final)
		doc.SetLineEnding(s.lineEnding)
		s.newContent = final
		s.streamedLines = doc.Lines()

		c.tracker.SetLineCount(doc.LineCount())
		c.tracker.Clear()
		if n := doc.LineCount(); n > 0 {
			v.ScrollToLine(n-1, c.lookahead)
		}
		return nil
	}

	lines := strings.Split(normalized, "\n")
	// The trailing element is either an incomplete line or the empty
	// remainder after a final newline. Neither is committed yet.
	lines = lines[:len(lines)-1]

	// Park the viewport at the top before the replace so the visible
	// caret does not race the streamed text.
	v.RevealTop()
	doc.ReplaceLineRange(0, len(lines), lines)
	s.streamedLines = lines

	end := len(lines) - 1
	c.tracker.SetLineCount(doc.LineCount())
	if end >= 0 {
		c.tracker.SetActiveLine(end)
	}
	c.tracker.SetPending(end+1, doc.LineCount())

	if end >= 0 {
		v.ScrollToLine(end, c.lookahead)
	}
	return nil
}

// SaveChanges commits the session: saves the live (possibly user-edited)
// document, closes session views, and reports newly introduced
// error-severity diagnostics plus any divergence between the intended and
// the actual final content. No-op returning a zero Result when no session
// is active.
func (c *Controller) SaveChanges(ctx context.Context) (Result, error) {
	if c.sess == nil {
		return Result{}, nil
	}
	s := c.sess

	doc, ok := c.store.Get(s.absPath)
	if !ok {
		return Result{}, NewOperationError("save", s.absPath, ErrSessionNotOpen)
	}

	liveText := doc.Text()
	finalContent := string(doc.ContentForSave())
	if doc.IsDirty() {
		if err := c.store.Save(ctx, s.absPath); err != nil {
			return Result{}, NewOperationError("save", s.absPath, err)
		}
	}

	c.closeSessionViews()

	post := c.diags.Snapshot()
	entries := diagnostics.Delta(s.preDiagnostics, post, []string{s.absPath}, diagnostics.SeverityError)
	problems := diagnostics.FormatEntries(entries)

	eol := s.lineEnding.Sequence()
	intended := normalizeForCompare(s.newContent, eol)
	actual := normalizeForCompare(liveText, eol)

	var userEdits string
	if intended != actual {
		userEdits = linePatch(intended, actual)
		c.log.Info("user modified streamed edit for %s", s.absPath)
	}

	res := Result{
		NewProblemsMessage: problems,
		UserEdits:          userEdits,
		FinalContent:       finalContent,
	}
	c.clearSession()
	return res, nil
}

// RevertChanges rolls the session back. A created file is deleted along
// with every directory the session created, children before parents. A
// modified file is restored to its original content and, if it was open
// before the session, shown again without taking focus. No-op when no
// session is active.
func (c *Controller) RevertChanges(ctx context.Context) error {
	if c.sess == nil {
		return nil
	}
	s := c.sess

	switch s.editType {
	case EditTypeCreate:
		if doc, ok := c.store.Get(s.absPath); ok && doc.IsDirty() {
			if err := c.store.Save(ctx, s.absPath); err != nil {
				c.log.Warn("flushing %s before revert: %v", s.absPath, err)
			}
		}
		c.closeSessionViews()
		// The file may never have materialized if the open failed
		// between directory creation and the first write.
		if c.fs.Exists(s.absPath) {
			if err := c.store.Delete(ctx, s.absPath); err != nil {
				return NewOperationError("revert", s.absPath, err)
			}
		}
		// Children before parents. A directory someone else already
		// removed, or dropped something into, is tolerated.
		for i := len(s.createdDirs) - 1; i >= 0; i-- {
			dir := s.createdDirs[i]
			if err := c.fs.Remove(dir); err != nil {
				c.log.Warn("removing %s: %v", dir, err)
			}
		}

	case EditTypeModify:
		doc, ok := c.store.Get(s.absPath)
		if !ok {
			var err error
			doc, err = c.store.Open(ctx, s.absPath)
			if err != nil {
				return NewOperationError("revert", s.absPath, err)
			}
		}
		doc.SetText(s.originalContent)
		if err := c.store.Save(ctx, s.absPath); err != nil {
			return NewOperationError("revert", s.absPath, err)
		}
		if c.registry.DocumentWasOpen() {
			c.arbiter.Suppress()
			c.workspace.Show(doc, view.ShowOptions{PreserveFocus: true})
			c.arbiter.Unsuppress()
		}
		c.closeSessionViews()
	}

	c.clearSession()
	return nil
}

// ScrollToFirstDiff scrolls the diff view to the first line where the
// live document diverges from the original content. No-op when the
// contents match or no session is active.
func (c *Controller) ScrollToFirstDiff() {
	if c.sess == nil {
		return
	}
	v, ok := c.workspace.Get(c.sess.viewID)
	if !ok || v.IsClosed() {
		return
	}

	original := splitPatchLines(strings.ReplaceAll(c.sess.originalContent, "\r\n", "\n"))
	if c.sess.originalContent == "" {
		original = nil
	}
	line := firstDifferingLine(original, v.Document().Lines())
	if line < 0 {
		return
	}
	v.ScrollToLine(line, c.lookahead)
}

// Reset is an idempotent best-effort teardown: session views are closed
// with errors logged rather than returned, and every session field goes
// back to its initial value.
func (c *Controller) Reset() {
	c.closeSessionViews()
	c.clearSession()
}

func (c *Controller) clearSession() {
	c.sess = nil
	c.tracker.Clear()
	c.tracker.SetLineCount(0)
	c.arbiter.Reset()
	c.registry.Reset()
}

// closeSessionViews closes the views this session opened. Diff views are
// always closed; plain views only when auto-close is configured. Views
// with unsaved modifications are skipped so no save prompt fires.
func (c *Controller) closeSessionViews() {
	for _, id := range c.registry.Opened() {
		v, ok := c.workspace.Get(id)
		if !ok || v.IsClosed() {
			continue
		}
		if !v.IsDiff() && !c.cfg.AutoCloseTabs {
			continue
		}
		if !c.workspace.Close(id) {
			c.log.Warn("view %s left open (unsaved changes)", id)
		}
	}
}

func (c *Controller) resolvePath(p string) (string, error) {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return c.fs.Abs(p)
	}
	return c.fs.Abs(c.fs.Join(c.workdir, p))
}

func diffTitle(absPath string, editType EditType) string {
	name := filepath.Base(absPath)
	if editType == EditTypeCreate {
		return fmt.Sprintf("%s: New File", name)
	}
	return fmt.Sprintf("%s: Original ↔ Changes", name)
}
