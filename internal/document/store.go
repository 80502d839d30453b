package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/diffstream/internal/vfs"
)

// Errors returned by store operations.
var (
	ErrNotOpen        = errors.New("document not open")
	ErrUnsavedChanges = errors.New("document has unsaved changes")
)

// Store manages open documents.
// It provides thread-safe access to documents keyed by absolute path.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*Document
	fs        vfs.FS
}

// NewStore creates a new document store over the given file system.
func NewStore(fsys vfs.FS) *Store {
	return &Store{
		documents: make(map[string]*Document),
		fs:        fsys,
	}
}

// FS returns the underlying file system.
func (s *Store) FS() vfs.FS {
	return s.fs
}

// Open opens a file and returns its Document.
// If the file is already open, the existing Document is returned.
func (s *Store) Open(ctx context.Context, path string) (*Document, error) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	s.mu.RLock()
	if doc, ok := s.documents[absPath]; ok {
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := s.fs.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := NewDocument(absPath, content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.documents[absPath]; ok {
		return existing, nil
	}
	s.documents[absPath] = doc
	return doc, nil
}

// Create creates an empty file on disk and opens it.
// The parent directory must already exist.
func (s *Store) Create(ctx context.Context, path string) (*Document, error) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.fs.WriteFile(absPath, nil, 0644); err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	doc := NewDocument(absPath, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[absPath] = doc
	return doc, nil
}

// Get returns the open document for a path, if any.
func (s *Store) Get(path string) (*Document, bool) {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[absPath]
	return doc, ok
}

// IsOpen returns true if a document is open for the path.
func (s *Store) IsOpen(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// IsDirty returns true if the document for the path is open and dirty.
func (s *Store) IsDirty(path string) bool {
	doc, ok := s.Get(path)
	return ok && doc.IsDirty()
}

// Save writes the document's content to disk and marks it clean.
func (s *Store) Save(ctx context.Context, path string) error {
	doc, ok := s.Get(path)
	if !ok {
		return fmt.Errorf("saving %s: %w", path, ErrNotOpen)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.WriteFile(doc.Path(), doc.ContentForSave(), 0644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	doc.MarkSaved()
	return nil
}

// Close removes a document from the store. Unless force is set, closing a
// dirty document fails so unsaved changes are not silently dropped.
func (s *Store) Close(ctx context.Context, path string, force bool) error {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[absPath]
	if !ok {
		return fmt.Errorf("closing %s: %w", path, ErrNotOpen)
	}
	if !force && doc.IsDirty() {
		return fmt.Errorf("closing %s: %w", path, ErrUnsavedChanges)
	}

	doc.MarkClosed()
	delete(s.documents, absPath)
	return nil
}

// Delete closes the document (if open) and removes the file from disk.
func (s *Store) Delete(ctx context.Context, path string) error {
	absPath, err := s.fs.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	s.mu.Lock()
	if doc, ok := s.documents[absPath]; ok {
		doc.MarkClosed()
		delete(s.documents, absPath)
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(absPath); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// Count returns the number of open documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
