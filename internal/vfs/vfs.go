// Package vfs provides a virtual file system abstraction for the diff engine.
//
// The FS interface allows swapping the underlying storage, enabling hermetic
// testing with an in-memory file system while the real engine runs against
// the OS file system.
package vfs

import (
	"io/fs"
	"time"
)

// FS is a virtual file system abstraction.
type FS interface {
	// Read operations

	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Write operations

	// WriteFile writes data to a file, creating it if necessary.
	// The parent directory must already exist.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Mkdir creates a single directory. The parent must already exist.
	Mkdir(path string, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Path operations

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// Join joins path elements.
	Join(elem ...string) string

	// Dir returns the directory portion of a path.
	Dir(path string) string

	// Queries

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true for directories.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// CreateDirectories creates every missing ancestor directory of filePath and
// returns exactly the directories it created, in creation order (parents
// before children). Callers that need rollback remove the returned list in
// reverse so children go before parents.
func CreateDirectories(fsys FS, filePath string, perm fs.FileMode) ([]string, error) {
	dir := fsys.Dir(filePath)

	// Collect missing ancestors from the deepest up.
	var missing []string
	for dir != "" && dir != "/" && dir != "." && !fsys.Exists(dir) {
		missing = append(missing, dir)
		parent := fsys.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Create shallowest first.
	created := make([]string, 0, len(missing))
	for i := len(missing) - 1; i >= 0; i-- {
		if err := fsys.Mkdir(missing[i], perm); err != nil {
			return created, err
		}
		created = append(created, missing[i])
	}

	return created, nil
}
