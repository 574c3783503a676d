// Package filesystem adapts operating system file access to shared.FileSystem.
package filesystem

import (
	"errors"
	"io/fs"
	"os"
)

// OSFileSystem implements shared.FileSystem on top of the os package.
type OSFileSystem struct{}

// MkdirAll creates path and any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// ReadFile returns the contents of path.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile truncates path, writes data and syncs it to stable storage before closing.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	file, openError := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permissions)
	if openError != nil {
		return openError
	}
	_, writeError := file.Write(data)
	if writeError == nil {
		writeError = file.Sync()
	}
	return errors.Join(writeError, file.Close())
}

// Rename replaces newPath with oldPath.
func (OSFileSystem) Rename(oldPath string, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Remove deletes path; a missing path is not an error.
func (OSFileSystem) Remove(path string) error {
	if removeError := os.Remove(path); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return removeError
	}
	return nil
}
