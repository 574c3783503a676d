package persistence

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/temirov/manahg/internal/repos/shared"
)

const (
	defaultConfigurationRelativePathConstant = "manahg/configuration.json"
	temporaryFileSuffixConstant              = ".tmp"
	configurationDirectoryPermissions        = fs.FileMode(0o755)
	configurationFilePermissions             = fs.FileMode(0o644)
)

// DefaultPath resolves the configuration document location under the XDG config home.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(defaultConfigurationRelativePathConstant)
}

// FileStore loads and saves AppConfiguration as a single file.
type FileStore struct {
	path       string
	fileSystem shared.FileSystem
	codec      Codec
}

// NewFileStore constructs a FileStore for the given path.
func NewFileStore(path string, fileSystem shared.FileSystem) (*FileStore, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathNotConfigured
	}
	return &FileStore{path: trimmedPath, fileSystem: fileSystem}, nil
}

// Path returns the location of the configuration document.
func (store *FileStore) Path() string {
	return store.path
}

// Load reads the configuration, returning defaults when the file does not exist.
func (store *FileStore) Load() (AppConfiguration, error) {
	document, readError := store.fileSystem.ReadFile(store.path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return DefaultAppConfiguration(), nil
		}
		return DefaultAppConfiguration(), PersistenceError{Operation: operationLoadConstant, Path: store.path, Cause: readError}
	}

	configuration, decodeError := store.codec.Decode(document)
	if decodeError != nil {
		return DefaultAppConfiguration(), PersistenceError{Operation: operationLoadConstant, Path: store.path, Cause: decodeError}
	}
	return configuration, nil
}

// Save writes the configuration next to its destination and renames it into place.
func (store *FileStore) Save(configuration AppConfiguration) error {
	document, encodeError := store.codec.Encode(configuration)
	if encodeError != nil {
		return PersistenceError{Operation: operationSaveConstant, Path: store.path, Cause: encodeError}
	}

	if mkdirError := store.fileSystem.MkdirAll(filepath.Dir(store.path), configurationDirectoryPermissions); mkdirError != nil {
		return PersistenceError{Operation: operationSaveConstant, Path: store.path, Cause: mkdirError}
	}

	temporaryPath := store.path + temporaryFileSuffixConstant
	if writeError := store.fileSystem.WriteFile(temporaryPath, document, configurationFilePermissions); writeError != nil {
		return PersistenceError{Operation: operationSaveConstant, Path: store.path, Cause: writeError}
	}
	if renameError := store.fileSystem.Rename(temporaryPath, store.path); renameError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return PersistenceError{Operation: operationSaveConstant, Path: store.path, Cause: renameError}
	}
	return nil
}
