package persistence

import (
	"errors"
	"fmt"
)

const (
	persistenceErrorTemplateConstant            = "%s %s: %s"
	persistenceErrorWithoutPathTemplateConstant = "%s: %s"
	unsupportedDocumentMessageConstant          = "configuration document must be an object or an array of paths"
	fileSystemNotConfiguredMessageConstant      = "file store requires a filesystem"
	storePathNotConfiguredMessageConstant       = "file store requires a path"

	operationEncodeConstant = "encode configuration"
	operationDecodeConstant = "decode configuration"
	operationLoadConstant   = "load configuration"
	operationSaveConstant   = "save configuration"
)

// ErrUnsupportedDocument indicates JSON that is neither the object nor the legacy array layout.
var ErrUnsupportedDocument = errors.New(unsupportedDocumentMessageConstant)

// ErrFileSystemNotConfigured indicates that NewFileStore received a nil filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)

// ErrStorePathNotConfigured indicates that NewFileStore received a blank path.
var ErrStorePathNotConfigured = errors.New(storePathNotConfiguredMessageConstant)

// PersistenceError reports a failure to read, write or translate the configuration document.
type PersistenceError struct {
	Operation string
	Path      string
	Cause     error
}

func (persistenceError PersistenceError) Error() string {
	if len(persistenceError.Path) == 0 {
		return fmt.Sprintf(persistenceErrorWithoutPathTemplateConstant, persistenceError.Operation, persistenceError.Cause)
	}
	return fmt.Sprintf(persistenceErrorTemplateConstant, persistenceError.Operation, persistenceError.Path, persistenceError.Cause)
}

func (persistenceError PersistenceError) Unwrap() error {
	return persistenceError.Cause
}
