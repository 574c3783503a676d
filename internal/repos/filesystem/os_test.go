package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/repos/filesystem"
)

func TestOSFileSystemReplacesDocument(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	directory := filepath.Join(testInstance.TempDir(), "manahg")
	documentPath := filepath.Join(directory, "configuration.json")
	temporaryPath := documentPath + ".tmp"

	require.NoError(testInstance, fileSystem.MkdirAll(directory, 0o755))
	require.NoError(testInstance, fileSystem.WriteFile(temporaryPath, []byte(`["/work/alpha"]`), 0o600))
	require.NoError(testInstance, fileSystem.Rename(temporaryPath, documentPath))

	contents, readError := fileSystem.ReadFile(documentPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, `["/work/alpha"]`, string(contents))

	require.NoError(testInstance, fileSystem.WriteFile(documentPath, []byte(`[]`), 0o600))
	contents, readError = fileSystem.ReadFile(documentPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, `[]`, string(contents))

	_, statError := os.Stat(temporaryPath)
	require.ErrorIs(testInstance, statError, os.ErrNotExist)
}

func TestOSFileSystemRemoveIgnoresMissingPaths(testInstance *testing.T) {
	fileSystem := filesystem.OSFileSystem{}
	documentPath := filepath.Join(testInstance.TempDir(), "configuration.json.tmp")

	require.NoError(testInstance, fileSystem.Remove(documentPath))
	require.NoError(testInstance, fileSystem.WriteFile(documentPath, []byte("{}"), 0o600))
	require.NoError(testInstance, fileSystem.Remove(documentPath))

	_, statError := os.Stat(documentPath)
	require.ErrorIs(testInstance, statError, os.ErrNotExist)
}

func TestOSFileSystemWriteFailsInMissingDirectory(testInstance *testing.T) {
	documentPath := filepath.Join(testInstance.TempDir(), "absent", "configuration.json")
	require.Error(testInstance, filesystem.OSFileSystem{}.WriteFile(documentPath, []byte("{}"), 0o600))
}
