package discovery

import (
	"io/fs"
	"path/filepath"
)

const mercurialMetadataDirectoryNameConstant = ".hg"

// FilesystemRepositoryDiscoverer locates Mercurial repositories on disk.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories walks the provided roots and returns every directory holding a .hg directory.
// Unreadable entries are skipped. Overlapping roots yield the same repository more than once.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	var repositories []string
	for _, root := range roots {
		repositories = append(repositories, discoverer.discoverRoot(root)...)
	}
	return repositories, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) discoverRoot(root string) []string {
	var repositories []string
	_ = filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return nil
		}

		if !directoryEntry.IsDir() || directoryEntry.Name() != mercurialMetadataDirectoryNameConstant {
			return nil
		}

		repositories = append(repositories, filepath.Dir(path))
		return fs.SkipDir
	})
	return repositories
}
