package discovery_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/repos/discovery"
)

const (
	developerDirectoryName             = "Dev"
	engineeringGroupDirectoryName      = "Group1"
	applicationRepositoryDirectoryName = "Repo1"
	serviceRepositoryDirectoryName     = "Repo2"
	toolsRepositoryDirectoryName       = "Repo3"
	mercurialMetadataDirectoryName     = ".hg"
	singleRootSubtestTitle             = "discoversRepositoriesFromSingleRoot"
	combinedRootsSubtestTitle          = "reportsRepositoriesOncePerOverlappingRoot"
	repositoryDirectoryPermissions     = 0o755
)

type repositoryDefinition struct {
	directorySegments []string
}

func (definition repositoryDefinition) repositoryPath(rootDirectory string) string {
	segments := append([]string{rootDirectory}, definition.directorySegments...)
	return filepath.Join(segments...)
}

func (definition repositoryDefinition) metadataPath(rootDirectory string) string {
	return filepath.Join(definition.repositoryPath(rootDirectory), mercurialMetadataDirectoryName)
}

func createRepositories(testFramework *testing.T, rootDirectory string, repositoryDefinitions []repositoryDefinition) {
	testFramework.Helper()
	for _, repositoryDefinition := range repositoryDefinitions {
		creationError := os.MkdirAll(filepath.Join(repositoryDefinition.metadataPath(rootDirectory), "store"), repositoryDirectoryPermissions)
		require.NoError(testFramework, creationError)
	}
}

func TestFilesystemRepositoryDiscovererDiscoversNestedLayouts(testFramework *testing.T) {
	repositoryDefinitions := []repositoryDefinition{
		{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, applicationRepositoryDirectoryName}},
		{directorySegments: []string{developerDirectoryName, engineeringGroupDirectoryName, serviceRepositoryDirectoryName}},
		{directorySegments: []string{developerDirectoryName, toolsRepositoryDirectoryName}},
	}

	testScenarios := []struct {
		title                      string
		rootDirectoriesConstructor func(string) []string
		expectedMultiplicity       map[string]int
	}{
		{
			title: singleRootSubtestTitle,
			rootDirectoriesConstructor: func(rootDirectory string) []string {
				return []string{rootDirectory}
			},
			expectedMultiplicity: map[string]int{
				applicationRepositoryDirectoryName: 1,
				serviceRepositoryDirectoryName:     1,
				toolsRepositoryDirectoryName:       1,
			},
		},
		{
			title: combinedRootsSubtestTitle,
			rootDirectoriesConstructor: func(rootDirectory string) []string {
				developerDirectoryPath := filepath.Join(rootDirectory, developerDirectoryName)
				engineeringGroupDirectoryPath := filepath.Join(developerDirectoryPath, engineeringGroupDirectoryName)
				return []string{rootDirectory, engineeringGroupDirectoryPath}
			},
			expectedMultiplicity: map[string]int{
				applicationRepositoryDirectoryName: 2,
				serviceRepositoryDirectoryName:     2,
				toolsRepositoryDirectoryName:       1,
			},
		},
	}

	for _, testScenario := range testScenarios {
		testFramework.Run(testScenario.title, func(testFramework *testing.T) {
			temporaryRootDirectory := testFramework.TempDir()
			createRepositories(testFramework, temporaryRootDirectory, repositoryDefinitions)

			discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories(
				testScenario.rootDirectoriesConstructor(temporaryRootDirectory),
			)
			require.NoError(testFramework, discoveryError)

			var expectedRepositories []string
			for _, repositoryDefinition := range repositoryDefinitions {
				repositoryName := repositoryDefinition.directorySegments[len(repositoryDefinition.directorySegments)-1]
				for occurrence := 0; occurrence < testScenario.expectedMultiplicity[repositoryName]; occurrence++ {
					expectedRepositories = append(expectedRepositories, repositoryDefinition.repositoryPath(temporaryRootDirectory))
				}
			}

			sort.Strings(expectedRepositories)
			sort.Strings(discoveredRepositories)
			require.Equal(testFramework, expectedRepositories, discoveredRepositories)
		})
	}
}

func TestFilesystemRepositoryDiscovererIgnoresMissingRootsAndMarkerFiles(testFramework *testing.T) {
	temporaryRootDirectory := testFramework.TempDir()
	markerFileRepository := filepath.Join(temporaryRootDirectory, "not-a-repo")
	require.NoError(testFramework, os.MkdirAll(markerFileRepository, repositoryDirectoryPermissions))
	require.NoError(testFramework, os.WriteFile(filepath.Join(markerFileRepository, mercurialMetadataDirectoryName), []byte("x"), 0o644))

	discoveredRepositories, discoveryError := discovery.NewFilesystemRepositoryDiscoverer().DiscoverRepositories([]string{
		filepath.Join(temporaryRootDirectory, "missing"),
		temporaryRootDirectory,
	})
	require.NoError(testFramework, discoveryError)
	require.Empty(testFramework, discoveredRepositories)
}
