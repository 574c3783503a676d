package discovery_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/hgrepo/hgfake"
	"github.com/temirov/manahg/internal/repos/discovery"
	"github.com/temirov/manahg/internal/repository"
)

type progressRecorder struct {
	mutex    sync.Mutex
	messages []string
}

func (recorder *progressRecorder) report(progressText string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.messages = append(recorder.messages, progressText)
}

type stubDiscoverer struct {
	repositoriesByRoot map[string][]string
	discoveryError     error
}

func (discoverer stubDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	if discoverer.discoveryError != nil {
		return nil, discoverer.discoveryError
	}
	var repositories []string
	for _, root := range roots {
		repositories = append(repositories, discoverer.repositoriesByRoot[root]...)
	}
	return repositories, nil
}

func TestScannerDiscoversAndRefreshesRepositories(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	cleanRepositoryPath := filepath.Join(rootDirectory, "R1")
	dirtyRepositoryPath := filepath.Join(rootDirectory, "R2")
	for _, repositoryPath := range []string{cleanRepositoryPath, dirtyRepositoryPath} {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, mercurialMetadataDirectoryName), repositoryDirectoryPermissions))
	}

	executor := hgfake.NewExecutor().
		ScriptState(cleanRepositoryPath, "default", "10", "", "public").
		ScriptState(dirtyRepositoryPath, "feature", "4", "M file.txt", "draft")
	client, clientError := hgrepo.NewClient(executor)
	require.NoError(testInstance, clientError)

	scanner, scannerError := discovery.NewScanner(zap.NewNop(), client)
	require.NoError(testInstance, scannerError)

	recorder := &progressRecorder{}
	records, scanError := scanner.Scan(context.Background(), []string{"  " + rootDirectory + " "}, recorder.report)
	require.NoError(testInstance, scanError)

	require.ElementsMatch(testInstance, []repository.Record{
		{Path: cleanRepositoryPath, State: repository.State{CurrentBranch: "default", Revision: "10", Modified: false, CommitType: "Public"}},
		{Path: dirtyRepositoryPath, State: repository.State{CurrentBranch: "feature", Revision: "4", Modified: true, CommitType: "Draft"}},
	}, records)
	require.Equal(testInstance, []string{
		"Walking directories...",
		fmt.Sprintf("Walking %s...", rootDirectory),
		"Analyzing 2 repositories...",
	}, recorder.messages)
}

func TestScannerHonorsParallelLimitAndKeepsDiscoveryOrder(testInstance *testing.T) {
	candidatePaths := []string{"/work/a", "/work/b", "/work/c", "/work/a"}
	executor := hgfake.NewExecutor()
	for _, candidatePath := range candidatePaths {
		executor.ScriptState(candidatePath, "default", "1", "", "draft")
	}
	client, clientError := hgrepo.NewClient(executor)
	require.NoError(testInstance, clientError)

	scanner, scannerError := discovery.NewScannerWithConfiguration(
		zap.NewNop(),
		stubDiscoverer{repositoriesByRoot: map[string][]string{"/work": candidatePaths}},
		client,
		discovery.ScannerConfiguration{MaxParallelRefreshes: 1},
	)
	require.NoError(testInstance, scannerError)

	records, scanError := scanner.Scan(context.Background(), []string{"/work"}, nil)
	require.NoError(testInstance, scanError)
	require.Equal(testInstance, candidatePaths, repository.Paths(records))
}

func TestScannerPropagatesDiscoveryFailure(testInstance *testing.T) {
	client, clientError := hgrepo.NewClient(hgfake.NewExecutor())
	require.NoError(testInstance, clientError)

	discoveryFailure := fmt.Errorf("permission denied")
	scanner, scannerError := discovery.NewScannerWithConfiguration(zap.NewNop(), stubDiscoverer{discoveryError: discoveryFailure}, client, discovery.ScannerConfiguration{})
	require.NoError(testInstance, scannerError)

	_, scanError := scanner.Scan(context.Background(), []string{"/work"}, nil)
	require.ErrorIs(testInstance, scanError, discoveryFailure)
}

func TestNewScannerValidatesCollaborators(testInstance *testing.T) {
	_, refresherError := discovery.NewScanner(zap.NewNop(), nil)
	require.ErrorIs(testInstance, refresherError, discovery.ErrRefresherNotConfigured)

	client, clientError := hgrepo.NewClient(hgfake.NewExecutor())
	require.NoError(testInstance, clientError)
	_, discovererError := discovery.NewScannerWithConfiguration(zap.NewNop(), nil, client, discovery.ScannerConfiguration{})
	require.ErrorIs(testInstance, discovererError, discovery.ErrDiscovererNotConfigured)
}
