package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/repository"
)

func TestRecordBranchKnown(testInstance *testing.T) {
	testCases := []struct {
		name          string
		branch        string
		expectedKnown bool
	}{
		{name: "resolved_branch", branch: "default", expectedKnown: true},
		{name: "empty_branch", branch: "", expectedKnown: false},
		{name: "error_sentinel", branch: repository.BranchUnknownSentinel, expectedKnown: false},
		{name: "error_prefixed", branch: "ERROR: abort", expectedKnown: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			record := repository.New("/work/repo").WithState(repository.State{CurrentBranch: testCase.branch})
			require.Equal(testInstance, testCase.expectedKnown, record.BranchKnown())
		})
	}
}

func TestRecordDisplayHelpers(testInstance *testing.T) {
	repositoryPath := filepath.Join("work", "projects", "alpha")
	record := repository.New(repositoryPath).WithState(repository.State{Modified: true})

	require.Equal(testInstance, repositoryPath, record.DisplayPath(true))
	require.Equal(testInstance, "alpha", record.DisplayPath(false))
	require.Equal(testInstance, "Yes", record.ModifiedLabel())
	require.Equal(testInstance, "No", repository.New(repositoryPath).ModifiedLabel())
	require.Equal(testInstance, []string{repositoryPath}, repository.Paths([]repository.Record{record}))
}
