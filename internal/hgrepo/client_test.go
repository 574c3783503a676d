package hgrepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/hgrepo/hgfake"
	"github.com/temirov/manahg/internal/repository"
)

const (
	clientTestRepositoryPath = "/work/alpha"
	clientTestAbortMessage   = "abort: repository /work/alpha not found"
)

func TestNewClientRequiresExecutor(testInstance *testing.T) {
	client, creationError := hgrepo.NewClient(nil)
	require.Nil(testInstance, client)
	require.ErrorIs(testInstance, creationError, hgrepo.ErrExecutorNotConfigured)
}

func TestClientRefresh(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configure     func(executor *hgfake.Executor)
		expectedState repository.State
	}{
		{
			name: "clean_draft_repository",
			configure: func(executor *hgfake.Executor) {
				executor.ScriptState(clientTestRepositoryPath, "default", "42", "", "draft")
			},
			expectedState: repository.State{CurrentBranch: "default", Revision: "42", Modified: false, CommitType: "Draft"},
		},
		{
			name: "modified_public_repository",
			configure: func(executor *hgfake.Executor) {
				executor.ScriptState(clientTestRepositoryPath, "feature", "7+", "M src/main.c", "public")
			},
			expectedState: repository.State{CurrentBranch: "feature", Revision: "7+", Modified: true, CommitType: "Public"},
		},
		{
			name:      "every_query_fails",
			configure: func(executor *hgfake.Executor) {},
			expectedState: repository.State{
				CurrentBranch: repository.BranchUnknownSentinel,
				Revision:      repository.RevisionUnknownSentinel,
				Modified:      false,
				CommitType:    repository.PhaseUnknownSentinel,
			},
		},
		{
			name: "status_failure_counts_as_clean",
			configure: func(executor *hgfake.Executor) {
				executor.ScriptState(clientTestRepositoryPath, "default", "3", "", "secret")
				executor.Script(clientTestRepositoryPath, "status -q", hgfake.Response{Error: clientTestAbortMessage})
			},
			expectedState: repository.State{CurrentBranch: "default", Revision: "3", Modified: false, CommitType: "Secret"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := hgfake.NewExecutor()
			testCase.configure(executor)
			client, creationError := hgrepo.NewClient(executor)
			require.NoError(testInstance, creationError)

			original := repository.New(clientTestRepositoryPath).WithStatus("Pulling...")
			refreshed := client.Refresh(context.Background(), original)

			require.Equal(testInstance, testCase.expectedState, refreshed.State)
			require.Equal(testInstance, clientTestRepositoryPath, refreshed.Path)
			require.Equal(testInstance, "Pulling...", refreshed.LastStatus)
		})
	}
}

func TestClientListBranches(testInstance *testing.T) {
	executor := hgfake.NewExecutor().Script(clientTestRepositoryPath, "branches", hgfake.Response{
		Output: "default                      42:abcdef012345\nstable                       40:0123456789ab (inactive)\n\n",
	})
	client, creationError := hgrepo.NewClient(executor)
	require.NoError(testInstance, creationError)

	branchNames, listError := client.ListBranches(context.Background(), clientTestRepositoryPath)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"default", "stable"}, branchNames)
}

func TestClientOperationsIssueExpectedCommands(testInstance *testing.T) {
	knownBranchRecord := repository.New(clientTestRepositoryPath).WithState(repository.State{CurrentBranch: "stable"})

	testCases := []struct {
		name            string
		operation       func(client *hgrepo.Client) (string, error)
		expectedCommand string
	}{
		{
			name: "pull_all",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.PullAll(context.Background(), clientTestRepositoryPath)
			},
			expectedCommand: "pull",
		},
		{
			name: "pull_current",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.PullCurrent(context.Background(), knownBranchRecord)
			},
			expectedCommand: "pull -b stable",
		},
		{
			name: "update_to_latest",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.UpdateToLatest(context.Background(), clientTestRepositoryPath)
			},
			expectedCommand: "update",
		},
		{
			name: "update_branch",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.UpdateBranch(context.Background(), clientTestRepositoryPath, "default")
			},
			expectedCommand: "update default",
		},
		{
			name: "commit",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.Commit(context.Background(), clientTestRepositoryPath, "fix build")
			},
			expectedCommand: "commit -m fix build",
		},
		{
			name: "revert_all",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.RevertAll(context.Background(), clientTestRepositoryPath)
			},
			expectedCommand: "revert --all",
		},
		{
			name: "update_to_last_public",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.UpdateToLastPublic(context.Background(), knownBranchRecord)
			},
			expectedCommand: `update -r last(public() and branch("stable"))`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := hgfake.NewExecutor().Script(clientTestRepositoryPath, testCase.expectedCommand, hgfake.Response{Output: " done \n"})
			client, creationError := hgrepo.NewClient(executor)
			require.NoError(testInstance, creationError)

			output, operationError := testCase.operation(client)
			require.NoError(testInstance, operationError)
			require.Equal(testInstance, "done", output)
			require.Equal(testInstance, []string{testCase.expectedCommand}, executor.CallsFor(clientTestRepositoryPath))
		})
	}
}

func TestClientOperationSurfacesStandardError(testInstance *testing.T) {
	executor := hgfake.NewExecutor().Script(clientTestRepositoryPath, "pull", hgfake.Response{Error: clientTestAbortMessage})
	client, creationError := hgrepo.NewClient(executor)
	require.NoError(testInstance, creationError)

	_, pullError := client.PullAll(context.Background(), clientTestRepositoryPath)
	require.EqualError(testInstance, pullError, clientTestAbortMessage)
}

func TestClientPreconditionsSkipMercurial(testInstance *testing.T) {
	testCases := []struct {
		name      string
		operation func(client *hgrepo.Client) (string, error)
	}{
		{
			name: "pull_current_with_empty_branch",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.PullCurrent(context.Background(), repository.New(clientTestRepositoryPath))
			},
		},
		{
			name: "pull_current_with_error_branch",
			operation: func(client *hgrepo.Client) (string, error) {
				record := repository.New(clientTestRepositoryPath).WithState(repository.State{CurrentBranch: repository.BranchUnknownSentinel})
				return client.PullCurrent(context.Background(), record)
			},
		},
		{
			name: "update_to_last_public_with_error_branch",
			operation: func(client *hgrepo.Client) (string, error) {
				record := repository.New(clientTestRepositoryPath).WithState(repository.State{CurrentBranch: repository.BranchUnknownSentinel})
				return client.UpdateToLastPublic(context.Background(), record)
			},
		},
		{
			name: "commit_with_blank_message",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.Commit(context.Background(), clientTestRepositoryPath, "   ")
			},
		},
		{
			name: "update_branch_with_blank_target",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.UpdateBranch(context.Background(), clientTestRepositoryPath, "")
			},
		},
		{
			name: "update_branch_with_option_target",
			operation: func(client *hgrepo.Client) (string, error) {
				return client.UpdateBranch(context.Background(), clientTestRepositoryPath, "--clean")
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := hgfake.NewExecutor()
			client, creationError := hgrepo.NewClient(executor)
			require.NoError(testInstance, creationError)

			_, operationError := testCase.operation(client)
			var preconditionError hgrepo.PreconditionError
			require.ErrorAs(testInstance, operationError, &preconditionError)
			require.Empty(testInstance, executor.Calls())
		})
	}
}

func TestClientBranchSummary(testInstance *testing.T) {
	executor := hgfake.NewExecutor().
		Script("/work/alpha", "branches", hgfake.Response{Output: "default 1:aa\nstable 0:bb"}).
		Script("/work/beta", "branches", hgfake.Response{Output: "stable 3:cc\nfeature 2:dd\ndefault 1:ee"}).
		Script("/work/gamma", "branches", hgfake.Response{Output: "feature 5:ff"})
	client, creationError := hgrepo.NewClient(executor)
	require.NoError(testInstance, creationError)

	summary := client.BranchSummary(context.Background(), []string{"/work/alpha", "/work/beta", "/work/gamma", "/work/missing"})
	require.Equal(testInstance, []hgrepo.BranchCount{
		{Name: "default", Count: 2},
		{Name: "feature", Count: 2},
		{Name: "stable", Count: 2},
	}, summary)
}
