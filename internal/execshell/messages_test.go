package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterDescribesMercurialVerbs(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		stage           messageStage
		result          ExecutionResult
		failure         error
		expectedMessage string
	}{
		{
			name:            "pull_current_branch_start",
			arguments:       []string{"pull", "-b", "feature"},
			stage:           messageStageStart,
			expectedMessage: "Pulling branch feature into /workspace/repo",
		},
		{
			name:            "pull_all_success",
			arguments:       []string{"pull"},
			stage:           messageStageSuccess,
			expectedMessage: "Pulled all branches into /workspace/repo",
		},
		{
			name:            "update_without_target",
			arguments:       []string{"update"},
			stage:           messageStageStart,
			expectedMessage: "Updating /workspace/repo to latest revision",
		},
		{
			name:            "update_to_revset",
			arguments:       []string{"update", "-r", "last(public())"},
			stage:           messageStageSuccess,
			expectedMessage: "Updated /workspace/repo to last(public())",
		},
		{
			name:            "commit_failure",
			arguments:       []string{"commit", "-m", "fix"},
			stage:           messageStageFailure,
			result:          ExecutionResult{ExitCode: 1, StandardError: "nothing changed\n"},
			expectedMessage: "Failed to commit in /workspace/repo with message \"fix\" (exit code 1: nothing changed)",
		},
		{
			name:            "branch_execution_failure",
			arguments:       []string{"branch"},
			stage:           messageStageExecutionFailure,
			failure:         errors.New("executable not found"),
			expectedMessage: "Unable to identify current branch in /workspace/repo: executable not found",
		},
		{
			name:            "unknown_verb_falls_back",
			arguments:       []string{"outgoing"},
			stage:           messageStageStart,
			expectedMessage: "Running hg outgoing (in /workspace/repo)",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := ShellCommand{
				Name: CommandMercurial,
				Details: CommandDetails{
					Arguments:        testCase.arguments,
					WorkingDirectory: "/workspace/repo",
				},
			}
			message := formatter.buildMessage(command, testCase.result, testCase.failure, testCase.stage)
			require.Equal(testInstance, testCase.expectedMessage, message)
		})
	}
}
