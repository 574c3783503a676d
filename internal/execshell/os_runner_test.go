package execshell_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manahg/internal/execshell"
)

func TestOSCommandRunnerCapturesStreamsAndExitCode(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}

	workingDirectory := testInstance.TempDir()
	runner := execshell.NewOSCommandRunner()

	executionResult, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName("sh"),
		Details: execshell.CommandDetails{
			Arguments:            []string{"-c", "pwd; echo \"$MANAHG_TEST_VALUE\"; echo problem >&2; exit 3"},
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: map[string]string{"MANAHG_TEST_VALUE": "present"},
		},
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, 3, executionResult.ExitCode)
	require.Contains(testInstance, executionResult.StandardOutput, "present")
	require.Equal(testInstance, "problem\n", executionResult.StandardError)
}

func TestOSCommandRunnerReportsMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandName("manahg-definitely-missing-executable"),
	})
	require.Error(testInstance, runError)
}
