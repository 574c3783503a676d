package execshell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sort"
	"time"
)

// cancelledProcessWaitDelay bounds how long Run waits for output pipes after the context kills hg.
const cancelledProcessWaitDelay = 2 * time.Second

// OSCommandRunner runs commands as child processes through os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run waits for the process and captures both output streams.
// A non-zero exit is a result, not an error; the error is reserved for processes that could not run.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := newProcess(executionContext, command)

	var standardOutput, standardError bytes.Buffer
	process.Stdout = &standardOutput
	process.Stderr = &standardError
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	result := ExecutionResult{}
	if runError := process.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		result.ExitCode = exitError.ExitCode()
	}

	result.StandardOutput = standardOutput.String()
	result.StandardError = standardError.String()
	return result, nil
}

// Start launches a detached process, such as the TortoiseHg workbench, and reaps it in the background.
func (runner *OSCommandRunner) Start(command ShellCommand) error {
	process := newProcess(context.Background(), command)
	if startError := process.Start(); startError != nil {
		return CommandExecutionError{Command: command, Cause: startError}
	}
	go func() {
		_ = process.Wait()
	}()
	return nil
}

func newProcess(executionContext context.Context, command ShellCommand) *exec.Cmd {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.WaitDelay = cancelledProcessWaitDelay

	if len(command.Details.EnvironmentVariables) > 0 {
		variableNames := make([]string, 0, len(command.Details.EnvironmentVariables))
		for variableName := range command.Details.EnvironmentVariables {
			variableNames = append(variableNames, variableName)
		}
		sort.Strings(variableNames)

		environment := process.Environ()
		for _, variableName := range variableNames {
			environment = append(environment, variableName+"="+command.Details.EnvironmentVariables[variableName])
		}
		process.Env = environment
	}

	suppressConsoleWindow(process)
	return process
}
