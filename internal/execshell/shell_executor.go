package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultMercurialExecutableConstant        = "hg"
	plainOutputVariableConstant               = "HGPLAIN"
	plainOutputEnabledConstant                = "1"
	loggerNotConfiguredMessageConstant        = "shell executor requires a logger"
	commandRunnerNotConfiguredMessageConstant = "shell executor requires a command runner"
	commandFailedFallbackTemplateConstant     = "%s failed with exit code %d"
	commandExecutionFailedTemplateConstant    = "%s failed: %s"
	logFieldCommandConstant                   = "command"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
	commandStartedLogMessageConstant          = "mercurial command started"
	commandCompletedLogMessageConstant        = "mercurial command completed"
	commandRunnerFailedLogMessageConstant     = "mercurial command could not be executed"
)

// ErrLoggerNotConfigured indicates that NewShellExecutor received a nil logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates that NewShellExecutor received a nil runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandName identifies the executable to invoke.
type CommandName string

// CommandMercurial is the default Mercurial client executable.
const CommandMercurial CommandName = CommandName(defaultMercurialExecutableConstant)

// CommandDetails describes the argument vector and process environment of one invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines an executable name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a single command to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a process that exited with a non-zero status.
// Its message is the trimmed standard error so callers can surface it verbatim.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		return trimmedStandardError
	}
	return fmt.Sprintf(commandFailedFallbackTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (failure CommandExecutionError) Error() string {
	causeMessage := unknownFailureMessageConstant
	if failure.Cause != nil {
		causeMessage = failure.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, describeCommand(failure.Command), causeMessage)
}

func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandEventObserver is told about every Mercurial process the executor runs.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	// CommandCompleted receives the result of a process that exited, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed receives processes that could not be spawned or awaited.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// ShellExecutorConfiguration customizes executor behavior.
type ShellExecutorConfiguration struct {
	MercurialExecutable string
	Observer            CommandEventObserver
}

// ShellExecutor runs Mercurial commands through a CommandRunner with logging and events.
type ShellExecutor struct {
	logger              *zap.Logger
	runner              CommandRunner
	observer            CommandEventObserver
	mercurialExecutable CommandName
}

// NewShellExecutor constructs a ShellExecutor invoking the default hg executable.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithConfiguration(logger, runner, ShellExecutorConfiguration{})
}

// NewShellExecutorWithConfiguration constructs a ShellExecutor using the provided configuration.
func NewShellExecutorWithConfiguration(logger *zap.Logger, runner CommandRunner, configuration ShellExecutorConfiguration) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executable := CommandMercurial
	if trimmedExecutable := strings.TrimSpace(configuration.MercurialExecutable); len(trimmedExecutable) > 0 {
		executable = CommandName(trimmedExecutable)
	}

	return &ShellExecutor{
		logger:              logger,
		runner:              runner,
		observer:            configuration.Observer,
		mercurialExecutable: executable,
	}, nil
}

// ExecuteMercurial runs hg with the supplied details and returns trimmed standard output.
// HGPLAIN is set unless the caller provides it, so user aliases and localization cannot change parsed output.
func (executor *ShellExecutor) ExecuteMercurial(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	details.EnvironmentVariables = withPlainOutput(details.EnvironmentVariables)
	command := ShellCommand{Name: executor.mercurialExecutable, Details: details}
	return executor.execute(executionContext, command)
}

func withPlainOutput(environment map[string]string) map[string]string {
	merged := make(map[string]string, len(environment)+1)
	merged[plainOutputVariableConstant] = plainOutputEnabledConstant
	for variableName, variableValue := range environment {
		merged[variableName] = variableValue
	}
	return merged
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandLabel := describeCommand(command)
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, commandLabel),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	if executor.observer != nil {
		executor.observer.CommandStarted(command)
	}

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Debug(
			commandRunnerFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, commandLabel),
			zap.Error(runError),
		)
		if executor.observer != nil {
			executor.observer.CommandExecutionFailed(command, runError)
		}
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandConstant, commandLabel),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
	)
	if executor.observer != nil {
		executor.observer.CommandCompleted(command, executionResult)
	}

	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executionResult.StandardOutput = strings.TrimSpace(executionResult.StandardOutput)
	executionResult.StandardError = strings.TrimSpace(executionResult.StandardError)
	return executionResult, nil
}

func describeCommand(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return commandLabel
}
