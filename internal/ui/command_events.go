package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/execshell"
)

const (
	repositoryFieldConstant = "repository"
	subcommandFieldConstant = "subcommand"
)

// queryingSubcommands only read repository state; a refresh runs four of them per repository.
var queryingSubcommands = map[string]struct{}{
	"branch":   {},
	"branches": {},
	"id":       {},
	"log":      {},
	"status":   {},
}

// CommandEventLogger writes one human-readable entry per Mercurial lifecycle event.
// Queries are logged at debug level so a fleet refresh does not flood the info stream.
type CommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewCommandEventLogger constructs an event logger backed by logger.
func NewCommandEventLogger(logger *zap.Logger) *CommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandEventLogger{logger: logger}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *CommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(command), commandFields(command)...)
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are warnings.
func (eventLogger *CommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	fields := commandFields(command)
	switch {
	case result.ExitCode != 0:
		eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result), fields...)
	case isQuery(command):
		eventLogger.logger.Debug(eventLogger.formatter.BuildSuccessMessage(command), fields...)
	default:
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), fields...)
	}
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *CommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure), commandFields(command)...)
}

func commandFields(command execshell.ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(repositoryFieldConstant, command.Details.WorkingDirectory),
		zap.String(subcommandFieldConstant, subcommandOf(command)),
	}
}

func isQuery(command execshell.ShellCommand) bool {
	_, querying := queryingSubcommands[subcommandOf(command)]
	return querying
}

func subcommandOf(command execshell.ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return ""
	}
	return command.Details.Arguments[0]
}
