package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	optionPrefixConstant                    = "-"
)

const (
	mercurialBranchSubcommandNameConstant   = "branch"
	mercurialBranchesSubcommandNameConstant = "branches"
	mercurialLogSubcommandNameConstant      = "log"
	mercurialIdentifySubcommandNameConstant = "id"
	mercurialStatusSubcommandNameConstant   = "status"
	mercurialPullSubcommandNameConstant     = "pull"
	mercurialUpdateSubcommandNameConstant   = "update"
	mercurialCommitSubcommandNameConstant   = "commit"
	mercurialRevertSubcommandNameConstant   = "revert"
	mercurialBranchFlagConstant             = "-b"
	mercurialRevisionFlagConstant           = "-r"
	mercurialMessageFlagConstant            = "-m"
)

const (
	branchQueryStartTemplateConstant             = "Identifying current branch in %s"
	branchQuerySuccessTemplateConstant           = "Identified current branch in %s"
	branchQueryFailureTemplateConstant           = "Failed to identify current branch in %s (exit code %d%s)"
	branchQueryExecutionFailureTemplateConstant  = "Unable to identify current branch in %s: %s"
	branchesStartTemplateConstant                = "Listing branches in %s"
	branchesSuccessTemplateConstant              = "Listed branches in %s"
	branchesFailureTemplateConstant              = "Failed to list branches in %s (exit code %d%s)"
	branchesExecutionFailureTemplateConstant     = "Unable to list branches in %s: %s"
	phaseStartTemplateConstant                   = "Reading phase of working revision in %s"
	phaseSuccessTemplateConstant                 = "Read phase of working revision in %s"
	phaseFailureTemplateConstant                 = "Failed to read phase in %s (exit code %d%s)"
	phaseExecutionFailureTemplateConstant        = "Unable to read phase in %s: %s"
	identifyStartTemplateConstant                = "Resolving working revision in %s"
	identifySuccessTemplateConstant              = "Resolved working revision in %s"
	identifyFailureTemplateConstant              = "Failed to resolve working revision in %s (exit code %d%s)"
	identifyExecutionFailureTemplateConstant     = "Unable to resolve working revision in %s: %s"
	statusStartTemplateConstant                  = "Reviewing working copy status in %s"
	statusSuccessTemplateConstant                = "Collected working copy status for %s"
	statusFailureTemplateConstant                = "Failed to review working copy status in %s (exit code %d%s)"
	statusExecutionFailureTemplateConstant       = "Unable to review working copy status in %s: %s"
	pullBranchStartTemplateConstant              = "Pulling branch %s into %s"
	pullBranchSuccessTemplateConstant            = "Pulled branch %s into %s"
	pullBranchFailureTemplateConstant            = "Failed to pull branch %s into %s (exit code %d%s)"
	pullBranchExecutionFailureTemplateConstant   = "Unable to pull branch %s into %s: %s"
	pullAllStartTemplateConstant                 = "Pulling all branches into %s"
	pullAllSuccessTemplateConstant               = "Pulled all branches into %s"
	pullAllFailureTemplateConstant               = "Failed to pull into %s (exit code %d%s)"
	pullAllExecutionFailureTemplateConstant      = "Unable to pull into %s: %s"
	updateTargetStartTemplateConstant            = "Updating %s to %s"
	updateTargetSuccessTemplateConstant          = "Updated %s to %s"
	updateTargetFailureTemplateConstant          = "Failed to update %s to %s (exit code %d%s)"
	updateTargetExecutionFailureTemplateConstant = "Unable to update %s to %s: %s"
	updateLatestTargetLabelConstant              = "latest revision"
	commitStartTemplateConstant                  = "Committing in %s with message %q"
	commitSuccessTemplateConstant                = "Committed in %s with message %q"
	commitFailureTemplateConstant                = "Failed to commit in %s with message %q (exit code %d%s)"
	commitExecutionFailureTemplateConstant       = "Unable to commit in %s with message %q: %s"
	revertStartTemplateConstant                  = "Reverting all changes in %s"
	revertSuccessTemplateConstant                = "Reverted all changes in %s"
	revertFailureTemplateConstant                = "Failed to revert changes in %s (exit code %d%s)"
	revertExecutionFailureTemplateConstant       = "Unable to revert changes in %s: %s"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for Mercurial command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case mercurialBranchSubcommandNameConstant:
		return formatter.render(stageTemplates{branchQueryStartTemplateConstant, branchQuerySuccessTemplateConstant, branchQueryFailureTemplateConstant, branchQueryExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	case mercurialBranchesSubcommandNameConstant:
		return formatter.render(stageTemplates{branchesStartTemplateConstant, branchesSuccessTemplateConstant, branchesFailureTemplateConstant, branchesExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	case mercurialLogSubcommandNameConstant:
		return formatter.render(stageTemplates{phaseStartTemplateConstant, phaseSuccessTemplateConstant, phaseFailureTemplateConstant, phaseExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	case mercurialIdentifySubcommandNameConstant:
		return formatter.render(stageTemplates{identifyStartTemplateConstant, identifySuccessTemplateConstant, identifyFailureTemplateConstant, identifyExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	case mercurialStatusSubcommandNameConstant:
		return formatter.render(stageTemplates{statusStartTemplateConstant, statusSuccessTemplateConstant, statusFailureTemplateConstant, statusExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	case mercurialPullSubcommandNameConstant:
		branchName := formatter.flagValue(arguments, mercurialBranchFlagConstant)
		if len(branchName) == 0 {
			return formatter.render(stageTemplates{pullAllStartTemplateConstant, pullAllSuccessTemplateConstant, pullAllFailureTemplateConstant, pullAllExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
		}
		return formatter.render(stageTemplates{pullBranchStartTemplateConstant, pullBranchSuccessTemplateConstant, pullBranchFailureTemplateConstant, pullBranchExecutionFailureTemplateConstant}, result, failure, stage, branchName, workingDirectory)
	case mercurialUpdateSubcommandNameConstant:
		return formatter.render(stageTemplates{updateTargetStartTemplateConstant, updateTargetSuccessTemplateConstant, updateTargetFailureTemplateConstant, updateTargetExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory, formatter.updateTarget(arguments))
	case mercurialCommitSubcommandNameConstant:
		return formatter.render(stageTemplates{commitStartTemplateConstant, commitSuccessTemplateConstant, commitFailureTemplateConstant, commitExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory, formatter.flagValue(arguments, mercurialMessageFlagConstant))
	case mercurialRevertSubcommandNameConstant:
		return formatter.render(stageTemplates{revertStartTemplateConstant, revertSuccessTemplateConstant, revertFailureTemplateConstant, revertExecutionFailureTemplateConstant}, result, failure, stage, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) render(templates stageTemplates, result ExecutionResult, failure error, stage messageStage, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		failureValues := append(append([]any{}, values...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureValues...)
	case messageStageExecutionFailure:
		failureValues := append(append([]any{}, values...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, failureValues...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, describeCommand(command), formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flag string) string {
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}

// updateTarget returns the revision spec of an update, or a label for the bare form.
func (formatter CommandMessageFormatter) updateTarget(arguments []string) string {
	if revisionSpec := formatter.flagValue(arguments, mercurialRevisionFlagConstant); len(revisionSpec) > 0 {
		return revisionSpec
	}
	for _, argument := range arguments[1:] {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, optionPrefixConstant) {
			continue
		}
		return trimmedArgument
	}
	return updateLatestTargetLabelConstant
}
