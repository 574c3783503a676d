package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/dispatch"
	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/repository"
	"github.com/temirov/manahg/internal/tui"
	"github.com/temirov/manahg/internal/utils/flags"
)

const (
	scanCommandUseConstant               = "scan ROOT..."
	scanCommandShortConstant             = "Discover repositories below roots and track them"
	statusCommandUseConstant             = "status"
	statusCommandShortConstant           = "Refresh every tracked repository and print its state"
	pullCommandUseConstant               = "pull [PATH...]"
	pullCommandShortConstant             = "Pull tracked repositories"
	pullCurrentFlagNameConstant          = "current"
	pullCurrentFlagUsageConstant         = "Pull only the current branch of each repository"
	updateCommandUseConstant             = "update [PATH...]"
	updateCommandShortConstant           = "Update the working directories of tracked repositories"
	lastPublicFlagNameConstant           = "last-public"
	lastPublicFlagUsageConstant          = "Update to the newest public changeset of the current branch"
	commitCommandUseConstant             = "commit [PATH...]"
	commitCommandShortConstant           = "Commit all changes in tracked repositories"
	messageFlagNameConstant              = "message"
	messageFlagShorthandConstant         = "m"
	messageFlagUsageConstant             = "Commit message"
	revertCommandUseConstant             = "revert [PATH...]"
	revertCommandShortConstant           = "Discard all uncommitted changes in tracked repositories"
	revertPromptTemplateConstant         = "Revert all uncommitted changes in %d repositories? [y/N] "
	revertCancelledMessageConstant       = "Revert cancelled"
	branchesCommandUseConstant           = "branches [PATH...]"
	branchesCommandShortConstant         = "Count the named branches present across tracked repositories"
	removeCommandUseConstant             = "remove PATH..."
	removeCommandShortConstant           = "Stop tracking repositories"
	preferencesCommandUseConstant        = "prefs"
	preferencesCommandShortConstant      = "Show or change display preferences"
	themeFlagNameConstant                = "theme"
	themeFlagUsageConstant               = "Theme index"
	fullPathFlagNameConstant             = "full-path"
	fullPathFlagUsageConstant            = "Show full repository paths instead of directory names"
	invalidThemeTemplateConstant         = "theme must be between 0 and %d"
	batchFailuresTemplateConstant        = "%d of %d repositories failed"
	logFieldOperationConstant            = "operation"
	logFieldSelectionSizeConstant        = "selection_size"
	batchRequestedLogMessageConstant     = "batch requested"
	scanRequestedLogMessageConstant      = "scan requested"
	logFieldRootsConstant                = "roots"
	preferencesUpdatedLogMessageConstant = "preferences updated"
	refreshOnStartConstant               = true
	skipRefreshOnStartConstant           = false
)

func (application *Application) withSession(command *cobra.Command, refreshOnStart bool, action func(executionContext context.Context, session *headlessSession) error) error {
	executionContext := command.Context()
	session, sessionError := application.openSession(executionContext, refreshOnStart)
	if sessionError != nil {
		return sessionError
	}
	defer session.Close()
	return action(executionContext, session)
}

func (application *Application) newScanCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   scanCommandUseConstant,
		Short: scanCommandShortConstant,
		Args:  cobra.MinimumNArgs(1),
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return application.withSession(command, skipRefreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
			application.logger.Info(scanRequestedLogMessageConstant, zap.Strings(logFieldRootsConstant, arguments))
			if awaitError := session.await(executionContext, session.orchestrator.AddRoots(arguments)); awaitError != nil {
				return awaitError
			}
			return newDocumentRenderer(output.Format, application.outputWriter).renderRepositories(session.Records())
		})
	}
	return command
}

func (application *Application) newStatusCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortConstant,
		Args:  cobra.NoArgs,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return application.withSession(command, refreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
			return newDocumentRenderer(output.Format, application.outputWriter).renderRepositories(session.Records())
		})
	}
	return command
}

func (application *Application) newPullCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortConstant,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)
	var currentBranchOnly bool
	command.Flags().BoolVar(&currentBranchOnly, pullCurrentFlagNameConstant, false, pullCurrentFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		var operation dispatch.Operation = dispatch.PullAll{}
		if currentBranchOnly {
			operation = dispatch.PullCurrent{}
		}
		return application.runBatchCommand(command, arguments, operation, output.Format, nil)
	}
	return command
}

func (application *Application) newUpdateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortConstant,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)
	branchName := flags.BindBranchFlag(command)
	var lastPublic bool
	command.Flags().BoolVar(&lastPublic, lastPublicFlagNameConstant, false, lastPublicFlagUsageConstant)
	command.MarkFlagsMutuallyExclusive(flags.BranchFlagName, lastPublicFlagNameConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		var operation dispatch.Operation = dispatch.UpdateToLatest{}
		switch {
		case command.Flags().Changed(flags.BranchFlagName):
			operation = dispatch.SwitchBranch{Target: *branchName}
		case lastPublic:
			operation = dispatch.UpdateToLastPublic{}
		}
		return application.runBatchCommand(command, arguments, operation, output.Format, nil)
	}
	return command
}

func (application *Application) newCommitCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   commitCommandUseConstant,
		Short: commitCommandShortConstant,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)
	var message string
	command.Flags().StringVarP(&message, messageFlagNameConstant, messageFlagShorthandConstant, "", messageFlagUsageConstant)
	_ = command.MarkFlagRequired(messageFlagNameConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return application.runBatchCommand(command, arguments, dispatch.Commit{Message: message}, output.Format, nil)
	}
	return command
}

func (application *Application) newRevertCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   revertCommandUseConstant,
		Short: revertCommandShortConstant,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)
	execution := flags.BindExecutionFlags(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		policy := shared.ConfirmationPolicyFromBool(execution.AssumeYes)
		confirm := func(paths []string) (bool, error) {
			if !policy.ShouldPrompt() || len(paths) == 0 {
				return true, nil
			}
			result, promptError := application.dependencies.ConfirmationPrompter.Confirm(fmt.Sprintf(revertPromptTemplateConstant, len(paths)))
			if promptError != nil {
				return false, promptError
			}
			if !result.Confirmed {
				application.reporter.Printf(revertCancelledMessageConstant)
			}
			return result.Confirmed, nil
		}
		return application.runBatchCommand(command, arguments, dispatch.RevertAll{}, output.Format, confirm)
	}
	return command
}

// runBatchCommand runs operation over the tracked paths named by arguments and prints the affected records.
// A nil confirm runs without asking; a declined confirmation prints nothing and succeeds.
func (application *Application) runBatchCommand(command *cobra.Command, arguments []string, operation dispatch.Operation, outputFormat string, confirm func(paths []string) (bool, error)) error {
	return application.withSession(command, refreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
		paths, resolveError := session.ResolveTrackedPaths(arguments)
		if resolveError != nil {
			return resolveError
		}
		if confirm != nil {
			confirmed, confirmError := confirm(paths)
			if confirmError != nil {
				return confirmError
			}
			if !confirmed {
				return nil
			}
		}

		application.logger.Info(
			batchRequestedLogMessageConstant,
			zap.String(logFieldOperationConstant, dispatch.Describe(operation).Name),
			zap.Int(logFieldSelectionSizeConstant, len(paths)),
		)
		if awaitError := session.await(executionContext, session.orchestrator.RunOperation(paths, operation)); awaitError != nil {
			return awaitError
		}

		records := session.RecordsFor(paths)
		if renderError := newDocumentRenderer(outputFormat, application.outputWriter).renderRepositories(records); renderError != nil {
			return renderError
		}
		return batchFailures(records)
	})
}

func batchFailures(records []repository.Record) error {
	failedCount := 0
	for _, record := range records {
		if dispatch.IsErrorStatus(record.LastStatus) {
			failedCount++
		}
	}
	if failedCount == 0 {
		return nil
	}
	return fmt.Errorf(batchFailuresTemplateConstant, failedCount, len(records))
}

func (application *Application) newBranchesCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   branchesCommandUseConstant,
		Short: branchesCommandShortConstant,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return application.withSession(command, skipRefreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
			paths, resolveError := session.ResolveTrackedPaths(arguments)
			if resolveError != nil {
				return resolveError
			}
			counts := session.services.client.BranchSummary(executionContext, paths)
			return newDocumentRenderer(output.Format, application.outputWriter).renderBranches(counts)
		})
	}
	return command
}

func (application *Application) newRemoveCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortConstant,
		Args:  cobra.MinimumNArgs(1),
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return application.withSession(command, skipRefreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
			paths, resolveError := session.ResolveTrackedPaths(arguments)
			if resolveError != nil {
				return resolveError
			}
			if awaitError := session.await(executionContext, session.orchestrator.RemovePaths(paths)); awaitError != nil {
				return awaitError
			}
			return newDocumentRenderer(output.Format, application.outputWriter).renderRepositories(session.Records())
		})
	}
	return command
}

func (application *Application) newPreferencesCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   preferencesCommandUseConstant,
		Short: preferencesCommandShortConstant,
		Args:  cobra.NoArgs,
	}
	output := flags.BindOutputFlags(command, flags.OutputFormatTable)
	var themeIndex int
	var showFullPath bool
	command.Flags().IntVar(&themeIndex, themeFlagNameConstant, 0, themeFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &showFullPath, fullPathFlagNameConstant, false, fullPathFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		themeChanged := command.Flags().Changed(themeFlagNameConstant)
		if themeChanged && !tui.ValidThemeIndex(themeIndex) {
			return fmt.Errorf(invalidThemeTemplateConstant, len(tui.Themes())-1)
		}

		return application.withSession(command, skipRefreshOnStartConstant, func(executionContext context.Context, session *headlessSession) error {
			preferences := session.Preferences()
			if themeChanged {
				preferences.ThemeIndex = themeIndex
			}
			if command.Flags().Changed(fullPathFlagNameConstant) {
				preferences.ShowFullPath = showFullPath
			}
			if awaitError := session.await(executionContext, session.orchestrator.UpdatePreferences(preferences.ThemeIndex, preferences.ShowFullPath)); awaitError != nil {
				return awaitError
			}
			application.logger.Debug(preferencesUpdatedLogMessageConstant)

			return newDocumentRenderer(output.Format, application.outputWriter).renderPreferences(preferencesDocument{
				ThemeIndex:   preferences.ThemeIndex,
				ThemeName:    tui.ThemeAt(preferences.ThemeIndex).Name,
				ShowFullPath: preferences.ShowFullPath,
			})
		})
	}
	return command
}
