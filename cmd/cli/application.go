package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/execshell"
	"github.com/temirov/manahg/internal/orchestrator"
	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/tui"
	"github.com/temirov/manahg/internal/utils"
	"github.com/temirov/manahg/internal/utils/flags"
)

const (
	applicationNameConstant                     = "manahg"
	applicationUseConstant                      = applicationNameConstant + " [roots...]"
	applicationShortDescriptionConstant         = "Manage the state of many Mercurial repositories at once"
	applicationLongDescriptionConstant          = "manahg tracks Mercurial working copies found below discovery roots and runs pulls, updates, commits and reverts across them concurrently. Without a subcommand it opens the interactive table; every positional argument is scanned as a discovery root."
	configFileFlagNameConstant                  = "config"
	configFileFlagUsageConstant                 = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                    = "log-level"
	logLevelFlagUsageConstant                   = "Override the configured log level."
	logFormatFlagNameConstant                   = "log-format"
	logFormatFlagUsageConstant                  = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant              = "common"
	commonLogLevelConfigKeyConstant             = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant            = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant              = commonConfigurationKeyConstant + ".log_file"
	mercurialConfigurationKeyConstant           = "mercurial"
	mercurialExecutableConfigKeyConstant        = mercurialConfigurationKeyConstant + ".executable"
	mercurialWorkbenchConfigKeyConstant         = mercurialConfigurationKeyConstant + ".workbench_executable"
	dispatchMaxParallelConfigKeyConstant        = "dispatch.max_parallel"
	storePathConfigKeyConstant                  = "store.path"
	defaultMercurialExecutableConstant          = "hg"
	defaultWorkbenchExecutableConstant          = "thg"
	environmentPrefixConstant                   = "MANAHG"
	configurationNameConstant                   = "config"
	configurationTypeConstant                   = "yaml"
	configurationDirectoryNameConstant          = "manahg"
	interfaceLogRelativePathConstant            = "manahg/manahg.log"
	configurationInitializedMessageConstant     = "configuration initialized"
	configurationLogLevelFieldConstant          = "log_level"
	configurationLogFormatFieldConstant         = "log_format"
	configurationFileFieldConstant              = "config_file"
	unknownConfigurationKeysMessageConstant     = "configuration contains unknown keys"
	configurationUnknownKeysFieldConstant       = "unknown_keys"
	configurationLoadErrorTemplateConstant      = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant         = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant             = "unable to flush logger: %w"
	interfaceLogPathErrorTemplateConstant       = "unable to resolve interface log path: %w"
	rootCommandInfoMessageConstant              = "manahg interface started"
	rootCommandDebugMessageConstant             = "manahg interface diagnostics"
	logFieldCommandNameConstant                 = "command_name"
	logFieldArgumentCountConstant               = "argument_count"
	logFieldArgumentsConstant                   = "arguments"
	loggerNotInitializedMessageConstant         = "logger not initialized"
	defaultConfigurationSearchPathConstant      = "."
	errorOutputTemplateConstant                 = "%v\n"
	interfaceRunnerNotConfiguredMessageConstant = "interactive interface runner not configured"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration    `mapstructure:"common"`
	Mercurial ApplicationMercurialConfiguration `mapstructure:"mercurial"`
	Dispatch  ApplicationDispatchConfiguration  `mapstructure:"dispatch"`
	Store     ApplicationStoreConfiguration     `mapstructure:"store"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationMercurialConfiguration names the executables invoked for repositories.
type ApplicationMercurialConfiguration struct {
	Executable          string `mapstructure:"executable"`
	WorkbenchExecutable string `mapstructure:"workbench_executable"`
}

// ApplicationDispatchConfiguration bounds batch and scan concurrency.
type ApplicationDispatchConfiguration struct {
	// MaxParallel caps concurrent hg workers; zero means one worker per repository.
	MaxParallel int `mapstructure:"max_parallel"`
}

// ApplicationStoreConfiguration locates the tracked repository list.
type ApplicationStoreConfiguration struct {
	Path string `mapstructure:"path"`
}

// InterfaceRunner shows the interactive table until the user quits.
type InterfaceRunner func(executionContext context.Context, dependencies tui.Dependencies) error

// ApplicationDependencies replaces process-bound collaborators, mostly for tests.
// Nil fields fall back to the operating system implementations.
type ApplicationDependencies struct {
	CommandRunner        execshell.CommandRunner
	MercurialExecutor    shared.MercurialExecutor
	FileSystem           shared.FileSystem
	Discoverer           shared.RepositoryDiscoverer
	ConfirmationPrompter shared.ConfirmationPrompter
	ClipboardWriter      tui.ClipboardWriter
	InterfaceRunner      InterfaceRunner
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	dependencies          ApplicationDependencies
	inputReader           io.Reader
	outputWriter          io.Writer
	errorWriter           io.Writer
	reporter              shared.Reporter
}

// NewApplication assembles a CLI application bound to the process streams.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{}, os.Stdin, os.Stdout, os.Stderr)
}

// NewApplicationWithDependencies assembles a CLI application from explicit collaborators and streams.
func NewApplicationWithDependencies(dependencies ApplicationDependencies, input io.Reader, output io.Writer, errorOutput io.Writer) *Application {
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationSource{
		Name:              configurationNameConstant,
		Type:              configurationTypeConstant,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchPaths:       []string{defaultConfigurationSearchPathConstant, filepath.Join(xdg.ConfigHome, configurationDirectoryNameConstant)},
	}, EmbeddedDefaultConfiguration())

	if input == nil {
		input = strings.NewReader("")
	}
	streams := utils.NewSerializedWriters(output, errorOutput)
	output, errorOutput = streams[0], streams[1]
	if dependencies.InterfaceRunner == nil {
		dependencies.InterfaceRunner = func(executionContext context.Context, interfaceDependencies tui.Dependencies) error {
			return tui.Run(executionContext, interfaceDependencies)
		}
	}
	if dependencies.ConfirmationPrompter == nil {
		dependencies.ConfirmationPrompter = NewIOConfirmationPrompter(input, errorOutput)
	}

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		dependencies:        dependencies,
		inputReader:         input,
		outputWriter:        output,
		errorWriter:         errorOutput,
		reporter:            shared.NewWriterReporter(errorOutput, applicationNameConstant),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetIn(input)
	cobraCommand.SetOut(output)
	cobraCommand.SetErr(errorOutput)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	cobraCommand.AddCommand(
		application.newScanCommand(),
		application.newStatusCommand(),
		application.newPullCommand(),
		application.newUpdateCommand(),
		application.newCommitCommand(),
		application.newRevertCommand(),
		application.newBranchesCommand(),
		application.newRemoveCommand(),
		application.newPreferencesCommand(),
	)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy against explicit arguments without the program name.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(application.rootCommand, arguments))

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// Run executes the application against process-style arguments, where arguments[0] is the program name,
// and returns the exit code.
func Run(arguments []string, input io.Reader, output io.Writer, errorOutput io.Writer) int {
	return RunWithDependencies(ApplicationDependencies{}, arguments, input, output, errorOutput)
}

// RunWithDependencies behaves like Run with explicit collaborators.
func RunWithDependencies(dependencies ApplicationDependencies, arguments []string, input io.Reader, output io.Writer, errorOutput io.Writer) int {
	commandArguments := []string{}
	if len(arguments) > 1 {
		commandArguments = append(commandArguments, arguments[1:]...)
	}

	application := NewApplicationWithDependencies(dependencies, input, output, errorOutput)
	if executionError := application.ExecuteWithArguments(commandArguments); executionError != nil {
		fmt.Fprintf(application.errorWriter, errorOutputTemplateConstant, executionError)
		return 1
	}
	return 0
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:      string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:     string(utils.LogFormatConsole),
		commonLogFileConfigKeyConstant:       "",
		mercurialExecutableConfigKeyConstant: defaultMercurialExecutableConstant,
		mercurialWorkbenchConfigKeyConstant:  defaultWorkbenchExecutableConstant,
		dispatchMaxParallelConfigKeyConstant: 0,
		storePathConfigKeyConstant:           "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	outputPaths, outputPathError := application.loggerOutputPaths(command)
	if outputPathError != nil {
		return outputPathError
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
		outputPaths,
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	if len(application.configurationMetadata.UnknownKeys) > 0 {
		application.logger.Warn(
			unknownConfigurationKeysMessageConstant,
			zap.Strings(configurationUnknownKeysFieldConstant, application.configurationMetadata.UnknownKeys),
		)
	}

	if command != nil {
		updatedContext := utils.WithCommandEnvironment(command.Context(), utils.CommandEnvironment{
			ConfigurationFile: application.configurationMetadata.ConfigFileUsed,
			StorePath:         application.configuration.Store.Path,
		})
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// loggerOutputPaths keeps the interactive table free of log lines by writing them to a state file.
func (application *Application) loggerOutputPaths(command *cobra.Command) ([]string, error) {
	if configuredFile := strings.TrimSpace(application.configuration.Common.LogFile); len(configuredFile) > 0 {
		return []string{configuredFile}, nil
	}
	if command == nil || command != command.Root() {
		return nil, nil
	}

	interfaceLogPath, stateFileError := xdg.StateFile(interfaceLogRelativePathConstant)
	if stateFileError != nil {
		return nil, fmt.Errorf(interfaceLogPathErrorTemplateConstant, stateFileError)
	}
	return []string{interfaceLogPath}, nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}
	if application.dependencies.InterfaceRunner == nil {
		return errors.New(interfaceRunnerNotConfiguredMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	services, servicesError := application.buildServices(command.Context(), orchestrator.Configuration{RefreshOnStart: true})
	if servicesError != nil {
		return servicesError
	}

	interfaceContext, cancelInterface := context.WithCancel(command.Context())
	runFinished := make(chan struct{})
	go func() {
		defer close(runFinished)
		services.orchestrator.Run(interfaceContext)
	}()
	defer func() {
		cancelInterface()
		<-runFinished
	}()

	return application.dependencies.InterfaceRunner(interfaceContext, tui.Dependencies{
		Orchestrator:      services.orchestrator,
		BranchSummarizer:  services.client,
		WorkbenchLauncher: services.workbenchLauncher,
		ClipboardWriter:   application.dependencies.ClipboardWriter,
		Logger:            application.logger,
		InitialRoots:      arguments,
	})
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
