package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/dispatch"
	"github.com/temirov/manahg/internal/execshell"
	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/orchestrator"
	"github.com/temirov/manahg/internal/persistence"
	"github.com/temirov/manahg/internal/repos/dependencies"
	"github.com/temirov/manahg/internal/repos/discovery"
	"github.com/temirov/manahg/internal/tui"
	"github.com/temirov/manahg/internal/utils"
	pathutils "github.com/temirov/manahg/internal/utils/path"
)

const (
	executorCreationErrorTemplateConstant     = "unable to create mercurial executor: %w"
	clientCreationErrorTemplateConstant       = "unable to create mercurial client: %w"
	scannerCreationErrorTemplateConstant      = "unable to create repository scanner: %w"
	dispatcherCreationErrorTemplateConstant   = "unable to create dispatcher: %w"
	storePathErrorTemplateConstant            = "unable to resolve repository list location: %w"
	storeCreationErrorTemplateConstant        = "unable to open repository list: %w"
	orchestratorCreationErrorTemplateConstant = "unable to create orchestrator: %w"
	servicesAssembledMessageConstant          = "services assembled"
	storePathFieldConstant                    = "store_path"
	maxParallelFieldConstant                  = "max_parallel"
)

// applicationServices holds the collaborators shared by the interface and the headless commands.
type applicationServices struct {
	client            *hgrepo.Client
	orchestrator      *orchestrator.Orchestrator
	workbenchLauncher *tui.CommandWorkbenchLauncher
	pathSanitizer     *pathutils.RepositoryPathSanitizer
}

func (application *Application) buildServices(executionContext context.Context, orchestratorConfiguration orchestrator.Configuration) (applicationServices, error) {
	commandRunner := dependencies.ResolveCommandRunner(application.dependencies.CommandRunner)
	mercurialExecutor, executorError := dependencies.ResolveMercurialExecutor(
		application.dependencies.MercurialExecutor,
		application.logger,
		commandRunner,
		application.configuration.Mercurial.Executable,
		application.humanReadableLoggingEnabled(),
	)
	if executorError != nil {
		return applicationServices{}, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	client, clientError := hgrepo.NewClient(mercurialExecutor)
	if clientError != nil {
		return applicationServices{}, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	pathSanitizer := pathutils.NewRepositoryPathSanitizerWithConfiguration(nil, pathutils.RepositoryPathSanitizerConfiguration{
		ResolveAbsolutePaths: true,
		DropDuplicatePaths:   true,
	})

	scanner, scannerError := discovery.NewScannerWithConfiguration(
		application.logger,
		dependencies.ResolveRepositoryDiscoverer(application.dependencies.Discoverer),
		client,
		discovery.ScannerConfiguration{
			MaxParallelRefreshes: application.configuration.Dispatch.MaxParallel,
			Sanitizer:            pathSanitizer,
		},
	)
	if scannerError != nil {
		return applicationServices{}, fmt.Errorf(scannerCreationErrorTemplateConstant, scannerError)
	}

	dispatcher, dispatcherError := dispatch.NewDispatcherWithConfiguration(application.logger, client, dispatch.DispatcherConfiguration{
		MaxParallel: application.configuration.Dispatch.MaxParallel,
	})
	if dispatcherError != nil {
		return applicationServices{}, fmt.Errorf(dispatcherCreationErrorTemplateConstant, dispatcherError)
	}

	environment, _ := utils.CommandEnvironmentFrom(executionContext)
	storePath, storePathError := resolveStorePath(environment)
	if storePathError != nil {
		return applicationServices{}, fmt.Errorf(storePathErrorTemplateConstant, storePathError)
	}
	store, storeError := persistence.NewFileStore(storePath, dependencies.ResolveFileSystem(application.dependencies.FileSystem))
	if storeError != nil {
		return applicationServices{}, fmt.Errorf(storeCreationErrorTemplateConstant, storeError)
	}

	application.logger.Debug(
		servicesAssembledMessageConstant,
		zap.String(storePathFieldConstant, storePath),
		zap.String(configurationFileFieldConstant, environment.ConfigurationFile),
		zap.Int(maxParallelFieldConstant, application.configuration.Dispatch.MaxParallel),
	)

	repositoryOrchestrator, orchestratorError := orchestrator.New(orchestrator.Dependencies{
		Logger:             application.logger,
		Scanner:            scanner,
		Dispatcher:         dispatcher,
		ConfigurationStore: store,
	}, orchestratorConfiguration)
	if orchestratorError != nil {
		return applicationServices{}, fmt.Errorf(orchestratorCreationErrorTemplateConstant, orchestratorError)
	}

	return applicationServices{
		client:            client,
		orchestrator:      repositoryOrchestrator,
		workbenchLauncher: tui.NewCommandWorkbenchLauncher(resolveProcessStarter(commandRunner), application.configuration.Mercurial.WorkbenchExecutable),
		pathSanitizer:     pathSanitizer,
	}, nil
}

func resolveStorePath(environment utils.CommandEnvironment) (string, error) {
	if trimmedPath := strings.TrimSpace(environment.StorePath); len(trimmedPath) > 0 {
		return trimmedPath, nil
	}
	return persistence.DefaultPath()
}

func resolveProcessStarter(runner execshell.CommandRunner) tui.ProcessStarter {
	if starter, canStart := runner.(tui.ProcessStarter); canStart {
		return starter
	}
	return execshell.NewOSCommandRunner()
}
