package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/execshell"
	"github.com/temirov/manahg/internal/repos/discovery"
	"github.com/temirov/manahg/internal/repos/filesystem"
	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/ui"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer()
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveCommandRunner returns the provided runner or an os/exec-backed default.
func ResolveCommandRunner(existing execshell.CommandRunner) execshell.CommandRunner {
	if existing != nil {
		return existing
	}
	return execshell.NewOSCommandRunner()
}

// ResolveMercurialExecutor returns the provided executor or constructs a shell-backed default
// that invokes mercurialExecutable through runner. Human-readable logging attaches a console event logger.
func ResolveMercurialExecutor(existing shared.MercurialExecutor, logger *zap.Logger, runner execshell.CommandRunner, mercurialExecutable string, humanReadableLogging bool) (shared.MercurialExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorConfiguration := execshell.ShellExecutorConfiguration{MercurialExecutable: mercurialExecutable}
	if humanReadableLogging {
		executorConfiguration.Observer = ui.NewCommandEventLogger(logger)
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithConfiguration(logger, ResolveCommandRunner(runner), executorConfiguration)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
