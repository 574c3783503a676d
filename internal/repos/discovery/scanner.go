package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/repository"
	pathutils "github.com/temirov/manahg/internal/utils/path"
)

const (
	walkingDirectoriesMessageConstant      = "Walking directories..."
	walkingRootTemplateConstant            = "Walking %s..."
	analyzingRepositoriesTemplateConstant  = "Analyzing %d repositories..."
	refresherNotConfiguredMessageConstant  = "repository scanner requires a refresher"
	discovererNotConfiguredMessageConstant = "repository scanner requires a discoverer"
	scanStartedLogMessageConstant          = "repository scan started"
	scanCompletedLogMessageConstant        = "repository scan completed"
	logFieldRootsConstant                  = "roots"
	logFieldCandidateCountConstant         = "candidate_count"
)

// ErrRefresherNotConfigured indicates that NewScanner received a nil refresher.
var ErrRefresherNotConfigured = errors.New(refresherNotConfiguredMessageConstant)

// ErrDiscovererNotConfigured indicates that NewScanner received a nil discoverer.
var ErrDiscovererNotConfigured = errors.New(discovererNotConfiguredMessageConstant)

// RepositoryRefresher populates the VCS-derived fields of a record.
type RepositoryRefresher interface {
	Refresh(executionContext context.Context, record repository.Record) repository.Record
}

// ProgressReporter receives human-readable scan progress text.
type ProgressReporter func(progressText string)

// ScannerConfiguration customizes scanner behavior.
type ScannerConfiguration struct {
	// MaxParallelRefreshes caps concurrent refreshes; zero or negative means unbounded.
	MaxParallelRefreshes int
	Sanitizer            *pathutils.RepositoryPathSanitizer
}

// Scanner discovers repositories below roots and refreshes every candidate in parallel.
type Scanner struct {
	logger        *zap.Logger
	discoverer    shared.RepositoryDiscoverer
	refresher     RepositoryRefresher
	configuration ScannerConfiguration
	sanitizer     *pathutils.RepositoryPathSanitizer
}

// NewScanner constructs a Scanner with the filesystem discoverer and default configuration.
func NewScanner(logger *zap.Logger, refresher RepositoryRefresher) (*Scanner, error) {
	return NewScannerWithConfiguration(logger, NewFilesystemRepositoryDiscoverer(), refresher, ScannerConfiguration{})
}

// NewScannerWithConfiguration constructs a Scanner from explicit collaborators.
func NewScannerWithConfiguration(logger *zap.Logger, discoverer shared.RepositoryDiscoverer, refresher RepositoryRefresher, configuration ScannerConfiguration) (*Scanner, error) {
	if discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if refresher == nil {
		return nil, ErrRefresherNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sanitizer := configuration.Sanitizer
	if sanitizer == nil {
		sanitizer = pathutils.NewRepositoryPathSanitizerWithConfiguration(nil, pathutils.RepositoryPathSanitizerConfiguration{ResolveAbsolutePaths: true})
	}

	return &Scanner{
		logger:        logger,
		discoverer:    discoverer,
		refresher:     refresher,
		configuration: configuration,
		sanitizer:     sanitizer,
	}, nil
}

// Scan walks every root, then refreshes all candidates concurrently and returns them in discovery order.
// Progress is reported before each root walk and before analysis. Scan only fails when discovery fails.
func (scanner *Scanner) Scan(executionContext context.Context, roots []string, progress ProgressReporter) ([]repository.Record, error) {
	if progress == nil {
		progress = func(string) {}
	}

	sanitizedRoots := scanner.sanitizer.Sanitize(roots)
	scanner.logger.Debug(scanStartedLogMessageConstant, zap.Strings(logFieldRootsConstant, sanitizedRoots))
	progress(walkingDirectoriesMessageConstant)

	var candidatePaths []string
	for _, root := range sanitizedRoots {
		progress(fmt.Sprintf(walkingRootTemplateConstant, root))
		discoveredPaths, discoveryError := scanner.discoverer.DiscoverRepositories([]string{root})
		if discoveryError != nil {
			return nil, discoveryError
		}
		candidatePaths = append(candidatePaths, discoveredPaths...)
	}

	progress(fmt.Sprintf(analyzingRepositoriesTemplateConstant, len(candidatePaths)))

	refreshedRecords := make([]repository.Record, len(candidatePaths))
	refreshGroup, refreshContext := errgroup.WithContext(executionContext)
	if scanner.configuration.MaxParallelRefreshes > 0 {
		refreshGroup.SetLimit(scanner.configuration.MaxParallelRefreshes)
	}
	for candidateIndex := range candidatePaths {
		candidateIndex := candidateIndex
		refreshGroup.Go(func() error {
			refreshedRecords[candidateIndex] = scanner.refresher.Refresh(refreshContext, repository.New(candidatePaths[candidateIndex]))
			return nil
		})
	}
	_ = refreshGroup.Wait()

	scanner.logger.Debug(scanCompletedLogMessageConstant, zap.Int(logFieldCandidateCountConstant, len(candidatePaths)))
	return refreshedRecords, nil
}
