// Package orchestrator owns the tracked repository collection.
//
// A single goroutine started by Run consumes user intents and worker results,
// applies every mutation to the collection and publishes notifications.
// Scans and batches run on background goroutines and report back through the
// results mailbox, so results for removed repositories are dropped by the merge.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/collection"
	"github.com/temirov/manahg/internal/dispatch"
	"github.com/temirov/manahg/internal/events"
	"github.com/temirov/manahg/internal/persistence"
	"github.com/temirov/manahg/internal/repos/discovery"
	"github.com/temirov/manahg/internal/repository"
)

const (
	scannerNotConfiguredMessageConstant       = "orchestrator requires a scanner"
	dispatcherNotConfiguredMessageConstant    = "orchestrator requires a dispatcher"
	configurationStoreNotConfiguredConstant   = "orchestrator requires a configuration store"
	scanningGlobalStatusConstant              = "Scanning..."
	foundRepositoriesTemplateConstant         = "Found %d repositories"
	scanFailedTemplateConstant                = "Scan failed: %s"
	noRepositorySelectedStatusConstant        = "No repository selected"
	noRepositoriesToRefreshStatusConstant     = "No repositories to refresh"
	refreshingSelectedStatusConstant          = "Refreshing selected..."
	refreshingAllStatusConstant               = "Refreshing all..."
	readyGlobalStatusConstant                 = "Ready"
	defaultResultsBufferSizeConstant          = 256
	defaultNotificationsBufferSizeConstant    = 256
	logFieldPathCountConstant                 = "path_count"
	logFieldBatchIdentifierConstant           = "batch_id"
	logFieldScanIdentifierConstant            = "scan_id"
	logFieldPathsAddedConstant                = "paths_added"
	configurationLoadFailedLogMessageConstant = "configuration could not be loaded"
	configurationSaveFailedLogMessageConstant = "configuration could not be saved"
	staleResultDroppedLogMessageConstant      = "result for untracked repository dropped"
	orchestratorStoppedLogMessageConstant     = "orchestrator stopped"
	scanMergedLogMessageConstant              = "scan results merged"
)

// ErrScannerNotConfigured indicates a missing scanner dependency.
var ErrScannerNotConfigured = errors.New(scannerNotConfiguredMessageConstant)

// ErrDispatcherNotConfigured indicates a missing dispatcher dependency.
var ErrDispatcherNotConfigured = errors.New(dispatcherNotConfiguredMessageConstant)

// ErrConfigurationStoreNotConfigured indicates a missing configuration store dependency.
var ErrConfigurationStoreNotConfigured = errors.New(configurationStoreNotConfiguredConstant)

// RepositoryScanner discovers and refreshes repositories below roots.
type RepositoryScanner interface {
	Scan(executionContext context.Context, roots []string, progress discovery.ProgressReporter) ([]repository.Record, error)
}

// BatchDispatcher runs an operation over a selection and reports through a sink.
type BatchDispatcher interface {
	Dispatch(executionContext context.Context, batchIdentifier events.BatchID, selection []repository.Record, operation dispatch.Operation, sink events.Sink)
}

// ConfigurationStore loads and saves the persisted application configuration.
type ConfigurationStore interface {
	Load() (persistence.AppConfiguration, error)
	Save(configuration persistence.AppConfiguration) error
}

// Dependencies captures collaborators required by the orchestrator.
type Dependencies struct {
	Logger             *zap.Logger
	Scanner            RepositoryScanner
	Dispatcher         BatchDispatcher
	ConfigurationStore ConfigurationStore
}

// Configuration customizes orchestrator startup.
type Configuration struct {
	// RefreshOnStart refreshes every persisted repository once Run starts.
	RefreshOnStart bool
}

// Orchestrator serializes every collection mutation onto the goroutine running Run.
type Orchestrator struct {
	logger             *zap.Logger
	scanner            RepositoryScanner
	dispatcher         BatchDispatcher
	configurationStore ConfigurationStore
	configuration      Configuration

	collection  *collection.Store
	sortState   collection.SortState
	preferences Preferences

	intents       chan intent
	results       chan events.Message
	notifications chan Notification
	ready         chan struct{}
	settled       chan struct{}
	stopped       chan struct{}
	runOnce       sync.Once

	pendingBatches  map[events.BatchID]chan struct{}
	pendingScans    map[events.ScanID]chan struct{}
	nextBatchID     events.BatchID
	nextScanID      events.ScanID
	backgroundTasks sync.WaitGroup
}

// New constructs an Orchestrator. Run must be started before intents are submitted.
func New(dependencies Dependencies, configuration Configuration) (*Orchestrator, error) {
	if dependencies.Scanner == nil {
		return nil, ErrScannerNotConfigured
	}
	if dependencies.Dispatcher == nil {
		return nil, ErrDispatcherNotConfigured
	}
	if dependencies.ConfigurationStore == nil {
		return nil, ErrConfigurationStoreNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := persistence.DefaultAppConfiguration()
	return &Orchestrator{
		logger:             logger,
		scanner:            dependencies.Scanner,
		dispatcher:         dependencies.Dispatcher,
		configurationStore: dependencies.ConfigurationStore,
		configuration:      configuration,
		collection:         collection.NewStore(),
		sortState:          collection.DefaultSortState(),
		preferences:        Preferences{ThemeIndex: defaults.ThemeIndex, ShowFullPath: defaults.ShowFullPath},
		intents:            make(chan intent),
		results:            make(chan events.Message, defaultResultsBufferSizeConstant),
		notifications:      make(chan Notification, defaultNotificationsBufferSizeConstant),
		ready:              make(chan struct{}),
		settled:            make(chan struct{}),
		stopped:            make(chan struct{}),
		pendingBatches:     make(map[events.BatchID]chan struct{}),
		pendingScans:       make(map[events.ScanID]chan struct{}),
	}, nil
}

// Notifications streams outbound changes. The channel closes when Run returns.
func (orchestrator *Orchestrator) Notifications() <-chan Notification {
	return orchestrator.notifications
}

// Ready closes once the persisted configuration was loaded and published.
func (orchestrator *Orchestrator) Ready() <-chan struct{} {
	return orchestrator.ready
}

// Settled closes once the startup refresh finished, or right after Ready when none runs.
func (orchestrator *Orchestrator) Settled() <-chan struct{} {
	return orchestrator.settled
}

// Records returns a snapshot of the collection in display order.
func (orchestrator *Orchestrator) Records() []repository.Record {
	return orchestrator.collection.Snapshot()
}

// Run consumes intents and results until the context is cancelled.
// It may be called once; later calls return immediately.
func (orchestrator *Orchestrator) Run(executionContext context.Context) {
	started := false
	orchestrator.runOnce.Do(func() { started = true })
	if !started {
		return
	}

	defer func() {
		close(orchestrator.stopped)
		orchestrator.backgroundTasks.Wait()
		orchestrator.releasePending()
		close(orchestrator.notifications)
		orchestrator.logger.Debug(orchestratorStoppedLogMessageConstant)
	}()

	orchestrator.initialize(executionContext)

	for {
		select {
		case <-executionContext.Done():
			return
		case received := <-orchestrator.intents:
			orchestrator.handleIntent(executionContext, received)
		case message := <-orchestrator.results:
			orchestrator.handleResult(executionContext, message)
		}
	}
}

func (orchestrator *Orchestrator) initialize(executionContext context.Context) {
	defer close(orchestrator.ready)

	loadedConfiguration, loadError := orchestrator.configurationStore.Load()
	if loadError != nil {
		orchestrator.logger.Warn(configurationLoadFailedLogMessageConstant, zap.Error(loadError))
		orchestrator.publish(executionContext, PersistenceFailed{Err: loadError})
	}

	orchestrator.preferences = Preferences{ThemeIndex: loadedConfiguration.ThemeIndex, ShowFullPath: loadedConfiguration.ShowFullPath}
	seeds := make([]repository.Record, 0, len(loadedConfiguration.Repositories))
	for _, repositoryPath := range loadedConfiguration.Repositories {
		seeds = append(seeds, repository.New(repositoryPath))
	}
	orchestrator.collection.InsertDiscovered(seeds)

	orchestrator.publish(executionContext, PreferencesChanged{Preferences: orchestrator.preferences})
	orchestrator.publishCollection(executionContext)

	if orchestrator.configuration.RefreshOnStart && orchestrator.collection.Len() > 0 {
		orchestrator.startBatch(executionContext, orchestrator.collection.Snapshot(), dispatch.Refresh{}, refreshingAllStatusConstant, orchestrator.settled)
		return
	}
	close(orchestrator.settled)
}

func (orchestrator *Orchestrator) handleIntent(executionContext context.Context, received intent) {
	switch typedIntent := received.(type) {
	case addRootsIntent:
		orchestrator.startScan(executionContext, typedIntent.roots, typedIntent.completion())
	case removePathsIntent:
		orchestrator.removePaths(executionContext, typedIntent.paths)
		close(typedIntent.completion())
	case runOperationIntent:
		orchestrator.runOperation(executionContext, typedIntent)
	case sortIntent:
		if typedIntent.column.Valid() {
			orchestrator.sortState = orchestrator.sortState.Toggle(typedIntent.column)
			orchestrator.collection.Sort(orchestrator.sortState)
			orchestrator.publishCollection(executionContext)
		}
		close(typedIntent.completion())
	case preferencesIntent:
		orchestrator.updatePreferences(executionContext, typedIntent.preferences)
		close(typedIntent.completion())
	default:
		close(received.completion())
	}
}

func (orchestrator *Orchestrator) handleResult(executionContext context.Context, message events.Message) {
	switch typedMessage := message.(type) {
	case events.ScanProgress:
		orchestrator.publishGlobalStatus(executionContext, typedMessage.Text)
	case events.ScanCompleted:
		orchestrator.completeScan(executionContext, typedMessage)
	case events.StatusPatch:
		if orchestrator.collection.ApplyStatusPatch(typedMessage.Path, typedMessage.Status) {
			orchestrator.publish(executionContext, RepositoryStatusChanged{Path: typedMessage.Path, Status: typedMessage.Status})
			return
		}
		orchestrator.logger.Debug(staleResultDroppedLogMessageConstant, zap.Uint64(logFieldBatchIdentifierConstant, uint64(typedMessage.BatchID)))
	case events.RecordUpdated:
		if orchestrator.collection.ApplyUpdate(typedMessage.Record) {
			orchestrator.publishCollection(executionContext)
			return
		}
		orchestrator.logger.Debug(staleResultDroppedLogMessageConstant, zap.Uint64(logFieldBatchIdentifierConstant, uint64(typedMessage.BatchID)))
	case events.BatchCompleted:
		orchestrator.publishGlobalStatus(executionContext, readyGlobalStatusConstant)
		orchestrator.publish(executionContext, BatchFinished{BatchID: typedMessage.BatchID})
		if completion, pending := orchestrator.pendingBatches[typedMessage.BatchID]; pending {
			delete(orchestrator.pendingBatches, typedMessage.BatchID)
			close(completion)
		}
	}
}

func (orchestrator *Orchestrator) startScan(executionContext context.Context, roots []string, completion chan struct{}) {
	orchestrator.nextScanID++
	scanIdentifier := orchestrator.nextScanID
	orchestrator.pendingScans[scanIdentifier] = completion
	orchestrator.publishGlobalStatus(executionContext, scanningGlobalStatusConstant)

	sink := events.NewChannelSink(executionContext, orchestrator.results)
	orchestrator.backgroundTasks.Add(1)
	go func() {
		defer orchestrator.backgroundTasks.Done()
		records, scanError := orchestrator.scanner.Scan(executionContext, roots, func(progressText string) {
			sink.Publish(events.ScanProgress{ScanID: scanIdentifier, Text: progressText})
		})
		sink.Publish(events.ScanCompleted{ScanID: scanIdentifier, Records: records, Err: scanError})
	}()
}

func (orchestrator *Orchestrator) completeScan(executionContext context.Context, completed events.ScanCompleted) {
	defer func() {
		if completion, pending := orchestrator.pendingScans[completed.ScanID]; pending {
			delete(orchestrator.pendingScans, completed.ScanID)
			close(completion)
		}
	}()

	if completed.Err != nil {
		orchestrator.publishGlobalStatus(executionContext, fmt.Sprintf(scanFailedTemplateConstant, completed.Err))
		orchestrator.publish(executionContext, ScanFinished{ScanID: completed.ScanID, Err: completed.Err})
		return
	}

	pathsAdded := orchestrator.collection.InsertDiscovered(completed.Records)
	orchestrator.sortState = collection.DefaultSortState()
	orchestrator.persist(executionContext)
	orchestrator.publishCollection(executionContext)
	orchestrator.publishGlobalStatus(executionContext, fmt.Sprintf(foundRepositoriesTemplateConstant, orchestrator.collection.Len()))
	orchestrator.logger.Debug(
		scanMergedLogMessageConstant,
		zap.Uint64(logFieldScanIdentifierConstant, uint64(completed.ScanID)),
		zap.Int(logFieldPathCountConstant, len(completed.Records)),
		zap.Bool(logFieldPathsAddedConstant, pathsAdded),
	)
	orchestrator.publish(executionContext, ScanFinished{ScanID: completed.ScanID, Discovered: len(completed.Records)})
}

func (orchestrator *Orchestrator) removePaths(executionContext context.Context, paths []string) {
	if len(paths) == 0 {
		orchestrator.publishGlobalStatus(executionContext, noRepositorySelectedStatusConstant)
		return
	}
	if !orchestrator.collection.Remove(paths) {
		return
	}
	orchestrator.persist(executionContext)
	orchestrator.publishCollection(executionContext)
}

func (orchestrator *Orchestrator) runOperation(executionContext context.Context, requested runOperationIntent) {
	var selection []repository.Record
	var globalStatus string
	if requested.allRepositories {
		selection = orchestrator.collection.Snapshot()
		globalStatus = refreshingAllStatusConstant
		if len(selection) == 0 {
			orchestrator.publishGlobalStatus(executionContext, noRepositoriesToRefreshStatusConstant)
			close(requested.completion())
			return
		}
	} else {
		selection = orchestrator.collection.Select(requested.paths)
		globalStatus = dispatch.Describe(requested.operation).ProgressLabel
		if _, isRefresh := requested.operation.(dispatch.Refresh); isRefresh {
			globalStatus = refreshingSelectedStatusConstant
		}
		if len(selection) == 0 {
			orchestrator.publishGlobalStatus(executionContext, noRepositorySelectedStatusConstant)
			close(requested.completion())
			return
		}
	}

	orchestrator.startBatch(executionContext, selection, requested.operation, globalStatus, requested.completion())
}

func (orchestrator *Orchestrator) startBatch(executionContext context.Context, selection []repository.Record, operation dispatch.Operation, globalStatus string, completion chan struct{}) {
	orchestrator.nextBatchID++
	batchIdentifier := orchestrator.nextBatchID
	orchestrator.pendingBatches[batchIdentifier] = completion
	orchestrator.publishGlobalStatus(executionContext, globalStatus)

	sink := events.NewChannelSink(executionContext, orchestrator.results)
	orchestrator.backgroundTasks.Add(1)
	go func() {
		defer orchestrator.backgroundTasks.Done()
		orchestrator.dispatcher.Dispatch(executionContext, batchIdentifier, selection, operation, sink)
	}()
}

func (orchestrator *Orchestrator) updatePreferences(executionContext context.Context, requested Preferences) {
	if requested == orchestrator.preferences {
		return
	}
	orchestrator.preferences = requested
	orchestrator.persist(executionContext)
	orchestrator.publish(executionContext, PreferencesChanged{Preferences: requested})
}

func (orchestrator *Orchestrator) persist(executionContext context.Context) {
	saveError := orchestrator.configurationStore.Save(persistence.AppConfiguration{
		Repositories: orchestrator.collection.Paths(),
		ThemeIndex:   orchestrator.preferences.ThemeIndex,
		ShowFullPath: orchestrator.preferences.ShowFullPath,
	})
	if saveError != nil {
		orchestrator.logger.Error(configurationSaveFailedLogMessageConstant, zap.Error(saveError))
		orchestrator.publish(executionContext, PersistenceFailed{Err: saveError})
	}
}

func (orchestrator *Orchestrator) publishCollection(executionContext context.Context) {
	orchestrator.publish(executionContext, CollectionChanged{Records: orchestrator.collection.Snapshot(), Sort: orchestrator.sortState})
}

func (orchestrator *Orchestrator) publishGlobalStatus(executionContext context.Context, text string) {
	orchestrator.publish(executionContext, GlobalStatusChanged{Text: text})
}

func (orchestrator *Orchestrator) publish(executionContext context.Context, notification Notification) {
	select {
	case orchestrator.notifications <- notification:
	case <-executionContext.Done():
	}
}

func (orchestrator *Orchestrator) releasePending() {
	for batchIdentifier, completion := range orchestrator.pendingBatches {
		delete(orchestrator.pendingBatches, batchIdentifier)
		close(completion)
	}
	for scanIdentifier, completion := range orchestrator.pendingScans {
		delete(orchestrator.pendingScans, scanIdentifier)
		close(completion)
	}
}
