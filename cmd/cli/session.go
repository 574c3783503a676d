package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/temirov/manahg/internal/orchestrator"
	"github.com/temirov/manahg/internal/repos/shared"
	"github.com/temirov/manahg/internal/repository"
)

const (
	persistenceFailureTemplateConstant  = "%v"
	scanFailureTemplateConstant         = "scan failed: %v"
	untrackedRepositoryTemplateConstant = "repository %s is not tracked"
)

// headlessSession runs the orchestrator for one command without the interactive table.
// Notifications are drained continuously; persistence and scan failures are written to the error stream.
type headlessSession struct {
	orchestrator     *orchestrator.Orchestrator
	services         applicationServices
	cancel           context.CancelFunc
	runFinished      chan struct{}
	drainFinished    chan struct{}
	preferencesReady chan struct{}
	preferencesOnce  sync.Once
	mutex            sync.Mutex
	preferences      orchestrator.Preferences
	reporter         shared.Reporter
}

// openSession starts the orchestrator and returns once the persisted repositories were loaded.
// With refreshOnStart it also waits for their first refresh, so records carry branch and revision.
func (application *Application) openSession(executionContext context.Context, refreshOnStart bool) (*headlessSession, error) {
	services, servicesError := application.buildServices(executionContext, orchestrator.Configuration{RefreshOnStart: refreshOnStart})
	if servicesError != nil {
		return nil, servicesError
	}

	sessionContext, cancelSession := context.WithCancel(executionContext)
	session := &headlessSession{
		orchestrator:     services.orchestrator,
		services:         services,
		cancel:           cancelSession,
		runFinished:      make(chan struct{}),
		drainFinished:    make(chan struct{}),
		preferencesReady: make(chan struct{}),
		reporter:         application.reporter,
	}

	go func() {
		defer close(session.runFinished)
		session.orchestrator.Run(sessionContext)
	}()
	go session.drain()

	select {
	case <-session.orchestrator.Settled():
		return session, nil
	case <-executionContext.Done():
		session.Close()
		return nil, executionContext.Err()
	}
}

func (session *headlessSession) drain() {
	defer close(session.drainFinished)
	defer session.preferencesOnce.Do(func() { close(session.preferencesReady) })

	for notification := range session.orchestrator.Notifications() {
		switch typedNotification := notification.(type) {
		case orchestrator.PersistenceFailed:
			session.reporter.Printf(persistenceFailureTemplateConstant, typedNotification.Err)
		case orchestrator.ScanFinished:
			if typedNotification.Err != nil {
				session.reporter.Printf(scanFailureTemplateConstant, typedNotification.Err)
			}
		case orchestrator.PreferencesChanged:
			session.mutex.Lock()
			session.preferences = typedNotification.Preferences
			session.mutex.Unlock()
			session.preferencesOnce.Do(func() { close(session.preferencesReady) })
		}
	}
}

// await blocks until an intent completes or the command is cancelled.
func (session *headlessSession) await(executionContext context.Context, completion <-chan struct{}) error {
	select {
	case <-completion:
		return nil
	case <-executionContext.Done():
		return executionContext.Err()
	}
}

// Preferences returns the display preferences last published by the orchestrator.
func (session *headlessSession) Preferences() orchestrator.Preferences {
	<-session.preferencesReady
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.preferences
}

// Records returns the tracked repositories in display order.
func (session *headlessSession) Records() []repository.Record {
	return session.orchestrator.Records()
}

// RecordsFor returns the tracked records for paths, preserving display order.
func (session *headlessSession) RecordsFor(paths []string) []repository.Record {
	wanted := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		wanted[path] = struct{}{}
	}

	selected := make([]repository.Record, 0, len(paths))
	for _, record := range session.Records() {
		if _, isWanted := wanted[record.Path]; isWanted {
			selected = append(selected, record)
		}
	}
	return selected
}

// ResolveTrackedPaths normalizes command arguments into tracked repository paths.
// No arguments select every tracked repository.
func (session *headlessSession) ResolveTrackedPaths(arguments []string) ([]string, error) {
	if len(arguments) == 0 {
		return repository.Paths(session.Records()), nil
	}

	tracked := make(map[string]struct{})
	for _, record := range session.Records() {
		tracked[record.Path] = struct{}{}
	}

	for _, argument := range arguments {
		if _, validationError := shared.NewRepositoryPath(argument); validationError != nil {
			return nil, validationError
		}
	}

	resolvedPaths := session.services.pathSanitizer.Sanitize(arguments)
	for _, resolvedPath := range resolvedPaths {
		if _, isTracked := tracked[resolvedPath]; !isTracked {
			return nil, fmt.Errorf(untrackedRepositoryTemplateConstant, resolvedPath)
		}
	}
	return resolvedPaths, nil
}

// Close stops the orchestrator and waits until every notification was handled.
func (session *headlessSession) Close() {
	session.cancel()
	<-session.runFinished
	<-session.drainFinished
}
