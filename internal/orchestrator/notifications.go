package orchestrator

import (
	"github.com/temirov/manahg/internal/collection"
	"github.com/temirov/manahg/internal/events"
	"github.com/temirov/manahg/internal/repository"
)

// Notification is an outbound change the presentation layer renders.
type Notification interface {
	isNotification()
}

// CollectionChanged carries the full ordered collection and the active sort.
type CollectionChanged struct {
	Records []repository.Record
	Sort    collection.SortState
}

// RepositoryStatusChanged carries a status-only change of one record.
type RepositoryStatusChanged struct {
	Path   string
	Status string
}

// GlobalStatusChanged carries the global status line.
type GlobalStatusChanged struct {
	Text string
}

// PreferencesChanged carries the display preferences.
type PreferencesChanged struct {
	Preferences Preferences
}

// PersistenceFailed reports that the configuration could not be read or written.
type PersistenceFailed struct {
	Err error
}

// BatchFinished reports that every record of a batch reported its result.
type BatchFinished struct {
	BatchID events.BatchID
}

// ScanFinished reports that a scan finished and its records were merged.
type ScanFinished struct {
	ScanID     events.ScanID
	Discovered int
	Err        error
}

func (CollectionChanged) isNotification()       {}
func (RepositoryStatusChanged) isNotification() {}
func (GlobalStatusChanged) isNotification()     {}
func (PreferencesChanged) isNotification()      {}
func (PersistenceFailed) isNotification()       {}
func (BatchFinished) isNotification()           {}
func (ScanFinished) isNotification()            {}

// Preferences are the persisted display settings.
type Preferences struct {
	ThemeIndex   int
	ShowFullPath bool
}
