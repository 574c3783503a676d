// Package events defines the result messages workers post to the orchestrator mailbox.
package events

import "github.com/temirov/manahg/internal/repository"

// BatchID identifies one dispatched batch of operations.
type BatchID uint64

// ScanID identifies one discovery scan.
type ScanID uint64

// Message is a worker result delivered to the orchestrator mailbox.
type Message interface {
	isMessage()
}

// ScanProgress carries human-readable progress of a running scan.
type ScanProgress struct {
	ScanID ScanID
	Text   string
}

// ScanCompleted carries the refreshed records found by a scan.
type ScanCompleted struct {
	ScanID  ScanID
	Records []repository.Record
	Err     error
}

// StatusPatch replaces only the transient status text of one record.
type StatusPatch struct {
	BatchID BatchID
	Path    string
	Status  string
}

// RecordUpdated carries the terminal result of one record in a batch.
type RecordUpdated struct {
	BatchID BatchID
	Record  repository.Record
}

// BatchCompleted is posted once after every record of a batch reported.
type BatchCompleted struct {
	BatchID BatchID
}

func (ScanProgress) isMessage()   {}
func (ScanCompleted) isMessage()  {}
func (StatusPatch) isMessage()    {}
func (RecordUpdated) isMessage()  {}
func (BatchCompleted) isMessage() {}
