package repository

import (
	"path/filepath"
	"strings"
)

const (
	// BranchUnknownSentinel marks a branch that could not be determined by the last refresh.
	BranchUnknownSentinel = "ERROR"
	// RevisionUnknownSentinel marks a revision that could not be determined by the last refresh.
	RevisionUnknownSentinel = "?"
	// PhaseUnknownSentinel marks a phase that could not be determined by the last refresh.
	PhaseUnknownSentinel = "Unknown"

	modifiedLabelConstant   = "Yes"
	unmodifiedLabelConstant = "No"
)

// State holds the values derived from Mercurial by a refresh. It is always replaced as a whole.
type State struct {
	CurrentBranch string `json:"current_branch" yaml:"current_branch"`
	Revision      string `json:"revision" yaml:"revision"`
	Modified      bool   `json:"modified" yaml:"modified"`
	CommitType    string `json:"commit_type" yaml:"commit_type"`
}

// Record is one tracked repository: its identity, cached state and transient status text.
type Record struct {
	Path       string `json:"path" yaml:"path"`
	State      `yaml:",inline"`
	LastStatus string `json:"last_status" yaml:"last_status"`
}

// New creates a record for a path whose state is not yet known.
func New(path string) Record {
	return Record{Path: path}
}

// WithState returns a copy of the record carrying the supplied state.
func (record Record) WithState(state State) Record {
	record.State = state
	return record
}

// WithStatus returns a copy of the record carrying the supplied status text.
func (record Record) WithStatus(status string) Record {
	record.LastStatus = status
	return record
}

// BranchKnown reports whether the last refresh resolved the current branch.
func (record Record) BranchKnown() bool {
	trimmedBranch := strings.TrimSpace(record.CurrentBranch)
	return len(trimmedBranch) > 0 && !strings.HasPrefix(trimmedBranch, BranchUnknownSentinel)
}

// DisplayPath renders the path either in full or as its last segment.
func (record Record) DisplayPath(showFullPath bool) string {
	if showFullPath {
		return record.Path
	}
	return filepath.Base(record.Path)
}

// ModifiedLabel renders the modified flag for tabular output.
func (record Record) ModifiedLabel() string {
	if record.Modified {
		return modifiedLabelConstant
	}
	return unmodifiedLabelConstant
}

// Paths extracts the identities of the supplied records, preserving order.
func Paths(records []Record) []string {
	paths := make([]string, 0, len(records))
	for recordIndex := range records {
		paths = append(paths, records[recordIndex].Path)
	}
	return paths
}
