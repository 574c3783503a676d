package orchestrator

import (
	"github.com/temirov/manahg/internal/collection"
	"github.com/temirov/manahg/internal/dispatch"
)

type intent interface {
	completion() chan struct{}
}

type intentBase struct {
	done chan struct{}
}

func newIntentBase() intentBase {
	return intentBase{done: make(chan struct{})}
}

func (base intentBase) completion() chan struct{} {
	return base.done
}

type addRootsIntent struct {
	intentBase
	roots []string
}

type removePathsIntent struct {
	intentBase
	paths []string
}

type runOperationIntent struct {
	intentBase
	paths           []string
	allRepositories bool
	operation       dispatch.Operation
}

type sortIntent struct {
	intentBase
	column collection.Column
}

type preferencesIntent struct {
	intentBase
	preferences Preferences
}

// AddRoots scans the roots and merges the discovered repositories.
// The returned channel closes after the merged collection was published.
func (orchestrator *Orchestrator) AddRoots(roots []string) <-chan struct{} {
	return orchestrator.submit(addRootsIntent{intentBase: newIntentBase(), roots: append([]string{}, roots...)})
}

// RemovePaths stops tracking the given paths.
func (orchestrator *Orchestrator) RemovePaths(paths []string) <-chan struct{} {
	return orchestrator.submit(removePathsIntent{intentBase: newIntentBase(), paths: append([]string{}, paths...)})
}

// Refresh recomputes the state of the given tracked paths.
// The returned channel closes after the batch finished.
func (orchestrator *Orchestrator) Refresh(paths []string) <-chan struct{} {
	return orchestrator.RunOperation(paths, dispatch.Refresh{})
}

// RefreshAll recomputes the state of every tracked repository.
func (orchestrator *Orchestrator) RefreshAll() <-chan struct{} {
	return orchestrator.submit(runOperationIntent{intentBase: newIntentBase(), allRepositories: true, operation: dispatch.Refresh{}})
}

// RunOperation runs the operation over the given tracked paths.
// The returned channel closes after the batch finished.
func (orchestrator *Orchestrator) RunOperation(paths []string, operation dispatch.Operation) <-chan struct{} {
	return orchestrator.submit(runOperationIntent{intentBase: newIntentBase(), paths: append([]string{}, paths...), operation: operation})
}

// SortByColumn toggles the sort state for the column and reorders the collection.
func (orchestrator *Orchestrator) SortByColumn(column collection.Column) <-chan struct{} {
	return orchestrator.submit(sortIntent{intentBase: newIntentBase(), column: column})
}

// UpdatePreferences changes the display preferences and persists them when they differ.
func (orchestrator *Orchestrator) UpdatePreferences(themeIndex int, showFullPath bool) <-chan struct{} {
	return orchestrator.submit(preferencesIntent{intentBase: newIntentBase(), preferences: Preferences{ThemeIndex: themeIndex, ShowFullPath: showFullPath}})
}

func (orchestrator *Orchestrator) submit(submitted intent) <-chan struct{} {
	select {
	case orchestrator.intents <- submitted:
	case <-orchestrator.stopped:
		close(submitted.completion())
	}
	return submitted.completion()
}
