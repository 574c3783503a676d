// Package collection owns the ordered set of tracked repository records and its merge rules.
package collection

import (
	"sort"
	"strings"
	"sync"

	"github.com/temirov/manahg/internal/repository"
)

// Store is the ordered, path-unique collection of repository records.
type Store struct {
	mutex     sync.RWMutex
	records   []repository.Record
	positions map[string]int
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{positions: make(map[string]int)}
}

// InsertDiscovered appends records whose path is not tracked yet, then sorts by path ascending.
// It reports whether any path was added.
func (store *Store) InsertDiscovered(records []repository.Record) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	added := false
	for recordIndex := range records {
		if _, tracked := store.positions[records[recordIndex].Path]; tracked {
			continue
		}
		store.positions[records[recordIndex].Path] = len(store.records)
		store.records = append(store.records, records[recordIndex])
		added = true
	}
	store.sortLocked(DefaultSortState())
	return added
}

// ApplyUpdate replaces the record with the same path, keeping the existing status when the
// incoming status is empty. Updates for untracked paths are dropped.
func (store *Store) ApplyUpdate(record repository.Record) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	position, tracked := store.positions[record.Path]
	if !tracked {
		return false
	}
	if len(record.LastStatus) == 0 {
		record.LastStatus = store.records[position].LastStatus
	}
	store.records[position] = record
	return true
}

// ApplyStatusPatch replaces only the status of a tracked record.
func (store *Store) ApplyStatusPatch(path string, status string) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	position, tracked := store.positions[path]
	if !tracked {
		return false
	}
	store.records[position].LastStatus = status
	return true
}

// Remove drops the given paths and reports whether the collection shrank.
func (store *Store) Remove(paths []string) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	removal := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		removal[path] = struct{}{}
	}

	retained := store.records[:0]
	for _, record := range store.records {
		if _, removed := removal[record.Path]; removed {
			continue
		}
		retained = append(retained, record)
	}
	shrank := len(retained) < len(store.records)
	store.records = retained
	store.reindexLocked()
	return shrank
}

// Sort reorders the collection stably according to the sort state.
func (store *Store) Sort(state SortState) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sortLocked(state)
}

// Snapshot returns a copy of the records in collection order.
func (store *Store) Snapshot() []repository.Record {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return append([]repository.Record{}, store.records...)
}

// Paths returns the tracked paths in collection order.
func (store *Store) Paths() []string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return repository.Paths(store.records)
}

// Select returns the tracked records among the given paths, in collection order.
func (store *Store) Select(paths []string) []repository.Record {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	requested := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		requested[path] = struct{}{}
	}
	selection := make([]repository.Record, 0, len(paths))
	for _, record := range store.records {
		if _, isRequested := requested[record.Path]; isRequested {
			selection = append(selection, record)
		}
	}
	return selection
}

// Get returns the tracked record for a path.
func (store *Store) Get(path string) (repository.Record, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	position, tracked := store.positions[path]
	if !tracked {
		return repository.Record{}, false
	}
	return store.records[position], true
}

// Len returns the number of tracked records.
func (store *Store) Len() int {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return len(store.records)
}

func (store *Store) sortLocked(state SortState) {
	if state.Order == SortUnordered {
		state = SortState{Column: ColumnPath, Order: SortAscending}
	}
	compare := comparatorFor(state.Column)
	sort.SliceStable(store.records, func(leftIndex int, rightIndex int) bool {
		if state.Order == SortDescending {
			return compare(store.records[rightIndex], store.records[leftIndex]) < 0
		}
		return compare(store.records[leftIndex], store.records[rightIndex]) < 0
	})
	store.reindexLocked()
}

func (store *Store) reindexLocked() {
	store.positions = make(map[string]int, len(store.records))
	for position := range store.records {
		store.positions[store.records[position].Path] = position
	}
}

func comparatorFor(column Column) func(left repository.Record, right repository.Record) int {
	switch column {
	case ColumnBranch:
		return func(left repository.Record, right repository.Record) int {
			return strings.Compare(left.CurrentBranch, right.CurrentBranch)
		}
	case ColumnRevision:
		return func(left repository.Record, right repository.Record) int {
			return strings.Compare(left.Revision, right.Revision)
		}
	case ColumnModified:
		return func(left repository.Record, right repository.Record) int {
			return compareBooleans(left.Modified, right.Modified)
		}
	case ColumnPhase:
		return func(left repository.Record, right repository.Record) int {
			return strings.Compare(left.CommitType, right.CommitType)
		}
	case ColumnStatus:
		return func(left repository.Record, right repository.Record) int {
			return strings.Compare(left.LastStatus, right.LastStatus)
		}
	default:
		return func(left repository.Record, right repository.Record) int {
			return strings.Compare(left.Path, right.Path)
		}
	}
}

func compareBooleans(left bool, right bool) int {
	switch {
	case left == right:
		return 0
	case !left:
		return -1
	default:
		return 1
	}
}
