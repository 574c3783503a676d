package collection

// Column identifies a sortable table column.
type Column int

// Sortable columns in display order.
const (
	ColumnPath Column = iota
	ColumnBranch
	ColumnRevision
	ColumnModified
	ColumnPhase
	ColumnStatus
)

// ColumnCount is the number of sortable columns.
const ColumnCount = int(ColumnStatus) + 1

// SortOrder is the direction applied to the active column.
type SortOrder int

// Sort orders. Unordered falls back to path ascending.
const (
	SortUnordered SortOrder = iota
	SortAscending
	SortDescending
)

// SortState is the active column and its order.
type SortState struct {
	Column Column
	Order  SortOrder
}

// DefaultSortState sorts by path without an explicit column choice.
func DefaultSortState() SortState {
	return SortState{Column: ColumnPath, Order: SortUnordered}
}

// Toggle cycles the order of the active column or starts ascending on a different column.
func (state SortState) Toggle(column Column) SortState {
	if column != state.Column {
		return SortState{Column: column, Order: SortAscending}
	}
	switch state.Order {
	case SortAscending:
		return SortState{Column: column, Order: SortDescending}
	case SortDescending:
		return SortState{Column: column, Order: SortUnordered}
	default:
		return SortState{Column: column, Order: SortAscending}
	}
}

// Valid reports whether the column index names a sortable column.
func (column Column) Valid() bool {
	return column >= ColumnPath && column <= ColumnStatus
}

var columnTitles = [ColumnCount]string{"Path", "Branch", "Revision", "Modified", "Phase", "Status"}

// Title is the column header text.
func (column Column) Title() string {
	if !column.Valid() {
		return ""
	}
	return columnTitles[column]
}
