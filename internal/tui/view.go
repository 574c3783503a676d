package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/manahg/internal/collection"
)

const (
	applicationTitleConstant          = "manahg"
	ascendingIndicatorConstant        = " ▲"
	descendingIndicatorConstant       = " ▼"
	markedPrefixConstant              = "* "
	unmarkedPrefixConstant            = "  "
	statusSeparatorConstant           = "  "
	markedCountTemplateConstant       = "%d marked"
	repositoryCountTemplateConstant   = "%d repositories"
	alertTitleConstant                = "Alert"
	alertHintConstant                 = "enter/esc to dismiss"
	addRootTitleConstant              = "Search for repositories"
	commitTitleTemplateConstant       = "Commit %d repositories"
	branchTitleTemplateConstant       = "Switch branch (from %d repositories)"
	branchEntryTemplateConstant       = "%s (%d/%d)"
	revertPromptTemplateConstant      = "Revert all uncommitted changes in %d repositories? (y/n)"
	dialogHintConstant                = "enter to confirm, esc to cancel"
	noBranchesFoundConstant           = "no branches found"
	branchWidthConstant               = 18
	revisionWidthConstant             = 9
	modifiedWidthConstant             = 9
	phaseWidthConstant                = 9
	statusWidthConstant               = 26
	minimumPathWidthConstant          = 16
	columnPaddingConstant             = 2
	chromeHeightConstant              = 5
	fullHelpExtraHeightConstant       = 4
	minimumTableHeightConstant        = 3
	branchChooserVisibleEntryConstant = 10
)

// View renders the table, the status line, and any open dialog or alert.
func (model Model) View() string {
	theme := model.theme()

	if len(model.alerts) > 0 {
		alert := theme.alertStyle().Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.titleStyle().Render(alertTitleConstant),
			model.alerts[0],
			theme.statusStyle().Render(alertHintConstant),
		))
		return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, alert)
	}

	sections := []string{
		theme.titleStyle().Render(applicationTitleConstant),
		model.table.View(),
		model.statusLine(),
	}
	if dialog := model.dialogView(); len(dialog) > 0 {
		sections = append(sections, dialog)
	} else {
		sections = append(sections, model.help.View(model.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model Model) statusLine() string {
	parts := make([]string, 0, 4)
	if model.trackedIntents > 0 {
		parts = append(parts, model.spinner.View())
	}
	if len(model.globalStatus) > 0 {
		parts = append(parts, model.globalStatus)
	}
	parts = append(parts, fmt.Sprintf(repositoryCountTemplateConstant, len(model.records)))
	if len(model.marked) > 0 {
		parts = append(parts, fmt.Sprintf(markedCountTemplateConstant, len(model.marked)))
	}
	return model.theme().statusStyle().Render(strings.Join(parts, statusSeparatorConstant))
}

func (model Model) dialogView() string {
	theme := model.theme()
	var lines []string
	switch model.mode {
	case modeAddRoot:
		lines = []string{addRootTitleConstant, model.input.View()}
	case modeCommit:
		lines = []string{fmt.Sprintf(commitTitleTemplateConstant, len(model.dialogPaths)), model.input.View()}
	case modeConfirmRevert:
		return theme.dialogStyle().Render(fmt.Sprintf(revertPromptTemplateConstant, len(model.dialogPaths)))
	case modeBranchChooser:
		lines = append([]string{fmt.Sprintf(branchTitleTemplateConstant, len(model.dialogPaths))}, model.branchEntries()...)
		lines = append(lines, model.input.View())
	default:
		return ""
	}
	lines = append(lines, theme.statusStyle().Render(dialogHintConstant))
	return theme.dialogStyle().Render(strings.Join(lines, "\n"))
}

func (model Model) branchEntries() []string {
	if len(model.branchCounts) == 0 {
		return []string{model.theme().statusStyle().Render(noBranchesFoundConstant)}
	}
	firstVisible := 0
	if model.branchCursor >= branchChooserVisibleEntryConstant {
		firstVisible = model.branchCursor - branchChooserVisibleEntryConstant + 1
	}
	lastVisible := min(firstVisible+branchChooserVisibleEntryConstant, len(model.branchCounts))

	entries := make([]string, 0, lastVisible-firstVisible)
	for branchIndex := firstVisible; branchIndex < lastVisible; branchIndex++ {
		branchCount := model.branchCounts[branchIndex]
		entry := fmt.Sprintf(branchEntryTemplateConstant, branchCount.Name, branchCount.Count, len(model.dialogPaths))
		if branchIndex == model.branchCursor {
			entry = model.theme().highlightStyle().Render(entry)
		}
		entries = append(entries, entry)
	}
	return entries
}

func (model *Model) rebuildTable() {
	model.table.SetColumns(model.columns())
	model.table.SetRows(model.rows())
	model.table.SetWidth(model.width)

	tableHeight := model.height - chromeHeightConstant
	if model.help.ShowAll {
		tableHeight -= fullHelpExtraHeightConstant
	}
	model.table.SetHeight(max(tableHeight, minimumTableHeightConstant))

	// SetCursor on an empty table leaves the cursor at -1, so it is raised again once rows exist.
	rowCount := len(model.records)
	switch {
	case rowCount == 0:
	case model.table.Cursor() < 0:
		model.table.SetCursor(0)
	case model.table.Cursor() >= rowCount:
		model.table.SetCursor(rowCount - 1)
	}
}

func (model Model) columns() []table.Column {
	fixedWidth := branchWidthConstant + revisionWidthConstant + modifiedWidthConstant + phaseWidthConstant + statusWidthConstant
	pathWidth := max(model.width-fixedWidth-collection.ColumnCount*columnPaddingConstant, minimumPathWidthConstant)
	widths := [collection.ColumnCount]int{pathWidth, branchWidthConstant, revisionWidthConstant, modifiedWidthConstant, phaseWidthConstant, statusWidthConstant}

	columns := make([]table.Column, 0, collection.ColumnCount)
	for columnIndex := range collection.ColumnCount {
		column := collection.Column(columnIndex)
		columns = append(columns, table.Column{Title: model.columnTitle(column), Width: widths[columnIndex]})
	}
	return columns
}

func (model Model) columnTitle(column collection.Column) string {
	title := column.Title()
	if column != model.sortState.Column {
		return title
	}
	switch model.sortState.Order {
	case collection.SortAscending:
		return title + ascendingIndicatorConstant
	case collection.SortDescending:
		return title + descendingIndicatorConstant
	default:
		return title
	}
}

func (model Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(model.records))
	for recordIndex := range model.records {
		record := model.records[recordIndex]
		prefix := unmarkedPrefixConstant
		if _, isMarked := model.marked[record.Path]; isMarked {
			prefix = markedPrefixConstant
		}
		rows = append(rows, table.Row{
			prefix + record.DisplayPath(model.preferences.ShowFullPath),
			record.CurrentBranch,
			record.Revision,
			record.ModifiedLabel(),
			record.CommitType,
			record.LastStatus,
		})
	}
	return rows
}
