package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/temirov/manahg/internal/collection"
	"github.com/temirov/manahg/internal/dispatch"
	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/orchestrator"
	"github.com/temirov/manahg/internal/repository"
)

const (
	orchestratorNotConfiguredMessageConstant      = "terminal interface requires an orchestrator"
	branchSummarizerNotConfiguredMessageConstant  = "terminal interface requires a branch summarizer"
	workbenchLauncherNotConfiguredMessageConstant = "terminal interface requires a workbench launcher"
	noRepositorySelectedStatusConstant            = "No repository selected"
	analyzingBranchesStatusConstant               = "Analyzing branches..."
	noBranchChosenStatusConstant                  = "No branch chosen"
	copiedPathsStatusTemplateConstant             = "Copied %d path(s)"
	persistenceAlertTemplateConstant              = "Could not read or write the repository list: %v"
	workbenchAlertTemplateConstant                = "Failed to launch the workbench: %v"
	clipboardAlertTemplateConstant                = "Failed to copy paths: %v"
	addRootPlaceholderConstant                    = "folder to search for repositories"
	commitPlaceholderConstant                     = "commit message"
	branchPlaceholderConstant                     = "or type a branch name"
	inputCharacterLimitConstant                   = 512
	scanFailedLogMessageConstant                  = "scan finished with error"
	batchFinishedLogMessageConstant               = "batch finished"
	alertRaisedLogMessageConstant                 = "alert raised"
	logFieldBatchConstant                         = "batch"
	logFieldAlertConstant                         = "alert"
	defaultWidthConstant                          = 100
	defaultHeightConstant                         = 24
)

// ErrOrchestratorNotConfigured indicates NewModel received no orchestrator.
var ErrOrchestratorNotConfigured = errors.New(orchestratorNotConfiguredMessageConstant)

// ErrBranchSummarizerNotConfigured indicates NewModel received no branch summarizer.
var ErrBranchSummarizerNotConfigured = errors.New(branchSummarizerNotConfiguredMessageConstant)

// ErrWorkbenchLauncherNotConfigured indicates NewModel received no workbench launcher.
var ErrWorkbenchLauncherNotConfigured = errors.New(workbenchLauncherNotConfiguredMessageConstant)

// Orchestrator accepts intents and streams notifications.
type Orchestrator interface {
	Notifications() <-chan orchestrator.Notification
	AddRoots(roots []string) <-chan struct{}
	RemovePaths(paths []string) <-chan struct{}
	Refresh(paths []string) <-chan struct{}
	RefreshAll() <-chan struct{}
	RunOperation(paths []string, operation dispatch.Operation) <-chan struct{}
	SortByColumn(column collection.Column) <-chan struct{}
	UpdatePreferences(themeIndex int, showFullPath bool) <-chan struct{}
}

// BranchSummarizer aggregates branch names across repositories for the branch chooser.
type BranchSummarizer interface {
	BranchSummary(executionContext context.Context, repositoryPaths []string) []hgrepo.BranchCount
}

// WorkbenchLauncher opens a repository in an external graphical tool.
type WorkbenchLauncher interface {
	Launch(repositoryPath string) error
}

// ClipboardWriter places text on the system clipboard.
type ClipboardWriter func(text string) error

// Dependencies captures collaborators required by the terminal interface.
type Dependencies struct {
	Orchestrator      Orchestrator
	BranchSummarizer  BranchSummarizer
	WorkbenchLauncher WorkbenchLauncher
	ClipboardWriter   ClipboardWriter
	Logger            *zap.Logger
	// InitialRoots are scanned once when the interface starts.
	InitialRoots []string
}

type interactionMode int

const (
	modeBrowse interactionMode = iota
	modeAddRoot
	modeCommit
	modeBranchChooser
	modeConfirmRevert
)

// Model is the bubbletea model rendering the repository collection.
type Model struct {
	executionContext context.Context
	orchestrator     Orchestrator
	notifications    <-chan orchestrator.Notification
	summarizer       BranchSummarizer
	launcher         WorkbenchLauncher
	clipboardWriter  ClipboardWriter
	logger           *zap.Logger
	initialRoots     []string

	keys    keyMap
	help    help.Model
	table   table.Model
	spinner spinner.Model
	input   textinput.Model

	records        []repository.Record
	sortState      collection.SortState
	preferences    orchestrator.Preferences
	marked         map[string]struct{}
	globalStatus   string
	trackedIntents int
	alerts         []string

	mode         interactionMode
	dialogPaths  []string
	branchCounts []hgrepo.BranchCount
	branchCursor int

	width  int
	height int
}

// NewModel constructs a Model bound to the orchestrator notifications.
func NewModel(executionContext context.Context, dependencies Dependencies) (Model, error) {
	if dependencies.Orchestrator == nil {
		return Model{}, ErrOrchestratorNotConfigured
	}
	if dependencies.BranchSummarizer == nil {
		return Model{}, ErrBranchSummarizerNotConfigured
	}
	if dependencies.WorkbenchLauncher == nil {
		return Model{}, ErrWorkbenchLauncherNotConfigured
	}
	if executionContext == nil {
		executionContext = context.Background()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clipboardWriter := dependencies.ClipboardWriter
	if clipboardWriter == nil {
		clipboardWriter = clipboard.WriteAll
	}

	input := textinput.New()
	input.CharLimit = inputCharacterLimitConstant

	model := Model{
		executionContext: executionContext,
		orchestrator:     dependencies.Orchestrator,
		notifications:    dependencies.Orchestrator.Notifications(),
		summarizer:       dependencies.BranchSummarizer,
		launcher:         dependencies.WorkbenchLauncher,
		clipboardWriter:  clipboardWriter,
		logger:           logger,
		initialRoots:     append([]string{}, dependencies.InitialRoots...),
		keys:             newKeyMap(),
		help:             help.New(),
		table:            table.New(table.WithFocused(true), table.WithKeyMap(tableKeyMap())),
		spinner:          spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:            input,
		sortState:        collection.DefaultSortState(),
		marked:           make(map[string]struct{}),
		width:            defaultWidthConstant,
		height:           defaultHeightConstant,
	}
	model.table.SetStyles(model.theme().tableStyles())
	if len(model.initialRoots) > 0 {
		model.trackedIntents++
	}
	model.rebuildTable()
	return model, nil
}

// Init starts the notification listener, the spinner, and the launch scan.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{listenForNotifications(model.notifications), model.spinner.Tick}
	if len(model.initialRoots) > 0 {
		roots := model.initialRoots
		commands = append(commands, awaitIntent(func() <-chan struct{} { return model.orchestrator.AddRoots(roots) }, true))
	}
	return tea.Batch(commands...)
}

// Update applies a message and returns the follow-up command.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.WindowSizeMsg:
		model.width = typedMessage.Width
		model.height = typedMessage.Height
		model.help.Width = typedMessage.Width
		model.rebuildTable()
		return model, nil
	case notificationMsg:
		model.applyNotification(typedMessage.notification)
		return model, listenForNotifications(model.notifications)
	case notificationsClosedMsg:
		return model, tea.Quit
	case intentCompletedMsg:
		if typedMessage.tracked && model.trackedIntents > 0 {
			model.trackedIntents--
		}
		return model, nil
	case branchSummaryMsg:
		return model.openBranchChooser(typedMessage)
	case workbenchFailedMsg:
		model.pushAlert(fmt.Sprintf(workbenchAlertTemplateConstant, typedMessage.err))
		return model, nil
	case clipboardResultMsg:
		if typedMessage.err != nil {
			model.pushAlert(fmt.Sprintf(clipboardAlertTemplateConstant, typedMessage.err))
			return model, nil
		}
		model.globalStatus = fmt.Sprintf(copiedPathsStatusTemplateConstant, typedMessage.count)
		return model, nil
	case spinner.TickMsg:
		var spinnerCommand tea.Cmd
		model.spinner, spinnerCommand = model.spinner.Update(typedMessage)
		return model, spinnerCommand
	case tea.KeyMsg:
		return model.handleKey(typedMessage)
	}

	if model.inputActive() {
		var inputCommand tea.Cmd
		model.input, inputCommand = model.input.Update(message)
		return model, inputCommand
	}
	return model, nil
}

func (model *Model) applyNotification(notification orchestrator.Notification) {
	switch typedNotification := notification.(type) {
	case orchestrator.CollectionChanged:
		model.records = typedNotification.Records
		model.sortState = typedNotification.Sort
		model.pruneMarks()
		model.rebuildTable()
	case orchestrator.RepositoryStatusChanged:
		for recordIndex := range model.records {
			if model.records[recordIndex].Path == typedNotification.Path {
				model.records[recordIndex].LastStatus = typedNotification.Status
			}
		}
		model.table.SetRows(model.rows())
	case orchestrator.GlobalStatusChanged:
		model.globalStatus = typedNotification.Text
	case orchestrator.PreferencesChanged:
		model.preferences = typedNotification.Preferences
		model.table.SetStyles(model.theme().tableStyles())
		model.rebuildTable()
	case orchestrator.PersistenceFailed:
		model.pushAlert(fmt.Sprintf(persistenceAlertTemplateConstant, typedNotification.Err))
	case orchestrator.BatchFinished:
		model.logger.Debug(batchFinishedLogMessageConstant, zap.Uint64(logFieldBatchConstant, uint64(typedNotification.BatchID)))
	case orchestrator.ScanFinished:
		if typedNotification.Err != nil {
			model.logger.Warn(scanFailedLogMessageConstant, zap.Error(typedNotification.Err))
		}
	}
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	if len(model.alerts) > 0 {
		if message.Type == tea.KeyEnter || message.Type == tea.KeyEsc {
			model.alerts = model.alerts[1:]
		}
		return model, nil
	}

	switch model.mode {
	case modeAddRoot, modeCommit:
		return model.handleInputKey(message)
	case modeBranchChooser:
		return model.handleBranchChooserKey(message)
	case modeConfirmRevert:
		return model.handleConfirmRevertKey(message)
	}
	return model.handleBrowseKey(message)
}

func (model Model) handleBrowseKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Help):
		model.help.ShowAll = !model.help.ShowAll
		model.rebuildTable()
		return model, nil
	case key.Matches(message, model.keys.Mark):
		model.toggleMark(model.cursorPath())
		model.table.SetRows(model.rows())
		return model, nil
	case key.Matches(message, model.keys.SelectAll):
		model.toggleSelectAll()
		model.table.SetRows(model.rows())
		return model, nil
	case key.Matches(message, model.keys.Refresh):
		paths := model.selectedPaths()
		return model.submitTracked(func() <-chan struct{} { return model.orchestrator.Refresh(paths) })
	case key.Matches(message, model.keys.RefreshAll):
		return model.submitTracked(model.orchestrator.RefreshAll)
	case key.Matches(message, model.keys.AddRoot):
		return model.openInput(modeAddRoot, addRootPlaceholderConstant, nil)
	case key.Matches(message, model.keys.Remove):
		paths := model.selectedPaths()
		for _, path := range paths {
			delete(model.marked, path)
		}
		return model, awaitIntent(func() <-chan struct{} { return model.orchestrator.RemovePaths(paths) }, false)
	case key.Matches(message, model.keys.PullAll):
		return model.submitOperation(dispatch.PullAll{})
	case key.Matches(message, model.keys.PullCurrent):
		return model.submitOperation(dispatch.PullCurrent{})
	case key.Matches(message, model.keys.UpdateLatest):
		return model.submitOperation(dispatch.UpdateToLatest{})
	case key.Matches(message, model.keys.UpdatePublic):
		return model.submitOperation(dispatch.UpdateToLastPublic{})
	case key.Matches(message, model.keys.SwitchBranch):
		paths := model.selectedPaths()
		if len(paths) == 0 {
			model.globalStatus = noRepositorySelectedStatusConstant
			return model, nil
		}
		model.globalStatus = analyzingBranchesStatusConstant
		return model, summarizeBranches(model.executionContext, model.summarizer, paths)
	case key.Matches(message, model.keys.Commit):
		paths := model.selectedPaths()
		if len(paths) == 0 {
			model.globalStatus = noRepositorySelectedStatusConstant
			return model, nil
		}
		return model.openInput(modeCommit, commitPlaceholderConstant, paths)
	case key.Matches(message, model.keys.Revert):
		paths := model.selectedPaths()
		if len(paths) == 0 {
			model.globalStatus = noRepositorySelectedStatusConstant
			return model, nil
		}
		model.mode = modeConfirmRevert
		model.dialogPaths = paths
		return model, nil
	case key.Matches(message, model.keys.Copy):
		paths := model.selectedPaths()
		if len(paths) == 0 {
			model.globalStatus = noRepositorySelectedStatusConstant
			return model, nil
		}
		return model, copyPaths(model.clipboardWriter, paths)
	case key.Matches(message, model.keys.OpenWorkbench):
		paths := model.selectedPaths()
		if len(paths) == 0 {
			model.globalStatus = noRepositorySelectedStatusConstant
			return model, nil
		}
		return model, launchWorkbench(model.launcher, paths[0])
	case key.Matches(message, model.keys.Sort):
		column := collection.Column(message.Runes[0] - '1')
		return model, awaitIntent(func() <-chan struct{} { return model.orchestrator.SortByColumn(column) }, false)
	case key.Matches(message, model.keys.CycleTheme):
		nextThemeIndex := (model.preferences.ThemeIndex + 1) % len(themes)
		showFullPath := model.preferences.ShowFullPath
		return model, awaitIntent(func() <-chan struct{} { return model.orchestrator.UpdatePreferences(nextThemeIndex, showFullPath) }, false)
	case key.Matches(message, model.keys.ToggleFull):
		themeIndex := model.preferences.ThemeIndex
		showFullPath := !model.preferences.ShowFullPath
		return model, awaitIntent(func() <-chan struct{} { return model.orchestrator.UpdatePreferences(themeIndex, showFullPath) }, false)
	}

	var tableCommand tea.Cmd
	model.table, tableCommand = model.table.Update(message)
	return model, tableCommand
}

func (model Model) handleInputKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.closeDialog()
		return model, nil
	case tea.KeyEnter:
		value := model.input.Value()
		mode := model.mode
		paths := model.dialogPaths
		model.closeDialog()
		if mode == modeAddRoot {
			if len(value) == 0 {
				return model, nil
			}
			return model.submitTracked(func() <-chan struct{} { return model.orchestrator.AddRoots([]string{value}) })
		}
		return model.submitOperationOn(paths, dispatch.Commit{Message: value})
	}

	var inputCommand tea.Cmd
	model.input, inputCommand = model.input.Update(message)
	return model, inputCommand
}

func (model Model) handleBranchChooserKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.closeDialog()
		return model, nil
	case tea.KeyUp:
		if model.branchCursor > 0 {
			model.branchCursor--
		}
		return model, nil
	case tea.KeyDown:
		if model.branchCursor < len(model.branchCounts)-1 {
			model.branchCursor++
		}
		return model, nil
	case tea.KeyEnter:
		target := model.input.Value()
		if len(target) == 0 && model.branchCursor < len(model.branchCounts) {
			target = model.branchCounts[model.branchCursor].Name
		}
		paths := model.dialogPaths
		model.closeDialog()
		if len(target) == 0 {
			model.globalStatus = noBranchChosenStatusConstant
			return model, nil
		}
		return model.submitOperationOn(paths, dispatch.SwitchBranch{Target: target})
	}

	var inputCommand tea.Cmd
	model.input, inputCommand = model.input.Update(message)
	return model, inputCommand
}

func (model Model) handleConfirmRevertKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.String() {
	case "y", "Y", "enter":
		paths := model.dialogPaths
		model.closeDialog()
		return model.submitOperationOn(paths, dispatch.RevertAll{})
	case "n", "N", "esc":
		model.closeDialog()
	}
	return model, nil
}

func (model Model) openInput(mode interactionMode, placeholder string, paths []string) (tea.Model, tea.Cmd) {
	model.mode = mode
	model.dialogPaths = paths
	model.input.Reset()
	model.input.Placeholder = placeholder
	return model, model.input.Focus()
}

func (model Model) openBranchChooser(summary branchSummaryMsg) (tea.Model, tea.Cmd) {
	model.branchCounts = summary.counts
	model.branchCursor = 0
	return model.openInput(modeBranchChooser, branchPlaceholderConstant, summary.paths)
}

func (model *Model) closeDialog() {
	model.mode = modeBrowse
	model.dialogPaths = nil
	model.branchCounts = nil
	model.branchCursor = 0
	model.input.Reset()
	model.input.Blur()
}

func (model Model) inputActive() bool {
	return model.mode == modeAddRoot || model.mode == modeCommit || model.mode == modeBranchChooser
}

func (model Model) submitOperation(operation dispatch.Operation) (tea.Model, tea.Cmd) {
	return model.submitOperationOn(model.selectedPaths(), operation)
}

func (model Model) submitOperationOn(paths []string, operation dispatch.Operation) (tea.Model, tea.Cmd) {
	return model.submitTracked(func() <-chan struct{} { return model.orchestrator.RunOperation(paths, operation) })
}

func (model Model) submitTracked(submit func() <-chan struct{}) (tea.Model, tea.Cmd) {
	model.trackedIntents++
	return model, awaitIntent(submit, true)
}

func (model *Model) pushAlert(text string) {
	model.logger.Warn(alertRaisedLogMessageConstant, zap.String(logFieldAlertConstant, text))
	model.alerts = append(model.alerts, text)
}

// selectedPaths returns the marked paths in display order, or the row under the cursor when nothing is marked.
func (model Model) selectedPaths() []string {
	if len(model.marked) > 0 {
		paths := make([]string, 0, len(model.marked))
		for recordIndex := range model.records {
			if _, isMarked := model.marked[model.records[recordIndex].Path]; isMarked {
				paths = append(paths, model.records[recordIndex].Path)
			}
		}
		return paths
	}
	if cursorPath := model.cursorPath(); len(cursorPath) > 0 {
		return []string{cursorPath}
	}
	return nil
}

func (model Model) cursorPath() string {
	cursor := model.table.Cursor()
	if cursor < 0 || cursor >= len(model.records) {
		return ""
	}
	return model.records[cursor].Path
}

func (model *Model) toggleMark(path string) {
	if len(path) == 0 {
		return
	}
	if _, isMarked := model.marked[path]; isMarked {
		delete(model.marked, path)
		return
	}
	model.marked[path] = struct{}{}
}

func (model *Model) toggleSelectAll() {
	if len(model.records) > 0 && len(model.marked) == len(model.records) {
		model.marked = make(map[string]struct{})
		return
	}
	for recordIndex := range model.records {
		model.marked[model.records[recordIndex].Path] = struct{}{}
	}
}

func (model *Model) pruneMarks() {
	present := make(map[string]struct{}, len(model.records))
	for recordIndex := range model.records {
		present[model.records[recordIndex].Path] = struct{}{}
	}
	for path := range model.marked {
		if _, exists := present[path]; !exists {
			delete(model.marked, path)
		}
	}
}

func (model Model) theme() Theme {
	return ThemeAt(model.preferences.ThemeIndex)
}
