package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/temirov/manahg/internal/execshell"
	"github.com/temirov/manahg/internal/hgrepo"
	"github.com/temirov/manahg/internal/orchestrator"
)

const (
	defaultWorkbenchExecutableConstant = "thg"
	copiedPathsSeparatorConstant       = "\n"
)

type notificationMsg struct {
	notification orchestrator.Notification
}

type notificationsClosedMsg struct{}

type intentCompletedMsg struct {
	tracked bool
}

type branchSummaryMsg struct {
	paths  []string
	counts []hgrepo.BranchCount
}

type workbenchFailedMsg struct {
	err error
}

type clipboardResultMsg struct {
	count int
	err   error
}

// ProcessStarter launches a detached process.
type ProcessStarter interface {
	Start(command execshell.ShellCommand) error
}

// CommandWorkbenchLauncher opens a repository in an external workbench executable.
type CommandWorkbenchLauncher struct {
	starter    ProcessStarter
	executable execshell.CommandName
}

// NewCommandWorkbenchLauncher constructs a launcher invoking executable, or thg when blank.
func NewCommandWorkbenchLauncher(starter ProcessStarter, executable string) *CommandWorkbenchLauncher {
	workbenchExecutable := execshell.CommandName(defaultWorkbenchExecutableConstant)
	if trimmedExecutable := strings.TrimSpace(executable); len(trimmedExecutable) > 0 {
		workbenchExecutable = execshell.CommandName(trimmedExecutable)
	}
	return &CommandWorkbenchLauncher{starter: starter, executable: workbenchExecutable}
}

// Launch starts the workbench with the repository as working directory.
func (launcher *CommandWorkbenchLauncher) Launch(repositoryPath string) error {
	return launcher.starter.Start(execshell.ShellCommand{
		Name:    launcher.executable,
		Details: execshell.CommandDetails{WorkingDirectory: repositoryPath},
	})
}

func listenForNotifications(notifications <-chan orchestrator.Notification) tea.Cmd {
	return func() tea.Msg {
		notification, open := <-notifications
		if !open {
			return notificationsClosedMsg{}
		}
		return notificationMsg{notification: notification}
	}
}

// awaitIntent submits off the update goroutine so a busy orchestrator never blocks rendering.
func awaitIntent(submit func() <-chan struct{}, tracked bool) tea.Cmd {
	return func() tea.Msg {
		<-submit()
		return intentCompletedMsg{tracked: tracked}
	}
}

func summarizeBranches(executionContext context.Context, summarizer BranchSummarizer, paths []string) tea.Cmd {
	return func() tea.Msg {
		return branchSummaryMsg{paths: paths, counts: summarizer.BranchSummary(executionContext, paths)}
	}
}

func launchWorkbench(launcher WorkbenchLauncher, repositoryPath string) tea.Cmd {
	return func() tea.Msg {
		if launchError := launcher.Launch(repositoryPath); launchError != nil {
			return workbenchFailedMsg{err: launchError}
		}
		return nil
	}
}

func copyPaths(writer ClipboardWriter, paths []string) tea.Cmd {
	return func() tea.Msg {
		copyError := writer(strings.Join(paths, copiedPathsSeparatorConstant))
		return clipboardResultMsg{count: len(paths), err: copyError}
	}
}
