package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the interface until the user quits or the context is cancelled.
func Run(executionContext context.Context, dependencies Dependencies, options ...tea.ProgramOption) error {
	model, modelError := NewModel(executionContext, dependencies)
	if modelError != nil {
		return modelError
	}

	programOptions := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(executionContext)}, options...)
	_, runError := tea.NewProgram(model, programOptions...).Run()
	if errors.Is(runError, tea.ErrProgramKilled) && executionContext.Err() != nil {
		return nil
	}
	return runError
}
