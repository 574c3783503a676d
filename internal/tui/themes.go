package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named terminal palette.
type Theme struct {
	Name               string
	Accent             lipgloss.Color
	HeaderForeground   lipgloss.Color
	HeaderBackground   lipgloss.Color
	SelectedForeground lipgloss.Color
	SelectedBackground lipgloss.Color
	Muted              lipgloss.Color
	AlertBorder        lipgloss.Color
}

var themes = []Theme{
	{
		Name:               "Greybird",
		Accent:             lipgloss.Color("#3b7fc4"),
		HeaderForeground:   lipgloss.Color("#303030"),
		HeaderBackground:   lipgloss.Color("#d6d6d6"),
		SelectedForeground: lipgloss.Color("#ffffff"),
		SelectedBackground: lipgloss.Color("#3b7fc4"),
		Muted:              lipgloss.Color("#7a7a7a"),
		AlertBorder:        lipgloss.Color("#c0392b"),
	},
	{
		Name:               "Dark",
		Accent:             lipgloss.Color("#4b6eaf"),
		HeaderForeground:   lipgloss.Color("#e0e0e0"),
		HeaderBackground:   lipgloss.Color("#3c3f41"),
		SelectedForeground: lipgloss.Color("#ffffff"),
		SelectedBackground: lipgloss.Color("#4b6eaf"),
		Muted:              lipgloss.Color("#a0a0a0"),
		AlertBorder:        lipgloss.Color("#ff6b68"),
	},
	{
		Name:               "HighContrast",
		Accent:             lipgloss.Color("#ffff00"),
		HeaderForeground:   lipgloss.Color("#ffff00"),
		HeaderBackground:   lipgloss.Color("#000000"),
		SelectedForeground: lipgloss.Color("#000000"),
		SelectedBackground: lipgloss.Color("#ffff00"),
		Muted:              lipgloss.Color("#ffffff"),
		AlertBorder:        lipgloss.Color("#ffffff"),
	},
	{
		Name:               "Blue",
		Accent:             lipgloss.Color("#2e75b6"),
		HeaderForeground:   lipgloss.Color("#ffffff"),
		HeaderBackground:   lipgloss.Color("#1f4e79"),
		SelectedForeground: lipgloss.Color("#000000"),
		SelectedBackground: lipgloss.Color("#9dc3e6"),
		Muted:              lipgloss.Color("#8faadc"),
		AlertBorder:        lipgloss.Color("#ff0000"),
	},
	{
		Name:               "Metro",
		Accent:             lipgloss.Color("#0078d7"),
		HeaderForeground:   lipgloss.Color("#ffffff"),
		HeaderBackground:   lipgloss.Color("#2d2d30"),
		SelectedForeground: lipgloss.Color("#ffffff"),
		SelectedBackground: lipgloss.Color("#0078d7"),
		Muted:              lipgloss.Color("#999999"),
		AlertBorder:        lipgloss.Color("#e81123"),
	},
}

// Themes returns the available themes in preference index order.
func Themes() []Theme {
	return append([]Theme{}, themes...)
}

// ThemeNames returns the theme names in preference index order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for _, theme := range themes {
		names = append(names, theme.Name)
	}
	return names
}

// ValidThemeIndex reports whether index selects a theme.
func ValidThemeIndex(index int) bool {
	return index >= 0 && index < len(themes)
}

// ThemeAt returns the theme at index, falling back to the first theme when out of range.
func ThemeAt(index int) Theme {
	if !ValidThemeIndex(index) {
		return themes[0]
	}
	return themes[index]
}

func (theme Theme) tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(theme.HeaderForeground).
		Background(theme.HeaderBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Muted).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Bold(false).
		Foreground(theme.SelectedForeground).
		Background(theme.SelectedBackground)
	return styles
}

func (theme Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
}

func (theme Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Muted)
}

func (theme Theme) dialogStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)
}

func (theme Theme) alertStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(theme.AlertBorder).
		Padding(0, 1)
}

func (theme Theme) highlightStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.SelectedForeground).Background(theme.SelectedBackground)
}
