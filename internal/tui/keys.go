package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	Mark          key.Binding
	SelectAll     key.Binding
	Refresh       key.Binding
	RefreshAll    key.Binding
	AddRoot       key.Binding
	Remove        key.Binding
	PullAll       key.Binding
	PullCurrent   key.Binding
	UpdateLatest  key.Binding
	UpdatePublic  key.Binding
	SwitchBranch  key.Binding
	Commit        key.Binding
	Revert        key.Binding
	Copy          key.Binding
	OpenWorkbench key.Binding
	Sort          key.Binding
	CycleTheme    key.Binding
	ToggleFull    key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Mark:          key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark")),
		SelectAll:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		Refresh:       key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r/f5", "refresh")),
		RefreshAll:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh all")),
		AddRoot:       key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "search folder")),
		Remove:        key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x/del", "remove")),
		PullAll:       key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "pull all branches")),
		PullCurrent:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pull current branch")),
		UpdateLatest:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update to latest")),
		UpdatePublic:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "update to last public")),
		SwitchBranch:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "switch branch")),
		Commit:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commit")),
		Revert:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "revert all")),
		Copy:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy paths")),
		OpenWorkbench: key.NewBinding(key.WithKeys("o", "enter"), key.WithHelp("o", "open workbench")),
		Sort:          key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "sort")),
		CycleTheme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		ToggleFull:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full path")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Mark, keys.Refresh, keys.PullCurrent, keys.UpdateLatest, keys.Commit, keys.Help, keys.Quit}
}

func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Mark, keys.SelectAll, keys.Copy, keys.Sort},
		{keys.Refresh, keys.RefreshAll, keys.AddRoot, keys.Remove},
		{keys.PullAll, keys.PullCurrent, keys.UpdateLatest, keys.UpdatePublic},
		{keys.SwitchBranch, keys.Commit, keys.Revert, keys.OpenWorkbench},
		{keys.CycleTheme, keys.ToggleFull, keys.Help, keys.Quit},
	}
}

// tableKeyMap keeps cursor movement and leaves letters free for actions.
func tableKeyMap() table.KeyMap {
	keys := table.DefaultKeyMap()
	keys.LineUp = key.NewBinding(key.WithKeys("up", "k"))
	keys.LineDown = key.NewBinding(key.WithKeys("down", "j"))
	keys.PageUp = key.NewBinding(key.WithKeys("pgup"))
	keys.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	keys.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	keys.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	keys.GotoTop = key.NewBinding(key.WithKeys("home"))
	keys.GotoBottom = key.NewBinding(key.WithKeys("end"))
	return keys
}
