// Package tui renders the repository collection as an interactive terminal table.
//
// The Model never mutates the collection itself. Every user action becomes an
// orchestrator intent submitted from a tea.Cmd, and every visible change arrives
// as an orchestrator notification read by a self re-arming listener command.
package tui
