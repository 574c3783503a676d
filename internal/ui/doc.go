// Package ui turns Mercurial command lifecycle events into concise log lines.
//
// The CLI attaches CommandEventLogger to the shell executor when logs use the
// console format, so each pull or commit shows up with the repository it ran in.
package ui
