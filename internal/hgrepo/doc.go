// Package hgrepo contains helpers for interrogating and manipulating Mercurial repositories.
//
// Client wraps a shared.MercurialExecutor and exposes the per-repository verbs
// used by the scanner, the dispatcher and the headless commands. Refresh never
// fails; the remaining operations return the trimmed hg output or an error.
package hgrepo
