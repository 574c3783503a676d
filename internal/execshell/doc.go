// Package execshell provides structured helpers for invoking the Mercurial client.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle events,
// normalizes non-zero exits into CommandFailedError, and trims output.
// OSCommandRunner is the default runner backed by os/exec; it suppresses
// console windows for spawned processes on platforms that create them.
package execshell
