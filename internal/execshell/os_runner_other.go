//go:build !windows

package execshell

import "os/exec"

func suppressConsoleWindow(*exec.Cmd) {}
