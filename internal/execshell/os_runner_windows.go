//go:build windows

package execshell

import (
	"os/exec"
	"syscall"
)

// createNoWindowFlagConstant is CREATE_NO_WINDOW from the Win32 process creation flags.
const createNoWindowFlagConstant = 0x08000000

func suppressConsoleWindow(executable *exec.Cmd) {
	if executable.SysProcAttr == nil {
		executable.SysProcAttr = &syscall.SysProcAttr{}
	}
	executable.SysProcAttr.HideWindow = true
	executable.SysProcAttr.CreationFlags |= createNoWindowFlagConstant
}
