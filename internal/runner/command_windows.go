//go:build windows

package runner

import (
	"context"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/deixis/toolwrap/internal/cmdline"
)

// command passes the escaped command line to CreateProcess verbatim. The
// program name is quoted separately because argv[0] follows its own rules.
func command(ctx context.Context, path, line string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, path)
	full := cmdline.Quote(path)
	if line != "" {
		full += " " + line
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       full,
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	return cmd
}
