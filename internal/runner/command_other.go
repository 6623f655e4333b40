//go:build !windows

package runner

import (
	"context"
	"os/exec"

	"github.com/deixis/toolwrap/internal/cmdline"
)

// command decodes the escaped command line back into argv, since there is
// no flat-string launcher outside Windows.
func command(ctx context.Context, path, line string) *exec.Cmd {
	return exec.CommandContext(ctx, path, cmdline.Split(line)...)
}
