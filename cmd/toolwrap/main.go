// Command toolwrap runs Windows command-line tools with escaped arguments and
// serves the quoting engine over MCP.
package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/deixis/toolwrap/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
