package cmd

import "fmt"

// ExitCodeError carries a process exit code out of a command. It is returned
// when a wrapped tool ran and the CLI must exit with its code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
