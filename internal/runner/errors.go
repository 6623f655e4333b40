package runner

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an invocation produced no exit code.
type Kind int

const (
	// KindNotFound means the executable path did not resolve to a file.
	// Nothing was spawned.
	KindNotFound Kind = iota + 1
	// KindSpawnFailed means the OS refused to start the process.
	KindSpawnFailed
	// KindKilled means the child was killed because the context ended.
	KindKilled
	// KindStream means reading the child's output or forwarding it failed.
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindSpawnFailed:
		return "spawn failed"
	case KindKilled:
		return "killed"
	case KindStream:
		return "stream error"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LaunchError is returned by Run when the child did not run to completion.
type LaunchError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// launchError builds a LaunchError carrying a stack trace from the caller.
func launchError(kind Kind, path string, err error) error {
	return errors.WithStack(&LaunchError{Kind: kind, Path: path, Err: err})
}

// KindOf returns the Kind of the LaunchError in err's chain, or 0.
func KindOf(err error) Kind {
	var le *LaunchError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
