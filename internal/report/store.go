// Package report persists invocation results so their captured output can
// be retrieved by run ID after the call that produced them has returned.
package report

import (
	"github.com/pkg/errors"

	"github.com/deixis/toolwrap/internal/runner"
)

// Store persists and retrieves invocation results.
type Store interface {
	Save(result *runner.Result) error
	Load(runID string) (*runner.Result, error)
}

// Stream names one of the captured output streams.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Lines returns the captured lines of stream s.
func Lines(r *runner.Result, s Stream) ([]string, error) {
	switch s {
	case Stdout, "":
		return r.Stdout, nil
	case Stderr:
		return r.Stderr, nil
	}
	return nil, errors.Errorf("unknown stream %q (want stdout or stderr)", s)
}
