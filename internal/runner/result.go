package runner

import "time"

// Result holds the outcome of one invocation.
type Result struct {
	RunID       string        `json:"run_id"`       // unique identifier for this run
	Path        string        `json:"path"`         // resolved executable path
	CommandLine string        `json:"command_line"` // escaped command line passed to the child
	ExitCode    int           `json:"exit_code"`    // process exit code
	Stdout      []string      `json:"stdout"`       // captured stdout lines (may be truncated)
	Stderr      []string      `json:"stderr"`       // captured stderr lines (may be truncated)
	Truncated   bool          `json:"truncated"`    // true if either stream exceeded the size cap
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Success reports whether the child exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}
