package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/toolwrap/internal/launcher"
	"github.com/deixis/toolwrap/internal/runner"
)

// tailLines is how many lines per stream wrap_run shows inline.
const tailLines = 20

type runParams struct {
	Path    string   `json:"path" jsonschema:"path of the executable to run"`
	Args    []string `json:"args,omitempty" jsonschema:"arguments, unquoted; they are escaped automatically"`
	Profile string   `json:"profile,omitempty" jsonschema:"tool profile for configuration and labels: mage, signtool or wix"`
	Raw     bool     `json:"raw,omitempty" jsonschema:"join arguments with spaces without escaping"`
	Timeout string   `json:"timeout,omitempty" jsonschema:"deadline such as 30s or 5m; the process is killed when it passes"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	if params.Path == "" {
		return errorResult("path is required")
	}

	cfg, workspace := h.snapshot()

	profile := launcher.Generic(filepath.Base(params.Path))
	if params.Profile != "" {
		p, ok := launcher.Lookup(params.Profile)
		if !ok {
			return errorResult(fmt.Sprintf("unknown profile %q (known: %s)", params.Profile, strings.Join(launcher.Names(), ", ")))
		}
		profile = p
	}

	l := launcher.New(profile, cfg, nil, nil, &h.log)
	if params.Raw {
		l.Profile.Quote = false
	}
	if params.Timeout != "" {
		d, err := time.ParseDuration(params.Timeout)
		if err != nil || d <= 0 {
			return errorResult(fmt.Sprintf("invalid timeout %q", params.Timeout))
		}
		l.Runner.Timeout = d
	}

	result, err := l.Runner.Run(ctx, runner.Invocation{
		Path:        params.Path,
		CommandLine: l.CommandLine(params.Args),
		Dir:         workspace,
	})
	if err != nil {
		return errorResult(formatLaunchError(profile.Label, params.Path, err))
	}

	if err := h.store.Save(result); err != nil {
		h.log.Warn().Err(err).Str("run_id", result.RunID).Msg("saving result")
	}
	return textResult(formatRun(profile.Label, result))
}

func formatLaunchError(label, path string, err error) string {
	switch runner.KindOf(err) {
	case runner.KindNotFound:
		return fmt.Sprintf("%s not found at: %s", label, path)
	case runner.KindKilled:
		return fmt.Sprintf("%s was killed: %v", label, err)
	}
	return fmt.Sprintf("Failed to execute %s: %v", label, err)
}

func formatRun(label string, r *runner.Result) string {
	var b strings.Builder

	if r.Success() {
		fmt.Fprintln(&b, "Status: OK")
	} else {
		fmt.Fprintf(&b, "Status: FAIL (%s exited with code %d)\n", label, r.ExitCode)
	}
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Command line: %s\n", r.CommandLine)
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	if r.Truncated {
		fmt.Fprintln(&b, "Output was truncated at the configured max_output.")
	}
	fmt.Fprintln(&b)

	writeTail(&b, "stdout", r.Stdout)
	writeTail(&b, "stderr", r.Stderr)

	fmt.Fprintf(&b, "Full output with wrap_output(run_id=%q, stream=\"stdout\" or \"stderr\").\n", r.RunID)
	return b.String()
}

func writeTail(b *strings.Builder, name string, lines []string) {
	if len(lines) == 0 {
		fmt.Fprintf(b, "%s: (empty)\n\n", name)
		return
	}
	shown := lines
	if len(shown) > tailLines {
		shown = shown[len(shown)-tailLines:]
		fmt.Fprintf(b, "%s (last %d of %d lines):\n", name, tailLines, len(lines))
	} else {
		fmt.Fprintf(b, "%s (%d lines):\n", name, len(lines))
	}
	for _, line := range shown {
		fmt.Fprintf(b, "  %s\n", line)
	}
	fmt.Fprintln(b)
}
