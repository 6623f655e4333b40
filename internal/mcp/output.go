package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/toolwrap/internal/report"
)

type outputParams struct {
	RunID  string `json:"run_id" jsonschema:"the run ID from a wrap_run result"`
	Stream string `json:"stream,omitempty" jsonschema:"stdout (default) or stderr"`
}

func (h *handler) outputHandler(ctx context.Context, req *mcp.CallToolRequest, params outputParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	stream := report.Stream(params.Stream)
	if stream == "" {
		stream = report.Stdout
	}
	lines, err := report.Lines(result, stream)
	if err != nil {
		return errorResult(err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s (exit code %d)\n", result.RunID, result.ExitCode)
	fmt.Fprintf(&b, "%s (%d lines):\n", stream, len(lines))
	for _, line := range lines {
		fmt.Fprintln(&b, line)
	}
	if result.Truncated {
		fmt.Fprintln(&b, "(truncated)")
	}
	return textResult(b.String())
}
