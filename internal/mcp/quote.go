package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/toolwrap/internal/cmdline"
)

type quoteParams struct {
	Args []string `json:"args" jsonschema:"logical arguments, unquoted, in order"`
}

func (h *handler) quoteHandler(ctx context.Context, req *mcp.CallToolRequest, params quoteParams) (*mcp.CallToolResult, any, error) {
	return textResult(cmdline.Join(params.Args))
}

type splitParams struct {
	CommandLine string `json:"command_line" jsonschema:"command-line string without the program name"`
}

func (h *handler) splitHandler(ctx context.Context, req *mcp.CallToolRequest, params splitParams) (*mcp.CallToolResult, any, error) {
	args := cmdline.Split(params.CommandLine)

	var b strings.Builder
	fmt.Fprintf(&b, "Arguments (%d):\n", len(args))
	for i, a := range args {
		fmt.Fprintf(&b, "  [%d] %q\n", i, a)
	}
	return textResult(b.String())
}
