// Package mcp provides the toolwrap MCP server, exposing the quoting engine
// and the process runner as tools.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/deixis/toolwrap"
	"github.com/deixis/toolwrap/internal/config"
	"github.com/deixis/toolwrap/internal/report"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	mu        sync.RWMutex
	cfg       *config.Config
	workspace string // working directory for wrap_run

	store report.Store
	log   zerolog.Logger
}

// NewServer creates an MCP server with all toolwrap tools registered.
func NewServer(cfg *config.Config, store report.Store, workspace string, log zerolog.Logger) *mcp.Server {
	h := &handler{
		cfg:       cfg,
		workspace: workspace,
		store:     store,
		log:       log,
	}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "toolwrap", Version: toolwrap.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "wrap_quote",
		Description: "Encode a list of arguments into one Windows command-line string, escaping spaces, tabs, quotes and backslashes.",
	}, h.quoteHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "wrap_split",
		Description: "Decode a Windows command-line string into the argument list the child process sees.",
	}, h.splitHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "wrap_run",
		Description: `Run an executable with a list of arguments and report its exit code.

Arguments are escaped automatically; pass them unquoted. Output is captured and
stored; fetch it in full with wrap_output using the returned run ID.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "wrap_output",
		Description: "Return the captured stdout or stderr lines of an earlier wrap_run.",
	}, h.outputHandler)

	return s
}

func (h *handler) snapshot() (*config.Config, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg, h.workspace
}

// updateWorkspaceFromRoots asks the client for its roots and, if the first
// one is a file URI, runs later invocations there with its configuration.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}
	workspace := u.Path

	loaded, err := config.Load(workspace)
	if err != nil {
		h.log.Warn().Err(err).Str("workspace", workspace).Msg("ignoring client root")
		return
	}

	h.mu.Lock()
	h.cfg = loaded.Config
	h.workspace = workspace
	h.mu.Unlock()
	h.log.Info().Str("workspace", workspace).Msg("workspace updated from client roots")
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
