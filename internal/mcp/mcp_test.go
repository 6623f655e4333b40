package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/toolwrap/internal/config"
	"github.com/deixis/toolwrap/internal/report"
	"github.com/deixis/toolwrap/internal/runner/runnertest"
)

func TestMain(m *testing.M) {
	runnertest.Main(m)
}

// setup creates a toolwrap MCP server + client over in-memory transports.
func setup(t *testing.T, cfg *config.Config) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	if cfg == nil {
		cfg = &config.Config{}
	}
	store := report.NewLRUStore(5, report.NewDiskStore())
	server := NewServer(cfg, store, t.TempDir(), zerolog.Nop())

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool(%s)", name)
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func runID(t *testing.T, text string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if id, ok := strings.CutPrefix(line, "Run: "); ok {
			return id
		}
	}
	t.Fatalf("no Run ID in output:\n%s", text)
	return ""
}

func TestListTools(t *testing.T) {
	cs := setup(t, nil)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"wrap_quote", "wrap_split", "wrap_run", "wrap_output"}, names)
}

func TestWrapQuote(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_quote", map[string]any{
		"args": []string{"build", `C:\Program Files\App"x`, ""},
	})
	require.False(t, res.IsError, resultText(res))
	assert.Equal(t, `build "C:\Program Files\App\"x" ""`, resultText(res))
}

func TestWrapSplit(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_split", map[string]any{
		"command_line": `sign /f "my cert.pfx" a\\\"b`,
	})
	require.False(t, res.IsError, resultText(res))
	text := resultText(res)
	assert.Contains(t, text, "Arguments (4):")
	assert.Contains(t, text, `[2] "my cert.pfx"`)
	assert.Contains(t, text, `[3] "a\\\"b"`)
}

func TestWrapRun_ThenOutput(t *testing.T) {
	exe := runnertest.Executable(t)
	cs := setup(t, nil)

	res := callTool(t, cs, "wrap_run", map[string]any{
		"path":    exe,
		"args":    []string{"out:first", "out:second", "err:careful", "exit:3"},
		"profile": "wix",
	})
	require.False(t, res.IsError, resultText(res))
	text := resultText(res)
	assert.Contains(t, text, "Status: FAIL (wix.exe exited with code 3)")
	assert.Contains(t, text, "stdout (2 lines):")
	assert.Contains(t, text, "  careful")

	id := runID(t, text)

	out := resultText(callTool(t, cs, "wrap_output", map[string]any{"run_id": id}))
	assert.Contains(t, out, "exit code 3")
	assert.Contains(t, out, "first\nsecond\n")

	errOut := resultText(callTool(t, cs, "wrap_output", map[string]any{"run_id": id, "stream": "stderr"}))
	assert.Contains(t, errOut, "careful\n")
}

func TestWrapRun_ArgumentsAreEscaped(t *testing.T) {
	exe := runnertest.Executable(t)
	cs := setup(t, nil)

	res := callTool(t, cs, "wrap_run", map[string]any{
		"path": exe,
		"args": []string{"echo", `a\ b\`, `say "hi"`},
	})
	require.False(t, res.IsError, resultText(res))
	text := resultText(res)
	assert.Contains(t, text, "Status: OK")
	assert.Contains(t, text, `  "a\\ b\\"`)
	assert.Contains(t, text, `  "say \"hi\""`)
}

func TestWrapRun_NotFound(t *testing.T) {
	cs := setup(t, nil)
	missing := filepath.Join(t.TempDir(), "signtool.exe")
	res := callTool(t, cs, "wrap_run", map[string]any{
		"path":    missing,
		"args":    []string{"sign"},
		"profile": "signtool",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "signtool.exe not found at: "+missing)
}

func TestWrapRun_UnknownProfile(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_run", map[string]any{"path": "tool.exe", "profile": "msbuild"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "known: mage, signtool, wix")
}

func TestWrapRun_Timeout(t *testing.T) {
	exe := runnertest.Executable(t)
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_run", map[string]any{
		"path":    exe,
		"args":    []string{"sleep:30s"},
		"timeout": "200ms",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "was killed")
}

func TestWrapRun_InvalidTimeout(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_run", map[string]any{"path": "tool.exe", "timeout": "soon"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), `invalid timeout "soon"`)
}

func TestWrapOutput_MissingRunID(t *testing.T) {
	cs := setup(t, nil)
	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "wrap_output",
		Arguments: map[string]any{"stream": "stdout"},
	})
	assert.Error(t, err)
}

func TestWrapOutput_UnknownRun(t *testing.T) {
	cs := setup(t, nil)
	res := callTool(t, cs, "wrap_output", map[string]any{"run_id": "nonexistent-id"})
	assert.True(t, res.IsError)
}
