package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deixis/toolwrap/internal/config"
	"github.com/deixis/toolwrap/internal/logging"
	twmcp "github.com/deixis/toolwrap/internal/mcp"
	"github.com/deixis/toolwrap/internal/report"
)

func newMCPCommand() *cobra.Command {
	var (
		instructions bool
		httpAddr     string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol server exposing wrap_quote, wrap_split,
wrap_run and wrap_output. The server speaks over stdio unless --http is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if instructions {
				fmt.Fprint(cmd.OutOrStdout(), twmcp.Instructions)
				return nil
			}
			return serve(cmd.Context(), httpAddr)
		},
	}
	cmd.Flags().BoolVar(&instructions, "instructions", false, "print model instructions and exit")
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address (e.g. :9090)")
	return cmd
}

func serve(ctx context.Context, httpAddr string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "determining workspace")
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	cfg := loaded.Config

	// Stdout belongs to the stdio transport.
	log := logging.New(os.Stderr, logging.Options{
		App:    "toolwrap mcp",
		Level:  cfg.LogLevel("info"),
		Format: cfg.Log.Format,
	})

	store := report.NewLRUStore(5, report.NewDiskStore())
	server := twmcp.NewServer(cfg, store, workspace, log)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr, log)
	}
	log.Info().Str("workspace", workspace).Msg("serving on stdio")
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, log zerolog.Logger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Info().Str("addr", addr).Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server")
	}
	return nil
}
