// Package cmd implements the toolwrap CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/deixis/toolwrap"
)

// NewRootCommand builds the toolwrap command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "toolwrap",
		Short: "Run Windows command-line tools with correctly escaped arguments",
		Long: `toolwrap launches an external executable with a forwarded argument list,
escaping every argument so the child sees exactly what was passed, relays
its output live and exits with the child's exit code.

The dedicated wrappers (mage-wrapper, signtool-wrapper, wix-wrapper) behave
like "toolwrap run" with a fixed tool profile.`,
		Version:       toolwrap.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(),
		newQuoteCommand(),
		newSplitCommand(),
		newMCPCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), toolwrap.Version)
		},
	}
}

// Execute runs the command tree against os.Args. An interrupt cancels the
// running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	var exitErr *ExitCodeError
	if err != nil && !errors.As(err, &exitErr) {
		root.PrintErrln("Error:", err)
	}
	return err
}
