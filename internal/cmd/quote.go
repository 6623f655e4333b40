package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/deixis/toolwrap/internal/cmdline"
)

func newQuoteCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "quote [flags] -- <arguments...>",
		Short: "Print the Windows command line for a list of arguments",
		Example: `  toolwrap quote -- sign /f "my cert.pfx" app.exe
  sign /f "my cert.pfx" app.exe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := cmdline.Join(args)
			if raw {
				line = cmdline.JoinRaw(args)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&raw, "raw", false, "join with spaces without escaping")
	return cmd
}

func newSplitCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "split [command line]",
		Short: "Print the arguments a child process sees for a command line",
		Long: `Decode a Windows command line into its arguments, one per line. With no
argument the command line is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var line string
			if len(args) == 1 {
				line = args[0]
			} else {
				var err error
				if line, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			parts := cmdline.Split(line)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(parts)
			}
			for _, p := range parts {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the arguments as a JSON array")
	return cmd
}

// readLine returns the first line of r without its line terminator.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "reading command line")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
