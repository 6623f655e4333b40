package cmd

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/deixis/toolwrap/internal/launcher"
)

func newRunCommand() *cobra.Command {
	var (
		profileName string
		raw         bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <executable> <arguments...>",
		Short: "Run an executable with escaped, forwarded arguments",
		Long: `Run an executable with the given arguments, escaping each one into a single
Windows command line. Output is relayed live and the command exits with the
child's exit code. Put toolwrap flags before "--" so none of the tool's own
flags are taken for toolwrap's.`,
		Example: `  toolwrap run -- C:\tools\wix.exe build -out "out dir\Product.msi" Product.wxs
  toolwrap run --profile signtool --timeout 2m -- signtool.exe sign /f cert.pfx app.exe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p launcher.Profile
			switch {
			case profileName != "":
				var ok bool
				if p, ok = launcher.Lookup(profileName); !ok {
					return errors.Errorf("unknown profile %q (known: %s)", profileName, strings.Join(launcher.Names(), ", "))
				}
			case len(args) > 0:
				p = launcher.Generic(filepath.Base(args[0]))
			default:
				p = launcher.Generic("tool")
			}
			p.Command = "toolwrap run --"

			code := launcher.RunWith(cmd.Context(), p, args, cmd.OutOrStdout(), cmd.ErrOrStderr(), launcher.Overrides{
				Raw:     raw,
				Timeout: timeout,
			})
			if code != 0 {
				return &ExitCodeError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "tool profile: mage, signtool or wix")
	cmd.Flags().BoolVar(&raw, "raw", false, "join arguments with spaces without escaping")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "kill the tool after this long (overrides config)")
	return cmd
}
