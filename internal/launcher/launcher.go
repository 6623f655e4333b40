// Package launcher is the shared body of the tool wrappers. It checks the
// invocation surface, runs the target through the runner and turns the
// outcome into a process exit code plus text diagnostics.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deixis/toolwrap/internal/cmdline"
	"github.com/deixis/toolwrap/internal/config"
	"github.com/deixis/toolwrap/internal/logging"
	"github.com/deixis/toolwrap/internal/runner"
)

// ExitFailure is returned for usage errors and for every launch failure.
const ExitFailure = 1

// Launcher runs one wrapped tool.
type Launcher struct {
	Profile Profile
	Runner  *runner.Runner
	Stdout  io.Writer
	Stderr  io.Writer
}

// New builds a launcher for p with the settings from cfg. Child output is
// forwarded to stdout and stderr.
func New(p Profile, cfg *config.Config, stdout, stderr io.Writer, log *zerolog.Logger) *Launcher {
	p.Quote = cfg.Quote(p.Name, p.Quote)
	return &Launcher{
		Profile: p,
		Runner: &runner.Runner{
			Timeout:   cfg.ToolTimeout(p.Name),
			MaxOutput: cfg.MaxOutputBytes(),
			Stdout:    stdout,
			Stderr:    stderr,
			Logger:    log,
		},
		Stdout: stdout,
		Stderr: stderr,
	}
}

// CommandLine encodes the forwarded arguments for the child.
func (l *Launcher) CommandLine(args []string) string {
	if l.Profile.Quote {
		return cmdline.Join(args)
	}
	return cmdline.JoinRaw(args)
}

// Main runs the tool named by args[0] with the remaining arguments and
// returns the exit code for the launcher process.
func (l *Launcher) Main(ctx context.Context, args []string) (code int) {
	if len(args) < 2 {
		l.usage()
		return ExitFailure
	}
	path := args[0]

	defer func() {
		if rec := recover(); rec != nil {
			l.failure(errors.Errorf("panic: %v", rec))
			code = ExitFailure
		}
	}()

	res, err := l.Runner.Run(ctx, runner.Invocation{
		Path:        path,
		CommandLine: l.CommandLine(args[1:]),
	})
	if err != nil {
		return l.launchFailure(path, err)
	}

	if res.ExitCode != 0 {
		fmt.Fprintf(l.Stderr, "%s exited with code %d\n", l.Profile.Label, res.ExitCode)
	}
	if res.ExitCode < 0 {
		// Terminated by a signal; there is no code to pass on.
		return ExitFailure
	}
	return res.ExitCode
}

func (l *Launcher) usage() {
	p := l.Profile
	fmt.Fprintf(l.Stdout, "Usage: %s <%s path> <%s arguments...>\n", p.Command, p.Label, p.Name)
	if p.Example != "" {
		fmt.Fprintf(l.Stdout, "Example: %s %s\n", p.Command, p.Example)
	}
	if p.Quote {
		fmt.Fprintf(l.Stdout, "Arguments are escaped for you; pass them unquoted. Set tools.%s.quote: false in %s to forward pre-quoted arguments as is.\n", p.Name, config.FileName)
	}
}

func (l *Launcher) launchFailure(path string, err error) int {
	var le *runner.LaunchError
	if !errors.As(err, &le) {
		l.failure(err)
		return ExitFailure
	}

	switch le.Kind {
	case runner.KindNotFound:
		fmt.Fprintf(l.Stderr, "ERROR: %s not found at: %s\n", l.Profile.Label, path)
		if l.Profile.InstallHint != "" {
			fmt.Fprintf(l.Stderr, "Hint: %s\n", l.Profile.InstallHint)
		}
	case runner.KindKilled:
		fmt.Fprintf(l.Stderr, "ERROR: %s was killed: %v\n", l.Profile.Label, le.Err)
	default:
		l.failure(err)
	}
	return ExitFailure
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// failure reports an unexpected error with its stack trace.
func (l *Launcher) failure(err error) {
	msg := err.Error()
	var le *runner.LaunchError
	if errors.As(err, &le) && le.Err != nil {
		msg = le.Err.Error()
	}
	fmt.Fprintf(l.Stderr, "ERROR: Failed to execute %s: %s\n", l.Profile.Label, msg)

	var st stackTracer
	if errors.As(err, &st) {
		fmt.Fprintf(l.Stderr, "Stack trace:%+v\n", st.StackTrace())
	}
}

// Overrides adjust a launcher after configuration is applied. Zero values
// leave the configured behaviour alone.
type Overrides struct {
	Raw     bool          // join arguments without escaping
	Timeout time.Duration // replaces the configured deadline
}

// Run loads configuration from the working directory and runs the launcher
// for p with the standard logger.
func Run(ctx context.Context, p Profile, args []string, stdout, stderr io.Writer) int {
	return RunWith(ctx, p, args, stdout, stderr, Overrides{})
}

// RunWith is Run with command-line overrides applied on top of the config.
func RunWith(ctx context.Context, p Profile, args []string, stdout, stderr io.Writer, o Overrides) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: determining working directory: %v\n", err)
		return ExitFailure
	}
	loaded, err := config.Load(wd)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: loading config: %v\n", err)
		return ExitFailure
	}
	cfg := loaded.Config

	log := logging.New(stderr, logging.Options{
		App:    p.Command,
		Level:  cfg.LogLevel(config.DefaultLogLevel),
		Format: cfg.Log.Format,
	})
	if loaded.Path != "" {
		log.Debug().Str("path", loaded.Path).Msg("config loaded")
	}

	l := New(p, cfg, stdout, stderr, &log)
	if o.Raw {
		l.Profile.Quote = false
	}
	if o.Timeout > 0 {
		l.Runner.Timeout = o.Timeout
	}
	return l.Main(ctx, args)
}

// NewCommand returns the cobra command of a wrapper binary. Flag parsing is
// disabled so every argument reaches the wrapped tool verbatim. The exit code
// is stored in code.
func NewCommand(p Profile, code *int) *cobra.Command {
	return &cobra.Command{
		Use:                fmt.Sprintf("%s <%s path> <%s arguments...>", p.Command, p.Label, p.Name),
		Short:              fmt.Sprintf("Run %s with forwarded arguments", p.Label),
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = Run(cmd.Context(), p, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
	}
}

// Execute runs the wrapper for p against os.Args and returns the process
// exit code. An interrupt kills the child.
func Execute(p Profile) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return ExecuteArgs(ctx, p, os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the wrapper command for p against args and returns the
// process exit code.
func ExecuteArgs(ctx context.Context, p Profile, args []string, stdout, stderr io.Writer) int {
	// cobra answers __complete itself, even with flag parsing disabled. Here
	// the first argument is always the tool path.
	if len(args) > 0 && strings.HasPrefix(args[0], cobra.ShellCompRequestCmd) {
		return Run(ctx, p, args, stdout, stderr)
	}

	code := ExitFailure
	cmd := NewCommand(p, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return ExitFailure
	}
	return code
}
