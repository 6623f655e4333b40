// Package runner launches an external executable with a pre-escaped command
// line, forwards its output line by line while it runs, and reports how it
// terminated.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Invocation describes a single process launch. It is consumed by one Run.
type Invocation struct {
	Path        string   // executable path; bare names fall back to PATH
	CommandLine string   // escaped arguments, see cmdline.Join
	Dir         string   // working directory (empty inherits the current one)
	Env         []string // environment (nil inherits the current one)
}

// DefaultKillGrace bounds how long Run keeps reading after the context is
// done. Processes started by the child may still hold the pipes open.
const DefaultKillGrace = 2 * time.Second

// Runner executes invocations. The zero value runs without a deadline,
// captures nothing and discards the child's output.
type Runner struct {
	Timeout   time.Duration // zero means no deadline
	MaxOutput int           // bytes captured per stream; zero or less captures nothing
	Stdout    io.Writer     // receives child stdout lines as they arrive
	Stderr    io.Writer     // receives child stderr lines as they arrive
	Spawner   Spawner       // defaults to ExecSpawner
	KillGrace time.Duration // output drain allowed after cancellation; zero means DefaultKillGrace
	Logger    *zerolog.Logger

	mu sync.Mutex // serialises forwarded lines
}

// Run starts the invocation and blocks until the child has exited and both of
// its output streams are drained. A non-zero exit code is reported in the
// Result, not as an error. Errors are *LaunchError values.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	log := r.logger()

	path, err := Resolve(inv.Path, inv.Dir)
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := command(ctx, path, inv.CommandLine)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, launchError(KindSpawnFailed, path, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, launchError(KindSpawnFailed, path, err)
	}

	res := &Result{
		RunID:       uuid.New().String(),
		Path:        path,
		CommandLine: inv.CommandLine,
		StartedAt:   time.Now(),
	}

	if err := r.spawner().Start(cmd); err != nil {
		log.Debug().Str("run_id", res.RunID).Str("path", path).Err(err).Msg("spawn failed")
		return nil, launchError(KindSpawnFailed, path, err)
	}
	log.Debug().
		Str("run_id", res.RunID).
		Str("path", path).
		Str("command_line", inv.CommandLine).
		Int("pid", cmd.Process.Pid).
		Msg("started")

	outCap := newLineCapture(r.MaxOutput)
	errCap := newLineCapture(r.MaxOutput)

	release := closeAfterCancel(ctx, r.killGrace(), stdout, stderr)
	defer release()

	var g errgroup.Group
	g.Go(func() error { return r.drain(cmd, stdout, r.Stdout, outCap) })
	g.Go(func() error { return r.drain(cmd, stderr, r.Stderr, errCap) })

	readErr := g.Wait()
	waitErr := cmd.Wait()

	res.Duration = time.Since(res.StartedAt)
	res.Stdout = outCap.lines
	res.Stderr = errCap.lines
	res.Truncated = outCap.truncated || errCap.truncated

	if waitErr != nil && ctx.Err() != nil {
		log.Debug().Str("run_id", res.RunID).Err(ctx.Err()).Msg("killed")
		return nil, launchError(KindKilled, path, ctx.Err())
	}
	if readErr != nil {
		return nil, launchError(KindStream, path, readErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, launchError(KindStream, path, waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	log.Debug().
		Str("run_id", res.RunID).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Msg("exited")
	return res, nil
}

// drain reads src line by line until EOF, capturing and forwarding every
// line. A failed forward keeps draining so the child never blocks on a full
// pipe; a failed read kills the child for the same reason.
func (r *Runner) drain(cmd *exec.Cmd, src io.Reader, dst io.Writer, c *lineCapture) error {
	br := bufio.NewReader(src)
	var fwdErr error
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			c.add(line)
			if fwdErr == nil {
				fwdErr = r.forward(dst, line)
			}
		}
		if err == io.EOF {
			return fwdErr
		}
		if err != nil {
			_ = cmd.Process.Kill()
			return errors.Wrap(err, "reading child output")
		}
	}
}

func (r *Runner) forward(dst io.Writer, line string) error {
	if dst == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintln(dst, line); err != nil {
		return errors.Wrap(err, "forwarding child output")
	}
	return nil
}

func (r *Runner) killGrace() time.Duration {
	if r.KillGrace > 0 {
		return r.KillGrace
	}
	return DefaultKillGrace
}

// closeAfterCancel closes pipes once grace has passed after ctx is done, so
// readers blocked by a descendant that outlived the killed child return.
// The returned func disarms it.
func closeAfterCancel(ctx context.Context, grace time.Duration, pipes ...io.Closer) func() {
	var (
		mu       sync.Mutex
		timer    *time.Timer
		disarmed bool
	)
	stop := context.AfterFunc(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if disarmed {
			return
		}
		timer = time.AfterFunc(grace, func() {
			for _, p := range pipes {
				_ = p.Close()
			}
		})
	})
	return func() {
		stop()
		mu.Lock()
		defer mu.Unlock()
		disarmed = true
		if timer != nil {
			timer.Stop()
		}
	}
}

func (r *Runner) spawner() Spawner {
	if r.Spawner != nil {
		return r.Spawner
	}
	return ExecSpawner{}
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Resolve checks that path names an existing file and returns the path to
// launch. Relative paths are taken relative to dir. A bare name that does not
// exist there is looked up on PATH. Failure is a KindNotFound LaunchError.
func Resolve(path, dir string) (string, error) {
	if path == "" {
		return "", launchError(KindNotFound, path, errors.New("empty executable path"))
	}

	candidate := path
	if !filepath.IsAbs(path) && dir != "" {
		candidate = filepath.Join(dir, path)
	}
	info, err := os.Stat(candidate)
	if err == nil {
		if info.IsDir() {
			return "", launchError(KindNotFound, path, errors.New("is a directory"))
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", launchError(KindNotFound, path, err)
		}
		return abs, nil
	}

	if !strings.ContainsAny(path, `/\`) {
		if found, lookErr := exec.LookPath(path); lookErr == nil {
			return found, nil
		}
	}
	return "", launchError(KindNotFound, path, err)
}
