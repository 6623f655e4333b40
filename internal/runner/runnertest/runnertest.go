// Package runnertest re-executes the test binary as a scripted child process
// so runner and launcher tests need no external programs.
package runnertest

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deixis/toolwrap/internal/cmdline"
	"github.com/deixis/toolwrap/internal/runner"
)

const envHelper = "TOOLWRAP_HELPER_PROCESS"

// Main is used as TestMain. When the binary was started by Invocation or
// Executable it runs the script in its arguments instead of the tests.
func Main(m *testing.M) {
	if os.Getenv(envHelper) == "1" {
		os.Exit(child(os.Args[1:]))
	}
	os.Exit(m.Run())
}

// Invocation returns an invocation of the test binary running script.
func Invocation(t testing.TB, script ...string) runner.Invocation {
	return runner.Invocation{
		Path:        executable(t),
		CommandLine: cmdline.Join(script),
		Env:         append(os.Environ(), envHelper+"=1"),
	}
}

// Executable returns the test binary path and marks children started with the
// inherited environment as scripted children.
func Executable(t testing.TB) string {
	t.Helper()
	t.Setenv(envHelper, "1")
	return executable(t)
}

func executable(t testing.TB) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return exe
}

// child interprets script steps:
//
//	out:TEXT    print TEXT to stdout
//	err:TEXT    print TEXT to stderr
//	raw:TEXT    write TEXT to stdout without a newline
//	flood:N     write N lines to stdout and N to stderr, alternating
//	sleep:D     sleep for duration D
//	spawn:D     start a grandchild that sleeps for D holding stdout and stderr
//	exit:N      exit with code N
//	echo        print every remaining argument %q-quoted, one per line
func child(script []string) int {
	for i, step := range script {
		op, arg, _ := strings.Cut(step, ":")
		switch op {
		case "out":
			fmt.Fprintln(os.Stdout, arg)
		case "err":
			fmt.Fprintln(os.Stderr, arg)
		case "raw":
			fmt.Fprint(os.Stdout, arg)
		case "flood":
			n, _ := strconv.Atoi(arg)
			for j := 0; j < n; j++ {
				fmt.Fprintf(os.Stdout, "stdout line %06d ........................................\n", j)
				fmt.Fprintf(os.Stderr, "stderr line %06d ........................................\n", j)
			}
		case "sleep":
			d, _ := time.ParseDuration(arg)
			time.Sleep(d)
		case "spawn":
			exe, err := os.Executable()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 98
			}
			gc := exec.Command(exe, "sleep:"+arg)
			gc.Stdout = os.Stdout
			gc.Stderr = os.Stderr
			if err := gc.Start(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 98
			}
		case "exit":
			code, _ := strconv.Atoi(arg)
			return code
		case "echo":
			for _, a := range script[i+1:] {
				fmt.Fprintf(os.Stdout, "%q\n", a)
			}
			return 0
		default:
			fmt.Fprintf(os.Stderr, "runnertest: unknown step %q\n", step)
			return 99
		}
	}
	return 0
}
