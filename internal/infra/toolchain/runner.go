// Where: internal/infra/toolchain/runner.go
// What: External command execution for the container toolchain.
// Why: Isolate os/exec behind an interface so docker invocations can be faked in tests.
package toolchain

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// CommandRunner defines the interface for executing external commands.
type CommandRunner interface {
	// Run streams output to the console and feeds stdin when non-nil.
	Run(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) error
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner is a concrete implementation of CommandRunner using os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

func (r ExecRunner) Run(ctx context.Context, dir string, stdin io.Reader, name string, args ...string) error {
	r.trace(dir, name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	return cmd.Run()
}

func (r ExecRunner) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	r.trace(dir, name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

func (r ExecRunner) trace(dir, name string, args []string) {
	if r.Logger == nil {
		return
	}
	if dir == "" {
		dir = "."
	}
	r.Logger.Debug(dir+"$ "+name+" "+strings.Join(args, " "))
}

func orDefault(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
