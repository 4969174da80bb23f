package exttool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// waitDelay bounds how long Wait keeps copying output after the child was
// killed, in case a grandchild still holds the pipes open.
const waitDelay = 10 * time.Second

// Command names an external tool and the leading arguments it always gets.
type Command struct {
	Path string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Invocation is one run of a Command.
type Invocation struct {
	// Args are appended to Command.Args
	Args []string

	// Env entries (KEY=VALUE) are added to the inherited environment
	Env []string

	// Timeout kills the child after this long (0 = unbounded)
	Timeout time.Duration

	// Forward streams the child's stdout and stderr to the runner's output
	Forward bool
}

// Runner starts external tools and turns their exit status into errors.
// Runner is safe for concurrent use.
type Runner struct {
	out       io.Writer
	logger    asdb.Logger
	tailLines int
}

// NewRunner creates a runner forwarding child output to stderr when asked to.
// Panics if logger is nil.
func NewRunner(logger asdb.Logger) *Runner {
	return NewRunnerTo(os.Stderr, logger)
}

// NewRunnerTo creates a runner forwarding child output to out.
// Panics if out or logger is nil.
func NewRunnerTo(out io.Writer, logger asdb.Logger) *Runner {
	if out == nil {
		panic("out cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Runner{
		out:       &lockedWriter{w: out},
		logger:    logger,
		tailLines: asdb.MaxStderrTailLines,
	}
}

// Run executes cmd with inv and waits for it to exit.
//
// A zero exit status returns nil. Anything else returns a *asdb.ProcessError:
// ExitCode is the child's status, or -1 when it could not be started or was
// killed; TimedOut is set when inv.Timeout expired; StderrTail holds the last
// lines of stderr. When ctx itself ends, the returned error also matches
// ctx.Err() under errors.Is.
func (r *Runner) Run(ctx context.Context, cmd Command, inv Invocation) error {
	if cmd.Path == "" {
		return &asdb.ProcessError{Command: "(unset)", ExitCode: -1, Err: errors.New("no command configured")}
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(cmd.Args)+len(inv.Args))
	args = append(args, cmd.Args...)
	args = append(args, inv.Args...)

	c := exec.CommandContext(runCtx, cmd.Path, args...)
	c.Env = append(os.Environ(), inv.Env...)
	c.WaitDelay = waitDelay

	tail := newLineTail(r.tailLines)
	if inv.Forward {
		c.Stdout = r.out
		c.Stderr = io.MultiWriter(r.out, tail)
	} else {
		c.Stdout = io.Discard
		c.Stderr = tail
	}

	r.logger.Verbose("Running %s %s", cmd.Path, strings.Join(args, " "))
	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if err == nil {
		r.logger.Verbose("%s finished in %s", cmd.Path, elapsed.Round(time.Millisecond))
		return nil
	}

	procErr := &asdb.ProcessError{
		Command:    cmd.Path,
		ExitCode:   -1,
		StderrTail: tail.Lines(),
		Err:        err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		procErr.ExitCode = exitErr.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		procErr.ExitCode = -1
		procErr.Err = fmt.Errorf("%w (%v)", ctx.Err(), err)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		procErr.ExitCode = -1
		procErr.TimedOut = true
		procErr.Err = fmt.Errorf("killed after %s: %w", inv.Timeout, err)
	}

	r.logger.Verbose("%s failed after %s: %v", cmd.Path, elapsed.Round(time.Millisecond), procErr)
	return procErr
}
