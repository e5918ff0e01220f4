//go:build linux

package msr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single wrmsr/rdmsr invocation.
const DefaultTimeout = 10 * time.Second

// Result is the outcome of one finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner starts a process and waits for it, output drained.
//
// A process that ran and exited non-zero is not an error: the Result carries
// the exit code and the caller decides. Errors are reserved for processes that
// could not be started (ErrToolNotFound) or did not finish (ErrTimeout).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	// Timeout per invocation; DefaultTimeout when zero.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the given timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) timeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run executes name with args and captures stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timeout := r.timeout()
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...)
	// Don't wait on pipes held open by grandchildren after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return res, nil
	}
	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w: %s after %s", ErrTimeout, commandString(name, args), timeout)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return res, fmt.Errorf("msr: run %s: %w", commandString(name, args), err)
}

func commandString(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
