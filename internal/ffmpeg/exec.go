package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"
)

// defaultGracePeriod is how long ffmpeg may take to finalize its output
// after being asked to quit, before it is killed.
const defaultGracePeriod = 5 * time.Second

// pipeCloseDelay bounds the wait for output pipes after a killed process.
const pipeCloseDelay = time.Second

// Output is the captured result of one process run.
type Output struct {
	Stdout   string // Primary stream.
	Stderr   string // Diagnostic stream.
	ExitCode int
}

// runFn is the function type for running a command to completion.
type runFn func(ctx context.Context, path string, args []string) (Output, error)

// ---------------------------------------------------------------------------
// Runner - testable process execution with dependency injection
// ---------------------------------------------------------------------------

// Runner runs ffmpeg and ffprobe processes.
type Runner struct {
	run   runFn
	grace time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunFunc sets a custom run function (for testing).
func WithRunFunc(fn runFn) RunnerOption {
	return func(r *Runner) { r.run = fn }
}

// WithGracePeriod sets how long a canceled process may take to exit after
// receiving 'q' on stdin. Zero kills it immediately.
func WithGracePeriod(d time.Duration) RunnerOption {
	return func(r *Runner) { r.grace = d }
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{grace: defaultGracePeriod}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes path with args and waits for it to exit.
// A non-zero exit status is reported through Output.ExitCode with a nil
// error. The error is set only when the process could not be started or
// the context ended first; ExitCode is then -1.
func (r *Runner) Run(ctx context.Context, path string, args []string) (Output, error) {
	if r.run != nil {
		return r.run(ctx, path, args)
	}
	return runProcess(ctx, r.grace, path, args)
}

// runProcess is the production implementation. Both streams are drained
// into memory while the process runs, so a chatty diagnostic stream cannot
// fill its pipe and stall the child.
func runProcess(ctx context.Context, grace time.Duration, path string, args []string) (Output, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// ffmpeg quits cleanly and finalizes the container when it reads 'q'.
	if grace > 0 {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return Output{ExitCode: -1}, fmt.Errorf("create stdin pipe: %w", err)
		}
		cmd.Cancel = func() error {
			_, _ = io.WriteString(stdin, "q")
			return stdin.Close()
		}
		cmd.WaitDelay = grace
	} else {
		// Stop waiting on pipes still held by orphaned grandchildren.
		cmd.WaitDelay = pipeCloseDelay
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("run %s: %w", filepath.Base(path), ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		out.ExitCode = -1
		return out, fmt.Errorf("run %s: %w", filepath.Base(path), err)
	}
	return out, nil
}
