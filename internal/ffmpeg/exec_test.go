package ffmpeg

// Notes:
// - runProcess tests use real processes (sh, sleep) and are skipped on Windows
// - Runner tests inject a run function, so they never spawn processes

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// ---------------------------------------------------------------------------
// Runner.Run - injected run function
// ---------------------------------------------------------------------------

func TestRunner_RunUsesInjectedFunc(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotArgs []string
	runner := NewRunner(WithRunFunc(func(_ context.Context, path string, args []string) (Output, error) {
		gotPath, gotArgs = path, args
		return Output{Stdout: "42\n", ExitCode: 0}, nil
	}))

	out, err := runner.Run(context.Background(), "/usr/bin/ffprobe", []string{"-v", "error"})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if out.Stdout != "42\n" {
		t.Errorf("Stdout = %q, want %q", out.Stdout, "42\n")
	}
	if gotPath != "/usr/bin/ffprobe" || strings.Join(gotArgs, " ") != "-v error" {
		t.Errorf("run called with %q %v", gotPath, gotArgs)
	}
}

// ---------------------------------------------------------------------------
// runProcess - real processes
// ---------------------------------------------------------------------------

func TestRunProcess_CapturesBothStreams(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	out, err := runProcess(context.Background(), 0, "sh", []string{"-c", "echo primary; echo diagnostic >&2"})
	if err != nil {
		t.Fatalf("runProcess() unexpected error: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "primary" {
		t.Errorf("Stdout = %q, want %q", out.Stdout, "primary\n")
	}
	if strings.TrimSpace(out.Stderr) != "diagnostic" {
		t.Errorf("Stderr = %q, want %q", out.Stderr, "diagnostic\n")
	}
	if out.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", out.ExitCode)
	}
}

func TestRunProcess_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	out, err := runProcess(context.Background(), defaultGracePeriod, "sh", []string{"-c", "echo broken >&2; exit 3"})
	if err != nil {
		t.Fatalf("runProcess() unexpected error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", out.ExitCode)
	}
	if !strings.Contains(out.Stderr, "broken") {
		t.Errorf("Stderr = %q, want containing %q", out.Stderr, "broken")
	}
}

func TestRunProcess_LargeDiagnosticStreamDoesNotBlock(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	// Well past a pipe buffer.
	script := `i=0; while [ $i -lt 5000 ]; do echo "silence_end: $i | silence_duration: 1.0" >&2; i=$((i+1)); done`
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := runProcess(ctx, 0, "sh", []string{"-c", script})
	if err != nil {
		t.Fatalf("runProcess() unexpected error: %v", err)
	}
	if n := strings.Count(out.Stderr, "silence_end:"); n != 5000 {
		t.Errorf("captured %d lines, want 5000", n)
	}
}

func TestRunProcess_NonexistentCommand(t *testing.T) {
	t.Parallel()

	out, err := runProcess(context.Background(), 0, "/nonexistent/ffmpeg", nil)
	if err == nil {
		t.Fatal("runProcess() error = nil, want error")
	}
	if out.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", out.ExitCode)
	}
}

func TestRunProcess_ContextCancellation(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	tests := []struct {
		name  string
		grace time.Duration
	}{
		{name: "immediate kill", grace: 0},
		{name: "kill after grace period", grace: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			out, err := runProcess(ctx, tt.grace, "sleep", []string{"10"})
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("runProcess() error = %v, want DeadlineExceeded", err)
			}
			if out.ExitCode != -1 {
				t.Errorf("ExitCode = %d, want -1", out.ExitCode)
			}
			if elapsed := time.Since(start); elapsed > 5*time.Second {
				t.Errorf("runProcess() took %v, want prompt return", elapsed)
			}
		})
	}
}
