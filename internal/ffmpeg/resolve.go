package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// bundledDir is the directory next to the executable that may ship
	// ffmpeg and ffprobe.
	bundledDir = "bin"

	// binaryExtWindows is the file extension for Windows executables.
	binaryExtWindows = ".exe"

	// installCheckTimeout is the hard ceiling on the installation check.
	installCheckTimeout = 3 * time.Second

	// minFFmpegMajorVersion is the minimum supported ffmpeg version.
	// Older builds lack a reliable silencedetect filter.
	minFFmpegMajorVersion = 4
)

// Environment variables overriding binary discovery.
const (
	envFFmpegPath  = "FFMPEG_PATH"
	envFFprobePath = "FFPROBE_PATH"
)

// Binaries holds the resolved paths of the media tools.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

// ---------------------------------------------------------------------------
// Resolver - testable binary resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver finds ffmpeg and ffprobe.
type Resolver struct {
	reader fileReader
	env    envProvider
	goos   string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileReader sets the file reader implementation.
func WithFileReader(r fileReader) ResolverOption {
	return func(res *Resolver) { res.reader = r }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader: osFileReader{},
		env:    osEnvProvider{},
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds both binaries. Each is looked up with this precedence:
//  1. FFMPEG_PATH / FFPROBE_PATH (error if set but invalid)
//  2. bin/ next to the running executable
//  3. System PATH
func (r *Resolver) Resolve(ctx context.Context) (Binaries, error) {
	var bins Binaries
	var err error

	if bins.FFmpeg, err = r.find(ctx, "ffmpeg", envFFmpegPath); err != nil {
		return Binaries{}, err
	}
	if bins.FFprobe, err = r.find(ctx, "ffprobe", envFFprobePath); err != nil {
		return Binaries{}, err
	}
	return bins, nil
}

func (r *Resolver) find(ctx context.Context, name, envKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if envPath := r.env.Getenv(envKey); envPath != "" {
		if _, err := r.reader.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found", ErrNotFound, envKey, envPath)
		}
		return envPath, nil
	}

	if exe, err := r.env.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), bundledDir, r.binaryName(name))
		if _, err := r.reader.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := r.env.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s is not on PATH\n\n%s", ErrNotFound, name, r.manualInstallInstructions())
}

func (r *Resolver) binaryName(name string) string {
	if r.goos == "windows" {
		return name + binaryExtWindows
	}
	return name
}

// manualInstallInstructions returns platform-specific instructions.
// Every listed package ships ffprobe alongside ffmpeg.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or place ffmpeg.exe and ffprobe.exe in a bin folder next to audiosplit.exe,
or set FFMPEG_PATH and FFPROBE_PATH.`
	default:
		return `To install FFmpeg, download from https://ffmpeg.org/download.html
Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	}
}

// ---------------------------------------------------------------------------
// InstallChecker - bounded "is this really ffmpeg" probe
// ---------------------------------------------------------------------------

// InstallChecker verifies that a resolved binary runs and reports a version.
type InstallChecker struct {
	runner  *Runner
	stderr  io.Writer
	timeout time.Duration
}

// InstallCheckerOption configures an InstallChecker.
type InstallCheckerOption func(*InstallChecker)

// WithCheckRunner sets the runner used to invoke ffmpeg.
func WithCheckRunner(r *Runner) InstallCheckerOption {
	return func(c *InstallChecker) { c.runner = r }
}

// WithCheckStderr sets the writer for version warnings.
func WithCheckStderr(w io.Writer) InstallCheckerOption {
	return func(c *InstallChecker) { c.stderr = w }
}

// WithCheckTimeout overrides the wait ceiling.
func WithCheckTimeout(d time.Duration) InstallCheckerOption {
	return func(c *InstallChecker) { c.timeout = d }
}

// NewInstallChecker creates an InstallChecker with the given options.
func NewInstallChecker(opts ...InstallCheckerOption) *InstallChecker {
	c := &InstallChecker{
		// A hung -version has nothing to finalize; kill it at the deadline.
		runner:  NewRunner(WithGracePeriod(0)),
		stderr:  os.Stderr,
		timeout: installCheckTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs "<ffmpegPath> -version" and requires "ffmpeg version" in its
// primary stream. It gives up with ErrTimeout after the wait ceiling.
// A major version below 4 only prints a warning.
func (c *InstallChecker) Check(ctx context.Context, ffmpegPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.runner.Run(ctx, ffmpegPath, []string{"-version"})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s -version after %v", ErrTimeout, ffmpegPath, c.timeout)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}
	if out.ExitCode != 0 || !strings.Contains(out.Stdout, "ffmpeg version") {
		return fmt.Errorf("%w: %s did not report a version", ErrNotInstalled, ffmpegPath)
	}

	if major, ok := parseMajorVersion(out.Stdout); ok && major < minFFmpegMajorVersion {
		fmt.Fprintf(c.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n",
			major, minFFmpegMajorVersion)
	}
	return nil
}

// CheckInstalled verifies ffmpegPath with a default InstallChecker.
func CheckInstalled(ctx context.Context, ffmpegPath string) error {
	return NewInstallChecker().Check(ctx, ffmpegPath)
}

// parseMajorVersion reads the major version from a line like
// "ffmpeg version 6.1.1 Copyright..." or "ffmpeg version n6.1.1...".
func parseMajorVersion(output string) (int, bool) {
	first, _, _ := strings.Cut(output, "\n")

	var major int
	if _, err := fmt.Sscanf(first, "ffmpeg version %d", &major); err == nil {
		return major, true
	}
	if _, err := fmt.Sscanf(first, "ffmpeg version n%d", &major); err == nil {
		return major, true
	}
	return 0, false
}
