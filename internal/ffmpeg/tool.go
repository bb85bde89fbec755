package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/split"
)

// Compile-time interface verification.
var _ split.MediaTool = (*Tool)(nil)

// Tool implements split.MediaTool with the ffprobe and ffmpeg command lines.
type Tool struct {
	bins   Binaries
	runner *Runner
	log    split.Sink
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithToolRunner sets the runner used for every invocation.
func WithToolRunner(r *Runner) ToolOption {
	return func(t *Tool) { t.runner = r }
}

// WithCommandLog logs an "Executing: ..." line before each extraction.
func WithCommandLog(sink split.Sink) ToolOption {
	return func(t *Tool) { t.log = sink }
}

// NewTool creates a Tool for the resolved binaries.
func NewTool(bins Binaries, opts ...ToolOption) *Tool {
	t := &Tool{
		bins:   bins,
		runner: NewRunner(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ProbeDuration returns ffprobe's format duration in seconds, as printed.
func (t *Tool) ProbeDuration(ctx context.Context, path string) (string, error) {
	return t.probe(ctx, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
}

// ProbeBitrate returns the first audio stream's bit rate in bits/second, as printed.
func (t *Tool) ProbeBitrate(ctx context.Context, path string) (string, error) {
	return t.probe(ctx, []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
}

func (t *Tool) probe(ctx context.Context, args []string) (string, error) {
	out, err := t.runner.Run(ctx, t.bins.FFprobe, args)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("ffprobe exited with code %d: %s", out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return out.Stdout, nil
}

// DetectSilence runs the silencedetect filter and returns ffmpeg's
// diagnostic stream, where the filter reports its intervals.
func (t *Tool) DetectSilence(ctx context.Context, path string, noiseDB, minSilence float64) (string, error) {
	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(noiseDB, 'f', -1, 64),
		strconv.FormatFloat(minSilence, 'f', -1, 64))

	out, err := t.runner.Run(ctx, t.bins.FFmpeg, []string{"-i", path, "-af", filter, "-f", "null", "-"})
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		return "", fmt.Errorf("ffmpeg exited with code %d", out.ExitCode)
	}
	return out.Stderr, nil
}

// ExtractSegment writes one slice of the source, overwriting any existing
// output. Stream copy keeps the codec; re-encode writes 16-bit PCM. The
// diagnostic stream is returned whatever the exit code.
func (t *Tool) ExtractSegment(ctx context.Context, req split.Extraction) (split.Invocation, error) {
	args := ExtractionArgs(req)
	if t.log != nil {
		t.log.Println("Executing: " + commandLine(t.bins.FFmpeg, args))
	}

	out, err := t.runner.Run(ctx, t.bins.FFmpeg, args)
	return split.Invocation{ExitCode: out.ExitCode, Diagnostic: out.Stderr}, err
}

// ExtractionArgs builds the ffmpeg arguments for req.
func ExtractionArgs(req split.Extraction) []string {
	codec := "copy"
	if req.Strategy == split.Reencode {
		codec = "pcm_s16le"
	}
	return []string{
		"-ss", format.Seconds(req.Start),
		"-i", req.Source,
		"-t", format.Seconds(req.Duration),
		"-acodec", codec,
		"-y", req.Output,
	}
}

// commandLine renders a command for logs, quoting arguments with spaces.
func commandLine(path string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, filepath.Base(path))
	for _, a := range args {
		if strings.ContainsAny(a, " \t\"") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
