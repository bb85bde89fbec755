// Package split plans and executes size-bounded audio segmentation.
//
// The package drives an external media tool through the narrow MediaTool
// interface: it never builds tool-specific argument lists itself, it only
// parses the textual results the tool returns. A file goes through the
// pipeline Prober -> Detector -> Plan -> Executor, and the whole plan is
// computed before the first segment is written.
package split

import "context"

// Strategy selects how a segment is materialized by the media tool.
type Strategy int

const (
	// StreamCopy extracts the slice without re-encoding. Fast and exact, but
	// it fails on some boundary/codec combinations.
	StreamCopy Strategy = iota

	// Reencode transcodes the slice to 16-bit PCM. Used only as a fallback.
	Reencode
)

// String returns the strategy name used in log lines.
func (s Strategy) String() string {
	switch s {
	case StreamCopy:
		return "stream-copy"
	case Reencode:
		return "re-encode"
	default:
		return "unknown"
	}
}

// Extraction describes one segment extraction request.
type Extraction struct {
	Source   string  // Source media path.
	Output   string  // Destination path, overwritten if it exists.
	Start    float64 // Start offset in seconds.
	Duration float64 // Slice length in seconds.
	Strategy Strategy
}

// Invocation is the observable result of one extraction run.
type Invocation struct {
	ExitCode   int    // Process exit code; 0 means success.
	Diagnostic string // Full diagnostic (error) stream, verbatim.
}

// MediaTool is the external media capability consumed by the core.
// Implementations own the command-line syntax; the core only sees text.
type MediaTool interface {
	// ProbeDuration returns the primary stream of a duration query:
	// a single decimal number of seconds, or empty.
	ProbeDuration(ctx context.Context, path string) (string, error)

	// ProbeBitrate returns the primary stream of a bitrate query:
	// a single decimal number of bits per second, or empty.
	ProbeBitrate(ctx context.Context, path string) (string, error)

	// DetectSilence runs a silence analysis pass and returns its diagnostic
	// stream. noiseDB is the noise floor, minSilence the minimum silence
	// length in seconds.
	DetectSilence(ctx context.Context, path string, noiseDB, minSilence float64) (string, error)

	// ExtractSegment writes one segment file. A non-nil error means the
	// tool could not be run at all; a failed run is reported via ExitCode.
	ExtractSegment(ctx context.Context, req Extraction) (Invocation, error)
}

// Sink receives human-readable progress lines. Implementations must
// serialize concurrent writers so lines never interleave.
type Sink interface {
	Println(line string)
}

// discardSink drops every line.
type discardSink struct{}

func (discardSink) Println(string) {}
