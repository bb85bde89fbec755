package split

import (
	"context"
	"fmt"

	"github.com/alnah/go-audiosplit/internal/format"
)

// Options configures one Splitter. Front ends supply their own defaults.
type Options struct {
	SizeBudget int64   // Maximum bytes per segment.
	NoiseDB    float64 // Silence noise floor in dB.
	MinSilence float64 // Minimum silence length in seconds.
	Tolerance  float64 // Maximum deviation of a cut from its target, in seconds.
}

// Summary collects everything produced while splitting one file.
// It is owned by the caller once Split returns.
type Summary struct {
	Source  SourceMedia
	Plan    []Segment
	Results []Result
}

// Outputs returns the paths of segments that were written successfully.
func (s Summary) Outputs() []string {
	var paths []string
	for _, r := range s.Results {
		if r.Outcome != Failed {
			paths = append(paths, r.OutputPath)
		}
	}
	return paths
}

// Warnings returns the number of non-fatal failed segments.
func (s Summary) Warnings() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == Failed {
			n++
		}
	}
	return n
}

// Splitter runs the full per-file pipeline: probe, detect, plan, execute.
// It holds no per-file state, so one Splitter can process many files.
type Splitter struct {
	opts     Options
	sink     Sink
	prober   *Prober
	detector *Detector
	executor *Executor
}

// NewSplitter creates a Splitter. A nil sink discards progress lines.
func NewSplitter(tool MediaTool, sink Sink, opts Options, execOpts ...ExecutorOption) *Splitter {
	if sink == nil {
		sink = discardSink{}
	}
	return &Splitter{
		opts:     opts,
		sink:     sink,
		prober:   NewProber(tool),
		detector: NewDetector(tool, opts.NoiseDB, opts.MinSilence),
		executor: NewExecutor(tool, sink, execOpts...),
	}
}

// Split cuts path into segments of at most Options.SizeBudget bytes,
// preferring silence points. It returns ErrFileNotFound, ErrProbeFailed or
// ErrFallbackFailed on fatal conditions; the summary then holds whatever was
// produced before the failure.
func (s *Splitter) Split(ctx context.Context, path string) (Summary, error) {
	var summary Summary

	if _, err := s.executor.statter.Stat(path); err != nil {
		return summary, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	media, err := s.prober.Probe(ctx, path)
	if err != nil {
		return summary, withCause(ctx, err)
	}
	summary.Source = media

	bytesPerSecond := media.BytesPerSecond()
	s.sink.Println(fmt.Sprintf("Max segment duration (%s limit): %.2f seconds",
		format.Size(s.opts.SizeBudget), MaxSegmentDuration(s.opts.SizeBudget, bytesPerSecond)))

	points, err := s.detector.Detect(ctx, path)
	if err != nil {
		s.sink.Println(fmt.Sprintf("Warning: %v, cutting at size targets only", err))
		points = nil
	}
	if len(points) == 0 {
		s.sink.Println("No silence points detected. Using file end as the cut point.")
	} else {
		s.sink.Println(fmt.Sprintf("Detected %d silence endpoint(s).", len(points)))
	}

	summary.Plan = Plan(media.Duration, bytesPerSecond, s.opts.SizeBudget, points, s.opts.Tolerance)

	for res, err := range s.executor.Execute(ctx, path, summary.Plan) {
		summary.Results = append(summary.Results, res)
		if err != nil {
			return summary, withCause(ctx, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	s.sink.Println("Splitting completed.")
	return summary, nil
}

// withCause attaches the context error to a failure it caused, so callers
// can tell an interrupt from a tool failure.
func withCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", err, ctxErr)
	}
	return err
}
