package split

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Outcome is the final state of one segment.
type Outcome int

const (
	Success         Outcome = iota // Stream copy succeeded and the file exists.
	FallbackSuccess                // Stream copy failed, re-encode succeeded.
	Failed                         // Output missing, or both strategies failed.
)

// String returns the outcome name used in logs and manifests.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case FallbackSuccess:
		return "fallback-success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of executing one planned segment.
type Result struct {
	Segment
	OutputPath string
	Outcome    Outcome
	ExitCode   int   // Exit code of the last invocation for this segment.
	Err        error // Recovered or non-fatal condition, if any.
}

// fileStatter retrieves file information.
type fileStatter interface {
	Stat(name string) (os.FileInfo, error)
}

// osFileStatter implements fileStatter using os.Stat.
type osFileStatter struct{}

func (osFileStatter) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Executor materializes planned segments one at a time.
type Executor struct {
	tool    MediaTool
	sink    Sink
	statter fileStatter
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithFileStatter sets the file statter used to verify outputs.
func WithFileStatter(s fileStatter) ExecutorOption {
	return func(e *Executor) {
		e.statter = s
	}
}

// NewExecutor creates an Executor. A nil sink discards progress lines.
func NewExecutor(tool MediaTool, sink Sink, opts ...ExecutorOption) *Executor {
	if sink == nil {
		sink = discardSink{}
	}
	e := &Executor{
		tool:    tool,
		sink:    sink,
		statter: osFileStatter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputPath derives the path of segment index for source:
// {dir}/{basename}_part{index}{ext}.
func OutputPath(source string, index int) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)
	return filepath.Join(filepath.Dir(source), fmt.Sprintf("%s_part%d%s", base, index, ext))
}

// Execute returns a sequence producing one Result per planned segment, in
// plan order. Each step writes a file, so the sequence must not be ranged
// over twice.
//
// The error is non-nil only for a fatal failure (ErrFallbackFailed); the
// sequence ends right after it. A missing output is reported through
// Result.Err and the sequence continues. Once ctx is done, no further
// segment is started.
func (e *Executor) Execute(ctx context.Context, source string, plan []Segment) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for _, seg := range plan {
			if ctx.Err() != nil {
				return
			}
			res, err := e.executeSegment(ctx, source, seg)
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// executeSegment runs the stream-copy -> fallback -> verify state machine.
func (e *Executor) executeSegment(ctx context.Context, source string, seg Segment) (Result, error) {
	res := Result{Segment: seg, OutputPath: OutputPath(source, seg.Index)}
	e.sink.Println(fmt.Sprintf("Segment %d: %.2fs to %.2fs", seg.Index, seg.Start, seg.End))

	res.ExitCode = e.extract(ctx, source, res.OutputPath, seg, StreamCopy)
	res.Outcome = Success
	if res.ExitCode != 0 {
		e.sink.Println(fmt.Sprintf("Error: media tool exited with code %d.", res.ExitCode))
		e.sink.Println("Trying alternative method with format conversion...")
		res.Err = fmt.Errorf("%w: segment %d: exit code %d", ErrExtractionFailed, seg.Index, res.ExitCode)

		res.ExitCode = e.extract(ctx, source, res.OutputPath, seg, Reencode)
		if res.ExitCode != 0 {
			e.sink.Println(fmt.Sprintf("Error: Alternative method also failed with exit code %d.", res.ExitCode))
			res.Outcome = Failed
			res.Err = fmt.Errorf("%w: segment %d: exit code %d", ErrFallbackFailed, seg.Index, res.ExitCode)
			return res, res.Err
		}
		res.Outcome = FallbackSuccess
	}

	if _, err := e.statter.Stat(res.OutputPath); err != nil {
		e.sink.Println("Warning: Output file was not created: " + res.OutputPath)
		res.Outcome = Failed
		res.Err = fmt.Errorf("%w: %s", ErrOutputMissing, res.OutputPath)
		return res, nil
	}

	e.sink.Println("Successfully created output file: " + res.OutputPath)
	return res, nil
}

// extract runs one extraction and returns its exit code. A tool that could
// not be started counts as exit code -1.
func (e *Executor) extract(ctx context.Context, source, output string, seg Segment, strategy Strategy) int {
	inv, err := e.tool.ExtractSegment(ctx, Extraction{
		Source:   source,
		Output:   output,
		Start:    seg.Start,
		Duration: seg.Duration(),
		Strategy: strategy,
	})
	if inv.Diagnostic != "" {
		e.sink.Println("Media tool error output:\n" + strings.TrimRight(inv.Diagnostic, "\n"))
	}
	if err != nil {
		e.sink.Println(fmt.Sprintf("Error: %s extraction could not run: %v", strategy, err))
		if inv.ExitCode == 0 {
			return -1
		}
	}
	return inv.ExitCode
}
