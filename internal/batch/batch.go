// Package batch runs the splitting pipeline over several files on a
// background worker. Files are processed one at a time, in order; a
// failure on one file never stops its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// SplitFunc processes one file.
type SplitFunc func(ctx context.Context, path string) error

// Progress is reported after each file completes.
type Progress struct {
	Done  int    // Files finished so far, including this one.
	Total int    // Files in the job.
	Path  string // File just finished.
	Err   error  // Its failure, if any.
}

// ProgressFunc receives progress on the worker goroutine.
type ProgressFunc func(Progress)

// FileResult is the outcome of one file.
type FileResult struct {
	Path string
	Err  error
}

// Report summarizes a finished job in input order.
type Report struct {
	Results []FileResult
	Stopped error // Context error when files were skipped after cancellation.
}

// Succeeded returns the number of files processed without error.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of files that failed or were never reached.
func (r Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Err joins every per-file failure, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(res.Path), res.Err))
		}
	}
	return errors.Join(errs...)
}

// Job is a batch running on its background worker.
type Job struct {
	g      *errgroup.Group
	report Report
}

// Start launches the worker and returns immediately. Once ctx is done,
// files not yet started are recorded with the context error.
func Start(ctx context.Context, files []string, split SplitFunc, progress ProgressFunc) *Job {
	j := &Job{g: new(errgroup.Group)}
	j.report.Results = make([]FileResult, len(files))

	j.g.Go(func() error {
		var stopped error
		for i, path := range files {
			res := FileResult{Path: path}
			if err := ctx.Err(); err != nil {
				res.Err = err
				stopped = err
			} else {
				res.Err = split(ctx, path)
			}
			j.report.Results[i] = res

			if progress != nil {
				progress(Progress{Done: i + 1, Total: len(files), Path: path, Err: res.Err})
			}
		}
		return stopped
	})
	return j
}

// Wait blocks until every file has been handled and returns the report.
// Report.Stopped is set when cancellation left files unprocessed.
func (j *Job) Wait() Report {
	j.report.Stopped = j.g.Wait()
	return j.report
}

// Run processes files and waits for the job to finish.
func Run(ctx context.Context, files []string, split SplitFunc, progress ProgressFunc) Report {
	return Start(ctx, files, split, progress).Wait()
}
