package split

import "errors"

// ErrFileNotFound indicates the source media file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrProbeFailed indicates duration or bitrate could not be determined.
// It aborts the file before planning.
var ErrProbeFailed = errors.New("could not determine file duration or bitrate")

// ErrExtractionFailed indicates the stream-copy extraction of a segment
// failed. It is recovered locally by the re-encode fallback.
var ErrExtractionFailed = errors.New("segment extraction failed")

// ErrFallbackFailed indicates the re-encode fallback also failed.
// Remaining segments of the file are not attempted.
var ErrFallbackFailed = errors.New("segment fallback extraction failed")

// ErrOutputMissing indicates the tool reported success but no output file
// exists. It is a warning: the run continues with the next segment.
var ErrOutputMissing = errors.New("output file was not created")
