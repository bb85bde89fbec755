package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNoInput indicates no input path was given, neither as an argument
	// nor at the interactive prompt.
	ErrNoInput = errors.New("no input file given")

	// ErrBatchFailed indicates at least one file of a batch could not be split.
	ErrBatchFailed = errors.New("batch finished with failures")
)
