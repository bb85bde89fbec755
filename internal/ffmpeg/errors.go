package ffmpeg

import "errors"

// ErrNotFound indicates an ffmpeg or ffprobe binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrNotInstalled indicates a binary was found but does not behave like ffmpeg.
var ErrNotInstalled = errors.New("ffmpeg not installed")

// ErrTimeout is returned when the installation check exceeds its wait ceiling.
var ErrTimeout = errors.New("ffmpeg did not respond within timeout")
