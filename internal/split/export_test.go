package split

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// NextCutPoint exports nextCutPoint for testing.
var NextCutPoint = nextCutPoint

// ParseNumber exports parseNumber for testing.
var ParseNumber = parseNumber

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter
