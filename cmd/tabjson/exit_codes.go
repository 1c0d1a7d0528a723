package main

import (
	"errors"
	"os"

	"github.com/tsawler/tabjson"
	"github.com/tsawler/tabjson/internal/config"
)

// Exit codes for the tabjson CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or unsupported input
	ExitIO      = 3 // File not found, permission denied, output not written
	ExitParse   = 4 // Input could not be parsed or output not encoded
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, tabjson.ErrInvalidOption) ||
		errors.Is(err, tabjson.ErrUnsupportedFormat) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, tabjson.ErrInputNotFound) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Parse errors (exit 4)
	if errors.Is(err, tabjson.ErrParseFailure) ||
		errors.Is(err, tabjson.ErrSerialization) {
		return ExitParse
	}

	return ExitGeneral
}
