package tabjson

import "errors"

// Sentinel errors for conversion operations. They are wrapped with
// context and can be tested with errors.Is.
var (
	ErrInputNotFound     = errors.New("input not found")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrParseFailure      = errors.New("failed to parse input")
	ErrSerialization     = errors.New("failed to serialize tables")
	ErrInvalidOption     = errors.New("invalid option")
)
