package services

import "errors"

// Report service errors
var (
	// ErrMissingInput is returned when one of the two input tables is absent
	ErrMissingInput = errors.New("missing input table")

	// ErrUnsupportedInput is returned for upload names without a table extension
	ErrUnsupportedInput = errors.New("unsupported input table")
)
