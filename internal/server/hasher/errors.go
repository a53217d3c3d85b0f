package hasher

import "errors"

var (
	// ErrInvalidInput is returned by HashWithIterations for an iteration
	// count outside [1, MaxIterations].
	ErrInvalidInput = errors.New("invalid input")

	errMalformedHash = errors.New("malformed hash")
)
