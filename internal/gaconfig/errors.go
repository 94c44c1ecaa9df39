package gaconfig

import "errors"

var (
	// ErrLength reports a required count or length that is zero.
	ErrLength = errors.New("length error")
	// ErrInvalidArgument reports cross-field mismatches, inverted ranges,
	// out-of-range probabilities and use-before-dependency.
	ErrInvalidArgument = errors.New("invalid argument")
)
