package mix

import "errors"

var (
	// ErrMissingInput reports a required stem that is absent. The wrapped
	// message names the stem so the caller can diagnose without digging.
	ErrMissingInput = errors.New("mix: missing input")

	// ErrInvalidParameter reports an unusable option value, such as a
	// non-positive tempo or an unknown export format.
	ErrInvalidParameter = errors.New("mix: invalid parameter")
)
