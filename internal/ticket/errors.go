package ticket

import (
	"errors"
	"fmt"
)

// ErrMalformedInput marks input that does not parse as JSON or lacks the
// minimal envelope shape (top-level "name" and "params" keys).
var ErrMalformedInput = errors.New("malformed ticket input")

// ErrUnknownType marks a ticket name absent from the registry.
var ErrUnknownType = errors.New("unknown ticket type")

// ValidationError reports the first constraint violated during inspection:
// a required parameter missing from the envelope, or a numeric value outside
// its declared bounds.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}
