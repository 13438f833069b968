package society

import "errors"

// Sentinel errors for the domain layer. The HTTP layer maps these to status
// codes in exactly one place; orchestrators only ever wrap them.
var (
	ErrNotFound     = errors.New("society: not found")
	ErrInvalidInput = errors.New("society: invalid input")
	ErrConflict     = errors.New("society: conflict")
	ErrUnavailable  = errors.New("society: temporarily unavailable")
)
