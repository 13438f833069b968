package identity

import "errors"

var (
	// ErrInvalidToken indicates the credential failed validation.
	ErrInvalidToken = errors.New("identity: invalid token")

	// ErrUnauthenticated indicates no usable credential was presented, or the
	// credential refers to an account that no longer exists or is disabled.
	ErrUnauthenticated = errors.New("identity: unauthenticated")
)
