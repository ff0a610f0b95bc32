package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates no principal could be resolved for the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the permission table denies the action.
	ErrForbidden = errors.New("access denied")
)
