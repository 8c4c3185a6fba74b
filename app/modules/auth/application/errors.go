package authservice

import "errors"

var (
	// ErrForbidden is returned when a non-admin asks for a token.
	ErrForbidden = errors.New("only admins may issue tokens")

	// ErrMissingUsername is returned when no subject is given.
	ErrMissingUsername = errors.New("username is required")

	// ErrInvalidRole is returned when an invalid role is specified.
	ErrInvalidRole = errors.New("invalid role specified")

	// ErrInvalidTTL is returned when the lifetime is negative or above the maximum.
	ErrInvalidTTL = errors.New("invalid token lifetime")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)
