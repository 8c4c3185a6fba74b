package authjwt

import "errors"

// Validation failures. Anything that is neither expired nor badly signed
// reports ErrInvalidToken.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
)
