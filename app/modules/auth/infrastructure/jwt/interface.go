package authjwt

import (
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
)

// Provider signs and checks bearer tokens for principals.
type Provider interface {
	// GenerateToken signs a token for principal that expires after ttl.
	GenerateToken(principal authdomain.Principal, ttl time.Duration) (string, error)

	// ValidateToken returns the claims of a token this provider signed.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
}
