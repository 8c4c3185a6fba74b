package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
)

// Service issues and checks bearer tokens.
type Service interface {
	// IssueToken mints a token for req.Username. The issuer must be an admin.
	IssueToken(ctx context.Context, issuer authdomain.Principal, req TokenRequest) (*TokenResponse, error)

	// Authenticate validates a bearer token and returns its principal.
	Authenticate(ctx context.Context, token string) (authdomain.Principal, error)
}

// TokenRequest describes the token to mint. A zero TTL selects the default.
type TokenRequest struct {
	Username string          `json:"username"`
	Role     authdomain.Role `json:"role"`
	TTL      time.Duration   `json:"-"`
}

type TokenResponse struct {
	Token     string          `json:"token"`
	Username  string          `json:"username"`
	Role      authdomain.Role `json:"role"`
	ExpiresAt time.Time       `json:"expiresAt"`
}
