package authjwt

import (
	"errors"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultIssuer = "tipster"
	DefaultLeeway = 30 * time.Second
)

type poolClaims struct {
	jwt.RegisteredClaims
	Role authdomain.Role `json:"role"`
}

type provider struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// Option adjusts a provider.
type Option func(*provider)

// WithIssuer sets the iss claim written and required on tokens.
func WithIssuer(issuer string) Option {
	return func(p *provider) { p.issuer = issuer }
}

// WithLeeway sets the clock skew tolerated when checking exp and iat.
func WithLeeway(d time.Duration) Option {
	return func(p *provider) { p.leeway = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *provider) { p.now = now }
}

// NewProvider returns an HS256 provider keyed by secret.
func NewProvider(secret string, opts ...Option) Provider {
	p := &provider{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		leeway: DefaultLeeway,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *provider) GenerateToken(principal authdomain.Principal, ttl time.Duration) (string, error) {
	if principal.Username == "" {
		return "", fmt.Errorf("authjwt.GenerateToken: %w: empty username", ErrInvalidToken)
	}
	role := principal.Role
	if role == "" {
		role = authdomain.RoleMember
	}

	issuedAt := p.now().UTC().Truncate(time.Second)
	claims := poolClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    p.issuer,
			Subject:   principal.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("authjwt.GenerateToken: %w", err)
	}
	return signed, nil
}

func (p *provider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(p.leeway),
		jwt.WithTimeFunc(p.now),
	)

	var claims poolClaims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !token.Valid || claims.Subject == "" || !claims.Role.IsValid():
		return nil, ErrInvalidToken
	}

	out := &authdomain.Claims{
		Username:  claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
