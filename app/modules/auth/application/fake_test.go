package authservice

import (
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
)

type FakeJWTProvider struct {
	GenerateTokenFunc func(principal authdomain.Principal, ttl time.Duration) (string, error)
	ValidateTokenFunc func(tokenString string) (*authdomain.Claims, error)

	generated []authdomain.Principal
}

func (f *FakeJWTProvider) GenerateToken(principal authdomain.Principal, ttl time.Duration) (string, error) {
	f.generated = append(f.generated, principal)
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(principal, ttl)
	}
	return "signed." + principal.Username, nil
}

func (f *FakeJWTProvider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(tokenString)
	}
	return &authdomain.Claims{Username: "anna", Role: authdomain.RoleMember}, nil
}
