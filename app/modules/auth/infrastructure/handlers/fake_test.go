package authhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/tipster/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/jwt"
)

// ------------------------
// Fake JWT Provider
// ------------------------

type FakeProvider struct {
	GenerateTokenFunc func(principal authdomain.Principal, ttl time.Duration) (string, error)
	ValidateTokenFunc func(tokenString string) (*authdomain.Claims, error)
}

func (f *FakeProvider) GenerateToken(principal authdomain.Principal, ttl time.Duration) (string, error) {
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(principal, ttl)
	}
	return "token", nil
}

func (f *FakeProvider) ValidateToken(tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(tokenString)
	}
	return &authdomain.Claims{Username: "anna", Role: authdomain.RoleMember}, nil
}

var _ authjwt.Provider = (*FakeProvider)(nil)

type FakeService struct {
	IssueTokenFunc   func(ctx context.Context, issuer authdomain.Principal, req authservice.TokenRequest) (*authservice.TokenResponse, error)
	AuthenticateFunc func(ctx context.Context, token string) (authdomain.Principal, error)
}

func (f *FakeService) IssueToken(ctx context.Context, issuer authdomain.Principal, req authservice.TokenRequest) (*authservice.TokenResponse, error) {
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, issuer, req)
	}
	return &authservice.TokenResponse{Token: "tok", Username: req.Username, Role: req.Role}, nil
}

func (f *FakeService) Authenticate(ctx context.Context, token string) (authdomain.Principal, error) {
	if f.AuthenticateFunc != nil {
		return f.AuthenticateFunc(ctx, token)
	}
	return authdomain.Principal{}, nil
}
