package authservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	admin  = authdomain.Principal{Username: "root", Role: authdomain.RoleAdmin}
	member = authdomain.Principal{Username: "anna", Role: authdomain.RoleMember}
	fixed  = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
)

func newTestService(p authjwt.Provider) *service {
	s := NewService(p, Config{DefaultTTL: 2 * time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)), noop.NewTracerProvider().Tracer("test")).(*service)
	s.now = func() time.Time { return fixed }
	return s
}

func TestService_IssueToken(t *testing.T) {
	tests := []struct {
		name       string
		issuer     authdomain.Principal
		req        TokenRequest
		genErr     error
		wantErr    error
		wantRole   authdomain.Role
		wantExpiry time.Time
	}{
		{
			name:       "member token with default ttl",
			issuer:     admin,
			req:        TokenRequest{Username: "  anna "},
			wantRole:   authdomain.RoleMember,
			wantExpiry: fixed.Add(2 * time.Hour),
		},
		{
			name:       "admin token with explicit ttl",
			issuer:     admin,
			req:        TokenRequest{Username: "bob", Role: authdomain.RoleAdmin, TTL: time.Hour},
			wantRole:   authdomain.RoleAdmin,
			wantExpiry: fixed.Add(time.Hour),
		},
		{name: "non-admin issuer", issuer: member, req: TokenRequest{Username: "bob"}, wantErr: ErrForbidden},
		{name: "system issuer", issuer: authdomain.SystemPrincipal(), req: TokenRequest{Username: "bob"}, wantRole: authdomain.RoleMember, wantExpiry: fixed.Add(2 * time.Hour)},
		{name: "blank username", issuer: admin, req: TokenRequest{Username: "  "}, wantErr: ErrMissingUsername},
		{name: "unknown role", issuer: admin, req: TokenRequest{Username: "bob", Role: "owner"}, wantErr: ErrInvalidRole},
		{name: "negative ttl", issuer: admin, req: TokenRequest{Username: "bob", TTL: -time.Minute}, wantErr: ErrInvalidTTL},
		{name: "ttl above maximum", issuer: admin, req: TokenRequest{Username: "bob", TTL: MaxTokenTTL + time.Hour}, wantErr: ErrInvalidTTL},
		{name: "signing failure", issuer: admin, req: TokenRequest{Username: "bob"}, genErr: errors.New("boom"), wantErr: ErrGenerateToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &FakeJWTProvider{}
			if tt.genErr != nil {
				p.GenerateTokenFunc = func(authdomain.Principal, time.Duration) (string, error) { return "", tt.genErr }
			}
			s := newTestService(p)

			res, err := s.IssueToken(context.Background(), tt.issuer, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, res.Role)
			assert.Equal(t, tt.wantExpiry, res.ExpiresAt)
			assert.Equal(t, "signed."+res.Username, res.Token)
			require.Len(t, p.generated, 1)
			assert.Equal(t, res.Username, p.generated[0].Username)
		})
	}
}

func TestService_IssueTokenRoundTrip(t *testing.T) {
	provider := authjwt.NewProvider("a-secret-that-is-at-least-32-bytes!!")
	s := newTestService(provider)

	res, err := s.IssueToken(context.Background(), admin, TokenRequest{Username: "Carla", Role: authdomain.RoleAdmin})
	require.NoError(t, err)

	principal, err := s.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, authdomain.Principal{Username: "Carla", Role: authdomain.RoleAdmin}, principal)
}

func TestService_Authenticate(t *testing.T) {
	t.Run("invalid role downgrades to member", func(t *testing.T) {
		s := newTestService(&FakeJWTProvider{
			ValidateTokenFunc: func(string) (*authdomain.Claims, error) {
				return &authdomain.Claims{Username: "anna", Role: "superuser"}, nil
			},
		})
		principal, err := s.Authenticate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, member, principal)
	})

	t.Run("validation error passes through", func(t *testing.T) {
		s := newTestService(&FakeJWTProvider{
			ValidateTokenFunc: func(string) (*authdomain.Claims, error) { return nil, authjwt.ErrExpiredToken },
		})
		principal, err := s.Authenticate(context.Background(), "tok")
		require.ErrorIs(t, err, authjwt.ErrExpiredToken)
		assert.True(t, principal.IsAnonymous())
	})
}
