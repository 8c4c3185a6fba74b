package authjwt

import (
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

var kickoff = time.Date(2026, 6, 11, 19, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestProvider_RoundTrip(t *testing.T) {
	signer := NewProvider(testSecret, fixedClock(kickoff))

	tests := []struct {
		name      string
		principal authdomain.Principal
		ttl       time.Duration
		validator Provider
		wantErr   error
		wantRole  authdomain.Role
	}{
		{
			name:      "admin",
			principal: authdomain.Principal{Username: "anna", Role: authdomain.RoleAdmin},
			ttl:       time.Hour,
			validator: NewProvider(testSecret, fixedClock(kickoff.Add(59*time.Minute))),
			wantRole:  authdomain.RoleAdmin,
		},
		{
			name:      "empty role signs as member",
			principal: authdomain.Principal{Username: "bjarni"},
			ttl:       time.Hour,
			validator: NewProvider(testSecret, fixedClock(kickoff)),
			wantRole:  authdomain.RoleMember,
		},
		{
			name:      "inside leeway",
			principal: authdomain.Principal{Username: "anna", Role: authdomain.RoleMember},
			ttl:       time.Hour,
			validator: NewProvider(testSecret, fixedClock(kickoff.Add(time.Hour+10*time.Second))),
			wantRole:  authdomain.RoleMember,
		},
		{
			name:      "expired",
			principal: authdomain.Principal{Username: "anna", Role: authdomain.RoleMember},
			ttl:       time.Hour,
			validator: NewProvider(testSecret, fixedClock(kickoff.Add(2*time.Hour))),
			wantErr:   ErrExpiredToken,
		},
		{
			name:      "wrong secret",
			principal: authdomain.Principal{Username: "anna", Role: authdomain.RoleMember},
			ttl:       time.Hour,
			validator: NewProvider("another-secret-at-least-32-chars!!", fixedClock(kickoff)),
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "other issuer",
			principal: authdomain.Principal{Username: "anna", Role: authdomain.RoleMember},
			ttl:       time.Hour,
			validator: NewProvider(testSecret, fixedClock(kickoff), WithIssuer("elsewhere")),
			wantErr:   ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := signer.GenerateToken(tt.principal, tt.ttl)
			require.NoError(t, err)

			claims, err := tt.validator.ValidateToken(token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.principal.Username, claims.Username)
			assert.Equal(t, tt.wantRole, claims.Role)
			assert.Equal(t, kickoff, claims.IssuedAt.UTC())
			assert.Equal(t, kickoff.Add(tt.ttl), claims.ExpiresAt.UTC())
		})
	}
}

func TestProvider_GenerateToken_EmptyUsername(t *testing.T) {
	_, err := NewProvider(testSecret).GenerateToken(authdomain.Principal{Role: authdomain.RoleAdmin}, time.Hour)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestProvider_ValidateToken_Rejects(t *testing.T) {
	exp := kickoff.Add(time.Hour).Unix()
	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		t.Helper()
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return signed
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{name: "malformed", token: func(*testing.T) string { return "not-a-jwt" }},
		{name: "unsigned", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "anna", "iss": DefaultIssuer, "exp": exp, "role": "member"})
		}, wantErr: ErrInvalidSignature},
		{name: "other hmac size", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "anna", "iss": DefaultIssuer, "exp": exp, "role": "member"})
		}, wantErr: ErrInvalidSignature},
		{name: "missing subject", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"iss": DefaultIssuer, "exp": exp, "role": "member"})
		}},
		{name: "missing expiry", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "anna", "iss": DefaultIssuer, "role": "member"})
		}},
		{name: "unknown role", token: func(t *testing.T) string {
			return sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "anna", "iss": DefaultIssuer, "exp": exp, "role": "owner"})
		}},
	}

	p := NewProvider(testSecret, fixedClock(kickoff))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.wantErr
			if want == nil {
				want = ErrInvalidToken
			}
			_, err := p.ValidateToken(tt.token(t))
			require.ErrorIs(t, err, want)
		})
	}
}
