package authservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	MaxTokenTTL     = 90 * 24 * time.Hour
)

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
}

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a new auth service.
func NewService(jwtProvider authjwt.Provider, config Config, logger *slog.Logger, tracer trace.Tracer) Service {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("auth")
	}
	return &service{
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
	}
}

// IssueToken mints a signed token for a member or admin.
func (s *service) IssueToken(ctx context.Context, issuer authdomain.Principal, req TokenRequest) (*TokenResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken", trace.WithAttributes(
		attribute.String("username", req.Username),
		attribute.String("role", req.Role.String()),
	))
	defer span.End()

	if !issuer.IsAdmin() {
		s.logger.WarnContext(ctx, "Token request from non-admin", attr.String("issuer", issuer.Username))
		return nil, ErrForbidden
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrMissingUsername
	}
	role := req.Role
	if role == "" {
		role = authdomain.RoleMember
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	ttl := req.TTL
	if ttl == 0 {
		ttl = s.config.DefaultTTL
	}
	if ttl < 0 || ttl > MaxTokenTTL {
		return nil, ErrInvalidTTL
	}

	principal := authdomain.Principal{Username: username, Role: role}
	expiresAt := s.now().Add(ttl)
	token, err := s.jwtProvider.GenerateToken(principal, ttl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "Failed to generate token", attr.String("username", username), attr.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued token",
		attr.String("issuer", issuer.Username),
		attr.String("username", username),
		attr.String("role", role.String()),
		attr.Time("expires_at", expiresAt),
	)

	return &TokenResponse{
		Token:     token,
		Username:  username,
		Role:      role,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Authenticate validates a token and returns the principal it names.
func (s *service) Authenticate(ctx context.Context, token string) (authdomain.Principal, error) {
	_, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	claims, err := s.jwtProvider.ValidateToken(token)
	if err != nil {
		span.RecordError(err)
		return authdomain.Principal{}, err
	}
	return claims.Principal(), nil
}
