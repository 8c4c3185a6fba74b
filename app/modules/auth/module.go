package auth

import (
	"context"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/tipster/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/jwt"
	authrouter "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/router"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/Black-And-White-Club/tipster/config"
	"github.com/go-chi/chi/v5"
)

// Module represents the auth module: bearer tokens and the HTTP middleware
// that turns them into principals.
type Module struct {
	config   *config.Config
	provider authjwt.Provider
	service  authservice.Service
	handlers authhandlers.Handlers
	limiter  *authhandlers.ClientRateLimiter
	logger   *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(ctx context.Context, cfg *config.Config, obs *observability.Observability) *Module {
	logger := obs.Logger.With("module", "auth")
	tracer := obs.Tracer("auth")

	logger.InfoContext(ctx, "Initializing auth module")

	provider := authjwt.NewProvider(cfg.JWT.Secret)
	service := authservice.NewService(provider, authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL}, logger, tracer)

	module := &Module{
		config:   cfg,
		provider: provider,
		service:  service,
		handlers: authhandlers.NewAuthHandlers(service, logger, tracer),
		logger:   logger,
	}
	if cfg.HTTP.RateLimit > 0 {
		module.limiter = authhandlers.NewClientRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst)
	}
	return module
}

// Middleware returns the chain applied to every request: correlation ids,
// CORS and, when configured, per-client rate limiting.
func (m *Module) Middleware() []func(http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		authhandlers.CorrelationMiddleware,
		authhandlers.CORSMiddleware(m.config.HTTP.AllowedOrigins),
	}
	if m.limiter != nil {
		chain = append(chain, authhandlers.RateLimitMiddleware(m.limiter))
	}
	return chain
}

// Authenticate requires a valid bearer token on the wrapped routes.
func (m *Module) Authenticate() func(http.Handler) http.Handler {
	return authhandlers.Authenticate(m.provider, m.logger)
}

// RegisterRoutes mounts the module's HTTP endpoints on the authenticated api router.
func (m *Module) RegisterRoutes(api chi.Router) {
	authrouter.RegisterRoutes(api, m.handlers)
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
