package leaderboardrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/tipster/app/eventbus"
	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	leaderboardevents "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain/events"
	leaderboardhandlers "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/handlers"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RegisterRoutes mounts the leaderboard HTTP endpoints on the authenticated api router.
func RegisterRoutes(api chi.Router, h leaderboardhandlers.Handlers) {
	// READS: room members and admins, checked by the service
	api.Get("/rooms/{roomID}/leaderboard", h.HandleGetLeaderboard)
	api.Get("/rooms/{roomID}/leaderboard.xlsx", h.HandleExportLeaderboard)
	api.Get("/rooms/{roomID}/leaderboard.png", h.HandleLeaderboardChart)

	// ADMIN: reconciliation and job inspection
	api.Group(func(r chi.Router) {
		r.Use(authhandlers.RequireAdmin)
		r.Post("/admin/tournaments/{tournamentID}/reconcile", h.HandleReconcile)
		r.Post("/admin/reconcile", h.HandleReconcileAll)
		r.Get("/admin/jobs/{jobID}", h.HandleGetJob)
	})
}

// LeaderboardRouter binds leaderboard event topics to their handlers.
type LeaderboardRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewLeaderboardRouter creates a new instance of the router. Router metrics
// are recorded when a registry is given outside the test environment.
func NewLeaderboardRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *LeaderboardRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "tipster", "leaderboard")
		metricsBuilder = &builder
	}

	return &LeaderboardRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers all module-specific event handlers.
func (r *LeaderboardRouter) Configure(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.InfoContext(ctx, "Adding Prometheus router metrics middleware for Leaderboard")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		traceHandler(r.tracer),
	)

	return r.RegisterHandlers(ctx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     *slog.Logger
}

// registerHandler decodes the JSON payload of topic into T before calling handler.
// Undecodable messages are acked and logged since redelivery cannot fix them.
func registerHandler[T any](deps handlerDeps, topic string, handler func(context.Context, *T) error) {
	handlerName := "leaderboard." + topic
	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) error {
			ctx := eventbus.ContextFromMessage(msg)
			var payload T
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				deps.logger.ErrorContext(ctx, "Dropping undecodable message",
					attr.ExtractCorrelationID(ctx),
					attr.String("handler", handlerName),
					attr.String("message_id", msg.UUID),
					attr.Error(err),
				)
				return nil
			}
			return handler(ctx, &payload)
		},
	)
}

// RegisterHandlers binds specific event topics to their corresponding handler logic.
func (r *LeaderboardRouter) RegisterHandlers(ctx context.Context, handlers leaderboardhandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Leaderboard Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		logger:     r.logger,
	}

	registerHandler(deps, leaderboardevents.ReconcileRequestedTopic, handlers.HandleReconcileRequested)

	return nil
}

// Close stops the router and cleans up resources.
func (r *LeaderboardRouter) Close() error {
	return r.Router.Close()
}

func traceHandler(tracer trace.Tracer) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			if tracer == nil {
				return h(msg)
			}
			ctx, span := tracer.Start(msg.Context(), message.HandlerNameFromCtx(msg.Context()),
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(
					attribute.String("messaging.message.id", msg.UUID),
					attribute.String("messaging.destination.name", message.SubscribeTopicFromCtx(msg.Context())),
				),
			)
			defer span.End()
			msg.SetContext(ctx)

			out, err := h(msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return out, err
		}
	}
}
