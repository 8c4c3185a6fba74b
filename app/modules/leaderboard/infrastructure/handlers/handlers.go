package leaderboardhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboardqueue "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/queue"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Queue is the part of the reconcile queue the handlers use.
type Queue interface {
	EnqueueReconcile(ctx context.Context, tournamentID uuid.UUID, mode leaderboarddomain.Mode, requestedBy string) (int64, error)
	GetJob(ctx context.Context, id int64) (*leaderboardqueue.JobInfo, error)
}

// LeaderboardHandlers implements Handlers.
type LeaderboardHandlers struct {
	service  leaderboardservice.Service
	queue    Queue
	logger   *slog.Logger
	tracer   trace.Tracer
	location *time.Location
	now      func() time.Time
}

// NewLeaderboardHandlers creates the leaderboard handlers. A nil queue makes
// async reconcile requests fail with 503; location resolves as-of input
// without an explicit offset.
func NewLeaderboardHandlers(service leaderboardservice.Service, queue Queue, logger *slog.Logger, tracer trace.Tracer, location *time.Location) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}
	return &LeaderboardHandlers{
		service:  service,
		queue:    queue,
		logger:   logger,
		tracer:   tracer,
		location: location,
		now:      time.Now,
	}
}

func (h *LeaderboardHandlers) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, name, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindServer))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service failures onto status codes. Unexpected
// errors are logged and hidden from the caller.
func (h *LeaderboardHandlers) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "Request failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, leaderboardservice.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, leaderboardservice.ErrRoomNotFound),
		errors.Is(err, leaderboardservice.ErrTournamentNotFound),
		errors.Is(err, leaderboardqueue.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, leaderboardservice.ErrInvalidMode),
		errors.Is(err, leaderboardservice.ErrInvalidAsOf):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
