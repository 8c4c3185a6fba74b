package predictionshandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	predictionsservice "github.com/Black-And-White-Club/tipster/app/modules/predictions/application"
	predictionsdomain "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxBodyBytes = 4 << 10

// Handlers defines the HTTP entry points of the predictions module.
type Handlers interface {
	// HandleSubmitPrediction serves PUT /members/{memberID}/predictions/{matchID}.
	HandleSubmitPrediction(w http.ResponseWriter, r *http.Request)

	// HandleSubmitBonusAnswer serves PUT /members/{memberID}/bonus/{questionID}.
	HandleSubmitBonusAnswer(w http.ResponseWriter, r *http.Request)
}

// PredictionsHandlers implements Handlers.
type PredictionsHandlers struct {
	service predictionsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewPredictionsHandlers(service predictionsservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionsHandlers{service: service, logger: logger, tracer: tracer}
}

type predictionRequest struct {
	Pick string `json:"pick"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *PredictionsHandlers) HandleSubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.SubmitPrediction", attribute.String("match_id", chi.URLParam(r, "matchID")))
	defer span.End()

	memberID, ok := parseID(w, r, "memberID")
	if !ok {
		return
	}
	matchID, ok := parseID(w, r, "matchID")
	if !ok {
		return
	}
	var req predictionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	res, err := h.service.SubmitPrediction(ctx, principal, memberID, matchID, req.Pick)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PredictionsHandlers) HandleSubmitBonusAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.SubmitBonusAnswer", attribute.String("question_id", chi.URLParam(r, "questionID")))
	defer span.End()

	memberID, ok := parseID(w, r, "memberID")
	if !ok {
		return
	}
	questionID, ok := parseID(w, r, "questionID")
	if !ok {
		return
	}
	var req predictionsdomain.Answer
	if !decodeBody(w, r, &req) {
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	res, err := h.service.SubmitBonusAnswer(ctx, principal, memberID, questionID, req)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PredictionsHandlers) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, name, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindServer))
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *PredictionsHandlers) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
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
	case errors.Is(err, predictionsservice.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, predictionsservice.ErrMemberNotFound),
		errors.Is(err, predictionsservice.ErrMatchNotFound),
		errors.Is(err, predictionsservice.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, predictionsdomain.ErrMatchLocked),
		errors.Is(err, predictionsdomain.ErrBonusClosed):
		return http.StatusConflict
	case errors.Is(err, predictionsdomain.ErrInvalidPick),
		errors.Is(err, predictionsdomain.ErrDrawNotAllowed),
		errors.Is(err, predictionsdomain.ErrInvalidAnswer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
