package leaderboardhandlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain/events"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type queuedResponse struct {
	JobID  int64  `json:"jobId"`
	Status string `json:"status"`
}

type reconcileAllResponse struct {
	Results []leaderboardservice.ReconcileResult `json:"results"`
	Error   string                               `json:"error,omitempty"`
}

// parseMode reads the mode query parameter. Without one the non-destructive
// fill-only mode is used.
func parseMode(raw string) (leaderboarddomain.Mode, error) {
	if raw == "" {
		return leaderboarddomain.ModeFillOnly, nil
	}
	return leaderboarddomain.ParseMode(raw)
}

// HandleReconcile reconciles one tournament, inline or through the queue
// when async=true.
func (h *LeaderboardHandlers) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.Reconcile", attribute.String("tournament_id", chi.URLParam(r, "tournamentID")))
	defer span.End()

	tournamentID, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	mode, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	async := false
	if raw := r.URL.Query().Get("async"); raw != "" {
		if async, err = strconv.ParseBool(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid async flag"})
			return
		}
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	if async {
		h.enqueueReconcile(ctx, w, principal, tournamentID, mode)
		return
	}

	res, err := h.service.Reconcile(ctx, principal, tournamentID, mode)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *LeaderboardHandlers) enqueueReconcile(ctx context.Context, w http.ResponseWriter, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) {
	// The worker runs with admin rights, so authorize before queueing.
	if !principal.IsAdmin() {
		h.writeServiceError(ctx, w, leaderboardservice.ErrForbidden)
		return
	}
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "background queue is disabled"})
		return
	}

	id, err := h.queue.EnqueueReconcile(ctx, tournamentID, mode, principal.Username)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/admin/jobs/%d", id))
	writeJSON(w, http.StatusAccepted, queuedResponse{JobID: id, Status: "queued"})
}

// HandleReconcileAll reconciles every tournament. Tournaments that fail are
// reported alongside the ones that succeeded.
func (h *LeaderboardHandlers) HandleReconcileAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.ReconcileAll")
	defer span.End()

	mode, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	results, err := h.service.ReconcileAll(ctx, principal, mode)
	if err != nil && (errors.Is(err, leaderboardservice.ErrForbidden) || len(results) == 0) {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}

	resp := reconcileAllResponse{Results: results}
	if err != nil {
		h.logger.WarnContext(ctx, "Reconcile sweep partially failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetJob reports the state of a queued reconciliation.
func (h *LeaderboardHandlers) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid job id"})
		return
	}
	if h.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "background queue is disabled"})
		return
	}

	job, err := h.queue.GetJob(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleReconcileRequested reconciles a tournament on request from another
// service. Requests that can never succeed are dropped so they are not redelivered.
func (h *LeaderboardHandlers) HandleReconcileRequested(ctx context.Context, payload *leaderboardevents.ReconcileRequestedPayload) error {
	ctx, span := h.startSpan(ctx, "event.ReconcileRequested", attribute.String("tournament_id", payload.TournamentID.String()))
	defer span.End()

	mode := payload.Mode
	if mode == "" {
		mode = leaderboarddomain.ModeFillOnly
	}
	principal := authdomain.SystemPrincipal()
	if payload.RequestedBy != "" {
		principal.Username = payload.RequestedBy
	}

	_, err := h.service.Reconcile(ctx, principal, payload.TournamentID, mode)
	switch {
	case err == nil:
		return nil
	case statusFor(err) != http.StatusInternalServerError:
		h.logger.WarnContext(ctx, "Dropping reconcile request",
			attr.ExtractCorrelationID(ctx),
			attr.TournamentID(payload.TournamentID),
			attr.String("mode", string(mode)),
			attr.Error(err),
		)
		return nil
	default:
		span.RecordError(err)
		return err
	}
}
