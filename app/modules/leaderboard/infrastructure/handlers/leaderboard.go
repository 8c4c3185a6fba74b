package leaderboardhandlers

import (
	"fmt"
	"net/http"
	"strconv"

	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// leaderboardRequest is the parsed common part of the three read endpoints.
type leaderboardRequest struct {
	roomID uuid.UUID
	opts   leaderboardservice.LeaderboardOptions
}

func (h *LeaderboardHandlers) parseLeaderboardRequest(w http.ResponseWriter, r *http.Request) (leaderboardRequest, bool) {
	var req leaderboardRequest

	roomID, err := uuid.Parse(chi.URLParam(r, "roomID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid room id"})
		return req, false
	}
	req.roomID = roomID

	asOf, err := leaderboardservice.ParseAsOf(r.URL.Query().Get("asOf"), h.now(), h.location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return req, false
	}
	req.opts.AsOf = asOf
	return req, true
}

// HandleGetLeaderboard returns the ranked room as JSON. The standings hash is
// the ETag, so polling clients get 304 until a result or pick changes.
func (h *LeaderboardHandlers) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.GetLeaderboard", attribute.String("room_id", chi.URLParam(r, "roomID")))
	defer span.End()

	req, ok := h.parseLeaderboardRequest(w, r)
	if !ok {
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	lb, err := h.service.GetLeaderboard(ctx, principal, req.roomID, req.opts)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}

	etag := strconv.Quote(lb.Hash)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// HandleExportLeaderboard streams the leaderboard as an xlsx attachment.
func (h *LeaderboardHandlers) HandleExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.ExportLeaderboard", attribute.String("room_id", chi.URLParam(r, "roomID")))
	defer span.End()

	req, ok := h.parseLeaderboardRequest(w, r)
	if !ok {
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	export, err := h.service.ExportLeaderboard(ctx, principal, req.roomID, req.opts)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}
	writeFile(w, export, true)
}

// HandleLeaderboardChart serves the leaderboard as an inline PNG.
func (h *LeaderboardHandlers) HandleLeaderboardChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r.Context(), "http.LeaderboardChart", attribute.String("room_id", chi.URLParam(r, "roomID")))
	defer span.End()

	req, ok := h.parseLeaderboardRequest(w, r)
	if !ok {
		return
	}
	principal, _ := authhandlers.PrincipalFrom(r)

	export, err := h.service.RenderLeaderboardChart(ctx, principal, req.roomID, req.opts)
	if err != nil {
		span.RecordError(err)
		h.writeServiceError(ctx, w, err)
		return
	}
	writeFile(w, export, false)
}

func writeFile(w http.ResponseWriter, export *leaderboardservice.Export, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
