package authhandlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	authservice "github.com/Black-And-White-Club/tipster/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

type issueTokenRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	TTL      string `json:"ttl"`
}

// HandleIssueToken mints a bearer token for a member. Admin only.
func (h *AuthHandlers) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.tracer != nil {
		var span trace.Span
		ctx, span = h.tracer.Start(ctx, "http.IssueToken", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
	}

	var body issueTokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req := authservice.TokenRequest{Username: body.Username, Role: authdomain.Role(body.Role)}
	if body.TTL != "" {
		ttl, err := time.ParseDuration(body.TTL)
		if err != nil {
			http.Error(w, "invalid ttl", http.StatusBadRequest)
			return
		}
		req.TTL = ttl
	}

	issuer, _ := PrincipalFrom(r)
	resp, err := h.service.IssueToken(ctx, issuer, req)
	switch {
	case errors.Is(err, authservice.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	case errors.Is(err, authservice.ErrMissingUsername),
		errors.Is(err, authservice.ErrInvalidRole),
		errors.Is(err, authservice.ErrInvalidTTL):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "Token issuance failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}
