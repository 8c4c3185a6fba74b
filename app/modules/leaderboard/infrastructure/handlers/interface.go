package leaderboardhandlers

import (
	"context"
	"net/http"

	leaderboardevents "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain/events"
)

// Handlers defines the HTTP and event entry points of the leaderboard module.
type Handlers interface {
	// --- READS ---

	// HandleGetLeaderboard serves GET /rooms/{roomID}/leaderboard.
	HandleGetLeaderboard(w http.ResponseWriter, r *http.Request)

	// HandleExportLeaderboard serves GET /rooms/{roomID}/leaderboard.xlsx.
	HandleExportLeaderboard(w http.ResponseWriter, r *http.Request)

	// HandleLeaderboardChart serves GET /rooms/{roomID}/leaderboard.png.
	HandleLeaderboardChart(w http.ResponseWriter, r *http.Request)

	// --- ADMIN ---

	// HandleReconcile serves POST /admin/tournaments/{tournamentID}/reconcile.
	HandleReconcile(w http.ResponseWriter, r *http.Request)

	// HandleReconcileAll serves POST /admin/reconcile.
	HandleReconcileAll(w http.ResponseWriter, r *http.Request)

	// HandleGetJob serves GET /admin/jobs/{jobID}.
	HandleGetJob(w http.ResponseWriter, r *http.Request)

	// --- EVENTS ---

	// HandleReconcileRequested consumes leaderboard.reconcile.requested.
	HandleReconcileRequested(ctx context.Context, payload *leaderboardevents.ReconcileRequestedPayload) error
}
