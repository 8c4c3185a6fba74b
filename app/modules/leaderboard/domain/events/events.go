// Package leaderboardevents defines the topics and payloads the leaderboard module publishes and consumes.
package leaderboardevents

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
)

// Stream names
const (
	LeaderboardStreamName = "leaderboard"
)

const (
	// ReconcileRequestedTopic asks the leaderboard module to reconcile a tournament.
	ReconcileRequestedTopic = "leaderboard.reconcile.requested"
	// TournamentReconciledTopic is published after a reconciliation is committed.
	TournamentReconciledTopic = "leaderboard.tournament.reconciled"
)

type ReconcileRequestedPayload struct {
	TournamentID uuid.UUID              `json:"tournament_id"`
	Mode         leaderboarddomain.Mode `json:"mode"`
	RequestedBy  string                 `json:"requested_by"`
}

type TournamentReconciledPayload struct {
	TournamentID uuid.UUID                        `json:"tournament_id"`
	Mode         leaderboarddomain.Mode           `json:"mode"`
	Stats        leaderboarddomain.ReconcileStats `json:"stats"`
	ReconciledAt time.Time                        `json:"reconciled_at"`
}
