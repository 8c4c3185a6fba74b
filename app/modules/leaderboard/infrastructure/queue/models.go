package leaderboardqueue

import (
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
)

const (
	// QueueName is the dedicated River queue for reconciliation jobs.
	QueueName = "leaderboard"

	reconcileKind    = "leaderboard_reconcile"
	reconcileAllKind = "leaderboard_reconcile_all"
)

// ReconcileJob reconciles one tournament on behalf of an admin.
type ReconcileJob struct {
	TournamentID uuid.UUID              `json:"tournament_id"`
	Mode         leaderboarddomain.Mode `json:"mode"`
	RequestedBy  string                 `json:"requested_by"`
}

// Kind returns the job type identifier for River
func (ReconcileJob) Kind() string { return reconcileKind }

// ReconcileAllJob fills gaps between sibling accounts across every tournament.
// It is inserted periodically.
type ReconcileAllJob struct {
	Mode leaderboarddomain.Mode `json:"mode"`
}

// Kind returns the job type identifier for River
func (ReconcileAllJob) Kind() string { return reconcileAllKind }

// JobInfo represents a queued reconciliation (for the admin API and debugging).
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
