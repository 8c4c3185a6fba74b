package leaderboardservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
)

// Service defines the contract for leaderboard reads and account reconciliation.
// Every call carries the caller's Principal explicitly.
type Service interface {
	// GetLeaderboard ranks the members of a room. Only admins and members of
	// the room may read it.
	GetLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*LeaderboardResult, error)

	// ExportLeaderboard renders the room leaderboard as an xlsx workbook.
	ExportLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*Export, error)

	// RenderLeaderboardChart renders the room leaderboard as a PNG bar chart.
	RenderLeaderboardChart(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*Export, error)

	// Reconcile copies predictions and bonus answers between sibling accounts
	// of one tournament. Admin only.
	Reconcile(ctx context.Context, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (*ReconcileResult, error)

	// ReconcileAll runs Reconcile for every tournament, continuing past failures.
	ReconcileAll(ctx context.Context, principal authdomain.Principal, mode leaderboarddomain.Mode) ([]ReconcileResult, error)
}
