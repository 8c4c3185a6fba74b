package leaderboardqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Reconciler is the part of the leaderboard service the workers drive.
type Reconciler interface {
	Reconcile(ctx context.Context, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (*leaderboardservice.ReconcileResult, error)
	ReconcileAll(ctx context.Context, principal authdomain.Principal, mode leaderboarddomain.Mode) ([]leaderboardservice.ReconcileResult, error)
}

// ReconcileWorker runs queued single-tournament reconciliations.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileJob]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileWorker(logger *slog.Logger, reconciler Reconciler) *ReconcileWorker {
	return &ReconcileWorker{reconciler: reconciler, logger: logger}
}

// Work runs the reconciliation as an admin named after the requester; the
// request was authorized when it was enqueued.
func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileJob]) error {
	requester := job.Args.RequestedBy
	if requester == "" {
		requester = authdomain.SystemPrincipal().Username
	}
	principal := authdomain.Principal{Username: requester, Role: authdomain.RoleAdmin}

	res, err := w.reconciler.Reconcile(ctx, principal, job.Args.TournamentID, job.Args.Mode)
	if err != nil {
		if isPermanent(err) {
			w.logger.WarnContext(ctx, "Discarding reconcile job",
				attr.TournamentID(job.Args.TournamentID),
				attr.Int64("job_id", job.ID),
				attr.Error(err),
			)
			return river.JobCancel(err)
		}
		return fmt.Errorf("reconcile tournament %s: %w", job.Args.TournamentID, err)
	}

	w.logger.InfoContext(ctx, "Reconcile job completed",
		attr.TournamentID(job.Args.TournamentID),
		attr.Int64("job_id", job.ID),
		attr.Int("predictions_copied", res.Stats.PredictionsCopied),
		attr.Int("answers_copied", res.Stats.AnswersCopied),
	)
	return nil
}

// ReconcileAllWorker runs the periodic sweep over every tournament.
type ReconcileAllWorker struct {
	river.WorkerDefaults[ReconcileAllJob]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileAllWorker(logger *slog.Logger, reconciler Reconciler) *ReconcileAllWorker {
	return &ReconcileAllWorker{reconciler: reconciler, logger: logger}
}

func (w *ReconcileAllWorker) Work(ctx context.Context, job *river.Job[ReconcileAllJob]) error {
	mode := job.Args.Mode
	if mode == "" {
		mode = leaderboarddomain.ModeFillOnly
	}

	results, err := w.reconciler.ReconcileAll(ctx, authdomain.SystemPrincipal(), mode)
	copied := 0
	for _, r := range results {
		copied += r.Stats.PredictionsCopied + r.Stats.AnswersCopied
	}
	w.logger.InfoContext(ctx, "Reconcile sweep finished",
		attr.Int64("job_id", job.ID),
		attr.String("mode", string(mode)),
		attr.Int("tournaments", len(results)),
		attr.Int("rows_copied", copied),
	)
	return err
}

// isPermanent reports failures that a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, leaderboardservice.ErrForbidden) ||
		errors.Is(err, leaderboardservice.ErrTournamentNotFound) ||
		errors.Is(err, leaderboardservice.ErrInvalidMode)
}
