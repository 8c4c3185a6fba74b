package leaderboardservice

import (
	"context"
	"errors"
	"fmt"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain/events"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/app/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Reconcile copies predictions and bonus answers between the sibling
// memberships of one tournament and announces the outcome once committed.
func (s *LeaderboardService) Reconcile(ctx context.Context, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (*ReconcileResult, error) {
	reconcileTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ReconcileResult, error], error) {
		return s.reconcileLogic(ctx, db, principal, tournamentID, mode)
	}

	result, err := withTelemetry(s, ctx, "Reconcile", tournamentID.String(), func(ctx context.Context) (results.OperationResult[*ReconcileResult, error], error) {
		return runInTx(s, ctx, nil, reconcileTx)
	})
	out, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.publishReconciled(ctx, principal, out)
	return out, nil
}

func (s *LeaderboardService) reconcileLogic(ctx context.Context, db bun.IDB, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (results.OperationResult[*ReconcileResult, error], error) {
	if !principal.IsAdmin() {
		return failure[*ReconcileResult](ErrForbidden)
	}
	if mode != leaderboarddomain.ModeOverwrite && mode != leaderboarddomain.ModeFillOnly {
		return failure[*ReconcileResult](fmt.Errorf("%w: %q", ErrInvalidMode, mode))
	}

	if _, err := s.repo.GetTournament(ctx, db, tournamentID); err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return failure[*ReconcileResult](ErrTournamentNotFound)
		}
		return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to get tournament: %w", err)
	}

	members, err := s.repo.ListTournamentMembers(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to list tournament members: %w", err)
	}
	predictions, err := s.repo.ListPredictions(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to list predictions: %w", err)
	}
	answers, err := s.repo.ListBonusAnswers(ctx, db, tournamentID)
	if err != nil {
		return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to list bonus answers: %w", err)
	}

	domainMembers := make([]leaderboarddomain.Member, 0, len(members))
	for _, m := range members {
		member := m.ToDomain()
		member.TournamentID = tournamentID
		domainMembers = append(domainMembers, member)
	}
	domainPredictions := make([]leaderboarddomain.Prediction, 0, len(predictions))
	for _, p := range predictions {
		domainPredictions = append(domainPredictions, p.ToDomain())
	}
	domainAnswers := make([]leaderboarddomain.BonusAnswer, 0, len(answers))
	for _, a := range answers {
		domainAnswers = append(domainAnswers, a.ToDomain())
	}

	plan := leaderboarddomain.PlanReconciliation(domainMembers, domainPredictions, domainAnswers, mode)

	predictionRows := make([]leaderboarddb.Prediction, 0, len(plan.Predictions))
	for _, p := range plan.Predictions {
		predictionRows = append(predictionRows, leaderboarddb.PredictionFromDomain(p))
	}
	answerRows := make([]leaderboarddb.BonusAnswer, 0, len(plan.Answers))
	for _, a := range plan.Answers {
		answerRows = append(answerRows, leaderboarddb.BonusAnswerFromDomain(a))
	}

	stats := plan.Stats
	switch mode {
	case leaderboarddomain.ModeOverwrite:
		if err := s.repo.UpsertPredictions(ctx, db, predictionRows); err != nil {
			return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to write predictions: %w", err)
		}
		if err := s.repo.UpsertBonusAnswers(ctx, db, answerRows); err != nil {
			return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to write bonus answers: %w", err)
		}
	case leaderboarddomain.ModeFillOnly:
		// Counts come from the store: a concurrent write may have filled a slot since the read.
		if stats.PredictionsCopied, err = s.repo.InsertMissingPredictions(ctx, db, predictionRows); err != nil {
			return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to write predictions: %w", err)
		}
		if stats.AnswersCopied, err = s.repo.InsertMissingBonusAnswers(ctx, db, answerRows); err != nil {
			return results.OperationResult[*ReconcileResult, error]{}, fmt.Errorf("failed to write bonus answers: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Reconciled sibling accounts",
		attr.ExtractCorrelationID(ctx),
		attr.TournamentID(tournamentID),
		attr.String("mode", string(mode)),
		attr.Int("groups", stats.Groups),
		attr.Int("predictions_copied", stats.PredictionsCopied),
		attr.Int("answers_copied", stats.AnswersCopied),
	)

	return success(&ReconcileResult{TournamentID: tournamentID, Mode: mode, Stats: stats})
}

// ReconcileAll reconciles every tournament in turn. A failing tournament does
// not stop the rest; the failures are joined into the returned error.
func (s *LeaderboardService) ReconcileAll(ctx context.Context, principal authdomain.Principal, mode leaderboarddomain.Mode) ([]ReconcileResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	tournaments, err := s.repo.ListTournaments(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ReconcileAll: failed to list tournaments: %w", err)
	}

	out := make([]ReconcileResult, 0, len(tournaments))
	var errs []error
	for _, t := range tournaments {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.Reconcile(ctx, principal, t.ID, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("tournament %s: %w", t.ID, err))
			continue
		}
		out = append(out, *res)
	}
	return out, errors.Join(errs...)
}

func (s *LeaderboardService) publishReconciled(ctx context.Context, principal authdomain.Principal, res *ReconcileResult) {
	if s.publisher == nil || res == nil {
		return
	}
	payload := leaderboardevents.TournamentReconciledPayload{
		TournamentID: res.TournamentID,
		Mode:         res.Mode,
		Stats:        res.Stats,
		ReconciledAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, leaderboardevents.TournamentReconciledTopic, payload); err != nil {
		// The write is committed; a lost notification is logged, not surfaced.
		s.logger.ErrorContext(ctx, "Failed to publish reconciliation event",
			attr.ExtractCorrelationID(ctx),
			attr.TournamentID(res.TournamentID),
			attr.String("requested_by", principal.Username),
			attr.Error(err),
		)
	}
}
