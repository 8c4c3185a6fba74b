package leaderboardservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/app/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetLeaderboard ranks the members of a room.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (*LeaderboardResult, error) {
	getLeaderboardTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*LeaderboardResult, error], error) {
		return s.getLeaderboardLogic(ctx, db, principal, roomID, opts)
	}

	result, err := withTelemetry(s, ctx, "GetLeaderboard", roomID.String(), func(ctx context.Context) (results.OperationResult[*LeaderboardResult, error], error) {
		return runInTx(s, ctx, readOnlyTx, getLeaderboardTx)
	})
	return unwrap(result, err)
}

func (s *LeaderboardService) getLeaderboardLogic(ctx context.Context, db bun.IDB, principal authdomain.Principal, roomID uuid.UUID, opts LeaderboardOptions) (results.OperationResult[*LeaderboardResult, error], error) {
	room, err := s.repo.GetRoom(ctx, db, roomID)
	if err != nil {
		if errors.Is(err, leaderboarddb.ErrNotFound) {
			return failure[*LeaderboardResult](ErrRoomNotFound)
		}
		return results.OperationResult[*LeaderboardResult, error]{}, fmt.Errorf("failed to get room: %w", err)
	}

	roomMembers, err := s.repo.ListRoomMembers(ctx, db, roomID)
	if err != nil {
		return results.OperationResult[*LeaderboardResult, error]{}, fmt.Errorf("failed to list room members: %w", err)
	}
	if !canViewRoom(principal, roomMembers) {
		return failure[*LeaderboardResult](ErrForbidden)
	}

	in, err := s.loadTournament(ctx, db, room.TournamentID)
	if err != nil {
		return results.OperationResult[*LeaderboardResult, error]{}, err
	}
	in.Members = make([]leaderboarddomain.Member, 0, len(roomMembers))
	for _, m := range roomMembers {
		member := m.ToDomain()
		member.TournamentID = room.TournamentID
		in.Members = append(in.Members, member)
	}
	if opts.AsOf != nil {
		in.Matches = matchesAsOf(in.Matches, *opts.AsOf)
	}

	entries := leaderboarddomain.ComputeLeaderboard(in)
	return success(&LeaderboardResult{
		RoomID:       room.ID,
		RoomName:     room.Name,
		TournamentID: room.TournamentID,
		AsOf:         opts.AsOf,
		Entries:      entries,
		Hash:         leaderboarddomain.ComputeStandingsHash(entries),
		GeneratedAt:  s.now().UTC(),
	})
}

// loadTournament reads every scoring input of a tournament except the room's
// own members. A tournament without a row scores with the default settings.
func (s *LeaderboardService) loadTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (leaderboarddomain.Input, error) {
	var in leaderboarddomain.Input

	tournament, err := s.repo.GetTournament(ctx, db, tournamentID)
	switch {
	case errors.Is(err, leaderboarddb.ErrNotFound):
		s.logger.WarnContext(ctx, "Tournament has no configuration, using default points",
			attr.ExtractCorrelationID(ctx),
			attr.TournamentID(tournamentID),
		)
	case err != nil:
		return in, fmt.Errorf("failed to get tournament: %w", err)
	default:
		in.Settings = tournament.Settings()
	}

	siblings, err := s.repo.ListTournamentMembers(ctx, db, tournamentID)
	if err != nil {
		return in, fmt.Errorf("failed to list tournament members: %w", err)
	}
	in.Siblings = make([]leaderboarddomain.Member, 0, len(siblings))
	for _, m := range siblings {
		member := m.ToDomain()
		member.TournamentID = tournamentID
		in.Siblings = append(in.Siblings, member)
	}

	matches, err := s.repo.ListMatches(ctx, db, tournamentID)
	if err != nil {
		return in, fmt.Errorf("failed to list matches: %w", err)
	}
	in.Matches = make([]leaderboarddomain.Match, 0, len(matches))
	for _, m := range matches {
		in.Matches = append(in.Matches, m.ToDomain())
	}

	predictions, err := s.repo.ListPredictions(ctx, db, tournamentID)
	if err != nil {
		return in, fmt.Errorf("failed to list predictions: %w", err)
	}
	in.Predictions = make([]leaderboarddomain.Prediction, 0, len(predictions))
	for _, p := range predictions {
		in.Predictions = append(in.Predictions, p.ToDomain())
	}

	questions, err := s.repo.ListBonusQuestions(ctx, db, tournamentID)
	if err != nil {
		return in, fmt.Errorf("failed to list bonus questions: %w", err)
	}
	in.BonusQuestions = make([]leaderboarddomain.BonusQuestion, 0, len(questions))
	for _, q := range questions {
		question, err := q.ToDomain()
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping malformed bonus question",
				attr.ExtractCorrelationID(ctx),
				attr.String("question_id", q.ID.String()),
				attr.Error(err),
			)
			continue
		}
		in.BonusQuestions = append(in.BonusQuestions, question)
	}

	answers, err := s.repo.ListBonusAnswers(ctx, db, tournamentID)
	if err != nil {
		return in, fmt.Errorf("failed to list bonus answers: %w", err)
	}
	in.BonusAnswers = make([]leaderboarddomain.BonusAnswer, 0, len(answers))
	for _, a := range answers {
		in.BonusAnswers = append(in.BonusAnswers, a.ToDomain())
	}

	return in, nil
}

// canViewRoom allows admins and anyone holding a membership in the room.
func canViewRoom(principal authdomain.Principal, members []leaderboarddb.RoomMember) bool {
	if principal.IsAdmin() {
		return true
	}
	if principal.IsAnonymous() {
		return false
	}
	for _, m := range members {
		if principal.Owns(m.Username) {
			return true
		}
	}
	return false
}

// matchesAsOf clears the result of every match kicking off after asOf.
func matchesAsOf(matches []leaderboarddomain.Match, asOf time.Time) []leaderboarddomain.Match {
	out := make([]leaderboarddomain.Match, len(matches))
	for i, m := range matches {
		if m.StartsAt.After(asOf) {
			m.Result = nil
		}
		out[i] = m
	}
	return out
}
