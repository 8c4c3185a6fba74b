package predictionsservice

import (
	"context"
	"errors"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	predictionsdomain "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain"
	predictionsevents "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain/events"
	predictionsdb "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubmitPrediction stores a 1X2 pick. Resubmitting replaces the earlier pick.
func (s *PredictionsService) SubmitPrediction(ctx context.Context, principal authdomain.Principal, memberID, matchID uuid.UUID, pick string) (*PredictionResult, error) {
	res, err := withTelemetry(s, ctx, "SubmitPrediction", matchID.String(), func(ctx context.Context) (results.OperationResult[PredictionResult, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[PredictionResult, error], error) {
			return s.submitPredictionLogic(ctx, db, principal, memberID, matchID, pick)
		})
	})
	out, err := unwrap(res, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, predictionsevents.PredictionSubmittedTopic, predictionsevents.PredictionSubmittedPayload{
		MemberID:    out.MemberID,
		MatchID:     out.MatchID,
		Pick:        leaderboarddomain.Outcome(out.Pick),
		SubmittedBy: principal.Username,
		SubmittedAt: out.UpdatedAt,
	})
	return out, nil
}

func (s *PredictionsService) submitPredictionLogic(ctx context.Context, db bun.IDB, principal authdomain.Principal, memberID, matchID uuid.UUID, pick string) (results.OperationResult[PredictionResult, error], error) {
	member, err := s.ownedMember(ctx, db, principal, memberID)
	if err != nil {
		return rejectOrFail[PredictionResult](err)
	}

	match, err := s.repo.GetMatch(ctx, db, matchID)
	if errors.Is(err, predictionsdb.ErrNotFound) {
		return results.FailureResult[PredictionResult, error](ErrMatchNotFound), nil
	}
	if err != nil {
		return results.OperationResult[PredictionResult, error]{}, err
	}
	// A match from another tournament is invisible to this membership.
	if match.TournamentID != member.TournamentID {
		return results.FailureResult[PredictionResult, error](ErrMatchNotFound), nil
	}

	domainMatch := match.ToDomain()
	now := s.now().UTC()
	if predictionsdomain.MatchLocked(domainMatch, now) {
		return results.FailureResult[PredictionResult, error](predictionsdomain.ErrMatchLocked), nil
	}
	outcome, err := predictionsdomain.ValidatePick(domainMatch, pick)
	if err != nil {
		return results.FailureResult[PredictionResult, error](err), nil
	}

	row := &predictionsdb.Prediction{
		MemberID:  member.ID,
		MatchID:   match.ID,
		Pick:      string(outcome),
		UpdatedAt: now,
	}
	if err := s.repo.UpsertPrediction(ctx, db, row); err != nil {
		return results.OperationResult[PredictionResult, error]{}, err
	}

	return results.SuccessResult[PredictionResult, error](PredictionResult{
		MemberID:  row.MemberID,
		MatchID:   row.MatchID,
		Pick:      row.Pick,
		UpdatedAt: row.UpdatedAt,
	}), nil
}

// SubmitBonusAnswer stores a bonus answer. Resubmitting replaces the earlier answer.
func (s *PredictionsService) SubmitBonusAnswer(ctx context.Context, principal authdomain.Principal, memberID, questionID uuid.UUID, answer predictionsdomain.Answer) (*BonusAnswerResult, error) {
	res, err := withTelemetry(s, ctx, "SubmitBonusAnswer", questionID.String(), func(ctx context.Context) (results.OperationResult[BonusAnswerResult, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[BonusAnswerResult, error], error) {
			return s.submitBonusAnswerLogic(ctx, db, principal, memberID, questionID, answer)
		})
	})
	out, err := unwrap(res, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, predictionsevents.BonusAnswerSubmittedTopic, predictionsevents.BonusAnswerSubmittedPayload{
		MemberID:    out.MemberID,
		QuestionID:  out.QuestionID,
		Number:      out.Number,
		Choice:      out.Choice,
		SubmittedBy: principal.Username,
		SubmittedAt: out.UpdatedAt,
	})
	return out, nil
}

func (s *PredictionsService) submitBonusAnswerLogic(ctx context.Context, db bun.IDB, principal authdomain.Principal, memberID, questionID uuid.UUID, answer predictionsdomain.Answer) (results.OperationResult[BonusAnswerResult, error], error) {
	member, err := s.ownedMember(ctx, db, principal, memberID)
	if err != nil {
		return rejectOrFail[BonusAnswerResult](err)
	}

	question, err := s.repo.GetBonusQuestion(ctx, db, questionID)
	if errors.Is(err, predictionsdb.ErrNotFound) {
		return results.FailureResult[BonusAnswerResult, error](ErrQuestionNotFound), nil
	}
	if err != nil {
		return results.OperationResult[BonusAnswerResult, error]{}, err
	}
	if question.TournamentID != member.TournamentID {
		return results.FailureResult[BonusAnswerResult, error](ErrQuestionNotFound), nil
	}

	domainQuestion, err := question.ToDomain()
	if err != nil {
		return results.OperationResult[BonusAnswerResult, error]{}, err
	}
	now := s.now().UTC()
	if predictionsdomain.BonusClosed(domainQuestion, now) {
		return results.FailureResult[BonusAnswerResult, error](predictionsdomain.ErrBonusClosed), nil
	}
	valid, err := predictionsdomain.ValidateAnswer(domainQuestion, answer)
	if err != nil {
		return results.FailureResult[BonusAnswerResult, error](err), nil
	}

	row := &predictionsdb.BonusAnswer{
		MemberID:     member.ID,
		QuestionID:   question.ID,
		AnswerNumber: valid.Number,
		AnswerChoice: valid.Choice,
		UpdatedAt:    now,
	}
	if err := s.repo.UpsertBonusAnswer(ctx, db, row); err != nil {
		return results.OperationResult[BonusAnswerResult, error]{}, err
	}

	return results.SuccessResult[BonusAnswerResult, error](BonusAnswerResult{
		MemberID:   row.MemberID,
		QuestionID: row.QuestionID,
		Number:     row.AnswerNumber,
		Choice:     row.AnswerChoice,
		UpdatedAt:  row.UpdatedAt,
	}), nil
}

// ownedMember loads memberID and checks the principal owns it. Admins do not
// bypass the check: picks are always made by their owner.
func (s *PredictionsService) ownedMember(ctx context.Context, db bun.IDB, principal authdomain.Principal, memberID uuid.UUID) (*predictionsdb.Member, error) {
	member, err := s.repo.GetMember(ctx, db, memberID)
	if errors.Is(err, predictionsdb.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if !principal.Owns(member.Username) {
		return nil, ErrForbidden
	}
	return member, nil
}

// rejectOrFail turns ownership sentinels into failure results and passes
// every other error through.
func rejectOrFail[S any](err error) (results.OperationResult[S, error], error) {
	if errors.Is(err, ErrMemberNotFound) || errors.Is(err, ErrForbidden) {
		return results.FailureResult[S, error](err), nil
	}
	return results.OperationResult[S, error]{}, err
}
