package leaderboarddb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the persistence the leaderboard and reconciliation need.
// A nil db uses the repository's own connection.
//
// List methods return rows in a stable order (creation time, then id), which
// is the input order the scoring engine falls back to.
type Repository interface {
	// GetTournament returns ErrNotFound for an unknown id.
	GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*Tournament, error)

	// ListTournaments returns every tournament.
	ListTournaments(ctx context.Context, db bun.IDB) ([]Tournament, error)

	// GetRoom returns ErrNotFound for an unknown id.
	GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*Room, error)

	// ListRoomMembers returns the memberships of one room.
	ListRoomMembers(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]RoomMember, error)

	// ListTournamentMembers returns the memberships of every room in a tournament.
	ListTournamentMembers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]RoomMember, error)

	// ListMatches returns the tournament's matches ordered by kick-off.
	ListMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Match, error)

	// ListPredictions returns every prediction on the tournament's matches.
	ListPredictions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Prediction, error)

	// ListBonusQuestions returns the bonus questions of the tournament's matches.
	ListBonusQuestions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]BonusQuestion, error)

	// ListBonusAnswers returns every answer to the tournament's bonus questions.
	ListBonusAnswers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]BonusAnswer, error)

	// UpsertPredictions writes predictions keyed by (member_id, match_id), replacing existing picks.
	UpsertPredictions(ctx context.Context, db bun.IDB, predictions []Prediction) error

	// InsertMissingPredictions writes only predictions whose key is free.
	// It returns the number of rows inserted.
	InsertMissingPredictions(ctx context.Context, db bun.IDB, predictions []Prediction) (int, error)

	// UpsertBonusAnswers writes answers keyed by (member_id, question_id), replacing existing answers.
	UpsertBonusAnswers(ctx context.Context, db bun.IDB, answers []BonusAnswer) error

	// InsertMissingBonusAnswers writes only answers whose key is free.
	// It returns the number of rows inserted.
	InsertMissingBonusAnswers(ctx context.Context, db bun.IDB, answers []BonusAnswer) (int, error)
}
