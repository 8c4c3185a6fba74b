package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leaderboard repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*Tournament, error) {
	db = r.resolveDB(db)
	t := new(Tournament)
	err := db.NewSelect().
		Model(t).
		Where("id = ?", tournamentID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetTournament: %w", err)
	}
	return t, nil
}

func (r *Impl) ListTournaments(ctx context.Context, db bun.IDB) ([]Tournament, error) {
	db = r.resolveDB(db)
	var tournaments []Tournament
	err := db.NewSelect().
		Model(&tournaments).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListTournaments: %w", err)
	}
	return tournaments, nil
}

func (r *Impl) GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*Room, error) {
	db = r.resolveDB(db)
	room := new(Room)
	err := db.NewSelect().
		Model(room).
		Where("id = ?", roomID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.GetRoom: %w", err)
	}
	return room, nil
}

func (r *Impl) selectMembers(db bun.IDB, members *[]RoomMember) *bun.SelectQuery {
	return db.NewSelect().
		Model(members).
		ColumnExpr("rm.*").
		ColumnExpr("r.tournament_id").
		Join("JOIN rooms AS r ON r.id = rm.room_id").
		Order("rm.joined_at ASC", "rm.id ASC")
}

func (r *Impl) ListRoomMembers(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]RoomMember, error) {
	db = r.resolveDB(db)
	var members []RoomMember
	if err := r.selectMembers(db, &members).Where("rm.room_id = ?", roomID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListRoomMembers: %w", err)
	}
	return members, nil
}

func (r *Impl) ListTournamentMembers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]RoomMember, error) {
	db = r.resolveDB(db)
	var members []RoomMember
	if err := r.selectMembers(db, &members).Where("r.tournament_id = ?", tournamentID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListTournamentMembers: %w", err)
	}
	return members, nil
}

func (r *Impl) ListMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Match, error) {
	db = r.resolveDB(db)
	var matches []Match
	err := db.NewSelect().
		Model(&matches).
		Where("tournament_id = ?", tournamentID).
		Order("starts_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListMatches: %w", err)
	}
	return matches, nil
}

func (r *Impl) ListPredictions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Prediction, error) {
	db = r.resolveDB(db)
	var predictions []Prediction
	err := db.NewSelect().
		Model(&predictions).
		Join("JOIN matches AS m ON m.id = p.match_id").
		Where("m.tournament_id = ?", tournamentID).
		Order("p.created_at ASC", "p.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListPredictions: %w", err)
	}
	return predictions, nil
}

func (r *Impl) ListBonusQuestions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]BonusQuestion, error) {
	db = r.resolveDB(db)
	var questions []BonusQuestion
	err := db.NewSelect().
		Model(&questions).
		Join("JOIN matches AS m ON m.id = bq.match_id").
		Where("m.tournament_id = ?", tournamentID).
		Order("bq.closes_at ASC", "bq.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListBonusQuestions: %w", err)
	}
	return questions, nil
}

func (r *Impl) ListBonusAnswers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]BonusAnswer, error) {
	db = r.resolveDB(db)
	var answers []BonusAnswer
	err := db.NewSelect().
		Model(&answers).
		Join("JOIN bonus_questions AS bq ON bq.id = ba.question_id").
		Join("JOIN matches AS m ON m.id = bq.match_id").
		Where("m.tournament_id = ?", tournamentID).
		Order("ba.created_at ASC", "ba.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboarddb.ListBonusAnswers: %w", err)
	}
	return answers, nil
}

func preparePredictions(predictions []Prediction) {
	now := time.Now().UTC()
	for i := range predictions {
		if predictions[i].ID == uuid.Nil {
			predictions[i].ID = uuid.New()
		}
		if predictions[i].UpdatedAt.IsZero() {
			predictions[i].UpdatedAt = now
		}
	}
}

func prepareAnswers(answers []BonusAnswer) {
	now := time.Now().UTC()
	for i := range answers {
		if answers[i].ID == uuid.Nil {
			answers[i].ID = uuid.New()
		}
		if answers[i].UpdatedAt.IsZero() {
			answers[i].UpdatedAt = now
		}
	}
}

func (r *Impl) UpsertPredictions(ctx context.Context, db bun.IDB, predictions []Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	preparePredictions(predictions)

	_, err := db.NewInsert().
		Model(&predictions).
		On("CONFLICT (member_id, match_id) DO UPDATE").
		Set("pick = EXCLUDED.pick").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.UpsertPredictions: %w", err)
	}
	return nil
}

func (r *Impl) InsertMissingPredictions(ctx context.Context, db bun.IDB, predictions []Prediction) (int, error) {
	if len(predictions) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	preparePredictions(predictions)

	res, err := db.NewInsert().
		Model(&predictions).
		On("CONFLICT (member_id, match_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.InsertMissingPredictions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.InsertMissingPredictions: %w", err)
	}
	return int(n), nil
}

func (r *Impl) UpsertBonusAnswers(ctx context.Context, db bun.IDB, answers []BonusAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	prepareAnswers(answers)

	_, err := db.NewInsert().
		Model(&answers).
		On("CONFLICT (member_id, question_id) DO UPDATE").
		Set("answer_number = EXCLUDED.answer_number").
		Set("answer_choice = EXCLUDED.answer_choice").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.UpsertBonusAnswers: %w", err)
	}
	return nil
}

func (r *Impl) InsertMissingBonusAnswers(ctx context.Context, db bun.IDB, answers []BonusAnswer) (int, error) {
	if len(answers) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	prepareAnswers(answers)

	res, err := db.NewInsert().
		Model(&answers).
		On("CONFLICT (member_id, question_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.InsertMissingBonusAnswers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("leaderboarddb.InsertMissingBonusAnswers: %w", err)
	}
	return int(n), nil
}
