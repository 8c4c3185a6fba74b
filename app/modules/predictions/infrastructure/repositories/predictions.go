package predictionsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the write side for predictions and bonus answers.
// A nil db uses the repository's own connection.
type Repository interface {
	// GetMember returns ErrNotFound for an unknown membership.
	GetMember(ctx context.Context, db bun.IDB, memberID uuid.UUID) (*Member, error)

	// GetMatch locks the match row so a concurrent result entry is seen.
	GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error)

	// GetBonusQuestion returns ErrNotFound for an unknown question.
	GetBonusQuestion(ctx context.Context, db bun.IDB, questionID uuid.UUID) (*BonusQuestion, error)

	// UpsertPrediction stores p keyed by (member_id, match_id); the last write wins.
	UpsertPrediction(ctx context.Context, db bun.IDB, p *Prediction) error

	// UpsertBonusAnswer stores an answer keyed by (member_id, question_id); the last write wins.
	UpsertBonusAnswer(ctx context.Context, db bun.IDB, a *BonusAnswer) error
}

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("predictionsdb.%s: %w", op, err)
}

func (r *Impl) GetMember(ctx context.Context, db bun.IDB, memberID uuid.UUID) (*Member, error) {
	db = r.resolveDB(db)
	m := new(Member)
	err := db.NewSelect().
		Model(m).
		ColumnExpr("rm.id, rm.room_id, rm.username").
		ColumnExpr("r.tournament_id").
		Join("JOIN rooms AS r ON r.id = rm.room_id").
		Where("rm.id = ?", memberID).
		Scan(ctx)
	if err != nil {
		return nil, notFound("GetMember", err)
	}
	return m, nil
}

func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error) {
	db = r.resolveDB(db)
	m := new(Match)
	err := db.NewSelect().
		Model(m).
		Where("id = ?", matchID).
		For("SHARE").
		Scan(ctx)
	if err != nil {
		return nil, notFound("GetMatch", err)
	}
	return m, nil
}

func (r *Impl) GetBonusQuestion(ctx context.Context, db bun.IDB, questionID uuid.UUID) (*BonusQuestion, error) {
	db = r.resolveDB(db)
	q := new(BonusQuestion)
	err := db.NewSelect().
		Model(q).
		ColumnExpr("bq.id, bq.match_id, bq.type, bq.points, bq.closes_at, bq.choice_options").
		ColumnExpr("m.tournament_id").
		Join("JOIN matches AS m ON m.id = bq.match_id").
		Where("bq.id = ?", questionID).
		Scan(ctx)
	if err != nil {
		return nil, notFound("GetBonusQuestion", err)
	}
	return q, nil
}

func (r *Impl) UpsertPrediction(ctx context.Context, db bun.IDB, p *Prediction) error {
	db = r.resolveDB(db)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := db.NewInsert().
		Model(p).
		On("CONFLICT (member_id, match_id) DO UPDATE").
		Set("pick = EXCLUDED.pick").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictionsdb.UpsertPrediction: %w", err)
	}
	return nil
}

func (r *Impl) UpsertBonusAnswer(ctx context.Context, db bun.IDB, a *BonusAnswer) error {
	db = r.resolveDB(db)
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	_, err := db.NewInsert().
		Model(a).
		On("CONFLICT (member_id, question_id) DO UPDATE").
		Set("answer_number = EXCLUDED.answer_number").
		Set("answer_choice = EXCLUDED.answer_choice").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("predictionsdb.UpsertBonusAnswer: %w", err)
	}
	return nil
}
