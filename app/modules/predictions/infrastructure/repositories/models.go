package predictionsdb

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Member is the owner check view of a room membership.
type Member struct {
	bun.BaseModel `bun:"table:room_members,alias:rm"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID   uuid.UUID `bun:"room_id,type:uuid"`
	Username string    `bun:"username"`

	TournamentID uuid.UUID `bun:"tournament_id,scanonly"`
}

// Match carries the columns that decide whether picks are still accepted.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	TournamentID uuid.UUID `bun:"tournament_id,type:uuid"`
	StartsAt     time.Time `bun:"starts_at"`
	AllowDraw    bool      `bun:"allow_draw"`
	Result       *string   `bun:"result"`
}

// BonusQuestion is read with its match's tournament.
type BonusQuestion struct {
	bun.BaseModel `bun:"table:bonus_questions,alias:bq"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	MatchID       uuid.UUID `bun:"match_id,type:uuid"`
	Type          string    `bun:"type"`
	Points        int       `bun:"points"`
	ClosesAt      time.Time `bun:"closes_at"`
	ChoiceOptions []string  `bun:"choice_options,array"`

	TournamentID uuid.UUID `bun:"tournament_id,scanonly"`
}

type Prediction struct {
	bun.BaseModel `bun:"table:predictions,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	MemberID  uuid.UUID `bun:"member_id,type:uuid,notnull"`
	MatchID   uuid.UUID `bun:"match_id,type:uuid,notnull"`
	Pick      string    `bun:"pick,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type BonusAnswer struct {
	bun.BaseModel `bun:"table:bonus_answers,alias:ba"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	MemberID     uuid.UUID `bun:"member_id,type:uuid,notnull"`
	QuestionID   uuid.UUID `bun:"question_id,type:uuid,notnull"`
	AnswerNumber *float64  `bun:"answer_number"`
	AnswerChoice *string   `bun:"answer_choice"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (m Match) ToDomain() leaderboarddomain.Match {
	out := leaderboarddomain.Match{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		StartsAt:     m.StartsAt,
		AllowDraw:    m.AllowDraw,
	}
	if m.Result != nil {
		r := leaderboarddomain.Outcome(*m.Result)
		out.Result = &r
	}
	return out
}

// ToDomain fails for an unknown question type. The correct answer is not
// loaded, so the key only describes the accepted shape.
func (q BonusQuestion) ToDomain() (leaderboarddomain.BonusQuestion, error) {
	key, err := leaderboarddomain.NewAnswerKey(leaderboarddomain.BonusType(q.Type), nil, nil, q.ChoiceOptions)
	if err != nil {
		return leaderboarddomain.BonusQuestion{}, err
	}
	return leaderboarddomain.BonusQuestion{
		ID:       q.ID,
		MatchID:  q.MatchID,
		Points:   q.Points,
		ClosesAt: q.ClosesAt,
		Key:      key,
	}, nil
}
