package leaderboarddb

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tournament carries the points configuration. Each points column is
// optional and defaults independently.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid"`
	Name                string    `bun:"name,notnull"`
	PointsPerCorrect1x2 *int      `bun:"points_per_correct_1x2"`
	PointsPerCorrectX   *int      `bun:"points_per_correct_x"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Room struct {
	bun.BaseModel `bun:"table:rooms,alias:r"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	TournamentID uuid.UUID `bun:"tournament_id,type:uuid,notnull"`
	Name         string    `bun:"name,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type RoomMember struct {
	bun.BaseModel `bun:"table:room_members,alias:rm"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	RoomID      uuid.UUID `bun:"room_id,type:uuid,notnull"`
	Username    string    `bun:"username,notnull"`
	DisplayName string    `bun:"display_name,notnull"`
	IsOwner     bool      `bun:"is_owner,notnull,default:false"`
	JoinedAt    time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`

	// TournamentID is read through the rooms join.
	TournamentID uuid.UUID `bun:"tournament_id,scanonly"`
}

type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID                 uuid.UUID `bun:"id,pk,type:uuid"`
	TournamentID       uuid.UUID `bun:"tournament_id,type:uuid,notnull"`
	HomeTeam           string    `bun:"home_team,notnull"`
	AwayTeam           string    `bun:"away_team,notnull"`
	StartsAt           time.Time `bun:"starts_at,notnull"`
	AllowDraw          bool      `bun:"allow_draw,notnull,default:true"`
	Result             *string   `bun:"result"`
	UnderdogTeam       *string   `bun:"underdog_team"`
	UnderdogMultiplier *float64  `bun:"underdog_multiplier"`
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

type BonusQuestion struct {
	bun.BaseModel `bun:"table:bonus_questions,alias:bq"`

	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	MatchID       uuid.UUID `bun:"match_id,type:uuid,notnull,unique"`
	Type          string    `bun:"type,notnull"`
	Prompt        string    `bun:"prompt,notnull"`
	Points        int       `bun:"points,notnull"`
	ClosesAt      time.Time `bun:"closes_at,notnull"`
	CorrectNumber *float64  `bun:"correct_number"`
	CorrectChoice *string   `bun:"correct_choice"`
	ChoiceOptions []string  `bun:"choice_options,array"`
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

// Settings returns nil only when neither points column is set. An unset
// 1X2 value falls back to the default on its own.
func (t *Tournament) Settings() *leaderboarddomain.Settings {
	if t == nil || (t.PointsPerCorrect1x2 == nil && t.PointsPerCorrectX == nil) {
		return nil
	}
	settings := leaderboarddomain.DefaultSettings()
	if t.PointsPerCorrect1x2 != nil {
		settings.PointsPerCorrect1x2 = *t.PointsPerCorrect1x2
	}
	settings.PointsPerCorrectX = t.PointsPerCorrectX
	return &settings
}

func (m RoomMember) ToDomain() leaderboarddomain.Member {
	return leaderboarddomain.Member{
		ID:           m.ID,
		RoomID:       m.RoomID,
		TournamentID: m.TournamentID,
		Username:     m.Username,
		DisplayName:  m.DisplayName,
		IsOwner:      m.IsOwner,
	}
}

func (m Match) ToDomain() leaderboarddomain.Match {
	out := leaderboarddomain.Match{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		StartsAt:     m.StartsAt,
		AllowDraw:    m.AllowDraw,
	}
	if m.Result != nil {
		r := leaderboarddomain.Outcome(*m.Result)
		out.Result = &r
	}
	if m.UnderdogTeam != nil {
		u := leaderboarddomain.Outcome(*m.UnderdogTeam)
		out.UnderdogTeam = &u
	}
	if m.UnderdogMultiplier != nil {
		out.UnderdogMultiplier = *m.UnderdogMultiplier
	}
	return out
}

func (p Prediction) ToDomain() leaderboarddomain.Prediction {
	return leaderboarddomain.Prediction{
		ID:        p.ID,
		MemberID:  p.MemberID,
		MatchID:   p.MatchID,
		Pick:      leaderboarddomain.Outcome(p.Pick),
		UpdatedAt: p.UpdatedAt,
	}
}

func PredictionFromDomain(p leaderboarddomain.Prediction) Prediction {
	return Prediction{
		ID:        p.ID,
		MemberID:  p.MemberID,
		MatchID:   p.MatchID,
		Pick:      string(p.Pick),
		UpdatedAt: p.UpdatedAt,
	}
}

// ToDomain fails for an unknown question type.
func (q BonusQuestion) ToDomain() (leaderboarddomain.BonusQuestion, error) {
	key, err := leaderboarddomain.NewAnswerKey(leaderboarddomain.BonusType(q.Type), q.CorrectNumber, q.CorrectChoice, q.ChoiceOptions)
	if err != nil {
		return leaderboarddomain.BonusQuestion{}, err
	}
	return leaderboarddomain.BonusQuestion{
		ID:       q.ID,
		MatchID:  q.MatchID,
		Prompt:   q.Prompt,
		Points:   q.Points,
		ClosesAt: q.ClosesAt,
		Key:      key,
	}, nil
}

func (a BonusAnswer) ToDomain() leaderboarddomain.BonusAnswer {
	return leaderboarddomain.BonusAnswer{
		ID:         a.ID,
		MemberID:   a.MemberID,
		QuestionID: a.QuestionID,
		Number:     a.AnswerNumber,
		Choice:     a.AnswerChoice,
		UpdatedAt:  a.UpdatedAt,
	}
}

func BonusAnswerFromDomain(a leaderboarddomain.BonusAnswer) BonusAnswer {
	return BonusAnswer{
		ID:           a.ID,
		MemberID:     a.MemberID,
		QuestionID:   a.QuestionID,
		AnswerNumber: a.Number,
		AnswerChoice: a.Choice,
		UpdatedAt:    a.UpdatedAt,
	}
}
