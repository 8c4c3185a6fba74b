package leaderboarddomain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is a 1X2 match outcome: home win, draw or away win.
type Outcome string

const (
	OutcomeHome Outcome = "1"
	OutcomeDraw Outcome = "X"
	OutcomeAway Outcome = "2"
)

var ErrInvalidOutcome = errors.New("invalid outcome")

// Valid reports whether o is one of "1", "X", "2".
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeHome, OutcomeDraw, OutcomeAway:
		return true
	}
	return false
}

// ParseOutcome accepts "1", "X" (or "x") and "2".
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if s == "x" {
		o = OutcomeDraw
	}
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return o, nil
}

// Settings holds the tournament point values.
type Settings struct {
	PointsPerCorrect1x2 int
	// PointsPerCorrectX overrides PointsPerCorrect1x2 for correct draws when set.
	PointsPerCorrectX *int
}

// DefaultSettings is used when a tournament has no points configuration.
func DefaultSettings() Settings {
	return Settings{PointsPerCorrect1x2: 1}
}

// Normalize replaces negative values: points are never negative.
func (s Settings) Normalize() Settings {
	if s.PointsPerCorrect1x2 < 0 {
		s.PointsPerCorrect1x2 = DefaultSettings().PointsPerCorrect1x2
	}
	if s.PointsPerCorrectX != nil && *s.PointsPerCorrectX < 0 {
		s.PointsPerCorrectX = nil
	}
	return s
}

// ResolveSettings returns the normalized settings, or the defaults when s is nil.
func ResolveSettings(s *Settings) Settings {
	if s == nil {
		return DefaultSettings()
	}
	return s.Normalize()
}

type Match struct {
	ID           uuid.UUID
	TournamentID uuid.UUID
	HomeTeam     string
	AwayTeam     string
	StartsAt     time.Time
	AllowDraw    bool
	// Result is nil until an admin records the outcome.
	Result             *Outcome
	UnderdogTeam       *Outcome
	UnderdogMultiplier float64
}

// Decided reports whether the match has a valid result.
func (m Match) Decided() bool {
	return m.Result != nil && m.Result.Valid()
}

// Member is a room membership. The same person may hold one per room,
// linked only by Username.
type Member struct {
	ID           uuid.UUID
	RoomID       uuid.UUID
	TournamentID uuid.UUID
	Username     string
	DisplayName  string
	IsOwner      bool
}

type Prediction struct {
	ID        uuid.UUID
	MemberID  uuid.UUID
	MatchID   uuid.UUID
	Pick      Outcome
	UpdatedAt time.Time
}

type BonusType string

const (
	BonusNumber BonusType = "number"
	BonusChoice BonusType = "choice"
	BonusPlayer BonusType = "player"
)

var ErrInvalidBonusType = errors.New("invalid bonus question type")

// AnswerKey is the correct answer of a bonus question. Each question type
// has its own variant: NumberKey, ChoiceKey or PlayerKey.
type AnswerKey interface {
	Type() BonusType
	// Matches reports whether a is exactly the correct answer.
	// A key without a correct answer matches nothing.
	Matches(a BonusAnswer) bool
	isAnswerKey()
}

type NumberKey struct {
	Correct *float64
}

func (NumberKey) Type() BonusType { return BonusNumber }

func (k NumberKey) Matches(a BonusAnswer) bool {
	return k.Correct != nil && a.Number != nil && *a.Number == *k.Correct
}

func (NumberKey) isAnswerKey() {}

type ChoiceKey struct {
	Options []string
	Correct *string
}

func (ChoiceKey) Type() BonusType { return BonusChoice }

func (k ChoiceKey) Matches(a BonusAnswer) bool {
	return k.Correct != nil && a.Choice != nil && *a.Choice == *k.Correct
}

func (ChoiceKey) isAnswerKey() {}

type PlayerKey struct {
	Correct *string
}

func (PlayerKey) Type() BonusType { return BonusPlayer }

func (k PlayerKey) Matches(a BonusAnswer) bool {
	return k.Correct != nil && a.Choice != nil && *a.Choice == *k.Correct
}

func (PlayerKey) isAnswerKey() {}

// NewAnswerKey builds the variant for typ from the stored columns.
func NewAnswerKey(typ BonusType, correctNumber *float64, correctChoice *string, options []string) (AnswerKey, error) {
	switch typ {
	case BonusNumber:
		return NumberKey{Correct: correctNumber}, nil
	case BonusChoice:
		return ChoiceKey{Options: options, Correct: correctChoice}, nil
	case BonusPlayer:
		return PlayerKey{Correct: correctChoice}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidBonusType, typ)
}

type BonusQuestion struct {
	ID       uuid.UUID
	MatchID  uuid.UUID
	Prompt   string
	Points   int
	ClosesAt time.Time
	Key      AnswerKey
}

// BonusAnswer stores a number for number questions and a string for
// choice and player questions.
type BonusAnswer struct {
	ID         uuid.UUID
	MemberID   uuid.UUID
	QuestionID uuid.UUID
	Number     *float64
	Choice     *string
	UpdatedAt  time.Time
}

// Entry is one computed leaderboard row.
type Entry struct {
	MemberID    uuid.UUID `json:"memberId"`
	DisplayName string    `json:"displayName"`
	Points      int       `json:"points"`
	Correct1x2  int       `json:"correct1x2"`
	Points1x2   int       `json:"points1x2"`
	BonusPoints int       `json:"bonusPoints"`
	Position    int       `json:"position"`
}
