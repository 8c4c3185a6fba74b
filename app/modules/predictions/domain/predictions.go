// Package predictionsdomain holds the rules for accepting predictions and
// bonus answers. Writes close once a match kicks off or has a result.
package predictionsdomain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
)

var (
	ErrMatchLocked    = errors.New("match is locked for predictions")
	ErrBonusClosed    = errors.New("bonus question is closed")
	ErrInvalidPick    = errors.New("invalid pick")
	ErrDrawNotAllowed = errors.New("draw is not allowed for this match")
	ErrInvalidAnswer  = errors.New("invalid bonus answer")
)

// Answer is a submitted bonus answer before validation. Number questions use
// Number; choice and player questions use Choice.
type Answer struct {
	Number *float64 `json:"number,omitempty"`
	Choice *string  `json:"choice,omitempty"`
}

// MatchLocked reports whether predictions for m are closed at now: the match
// has started or its result is already recorded.
func MatchLocked(m leaderboarddomain.Match, now time.Time) bool {
	return m.Result != nil || !now.Before(m.StartsAt)
}

// BonusClosed reports whether q stopped accepting answers at now.
func BonusClosed(q leaderboarddomain.BonusQuestion, now time.Time) bool {
	return !now.Before(q.ClosesAt)
}

// ValidatePick parses pick and checks it against the match rules.
func ValidatePick(m leaderboarddomain.Match, pick string) (leaderboarddomain.Outcome, error) {
	outcome, err := leaderboarddomain.ParseOutcome(strings.TrimSpace(pick))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPick, pick)
	}
	if outcome == leaderboarddomain.OutcomeDraw && !m.AllowDraw {
		return "", ErrDrawNotAllowed
	}
	return outcome, nil
}

// ValidateAnswer checks that a carries exactly the field q's type expects and
// returns it normalized.
func ValidateAnswer(q leaderboarddomain.BonusQuestion, a Answer) (Answer, error) {
	if q.Key == nil {
		return Answer{}, fmt.Errorf("%w: question has no type", ErrInvalidAnswer)
	}

	switch key := q.Key.(type) {
	case leaderboarddomain.NumberKey:
		if a.Number == nil || a.Choice != nil {
			return Answer{}, fmt.Errorf("%w: a number is required", ErrInvalidAnswer)
		}
		if math.IsNaN(*a.Number) || math.IsInf(*a.Number, 0) {
			return Answer{}, fmt.Errorf("%w: number must be finite", ErrInvalidAnswer)
		}
		n := *a.Number
		return Answer{Number: &n}, nil

	case leaderboarddomain.ChoiceKey:
		choice, err := requireChoice(a)
		if err != nil {
			return Answer{}, err
		}
		if len(key.Options) > 0 && !slices.Contains(key.Options, choice) {
			return Answer{}, fmt.Errorf("%w: %q is not an option", ErrInvalidAnswer, choice)
		}
		return Answer{Choice: &choice}, nil

	case leaderboarddomain.PlayerKey:
		choice, err := requireChoice(a)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Choice: &choice}, nil
	}

	return Answer{}, fmt.Errorf("%w: unsupported question type %q", ErrInvalidAnswer, q.Key.Type())
}

func requireChoice(a Answer) (string, error) {
	if a.Choice == nil || a.Number != nil {
		return "", fmt.Errorf("%w: a choice is required", ErrInvalidAnswer)
	}
	choice := strings.TrimSpace(*a.Choice)
	if choice == "" {
		return "", fmt.Errorf("%w: choice is empty", ErrInvalidAnswer)
	}
	return choice, nil
}
