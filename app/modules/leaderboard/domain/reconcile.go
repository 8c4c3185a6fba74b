package leaderboarddomain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects how reconciliation treats rows that already exist at a destination.
type Mode string

const (
	// ModeOverwrite makes every sibling membership hold the same row,
	// replacing what is there. Used for a full resync.
	ModeOverwrite Mode = "overwrite"
	// ModeFillOnly copies only into memberships that have no row yet.
	ModeFillOnly Mode = "fill"
)

var ErrInvalidMode = errors.New("invalid reconcile mode")

// ParseMode accepts "overwrite" and "fill" (also "fill-only", "fill_only").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return ModeOverwrite, nil
	case "fill", "fill-only", "fill_only":
		return ModeFillOnly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// ReconcileStats summarizes a plan.
type ReconcileStats struct {
	Groups            int `json:"groups"`
	PredictionsCopied int `json:"predictionsCopied"`
	AnswersCopied     int `json:"answersCopied"`
}

// Plan lists the rows to write, keyed by (MemberID, MatchID) and
// (MemberID, QuestionID). IDs are left zero for the store to assign.
type Plan struct {
	Mode        Mode
	Predictions []Prediction
	Answers     []BonusAnswer
	Stats       ReconcileStats
}

// PlanReconciliation copies predictions and answers between memberships
// sharing a username within one tournament.
//
// In overwrite mode each (group, match) converges on the most recently
// updated row, the earlier row in input order winning ties; destinations
// already holding an equal value are left out. In fill-only mode only
// destinations without a row receive a copy of the first row in input order.
func PlanReconciliation(members []Member, predictions []Prediction, answers []BonusAnswer, mode Mode) Plan {
	groups, groupOf := buildGroups(members)
	plan := Plan{Mode: mode}
	for _, g := range groups {
		if len(g) > 1 {
			plan.Stats.Groups++
		}
	}

	validPredictions := make([]Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Pick.Valid() {
			validPredictions = append(validPredictions, p)
		}
	}

	plan.Predictions = planCopies(groups, groupOf, validPredictions, mode, copyRules[Prediction]{
		member:    func(p Prediction) uuid.UUID { return p.MemberID },
		target:    func(p Prediction) uuid.UUID { return p.MatchID },
		updatedAt: func(p Prediction) time.Time { return p.UpdatedAt },
		same:      func(a, b Prediction) bool { return a.Pick == b.Pick },
		retarget: func(p Prediction, memberID uuid.UUID) Prediction {
			return Prediction{MemberID: memberID, MatchID: p.MatchID, Pick: p.Pick, UpdatedAt: p.UpdatedAt}
		},
	})
	plan.Answers = planCopies(groups, groupOf, answers, mode, copyRules[BonusAnswer]{
		member:    func(a BonusAnswer) uuid.UUID { return a.MemberID },
		target:    func(a BonusAnswer) uuid.UUID { return a.QuestionID },
		updatedAt: func(a BonusAnswer) time.Time { return a.UpdatedAt },
		same:      sameAnswer,
		retarget: func(a BonusAnswer, memberID uuid.UUID) BonusAnswer {
			return BonusAnswer{MemberID: memberID, QuestionID: a.QuestionID, Number: a.Number, Choice: a.Choice, UpdatedAt: a.UpdatedAt}
		},
	})

	plan.Stats.PredictionsCopied = len(plan.Predictions)
	plan.Stats.AnswersCopied = len(plan.Answers)
	return plan
}

// buildGroups indexes member ids by (tournament, folded username), in input order.
func buildGroups(members []Member) ([][]uuid.UUID, map[uuid.UUID]int) {
	var groups [][]uuid.UUID
	index := make(map[identityKey]int)
	groupOf := make(map[uuid.UUID]int, len(members))

	for _, m := range members {
		if _, dup := groupOf[m.ID]; dup {
			continue
		}
		key, ok := identityOf(m)
		if !ok {
			continue
		}
		gi, exists := index[key]
		if !exists {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], m.ID)
		groupOf[m.ID] = gi
	}
	return groups, groupOf
}

type copyRules[T any] struct {
	member    func(T) uuid.UUID
	target    func(T) uuid.UUID
	updatedAt func(T) time.Time
	same      func(a, b T) bool
	retarget  func(T, uuid.UUID) T
}

type groupTarget struct {
	group  int
	target uuid.UUID
}

func planCopies[T any](groups [][]uuid.UUID, groupOf map[uuid.UUID]int, rows []T, mode Mode, rules copyRules[T]) []T {
	existing := make(map[rowKey]T, len(rows))
	chosen := make(map[groupTarget]T)
	var order []groupTarget

	for _, row := range rows {
		memberID := rules.member(row)
		gi, ok := groupOf[memberID]
		if !ok || len(groups[gi]) < 2 {
			continue
		}

		k := rowKey{memberID: memberID, targetID: rules.target(row)}
		if _, dup := existing[k]; dup {
			continue
		}
		existing[k] = row

		gt := groupTarget{group: gi, target: rules.target(row)}
		current, seen := chosen[gt]
		switch {
		case !seen:
			chosen[gt] = row
			order = append(order, gt)
		case mode == ModeOverwrite && rules.updatedAt(row).After(rules.updatedAt(current)):
			chosen[gt] = row
		}
	}

	var out []T
	for _, gt := range order {
		source := chosen[gt]
		for _, dest := range groups[gt.group] {
			have, ok := existing[rowKey{memberID: dest, targetID: gt.target}]
			if ok && (mode == ModeFillOnly || rules.same(have, source)) {
				continue
			}
			out = append(out, rules.retarget(source, dest))
		}
	}
	return out
}

func sameAnswer(a, b BonusAnswer) bool {
	switch {
	case (a.Number == nil) != (b.Number == nil):
		return false
	case a.Number != nil && *a.Number != *b.Number:
		return false
	case (a.Choice == nil) != (b.Choice == nil):
		return false
	case a.Choice != nil && *a.Choice != *b.Choice:
		return false
	}
	return true
}
