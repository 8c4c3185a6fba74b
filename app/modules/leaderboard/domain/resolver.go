package leaderboarddomain

import (
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// FoldUsername returns the case-insensitive identity key for a username.
func FoldUsername(username string) string {
	return cases.Fold().String(username)
}

type identityKey struct {
	tournamentID uuid.UUID
	username     string
}

type rowKey struct {
	memberID uuid.UUID
	targetID uuid.UUID
}

// Resolver finds the prediction or bonus answer that counts for a member.
//
// A member's own row always wins. Without one, the first row in input order
// recorded by another membership with the same username in the same
// tournament is used. The resolver never fails: no row means no answer.
type Resolver struct {
	siblings map[identityKey][]uuid.UUID

	predictions        map[rowKey]int
	predictionsByMatch map[uuid.UUID][]int
	allPredictions     []Prediction

	answers           map[rowKey]int
	answersByQuestion map[uuid.UUID][]int
	allAnswers        []BonusAnswer
}

// NewResolver indexes the tournament's memberships, predictions and answers.
// Predictions with an invalid pick are ignored.
func NewResolver(members []Member, predictions []Prediction, answers []BonusAnswer) *Resolver {
	r := &Resolver{
		siblings:           make(map[identityKey][]uuid.UUID),
		predictions:        make(map[rowKey]int, len(predictions)),
		predictionsByMatch: make(map[uuid.UUID][]int),
		allPredictions:     predictions,
		answers:            make(map[rowKey]int, len(answers)),
		answersByQuestion:  make(map[uuid.UUID][]int),
		allAnswers:         answers,
	}

	seen := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		key, ok := identityOf(m)
		if !ok {
			continue
		}
		r.siblings[key] = append(r.siblings[key], m.ID)
	}

	for i, p := range predictions {
		if !p.Pick.Valid() {
			continue
		}
		k := rowKey{memberID: p.MemberID, targetID: p.MatchID}
		if _, exists := r.predictions[k]; !exists {
			r.predictions[k] = i
		}
		r.predictionsByMatch[p.MatchID] = append(r.predictionsByMatch[p.MatchID], i)
	}

	for i, a := range answers {
		k := rowKey{memberID: a.MemberID, targetID: a.QuestionID}
		if _, exists := r.answers[k]; !exists {
			r.answers[k] = i
		}
		r.answersByQuestion[a.QuestionID] = append(r.answersByQuestion[a.QuestionID], i)
	}

	return r
}

func identityOf(m Member) (identityKey, bool) {
	folded := FoldUsername(m.Username)
	if folded == "" {
		return identityKey{}, false
	}
	return identityKey{tournamentID: m.TournamentID, username: folded}, true
}

// Siblings returns the other membership ids sharing member's username in its tournament.
func (r *Resolver) Siblings(member Member) []uuid.UUID {
	key, ok := identityOf(member)
	if !ok {
		return nil
	}
	var out []uuid.UUID
	for _, id := range r.siblings[key] {
		if id != member.ID {
			out = append(out, id)
		}
	}
	return out
}

func (r *Resolver) siblingSet(member Member) map[uuid.UUID]struct{} {
	ids := r.Siblings(member)
	if len(ids) == 0 {
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ResolvePrediction returns the prediction counted for member on matchID.
func (r *Resolver) ResolvePrediction(member Member, matchID uuid.UUID) (Prediction, bool) {
	if i, ok := r.predictions[rowKey{memberID: member.ID, targetID: matchID}]; ok {
		return r.allPredictions[i], true
	}

	set := r.siblingSet(member)
	if set == nil {
		return Prediction{}, false
	}
	for _, i := range r.predictionsByMatch[matchID] {
		if _, ok := set[r.allPredictions[i].MemberID]; ok {
			return r.allPredictions[i], true
		}
	}
	return Prediction{}, false
}

// ResolveBonusAnswer returns the answer counted for member on questionID.
func (r *Resolver) ResolveBonusAnswer(member Member, questionID uuid.UUID) (BonusAnswer, bool) {
	if i, ok := r.answers[rowKey{memberID: member.ID, targetID: questionID}]; ok {
		return r.allAnswers[i], true
	}

	set := r.siblingSet(member)
	if set == nil {
		return BonusAnswer{}, false
	}
	for _, i := range r.answersByQuestion[questionID] {
		if _, ok := set[r.allAnswers[i].MemberID]; ok {
			return r.allAnswers[i], true
		}
	}
	return BonusAnswer{}, false
}
