package leaderboarddomain

import "github.com/google/uuid"

// Input is everything ComputeLeaderboard needs for one room.
type Input struct {
	// Members are the room's memberships, in the order ties fall back to.
	Members []Member
	// Siblings are all memberships of the room's tournament, used to resolve
	// rows recorded under another membership with the same username.
	Siblings       []Member
	Matches        []Match
	Predictions    []Prediction
	BonusQuestions []BonusQuestion
	BonusAnswers   []BonusAnswer
	// Settings falls back to DefaultSettings when nil.
	Settings *Settings
}

// ComputeLeaderboard scores every room member and returns the ranked entries.
//
// Only decided matches count, and a bonus question counts only once its
// match is decided. Each match and question is credited at most once per
// member. Rows that reference unknown matches or carry invalid values are
// skipped instead of failing the computation.
func ComputeLeaderboard(in Input) []Entry {
	settings := ResolveSettings(in.Settings)
	matches := decidedMatches(in.Matches)
	questions := scorableQuestions(in.BonusQuestions, matches)

	resolver := NewResolver(append(append([]Member(nil), in.Members...), in.Siblings...), in.Predictions, in.BonusAnswers)

	entries := make([]Entry, 0, len(in.Members))
	seen := make(map[uuid.UUID]struct{}, len(in.Members))
	for _, member := range in.Members {
		if _, dup := seen[member.ID]; dup {
			continue
		}
		seen[member.ID] = struct{}{}
		entries = append(entries, scoreMember(member, settings, matches, questions, resolver))
	}

	RankEntries(entries)
	return entries
}

func scoreMember(member Member, settings Settings, matches []Match, questions []BonusQuestion, resolver *Resolver) Entry {
	entry := Entry{MemberID: member.ID, DisplayName: member.DisplayName}

	for _, match := range matches {
		prediction, ok := resolver.ResolvePrediction(member, match.ID)
		if !ok {
			continue
		}
		award, correct := MatchPoints(settings, match, prediction.Pick)
		if !correct {
			continue
		}
		entry.Correct1x2++
		entry.Points1x2 += award
		entry.Points += award
	}

	for _, question := range questions {
		answer, ok := resolver.ResolveBonusAnswer(member, question.ID)
		if !ok || !question.Key.Matches(answer) {
			continue
		}
		entry.BonusPoints += question.Points
		entry.Points += question.Points
	}

	return entry
}

// decidedMatches keeps the first occurrence of each decided match.
func decidedMatches(in []Match) []Match {
	out := make([]Match, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, m := range in {
		if !m.Decided() {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// scorableQuestions keeps well-formed questions whose match is decided,
// first occurrence of each id only.
func scorableQuestions(in []BonusQuestion, decided []Match) []BonusQuestion {
	matchIDs := make(map[uuid.UUID]struct{}, len(decided))
	for _, m := range decided {
		matchIDs[m.ID] = struct{}{}
	}

	out := make([]BonusQuestion, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, q := range in {
		if q.Key == nil || q.Points <= 0 {
			continue
		}
		if _, ok := matchIDs[q.MatchID]; !ok {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
