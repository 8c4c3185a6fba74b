package leaderboarddomain

import (
	"time"

	"github.com/google/uuid"
)

var (
	testTournament  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	otherTournament = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	testRoom        = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	kickoff         = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
)

func outcome(o Outcome) *Outcome { return &o }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func member(name string) Member {
	return Member{
		ID:           uuid.New(),
		RoomID:       testRoom,
		TournamentID: testTournament,
		Username:     name,
		DisplayName:  name,
	}
}

func decidedMatch(result Outcome) Match {
	return Match{
		ID:           uuid.New(),
		TournamentID: testTournament,
		HomeTeam:     "Iceland",
		AwayTeam:     "Norway",
		StartsAt:     kickoff,
		AllowDraw:    true,
		Result:       outcome(result),
	}
}

func pick(m Member, match Match, o Outcome) Prediction {
	return Prediction{ID: uuid.New(), MemberID: m.ID, MatchID: match.ID, Pick: o, UpdatedAt: kickoff.Add(-time.Hour)}
}

func entryFor(t interface{ Fatalf(string, ...any) }, entries []Entry, id uuid.UUID) Entry {
	for _, e := range entries {
		if e.MemberID == id {
			return e
		}
	}
	t.Fatalf("no entry for member %s", id)
	return Entry{}
}
