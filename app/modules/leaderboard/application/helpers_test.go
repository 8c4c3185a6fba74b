package leaderboardservice

import (
	"io"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	kickoff   = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC)
	adminUser = authdomain.Principal{Username: "referee", Role: authdomain.RoleAdmin}
)

// poolFixture is one tournament with two rooms. Alice plays in the office
// room under "alice" and in the family room under "ALICE".
type poolFixture struct {
	tournamentID uuid.UUID
	officeRoom   uuid.UUID
	familyRoom   uuid.UUID

	alice    leaderboarddb.RoomMember
	bob      leaderboarddb.RoomMember
	aliceAlt leaderboarddb.RoomMember

	opener  leaderboarddb.Match
	second  leaderboarddb.Match
	pending leaderboarddb.Match

	repo *FakeLeaderboardRepo
}

func newPoolFixture() *poolFixture {
	f := &poolFixture{
		tournamentID: uuid.New(),
		officeRoom:   uuid.New(),
		familyRoom:   uuid.New(),
		repo:         NewFakeLeaderboardRepo(),
	}
	three := 3
	f.repo.Tournaments = []leaderboarddb.Tournament{{ID: f.tournamentID, Name: "World Cup", PointsPerCorrect1x2: &three}}
	f.repo.Rooms = []leaderboarddb.Room{
		{ID: f.officeRoom, TournamentID: f.tournamentID, Name: "Office Pool"},
		{ID: f.familyRoom, TournamentID: f.tournamentID, Name: "Family"},
	}

	f.alice = roomMember(f.officeRoom, f.tournamentID, "alice", "Alice")
	f.bob = roomMember(f.officeRoom, f.tournamentID, "bob", "Bob")
	f.aliceAlt = roomMember(f.familyRoom, f.tournamentID, "ALICE", "Alice (family)")
	f.repo.Members = []leaderboarddb.RoomMember{f.alice, f.bob, f.aliceAlt}

	f.opener = poolMatch(f.tournamentID, kickoff, strPtr("1"))
	f.second = poolMatch(f.tournamentID, kickoff.Add(24*time.Hour), strPtr("X"))
	f.pending = poolMatch(f.tournamentID, kickoff.Add(48*time.Hour), nil)
	f.repo.Matches = []leaderboarddb.Match{f.opener, f.second, f.pending}

	f.repo.Predictions = []leaderboarddb.Prediction{
		prediction(f.alice.ID, f.opener.ID, "1", kickoff.Add(-time.Hour)),
		prediction(f.bob.ID, f.opener.ID, "2", kickoff.Add(-time.Hour)),
		prediction(f.bob.ID, f.second.ID, "X", kickoff.Add(-time.Hour)),
		prediction(f.aliceAlt.ID, f.second.ID, "X", kickoff.Add(-time.Hour)),
	}

	correct := 2.0
	question := leaderboarddb.BonusQuestion{
		ID:            uuid.New(),
		MatchID:       f.opener.ID,
		Type:          "number",
		Prompt:        "Total goals?",
		Points:        5,
		ClosesAt:      kickoff,
		CorrectNumber: &correct,
	}
	f.repo.Questions = []leaderboarddb.BonusQuestion{question}
	f.repo.Answers = []leaderboarddb.BonusAnswer{{
		ID:           uuid.New(),
		MemberID:     f.bob.ID,
		QuestionID:   question.ID,
		AnswerNumber: &correct,
		UpdatedAt:    kickoff.Add(-time.Hour),
	}}
	return f
}

func (f *poolFixture) service(publisher *FakePublisher) *LeaderboardService {
	s := NewLeaderboardService(nil, f.repo, nil, testLogger(), metrics.NoOp{}, noop.NewTracerProvider().Tracer("test"))
	if publisher != nil {
		s.publisher = publisher
	}
	s.now = func() time.Time { return fixedNow }
	return s
}

func roomMember(roomID, tournamentID uuid.UUID, username, display string) leaderboarddb.RoomMember {
	return leaderboarddb.RoomMember{
		ID:           uuid.New(),
		RoomID:       roomID,
		Username:     username,
		DisplayName:  display,
		TournamentID: tournamentID,
	}
}

func poolMatch(tournamentID uuid.UUID, startsAt time.Time, result *string) leaderboarddb.Match {
	return leaderboarddb.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		StartsAt:     startsAt,
		AllowDraw:    true,
		Result:       result,
	}
}

func prediction(memberID, matchID uuid.UUID, pick string, at time.Time) leaderboarddb.Prediction {
	return leaderboarddb.Prediction{ID: uuid.New(), MemberID: memberID, MatchID: matchID, Pick: pick, UpdatedAt: at}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
