package testutils

import (
	"context"
	"strings"
	"testing"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DataGenerator inserts fixture rows with deterministic fake names.
type DataGenerator struct {
	db    *bun.DB
	faker *gofakeit.Faker
}

func NewDataGenerator(db *bun.DB, seed uint64) *DataGenerator {
	return &DataGenerator{db: db, faker: gofakeit.New(seed)}
}

func (g *DataGenerator) insert(t *testing.T, model any) {
	t.Helper()
	if _, err := g.db.NewInsert().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("failed to insert %T: %v", model, err)
	}
}

// Tournament inserts a tournament. A nil pointsPer1x2 leaves it unconfigured.
func (g *DataGenerator) Tournament(t *testing.T, pointsPer1x2, pointsPerX *int) *leaderboarddb.Tournament {
	t.Helper()
	row := &leaderboarddb.Tournament{
		ID:                  uuid.New(),
		Name:                g.faker.Company() + " Cup",
		PointsPerCorrect1x2: pointsPer1x2,
		PointsPerCorrectX:   pointsPerX,
	}
	g.insert(t, row)
	return row
}

func (g *DataGenerator) Room(t *testing.T, tournamentID uuid.UUID) *leaderboarddb.Room {
	t.Helper()
	row := &leaderboarddb.Room{ID: uuid.New(), TournamentID: tournamentID, Name: g.faker.AppName()}
	g.insert(t, row)
	return row
}

// Member joins username to the room. joinedAt fixes list order.
func (g *DataGenerator) Member(t *testing.T, roomID uuid.UUID, username string, joinedAt time.Time) *leaderboarddb.RoomMember {
	t.Helper()
	row := &leaderboarddb.RoomMember{
		ID:          uuid.New(),
		RoomID:      roomID,
		Username:    username,
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
		JoinedAt:    joinedAt,
	}
	g.insert(t, row)
	return row
}

// Match inserts a match. result may be empty for an undecided match.
func (g *DataGenerator) Match(t *testing.T, tournamentID uuid.UUID, startsAt time.Time, result string) *leaderboarddb.Match {
	t.Helper()
	row := &leaderboarddb.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		HomeTeam:     g.faker.Country(),
		AwayTeam:     g.faker.Country(),
		StartsAt:     startsAt,
		AllowDraw:    true,
	}
	if result != "" {
		row.Result = &result
	}
	g.insert(t, row)
	return row
}

func (g *DataGenerator) Prediction(t *testing.T, memberID, matchID uuid.UUID, pick string, updatedAt time.Time) *leaderboarddb.Prediction {
	t.Helper()
	row := &leaderboarddb.Prediction{
		ID:        uuid.New(),
		MemberID:  memberID,
		MatchID:   matchID,
		Pick:      pick,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	g.insert(t, row)
	return row
}

// ChoiceQuestion attaches a choice bonus question to a match.
func (g *DataGenerator) ChoiceQuestion(t *testing.T, matchID uuid.UUID, points int, closesAt time.Time, options []string, correct *string) *leaderboarddb.BonusQuestion {
	t.Helper()
	row := &leaderboarddb.BonusQuestion{
		ID:            uuid.New(),
		MatchID:       matchID,
		Type:          "choice",
		Prompt:        g.faker.Question(),
		Points:        points,
		ClosesAt:      closesAt,
		CorrectChoice: correct,
		ChoiceOptions: options,
	}
	g.insert(t, row)
	return row
}

func (g *DataGenerator) ChoiceAnswer(t *testing.T, memberID, questionID uuid.UUID, choice string, updatedAt time.Time) *leaderboarddb.BonusAnswer {
	t.Helper()
	row := &leaderboarddb.BonusAnswer{
		ID:           uuid.New(),
		MemberID:     memberID,
		QuestionID:   questionID,
		AnswerChoice: &choice,
		CreatedAt:    updatedAt,
		UpdatedAt:    updatedAt,
	}
	g.insert(t, row)
	return row
}
