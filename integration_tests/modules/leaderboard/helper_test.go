package leaderboardintegrationtests

import (
	"io"
	"log/slog"
	"testing"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/Black-And-White-Club/tipster/integration_tests/testutils"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type TestDeps struct {
	DB      *bun.DB
	Repo    leaderboarddb.Repository
	Service leaderboardservice.Service
	Gen     *testutils.DataGenerator
}

func SetupTestLeaderboardService(t *testing.T) TestDeps {
	t.Helper()
	env := testutils.GetTestEnv(t)

	repo := leaderboarddb.NewRepository(env.DB)
	service := leaderboardservice.NewLeaderboardService(
		env.DB,
		repo,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NoOp{},
		noop.NewTracerProvider().Tracer("test"),
	)
	return TestDeps{DB: env.DB, Repo: repo, Service: service, Gen: testutils.NewDataGenerator(env.DB, 42)}
}

// pool is a tournament with two rooms. Alice plays in both under differently
// cased usernames; Bob only in the first room.
type pool struct {
	tournament  *leaderboarddb.Tournament
	roomA       *leaderboarddb.Room
	roomB       *leaderboarddb.Room
	alice       *leaderboarddb.RoomMember
	bob         *leaderboarddb.RoomMember
	aliceB      *leaderboarddb.RoomMember
	homeWin     *leaderboarddb.Match
	draw        *leaderboarddb.Match
	upcoming    *leaderboarddb.Match
	kickoffBase time.Time
}

func intPtr(v int) *int { return &v }

func seedPool(t *testing.T, deps TestDeps) pool {
	t.Helper()
	g := deps.Gen
	base := time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)

	p := pool{kickoffBase: base}
	p.tournament = g.Tournament(t, intPtr(3), nil)
	p.roomA = g.Room(t, p.tournament.ID)
	p.roomB = g.Room(t, p.tournament.ID)
	p.alice = g.Member(t, p.roomA.ID, "alice", base.Add(-72*time.Hour))
	p.bob = g.Member(t, p.roomA.ID, "bob", base.Add(-71*time.Hour))
	p.aliceB = g.Member(t, p.roomB.ID, "ALICE", base.Add(-70*time.Hour))

	p.homeWin = g.Match(t, p.tournament.ID, base, "1")
	p.draw = g.Match(t, p.tournament.ID, base.Add(24*time.Hour), "X")
	p.upcoming = g.Match(t, p.tournament.ID, time.Now().Add(48*time.Hour), "")
	return p
}
