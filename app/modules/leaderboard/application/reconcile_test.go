package leaderboardservice

import (
	"context"
	"errors"
	"testing"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain/events"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type writtenPick struct {
	MemberID uuid.UUID
	MatchID  uuid.UUID
	Pick     string
}

func picksOf(rows []leaderboarddb.Prediction) []writtenPick {
	out := make([]writtenPick, 0, len(rows))
	for _, r := range rows {
		out = append(out, writtenPick{MemberID: r.MemberID, MatchID: r.MatchID, Pick: r.Pick})
	}
	return out
}

func TestReconcileOverwrite(t *testing.T) {
	f := newPoolFixture()
	pub := &FakePublisher{}

	res, err := f.service(pub).Reconcile(context.Background(), adminUser, f.tournamentID, leaderboarddomain.ModeOverwrite)
	require.NoError(t, err)

	want := leaderboarddomain.ReconcileStats{Groups: 1, PredictionsCopied: 2, AnswersCopied: 0}
	assert.Equal(t, want, res.Stats)
	assert.Equal(t, leaderboarddomain.ModeOverwrite, res.Mode)

	wantPicks := []writtenPick{
		{MemberID: f.aliceAlt.ID, MatchID: f.opener.ID, Pick: "1"},
		{MemberID: f.alice.ID, MatchID: f.second.ID, Pick: "X"},
	}
	if diff := cmp.Diff(wantPicks, picksOf(f.repo.WrittenPredictions)); diff != "" {
		t.Errorf("written predictions mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, f.repo.Trace(), "UpsertPredictions")
	assert.NotContains(t, f.repo.Trace(), "InsertMissingPredictions")

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, leaderboardevents.TournamentReconciledTopic, events[0].Topic)
	payload, ok := events[0].Payload.(leaderboardevents.TournamentReconciledPayload)
	require.True(t, ok)
	assert.Equal(t, f.tournamentID, payload.TournamentID)
	assert.Equal(t, want, payload.Stats)
	assert.Equal(t, fixedNow, payload.ReconciledAt)
}

func TestReconcileFillOnlyReportsRowsActuallyInserted(t *testing.T) {
	f := newPoolFixture()
	f.repo.InsertMissingPredictionsFunc = func(_ context.Context, _ bun.IDB, rows []leaderboarddb.Prediction) (int, error) {
		// One destination was filled by a concurrent submission.
		return len(rows) - 1, nil
	}

	res, err := f.service(nil).Reconcile(context.Background(), adminUser, f.tournamentID, leaderboarddomain.ModeFillOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.PredictionsCopied)
	assert.Equal(t, 0, res.Stats.AnswersCopied)
	assert.NotContains(t, f.repo.Trace(), "UpsertPredictions")
	assert.Contains(t, f.repo.Trace(), "InsertMissingBonusAnswers")
}

func TestReconcileFailures(t *testing.T) {
	boom := errors.New("deadlock detected")

	tests := []struct {
		name      string
		principal authdomain.Principal
		mode      leaderboarddomain.Mode
		setup     func(f *poolFixture) uuid.UUID
		wantErr   error
		wantTrace []string
	}{
		{
			name:      "members may not reconcile",
			principal: authdomain.Principal{Username: "alice", Role: authdomain.RoleMember},
			mode:      leaderboarddomain.ModeOverwrite,
			setup:     func(f *poolFixture) uuid.UUID { return f.tournamentID },
			wantErr:   ErrForbidden,
			wantTrace: []string{},
		},
		{
			name:      "unknown mode",
			principal: adminUser,
			mode:      leaderboarddomain.Mode("merge"),
			setup:     func(f *poolFixture) uuid.UUID { return f.tournamentID },
			wantErr:   ErrInvalidMode,
			wantTrace: []string{},
		},
		{
			name:      "unknown tournament",
			principal: adminUser,
			mode:      leaderboarddomain.ModeFillOnly,
			setup:     func(f *poolFixture) uuid.UUID { return uuid.New() },
			wantErr:   ErrTournamentNotFound,
			wantTrace: []string{"GetTournament"},
		},
		{
			name:      "write failure aborts",
			principal: adminUser,
			mode:      leaderboarddomain.ModeOverwrite,
			setup: func(f *poolFixture) uuid.UUID {
				f.repo.UpsertPredictionsFunc = func(context.Context, bun.IDB, []leaderboarddb.Prediction) error { return boom }
				return f.tournamentID
			},
			wantErr: boom,
			wantTrace: []string{
				"GetTournament", "ListTournamentMembers", "ListPredictions", "ListBonusAnswers", "UpsertPredictions",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPoolFixture()
			pub := &FakePublisher{}
			tournamentID := tt.setup(f)

			res, err := f.service(pub).Reconcile(context.Background(), tt.principal, tournamentID, tt.mode)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantTrace, f.repo.Trace())
			assert.Empty(t, pub.Events(), "nothing is announced for a failed reconciliation")
		})
	}
}

func TestReconcilePublishFailureDoesNotFailTheOperation(t *testing.T) {
	f := newPoolFixture()
	pub := &FakePublisher{PublishFunc: func(context.Context, string, any) error {
		return errors.New("nats: no responders")
	}}

	res, err := f.service(pub).Reconcile(context.Background(), adminUser, f.tournamentID, leaderboarddomain.ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.PredictionsCopied)
}

func TestReconcileIsIdempotentOnceConverged(t *testing.T) {
	f := newPoolFixture()
	s := f.service(nil)

	_, err := s.Reconcile(context.Background(), adminUser, f.tournamentID, leaderboarddomain.ModeOverwrite)
	require.NoError(t, err)

	// Feed the written rows back as if the store had applied them.
	for _, p := range f.repo.WrittenPredictions {
		p.ID = uuid.New()
		f.repo.Predictions = append(f.repo.Predictions, p)
	}
	f.repo.WrittenPredictions = nil

	res, err := s.Reconcile(context.Background(), adminUser, f.tournamentID, leaderboarddomain.ModeOverwrite)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.PredictionsCopied)
	assert.Empty(t, f.repo.WrittenPredictions)
}

func TestReconcileAll(t *testing.T) {
	boom := errors.New("connection reset")
	f := newPoolFixture()
	broken := leaderboarddb.Tournament{ID: uuid.New(), Name: "Euros"}
	f.repo.Tournaments = append(f.repo.Tournaments, broken)
	f.repo.GetTournamentFunc = func(_ context.Context, _ bun.IDB, id uuid.UUID) (*leaderboarddb.Tournament, error) {
		if id == broken.ID {
			return nil, boom
		}
		return &f.repo.Tournaments[0], nil
	}

	results, err := f.service(nil).ReconcileAll(context.Background(), adminUser, leaderboarddomain.ModeFillOnly)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), broken.ID.String())
	require.Len(t, results, 1)
	assert.Equal(t, f.tournamentID, results[0].TournamentID)
}

func TestReconcileAllRequiresAdmin(t *testing.T) {
	f := newPoolFixture()
	_, err := f.service(nil).ReconcileAll(context.Background(), authdomain.Principal{Username: "bob"}, leaderboarddomain.ModeFillOnly)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.repo.Trace())
}
