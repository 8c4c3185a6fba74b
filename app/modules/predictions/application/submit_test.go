package predictionsservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	predictionsdomain "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain"
	predictionsevents "github.com/Black-And-White-Club/tipster/app/modules/predictions/domain/events"
	predictionsdb "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

// FakeRepo is an in-memory predictionsdb.Repository keyed like the real tables.
type FakeRepo struct {
	Members   map[uuid.UUID]predictionsdb.Member
	Matches   map[uuid.UUID]predictionsdb.Match
	Questions map[uuid.UUID]predictionsdb.BonusQuestion

	Predictions map[[2]uuid.UUID]predictionsdb.Prediction
	Answers     map[[2]uuid.UUID]predictionsdb.BonusAnswer

	GetMemberFunc        func(ctx context.Context, memberID uuid.UUID) (*predictionsdb.Member, error)
	UpsertPredictionFunc func(ctx context.Context, p *predictionsdb.Prediction) error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		Members:     map[uuid.UUID]predictionsdb.Member{},
		Matches:     map[uuid.UUID]predictionsdb.Match{},
		Questions:   map[uuid.UUID]predictionsdb.BonusQuestion{},
		Predictions: map[[2]uuid.UUID]predictionsdb.Prediction{},
		Answers:     map[[2]uuid.UUID]predictionsdb.BonusAnswer{},
	}
}

func (f *FakeRepo) GetMember(ctx context.Context, _ bun.IDB, memberID uuid.UUID) (*predictionsdb.Member, error) {
	if f.GetMemberFunc != nil {
		return f.GetMemberFunc(ctx, memberID)
	}
	m, ok := f.Members[memberID]
	if !ok {
		return nil, predictionsdb.ErrNotFound
	}
	return &m, nil
}

func (f *FakeRepo) GetMatch(_ context.Context, _ bun.IDB, matchID uuid.UUID) (*predictionsdb.Match, error) {
	m, ok := f.Matches[matchID]
	if !ok {
		return nil, predictionsdb.ErrNotFound
	}
	return &m, nil
}

func (f *FakeRepo) GetBonusQuestion(_ context.Context, _ bun.IDB, questionID uuid.UUID) (*predictionsdb.BonusQuestion, error) {
	q, ok := f.Questions[questionID]
	if !ok {
		return nil, predictionsdb.ErrNotFound
	}
	return &q, nil
}

func (f *FakeRepo) UpsertPrediction(ctx context.Context, _ bun.IDB, p *predictionsdb.Prediction) error {
	if f.UpsertPredictionFunc != nil {
		return f.UpsertPredictionFunc(ctx, p)
	}
	key := [2]uuid.UUID{p.MemberID, p.MatchID}
	if existing, ok := f.Predictions[key]; ok {
		p.ID = existing.ID
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.Predictions[key] = *p
	return nil
}

func (f *FakeRepo) UpsertBonusAnswer(_ context.Context, _ bun.IDB, a *predictionsdb.BonusAnswer) error {
	key := [2]uuid.UUID{a.MemberID, a.QuestionID}
	if existing, ok := f.Answers[key]; ok {
		a.ID = existing.ID
	} else if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.Answers[key] = *a
	return nil
}

type publishedEvent struct {
	topic   string
	payload any
}

type FakePublisher struct {
	PublishFunc func(ctx context.Context, topic string, payload any) error
	events      []publishedEvent
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.events = append(f.events, publishedEvent{topic: topic, payload: payload})
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, payload)
	}
	return nil
}

var (
	kickoff = time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	before  = kickoff.Add(-2 * time.Hour)
)

type fixture struct {
	repo       *FakeRepo
	pub        *FakePublisher
	tournament uuid.UUID
	member     predictionsdb.Member
	match      predictionsdb.Match
	knockout   predictionsdb.Match
	question   predictionsdb.BonusQuestion
}

func newFixture() fixture {
	f := fixture{repo: NewFakeRepo(), pub: &FakePublisher{}, tournament: uuid.New()}

	f.member = predictionsdb.Member{ID: uuid.New(), RoomID: uuid.New(), Username: "Alice", TournamentID: f.tournament}
	f.match = predictionsdb.Match{ID: uuid.New(), TournamentID: f.tournament, StartsAt: kickoff, AllowDraw: true}
	f.knockout = predictionsdb.Match{ID: uuid.New(), TournamentID: f.tournament, StartsAt: kickoff.Add(24 * time.Hour), AllowDraw: false}
	f.question = predictionsdb.BonusQuestion{
		ID: uuid.New(), MatchID: f.match.ID, Type: "choice", Points: 5, ClosesAt: kickoff,
		ChoiceOptions: []string{"Messi", "Mbappé"}, TournamentID: f.tournament,
	}

	f.repo.Members[f.member.ID] = f.member
	f.repo.Matches[f.match.ID] = f.match
	f.repo.Matches[f.knockout.ID] = f.knockout
	f.repo.Questions[f.question.ID] = f.question
	return f
}

func (f fixture) service(now time.Time) *PredictionsService {
	s := NewPredictionsService(nil, f.repo, f.pub, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NoOp{}, noop.NewTracerProvider().Tracer("test"))
	s.now = func() time.Time { return now }
	return s
}

func TestSubmitPrediction(t *testing.T) {
	owner := authdomain.Principal{Username: "alice", Role: authdomain.RoleMember}

	tests := []struct {
		name      string
		principal authdomain.Principal
		now       time.Time
		member    func(f fixture) uuid.UUID
		match     func(f fixture) uuid.UUID
		pick      string
		wantErr   error
		wantPick  string
	}{
		{name: "owner before kick-off", principal: owner, now: before, pick: "1", wantPick: "1"},
		{name: "lower-case draw", principal: owner, now: before, pick: "x", wantPick: "X"},
		{name: "at kick-off", principal: owner, now: kickoff, pick: "1", wantErr: predictionsdomain.ErrMatchLocked},
		{name: "someone else's membership", principal: authdomain.Principal{Username: "bob"}, now: before, pick: "1", wantErr: ErrForbidden},
		{name: "admins cannot pick for members", principal: authdomain.Principal{Username: "referee", Role: authdomain.RoleAdmin}, now: before, pick: "1", wantErr: ErrForbidden},
		{name: "anonymous", now: before, pick: "1", wantErr: ErrForbidden},
		{name: "invalid pick", principal: owner, now: before, pick: "3", wantErr: predictionsdomain.ErrInvalidPick},
		{
			name: "draw in knockout", principal: owner, now: before, pick: "X", wantErr: predictionsdomain.ErrDrawNotAllowed,
			match: func(f fixture) uuid.UUID { return f.knockout.ID },
		},
		{
			name: "unknown member", principal: owner, now: before, pick: "1", wantErr: ErrMemberNotFound,
			member: func(fixture) uuid.UUID { return uuid.New() },
		},
		{
			name: "unknown match", principal: owner, now: before, pick: "1", wantErr: ErrMatchNotFound,
			match: func(fixture) uuid.UUID { return uuid.New() },
		},
		{
			name: "match of another tournament", principal: owner, now: before, pick: "1", wantErr: ErrMatchNotFound,
			match: func(f fixture) uuid.UUID {
				other := predictionsdb.Match{ID: uuid.New(), TournamentID: uuid.New(), StartsAt: kickoff, AllowDraw: true}
				f.repo.Matches[other.ID] = other
				return other.ID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			memberID, matchID := f.member.ID, f.match.ID
			if tt.member != nil {
				memberID = tt.member(f)
			}
			if tt.match != nil {
				matchID = tt.match(f)
			}

			got, err := f.service(tt.now).SubmitPrediction(context.Background(), tt.principal, memberID, matchID, tt.pick)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.repo.Predictions)
				assert.Empty(t, f.pub.events)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPick, got.Pick)
			assert.Equal(t, tt.now, got.UpdatedAt)

			stored := f.repo.Predictions[[2]uuid.UUID{memberID, matchID}]
			assert.Equal(t, tt.wantPick, stored.Pick)

			require.Len(t, f.pub.events, 1)
			assert.Equal(t, predictionsevents.PredictionSubmittedTopic, f.pub.events[0].topic)
			assert.Equal(t, predictionsevents.PredictionSubmittedPayload{
				MemberID:    memberID,
				MatchID:     matchID,
				Pick:        leaderboarddomain.Outcome(tt.wantPick),
				SubmittedBy: tt.principal.Username,
				SubmittedAt: tt.now,
			}, f.pub.events[0].payload)
		})
	}
}

func TestSubmitPredictionLastWriteWins(t *testing.T) {
	f := newFixture()
	s := f.service(before)
	owner := authdomain.Principal{Username: "ALICE"}

	first, err := s.SubmitPrediction(context.Background(), owner, f.member.ID, f.match.ID, "1")
	require.NoError(t, err)

	s.now = func() time.Time { return before.Add(time.Minute) }
	second, err := s.SubmitPrediction(context.Background(), owner, f.member.ID, f.match.ID, "2")
	require.NoError(t, err)

	require.Len(t, f.repo.Predictions, 1)
	stored := f.repo.Predictions[[2]uuid.UUID{f.member.ID, f.match.ID}]
	assert.Equal(t, "2", stored.Pick)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestSubmitPredictionResultLocksEarly(t *testing.T) {
	f := newFixture()
	decided := f.match
	result := "1"
	decided.Result = &result
	f.repo.Matches[decided.ID] = decided

	_, err := f.service(before).SubmitPrediction(context.Background(), authdomain.Principal{Username: "alice"}, f.member.ID, f.match.ID, "1")
	assert.ErrorIs(t, err, predictionsdomain.ErrMatchLocked)
}

func TestSubmitPredictionInfrastructureErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("member lookup", func(t *testing.T) {
		f := newFixture()
		f.repo.GetMemberFunc = func(context.Context, uuid.UUID) (*predictionsdb.Member, error) { return nil, boom }

		_, err := f.service(before).SubmitPrediction(context.Background(), authdomain.Principal{Username: "alice"}, f.member.ID, f.match.ID, "1")
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "SubmitPrediction: ")
	})

	t.Run("write", func(t *testing.T) {
		f := newFixture()
		f.repo.UpsertPredictionFunc = func(context.Context, *predictionsdb.Prediction) error { return boom }

		_, err := f.service(before).SubmitPrediction(context.Background(), authdomain.Principal{Username: "alice"}, f.member.ID, f.match.ID, "1")
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, f.pub.events)
	})
}

func TestSubmitPredictionToleratesPublishFailure(t *testing.T) {
	f := newFixture()
	f.pub.PublishFunc = func(context.Context, string, any) error { return errors.New("nats down") }

	got, err := f.service(before).SubmitPrediction(context.Background(), authdomain.Principal{Username: "alice"}, f.member.ID, f.match.ID, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Pick)
}

func TestSubmitBonusAnswer(t *testing.T) {
	owner := authdomain.Principal{Username: "alice"}
	choice := func(s string) predictionsdomain.Answer { return predictionsdomain.Answer{Choice: &s} }

	tests := []struct {
		name    string
		now     time.Time
		answer  predictionsdomain.Answer
		setup   func(f *fixture) uuid.UUID
		wantErr error
	}{
		{name: "listed option", now: before, answer: choice("Messi")},
		{name: "closed at kick-off", now: kickoff, answer: choice("Messi"), wantErr: predictionsdomain.ErrBonusClosed},
		{name: "unlisted option", now: before, answer: choice("Kane"), wantErr: predictionsdomain.ErrInvalidAnswer},
		{name: "number for a choice question", now: before, answer: predictionsdomain.Answer{Number: new(float64)}, wantErr: predictionsdomain.ErrInvalidAnswer},
		{
			name: "unknown question", now: before, answer: choice("Messi"), wantErr: ErrQuestionNotFound,
			setup: func(*fixture) uuid.UUID { return uuid.New() },
		},
		{
			name: "question of another tournament", now: before, answer: choice("Messi"), wantErr: ErrQuestionNotFound,
			setup: func(f *fixture) uuid.UUID {
				q := f.question
				q.ID = uuid.New()
				q.TournamentID = uuid.New()
				f.repo.Questions[q.ID] = q
				return q.ID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			questionID := f.question.ID
			if tt.setup != nil {
				questionID = tt.setup(&f)
			}

			got, err := f.service(tt.now).SubmitBonusAnswer(context.Background(), owner, f.member.ID, questionID, tt.answer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.repo.Answers)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.Choice)
			assert.Equal(t, "Messi", *got.Choice)
			assert.Nil(t, got.Number)

			require.Len(t, f.pub.events, 1)
			assert.Equal(t, predictionsevents.BonusAnswerSubmittedTopic, f.pub.events[0].topic)
		})
	}
}

func TestSubmitBonusAnswerNumberQuestion(t *testing.T) {
	f := newFixture()
	q := predictionsdb.BonusQuestion{ID: uuid.New(), MatchID: f.match.ID, Type: "number", Points: 3, ClosesAt: kickoff, TournamentID: f.tournament}
	f.repo.Questions[q.ID] = q
	goals := 3.0

	got, err := f.service(before).SubmitBonusAnswer(context.Background(), authdomain.Principal{Username: "alice"}, f.member.ID, q.ID, predictionsdomain.Answer{Number: &goals})
	require.NoError(t, err)
	require.NotNil(t, got.Number)
	assert.Equal(t, 3.0, *got.Number)

	stored := f.repo.Answers[[2]uuid.UUID{f.member.ID, q.ID}]
	assert.Equal(t, &goals, stored.AnswerNumber)
}

// Repeated submissions for the same key never create a second row.
func TestSubmitPredictionIdempotentUnderRandomPicks(t *testing.T) {
	faker := gofakeit.New(7)
	f := newFixture()
	s := f.service(before)
	owner := authdomain.Principal{Username: "alice"}

	var last string
	for range 50 {
		pick := faker.RandomString([]string{"1", "X", "2"})
		_, err := s.SubmitPrediction(context.Background(), owner, f.member.ID, f.match.ID, pick)
		require.NoError(t, err)
		last = pick
	}

	require.Len(t, f.repo.Predictions, 1)
	assert.Equal(t, last, f.repo.Predictions[[2]uuid.UUID{f.member.ID, f.match.ID}].Pick)
}
