package leaderboardservice

import (
	"context"
	"sync"

	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Leaderboard Repo
// ------------------------

// FakeLeaderboardRepo serves canned rows and records every call in order.
// A nil XxxFunc falls back to the matching slice field.
type FakeLeaderboardRepo struct {
	trace []string

	Tournaments []leaderboarddb.Tournament
	Rooms       []leaderboarddb.Room
	Members     []leaderboarddb.RoomMember
	Matches     []leaderboarddb.Match
	Predictions []leaderboarddb.Prediction
	Questions   []leaderboarddb.BonusQuestion
	Answers     []leaderboarddb.BonusAnswer

	WrittenPredictions []leaderboarddb.Prediction
	WrittenAnswers     []leaderboarddb.BonusAnswer

	GetTournamentFunc             func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*leaderboarddb.Tournament, error)
	ListTournamentsFunc           func(ctx context.Context, db bun.IDB) ([]leaderboarddb.Tournament, error)
	GetRoomFunc                   func(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*leaderboarddb.Room, error)
	ListRoomMembersFunc           func(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]leaderboarddb.RoomMember, error)
	ListPredictionsFunc           func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.Prediction, error)
	UpsertPredictionsFunc         func(ctx context.Context, db bun.IDB, predictions []leaderboarddb.Prediction) error
	InsertMissingPredictionsFunc  func(ctx context.Context, db bun.IDB, predictions []leaderboarddb.Prediction) (int, error)
	UpsertBonusAnswersFunc        func(ctx context.Context, db bun.IDB, answers []leaderboarddb.BonusAnswer) error
	InsertMissingBonusAnswersFunc func(ctx context.Context, db bun.IDB, answers []leaderboarddb.BonusAnswer) (int, error)
}

func NewFakeLeaderboardRepo() *FakeLeaderboardRepo {
	return &FakeLeaderboardRepo{trace: []string{}}
}

func (f *FakeLeaderboardRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the methods called, in order.
func (f *FakeLeaderboardRepo) Trace() []string {
	return f.trace
}

func (f *FakeLeaderboardRepo) GetTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*leaderboarddb.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, tournamentID)
	}
	for i := range f.Tournaments {
		if f.Tournaments[i].ID == tournamentID {
			t := f.Tournaments[i]
			return &t, nil
		}
	}
	return nil, leaderboarddb.ErrNotFound
}

func (f *FakeLeaderboardRepo) ListTournaments(ctx context.Context, db bun.IDB) ([]leaderboarddb.Tournament, error) {
	f.record("ListTournaments")
	if f.ListTournamentsFunc != nil {
		return f.ListTournamentsFunc(ctx, db)
	}
	return f.Tournaments, nil
}

func (f *FakeLeaderboardRepo) GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*leaderboarddb.Room, error) {
	f.record("GetRoom")
	if f.GetRoomFunc != nil {
		return f.GetRoomFunc(ctx, db, roomID)
	}
	for i := range f.Rooms {
		if f.Rooms[i].ID == roomID {
			r := f.Rooms[i]
			return &r, nil
		}
	}
	return nil, leaderboarddb.ErrNotFound
}

func (f *FakeLeaderboardRepo) ListRoomMembers(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]leaderboarddb.RoomMember, error) {
	f.record("ListRoomMembers")
	if f.ListRoomMembersFunc != nil {
		return f.ListRoomMembersFunc(ctx, db, roomID)
	}
	var out []leaderboarddb.RoomMember
	for _, m := range f.Members {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeLeaderboardRepo) ListTournamentMembers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.RoomMember, error) {
	f.record("ListTournamentMembers")
	var out []leaderboarddb.RoomMember
	for _, m := range f.Members {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeLeaderboardRepo) ListMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.Match, error) {
	f.record("ListMatches")
	var out []leaderboarddb.Match
	for _, m := range f.Matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeLeaderboardRepo) ListPredictions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.Prediction, error) {
	f.record("ListPredictions")
	if f.ListPredictionsFunc != nil {
		return f.ListPredictionsFunc(ctx, db, tournamentID)
	}
	return f.Predictions, nil
}

func (f *FakeLeaderboardRepo) ListBonusQuestions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.BonusQuestion, error) {
	f.record("ListBonusQuestions")
	return f.Questions, nil
}

func (f *FakeLeaderboardRepo) ListBonusAnswers(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]leaderboarddb.BonusAnswer, error) {
	f.record("ListBonusAnswers")
	return f.Answers, nil
}

func (f *FakeLeaderboardRepo) UpsertPredictions(ctx context.Context, db bun.IDB, predictions []leaderboarddb.Prediction) error {
	f.record("UpsertPredictions")
	if f.UpsertPredictionsFunc != nil {
		return f.UpsertPredictionsFunc(ctx, db, predictions)
	}
	f.WrittenPredictions = append(f.WrittenPredictions, predictions...)
	return nil
}

func (f *FakeLeaderboardRepo) InsertMissingPredictions(ctx context.Context, db bun.IDB, predictions []leaderboarddb.Prediction) (int, error) {
	f.record("InsertMissingPredictions")
	if f.InsertMissingPredictionsFunc != nil {
		return f.InsertMissingPredictionsFunc(ctx, db, predictions)
	}
	f.WrittenPredictions = append(f.WrittenPredictions, predictions...)
	return len(predictions), nil
}

func (f *FakeLeaderboardRepo) UpsertBonusAnswers(ctx context.Context, db bun.IDB, answers []leaderboarddb.BonusAnswer) error {
	f.record("UpsertBonusAnswers")
	if f.UpsertBonusAnswersFunc != nil {
		return f.UpsertBonusAnswersFunc(ctx, db, answers)
	}
	f.WrittenAnswers = append(f.WrittenAnswers, answers...)
	return nil
}

func (f *FakeLeaderboardRepo) InsertMissingBonusAnswers(ctx context.Context, db bun.IDB, answers []leaderboarddb.BonusAnswer) (int, error) {
	f.record("InsertMissingBonusAnswers")
	if f.InsertMissingBonusAnswersFunc != nil {
		return f.InsertMissingBonusAnswersFunc(ctx, db, answers)
	}
	f.WrittenAnswers = append(f.WrittenAnswers, answers...)
	return len(answers), nil
}

var _ leaderboarddb.Repository = (*FakeLeaderboardRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent

	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func (p *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	if p.PublishFunc != nil {
		return p.PublishFunc(ctx, topic, payload)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (p *FakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
