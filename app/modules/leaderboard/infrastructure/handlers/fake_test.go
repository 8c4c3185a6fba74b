package leaderboardhandlers

import (
	"context"

	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboardqueue "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/queue"
	"github.com/google/uuid"
)

// FakeService is a programmable leaderboardservice.Service.
type FakeService struct {
	GetLeaderboardFunc         func(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.LeaderboardResult, error)
	ExportLeaderboardFunc      func(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.Export, error)
	RenderLeaderboardChartFunc func(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.Export, error)
	ReconcileFunc              func(ctx context.Context, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (*leaderboardservice.ReconcileResult, error)
	ReconcileAllFunc           func(ctx context.Context, principal authdomain.Principal, mode leaderboarddomain.Mode) ([]leaderboardservice.ReconcileResult, error)

	Principals []authdomain.Principal
}

var _ leaderboardservice.Service = (*FakeService)(nil)

func (f *FakeService) GetLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.LeaderboardResult, error) {
	f.Principals = append(f.Principals, principal)
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, principal, roomID, opts)
	}
	return &leaderboardservice.LeaderboardResult{RoomID: roomID}, nil
}

func (f *FakeService) ExportLeaderboard(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.Export, error) {
	f.Principals = append(f.Principals, principal)
	if f.ExportLeaderboardFunc != nil {
		return f.ExportLeaderboardFunc(ctx, principal, roomID, opts)
	}
	return &leaderboardservice.Export{Filename: "room.xlsx", ContentType: leaderboardservice.XLSXContentType, Data: []byte("xlsx")}, nil
}

func (f *FakeService) RenderLeaderboardChart(ctx context.Context, principal authdomain.Principal, roomID uuid.UUID, opts leaderboardservice.LeaderboardOptions) (*leaderboardservice.Export, error) {
	f.Principals = append(f.Principals, principal)
	if f.RenderLeaderboardChartFunc != nil {
		return f.RenderLeaderboardChartFunc(ctx, principal, roomID, opts)
	}
	return &leaderboardservice.Export{Filename: "room.png", ContentType: leaderboardservice.PNGContentType, Data: []byte("png")}, nil
}

func (f *FakeService) Reconcile(ctx context.Context, principal authdomain.Principal, tournamentID uuid.UUID, mode leaderboarddomain.Mode) (*leaderboardservice.ReconcileResult, error) {
	f.Principals = append(f.Principals, principal)
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, principal, tournamentID, mode)
	}
	return &leaderboardservice.ReconcileResult{TournamentID: tournamentID, Mode: mode}, nil
}

func (f *FakeService) ReconcileAll(ctx context.Context, principal authdomain.Principal, mode leaderboarddomain.Mode) ([]leaderboardservice.ReconcileResult, error) {
	f.Principals = append(f.Principals, principal)
	if f.ReconcileAllFunc != nil {
		return f.ReconcileAllFunc(ctx, principal, mode)
	}
	return nil, nil
}

// FakeQueue records enqueued reconciliations.
type FakeQueue struct {
	EnqueueReconcileFunc func(ctx context.Context, tournamentID uuid.UUID, mode leaderboarddomain.Mode, requestedBy string) (int64, error)
	GetJobFunc           func(ctx context.Context, id int64) (*leaderboardqueue.JobInfo, error)

	Enqueued []leaderboardqueue.ReconcileJob
}

func (f *FakeQueue) EnqueueReconcile(ctx context.Context, tournamentID uuid.UUID, mode leaderboarddomain.Mode, requestedBy string) (int64, error) {
	f.Enqueued = append(f.Enqueued, leaderboardqueue.ReconcileJob{TournamentID: tournamentID, Mode: mode, RequestedBy: requestedBy})
	if f.EnqueueReconcileFunc != nil {
		return f.EnqueueReconcileFunc(ctx, tournamentID, mode, requestedBy)
	}
	return int64(len(f.Enqueued)), nil
}

func (f *FakeQueue) GetJob(ctx context.Context, id int64) (*leaderboardqueue.JobInfo, error) {
	if f.GetJobFunc != nil {
		return f.GetJobFunc(ctx, id)
	}
	return nil, leaderboardqueue.ErrJobNotFound
}
