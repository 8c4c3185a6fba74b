package leaderboardqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/app/observability/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const metricsService = "river"

// ErrJobNotFound is returned by GetJob for an unknown id.
var ErrJobNotFound = errors.New("job not found")

// QueueService defines the contract for background reconciliation.
type QueueService interface {
	// EnqueueReconcile queues a reconciliation and returns the job id. A
	// matching job that has not finished yet is reused.
	EnqueueReconcile(ctx context.Context, tournamentID uuid.UUID, mode leaderboarddomain.Mode, requestedBy string) (int64, error)
	// GetJob reports the state of a queued job.
	GetJob(ctx context.Context, id int64) (*JobInfo, error)
	// HealthCheck verifies the queue's database is reachable.
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config tunes the River client.
type Config struct {
	DSN        string
	MaxWorkers int
	// SweepInterval schedules a fill-only reconciliation of every tournament.
	// Zero disables the sweep.
	SweepInterval time.Duration
}

// Service runs reconciliation jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// pendingStates lets a finished job be queued again while deduplicating
// requests that are still waiting or running.
var pendingStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateRunning,
	rivertype.JobStateScheduled,
}

// NewService creates a River-backed queue for leaderboard reconciliation.
func NewService(ctx context.Context, cfg Config, logger *slog.Logger, m metrics.OperationMetrics, reconciler Reconciler) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NoOp{}
	}
	ctxLogger := logger.With(
		attr.String("operation", "new_leaderboard_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", metricsService)
	fail := func(msg string, err error) error {
		ctxLogger.Error(msg, attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return fmt.Errorf("%s: %w", msg, err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fail("failed to parse DSN", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fail("failed to create pgx pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fail("failed to ping database", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileWorker(ctxLogger, reconciler))
	river.AddWorker(workers, NewReconcileAllWorker(ctxLogger, reconciler))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	riverConfig := &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
			QueueName:          {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	}
	if cfg.SweepInterval > 0 {
		riverConfig.PeriodicJobs = []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.SweepInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ReconcileAllJob{Mode: leaderboarddomain.ModeFillOnly}, &river.InsertOpts{Queue: QueueName}
				},
				nil,
			),
		}
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig)
	if err != nil {
		pool.Close()
		return nil, fail("failed to create River client", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	m.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.Info("Leaderboard queue service initialized",
		attr.Int("max_workers", maxWorkers),
		attr.Duration("sweep_interval", cfg.SweepInterval),
	)

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: m}, nil
}

// Start starts working the leaderboard queue.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.logger.Info("Leaderboard queue service started")
	return nil
}

// Stop waits for running jobs to finish and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.logger.Info("Leaderboard queue service stopped")
	return nil
}

// EnqueueReconcile queues a reconciliation for tournamentID.
func (s *Service) EnqueueReconcile(ctx context.Context, tournamentID uuid.UUID, mode leaderboarddomain.Mode, requestedBy string) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_reconcile", metricsService)

	ctxLogger := s.logger.With(
		attr.ExtractCorrelationID(ctx),
		attr.TournamentID(tournamentID),
		attr.String("mode", string(mode)),
	)

	res, err := s.client.Insert(ctx, ReconcileJob{
		TournamentID: tournamentID,
		Mode:         mode,
		RequestedBy:  requestedBy,
	}, &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs:  true,
			ByState: pendingStates,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue reconcile job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_reconcile", metricsService)
		return 0, fmt.Errorf("failed to enqueue reconcile job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_reconcile", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_reconcile", metricsService, time.Since(start))
	ctxLogger.Info("Reconcile job enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}

// GetJob reports the state of a queued job.
func (s *Service) GetJob(ctx context.Context, id int64) (*JobInfo, error) {
	row, err := s.client.JobGet(ctx, id)
	if err != nil {
		if errors.Is(err, river.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return jobInfoFromRow(row), nil
}

// HealthCheck verifies the queue's database is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil || s.pool == nil {
		return errors.New("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

func jobInfoFromRow(row *rivertype.JobRow) *JobInfo {
	info := &JobInfo{
		ID:          row.ID,
		Kind:        row.Kind,
		State:       string(row.State),
		Attempt:     row.Attempt,
		MaxAttempts: row.MaxAttempts,
	}
	if !row.ScheduledAt.IsZero() {
		info.ScheduledAt = row.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return info
}
