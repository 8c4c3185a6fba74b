package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tipster/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboardhandlers "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/handlers"
	leaderboardqueue "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/queue"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	leaderboardrouter "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/router"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the leaderboard module.
type Module struct {
	LeaderboardService leaderboardservice.Service
	LeaderboardRouter  *leaderboardrouter.LeaderboardRouter
	Handlers           leaderboardhandlers.Handlers
	// QueueService is nil when background jobs are disabled.
	QueueService leaderboardqueue.QueueService

	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewLeaderboardModule creates a new instance of the Leaderboard module.
func NewLeaderboardModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	bus *eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger.With("module", "leaderboard")
	tracer := obs.Tracer("leaderboard")

	logger.InfoContext(ctx, "leaderboard.NewLeaderboardModule called")

	repo := leaderboarddb.NewRepository(db)
	service := leaderboardservice.NewLeaderboardService(db, repo, bus, logger, obs.Metrics, tracer)

	module := &Module{
		LeaderboardService: service,
		logger:             logger,
	}

	var queue leaderboardhandlers.Queue
	if cfg.Queue.Enabled {
		qs, err := leaderboardqueue.NewService(ctx, leaderboardqueue.Config{
			DSN:           cfg.Postgres.DSN,
			MaxWorkers:    cfg.Queue.MaxWorkers,
			SweepInterval: cfg.Queue.ReconcileInterval,
		}, logger, obs.Metrics, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create leaderboard queue: %w", err)
		}
		module.QueueService = qs
		queue = qs
	}

	module.Handlers = leaderboardhandlers.NewLeaderboardHandlers(service, queue, logger, tracer, cfg.Location())

	module.LeaderboardRouter = leaderboardrouter.NewLeaderboardRouter(logger, router, bus.Subscriber(), tracer, obs.Registry)
	if err := module.LeaderboardRouter.Configure(ctx, module.Handlers); err != nil {
		return nil, fmt.Errorf("failed to configure leaderboard router: %w", err)
	}

	return module, nil
}

// RegisterRoutes mounts the module's HTTP endpoints on the authenticated api router.
func (m *Module) RegisterRoutes(api chi.Router) {
	leaderboardrouter.RegisterRoutes(api, m.Handlers)
}

// Run starts the background queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting leaderboard module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Leaderboard queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Leaderboard module goroutine stopped")
}

// Close stops the leaderboard module and cleans up resources.
func (m *Module) Close() error {
	m.logger.Info("Stopping leaderboard module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var errs []error
	if m.QueueService != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		errs = append(errs, m.QueueService.Stop(stopCtx))
	}

	m.logger.Info("Leaderboard module stopped")
	return errors.Join(errs...)
}
