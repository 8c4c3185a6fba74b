package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tipster/app/eventbus"
	"github.com/Black-And-White-Club/tipster/app/modules/auth"
	"github.com/Black-And-White-Club/tipster/app/modules/leaderboard"
	"github.com/Black-And-White-Club/tipster/app/modules/predictions"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// App holds the shared infrastructure and the feature modules.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server

	AuthModule        *auth.Module
	LeaderboardModule *leaderboard.Module
	PredictionsModule *predictions.Module

	wg sync.WaitGroup
}

// Initialize connects the database and event bus and builds every module.
func (app *App) Initialize(ctx context.Context, cfg *config.Config, obs *observability.Observability) error {
	app.Config = cfg
	app.Observability = obs
	logger := obs.Logger

	db, err := NewDB(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	app.DB = db

	bus, err := eventbus.New(eventbus.Config{
		NATSURL:          cfg.NATS.URL,
		NKeySeed:         cfg.NATS.NKeySeed,
		DisableJetStream: cfg.NATS.DisableJetStream,
		QueueGroup:       cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router

	if err := app.initializeModules(ctx); err != nil {
		return err
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.InfoContext(ctx, "Application initialized", attr.String("addr", cfg.HTTP.Addr))
	return nil
}

func (app *App) initializeModules(ctx context.Context) error {
	app.AuthModule = auth.NewModule(ctx, app.Config, app.Observability)

	leaderboardModule, err := leaderboard.NewLeaderboardModule(ctx, app.Config, app.Observability, app.DB, app.EventBus, app.Router)
	if err != nil {
		return fmt.Errorf("failed to initialize leaderboard module: %w", err)
	}
	app.LeaderboardModule = leaderboardModule

	app.PredictionsModule = predictions.NewPredictionsModule(ctx, app.Observability, app.DB, app.EventBus)
	return nil
}

// Run starts the message router, background modules and HTTP server, and
// blocks until ctx is cancelled or the server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()
	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("message router stopped during startup: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	app.wg.Add(1)
	go app.LeaderboardModule.Run(ctx, &app.wg)

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown requested")
		return nil
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	}
}

// Close shuts everything down in reverse start order. It is safe to call
// after a partial Initialize.
func (app *App) Close() error {
	var errs []error

	if app.HTTPServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		errs = append(errs, app.HTTPServer.Shutdown(shutdownCtx))
		cancel()
	}
	if app.LeaderboardModule != nil {
		errs = append(errs, app.LeaderboardModule.Close())
	}
	app.wg.Wait()

	if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}

	return errors.Join(errs...)
}
