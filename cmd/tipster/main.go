package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/tipster/app"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/Black-And-White-Club/tipster/config"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "tipster",
		Usage: "prediction pool leaderboards",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file", EnvVars: []string{"TIPSTER_CONFIG"}},
		},
		Commands: []*cli.Command{
			serveCommand(),
			leaderboardCommand(),
			reconcileCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API, event router and background queue",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, obs, err := setup(c)
			if err != nil {
				return err
			}

			application := &app.App{}
			if err := application.Initialize(ctx, cfg, obs); err != nil {
				_ = application.Close()
				return err
			}

			runErr := application.Run(ctx)
			if err := application.Close(); err != nil {
				obs.Logger.Error("Shutdown finished with errors", attr.Error(err))
			}
			obs.Logger.Info("Application shut down")
			return runErr
		},
	}
}

// setup loads the configuration and builds the shared telemetry handles.
func setup(c *cli.Context) (*config.Config, *observability.Observability, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	obs, err := observability.Init(observability.Config{
		Environment:    cfg.Observability.Environment,
		LogLevel:       cfg.Observability.LogLevel,
		MetricsEnabled: cfg.Observability.MetricsEnabled,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, obs, nil
}
