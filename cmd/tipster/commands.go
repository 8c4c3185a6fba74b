package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Black-And-White-Club/tipster/app"
	authservice "github.com/Black-And-White-Club/tipster/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/tipster/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/jwt"
	leaderboardservice "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/tipster/app/modules/leaderboard/infrastructure/repositories"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/Black-And-White-Club/tipster/config"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// withLeaderboardService runs fn against a service backed by the configured
// database. Events are not published from one-shot commands.
func withLeaderboardService(c *cli.Context, fn func(*config.Config, leaderboardservice.Service) error) error {
	cfg, obs, err := setup(c)
	if err != nil {
		return err
	}
	db, err := app.NewDB(c.Context, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cfg, newLeaderboardService(db, obs))
}

func newLeaderboardService(db *bun.DB, obs *observability.Observability) leaderboardservice.Service {
	return leaderboardservice.NewLeaderboardService(db, leaderboarddb.NewRepository(db), nil, obs.Logger, obs.Metrics, obs.Tracer("cli"))
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print a room leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "room", Required: true, Usage: "room id"},
			&cli.StringFlag{Name: "as-of", Usage: `RFC 3339 time, date or phrase such as "last friday"`},
			&cli.StringFlag{Name: "format", Value: "table", Usage: "json or table"},
		},
		Action: func(c *cli.Context) error {
			roomID, err := uuid.Parse(c.String("room"))
			if err != nil {
				return fmt.Errorf("invalid room id: %w", err)
			}
			format := c.String("format")
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown format %q", format)
			}

			return withLeaderboardService(c, func(cfg *config.Config, svc leaderboardservice.Service) error {
				asOf, err := leaderboardservice.ParseAsOf(c.String("as-of"), time.Now(), cfg.Location())
				if err != nil {
					return err
				}
				lb, err := svc.GetLeaderboard(c.Context, authdomain.SystemPrincipal(), roomID, leaderboardservice.LeaderboardOptions{AsOf: asOf})
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(c.App.Writer, lb)
				}
				return writeLeaderboardTable(c.App.Writer, lb)
			})
		},
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "copy predictions between accounts that share a username",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tournament", Usage: "tournament id; every tournament when omitted"},
			&cli.StringFlag{Name: "mode", Value: string(leaderboarddomain.ModeFillOnly), Usage: "fill or overwrite"},
		},
		Action: func(c *cli.Context) error {
			mode, err := leaderboarddomain.ParseMode(c.String("mode"))
			if err != nil {
				return err
			}
			var tournamentID uuid.UUID
			if raw := c.String("tournament"); raw != "" {
				if tournamentID, err = uuid.Parse(raw); err != nil {
					return fmt.Errorf("invalid tournament id: %w", err)
				}
			}

			return withLeaderboardService(c, func(_ *config.Config, svc leaderboardservice.Service) error {
				principal := authdomain.SystemPrincipal()
				if tournamentID == uuid.Nil {
					results, err := svc.ReconcileAll(c.Context, principal, mode)
					for i := range results {
						writeReconcileLine(c.App.Writer, &results[i])
					}
					return err
				}
				res, err := svc.Reconcile(c.Context, principal, tournamentID, mode)
				if err != nil {
					return err
				}
				writeReconcileLine(c.App.Writer, res)
				return nil
			})
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "username the token is issued to"},
			&cli.StringFlag{Name: "role", Value: string(authdomain.RoleMember), Usage: "member or admin"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime; the configured default when omitted"},
		},
		Action: func(c *cli.Context) error {
			cfg, obs, err := setup(c)
			if err != nil {
				return err
			}
			svc := authservice.NewService(authjwt.NewProvider(cfg.JWT.Secret), authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL}, obs.Logger, obs.Tracer("cli"))
			res, err := svc.IssueToken(c.Context, authdomain.SystemPrincipal(), authservice.TokenRequest{
				Username: c.String("user"),
				Role:     authdomain.Role(c.String("role")),
				TTL:      c.Duration("ttl"),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, res.Token)
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
