package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/tipster/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler builds the root HTTP router. Everything under /api requires a
// bearer token.
func (app *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range app.AuthModule.Middleware() {
		r.Use(mw)
	}

	r.Get("/healthz", app.handleHealth)
	if app.Observability.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(app.AuthModule.Authenticate())
		app.AuthModule.RegisterRoutes(api)
		app.LeaderboardModule.RegisterRoutes(api)
		app.PredictionsModule.RegisterRoutes(api)
	})
	return r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if app.DB != nil {
		if err := app.DB.PingContext(ctx); err != nil {
			app.Observability.Logger.WarnContext(ctx, "Health check failed", attr.String("component", "postgres"), attr.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if q := app.LeaderboardModule.QueueService; q != nil {
		if err := q.HealthCheck(ctx); err != nil {
			app.Observability.Logger.WarnContext(ctx, "Health check failed", attr.String("component", "queue"), attr.Error(err))
			http.Error(w, "queue unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
