package predictions

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/tipster/app/eventbus"
	predictionsservice "github.com/Black-And-White-Club/tipster/app/modules/predictions/application"
	predictionshandlers "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/handlers"
	predictionsdb "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/repositories"
	predictionsrouter "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/router"
	"github.com/Black-And-White-Club/tipster/app/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the predictions module.
type Module struct {
	PredictionsService predictionsservice.Service
	Handlers           predictionshandlers.Handlers

	logger *slog.Logger
}

// NewPredictionsModule creates a new instance of the Predictions module.
// A nil bus disables submission events.
func NewPredictionsModule(
	ctx context.Context,
	obs *observability.Observability,
	db *bun.DB,
	bus *eventbus.EventBus,
) *Module {
	logger := obs.Logger.With("module", "predictions")
	tracer := obs.Tracer("predictions")

	logger.InfoContext(ctx, "predictions.NewPredictionsModule called")

	var publisher eventbus.Publisher
	if bus != nil {
		publisher = bus
	}

	repo := predictionsdb.NewRepository(db)
	service := predictionsservice.NewPredictionsService(db, repo, publisher, logger, obs.Metrics, tracer)

	return &Module{
		PredictionsService: service,
		Handlers:           predictionshandlers.NewPredictionsHandlers(service, logger, tracer),
		logger:             logger,
	}
}

// RegisterRoutes mounts the module's HTTP endpoints on the authenticated api router.
func (m *Module) RegisterRoutes(api chi.Router) {
	predictionsrouter.RegisterRoutes(api, m.Handlers)
}
