package predictionsrouter

import (
	predictionshandlers "github.com/Black-And-White-Club/tipster/app/modules/predictions/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the submission endpoints on the authenticated api router.
// Ownership of the membership is checked by the service.
func RegisterRoutes(api chi.Router, h predictionshandlers.Handlers) {
	api.Route("/members/{memberID}", func(r chi.Router) {
		r.Put("/predictions/{matchID}", h.HandleSubmitPrediction)
		r.Put("/bonus/{questionID}", h.HandleSubmitBonusAnswer)
	})
}
