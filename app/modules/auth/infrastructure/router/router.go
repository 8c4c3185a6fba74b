package authrouter

import (
	authhandlers "github.com/Black-And-White-Club/tipster/app/modules/auth/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the token endpoint on the authenticated api router.
func RegisterRoutes(api chi.Router, h authhandlers.Handlers) {
	api.Group(func(r chi.Router) {
		r.Use(authhandlers.RequireAdmin)
		r.Post("/admin/tokens", h.HandleIssueToken)
	})
}
