package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/appdirectory/pkg/app"
	"github.com/ghuser/appdirectory/services/application/application/handlers"
	appsvcs "github.com/ghuser/appdirectory/services/application/application/services"
)

// ApplicationRoutes registers application endpoints on the provided chi router.
func ApplicationRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a))
}

// Mount registers application endpoints backed by svcs. Tests use it to
// mount the routes over in-memory services.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	r.Route("/applications", func(r chi.Router) {
		r.Get("/", handlers.NewListApplicationsHandler(svcs).Execute)
		r.Post("/", handlers.NewPostApplicationHandler(svcs).Execute)
		r.Delete("/{id}", handlers.NewDeleteApplicationHandler(svcs).Execute)
	})
}
