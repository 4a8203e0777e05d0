package services

import (
	"github.com/ghuser/appdirectory/pkg/app"
	"github.com/ghuser/appdirectory/pkg/cache"
	"github.com/ghuser/appdirectory/services/application/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Application *ApplicationService
}

// New wires all application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewApplicationRepository(a.Db, a.EventBus)

	var searchCache SearchCache
	if sc := cache.NewSearchCache(a.Redis, a.Config.SearchCacheTTL); sc != nil {
		searchCache = sc
	}
	return &Services{
		Application: NewApplicationService(repo, searchCache, a.Logger),
	}
}
