package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	pkgcache "github.com/ghuser/appdirectory/pkg/cache"
	"github.com/ghuser/appdirectory/pkg/logger"
	pkgvalidator "github.com/ghuser/appdirectory/pkg/validator"
	appdomain "github.com/ghuser/appdirectory/services/application/domain"
	"github.com/ghuser/appdirectory/services/application/domain/models"
	"github.com/ghuser/appdirectory/services/application/domain/repositories"
	domainsvcs "github.com/ghuser/appdirectory/services/application/domain/services"
)

// SearchCache is the subset of pkgcache.SearchCache the service depends on.
type SearchCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, query string) ([]pkgcache.CachedApplication, error)
	Set(ctx context.Context, gen int64, query string, apps []pkgcache.CachedApplication) error
	Invalidate(ctx context.Context) error
}

// CreateApplicationInput is the decoded create payload. Field presence and
// types are checked by domainsvcs.ValidateCreatePayload before decoding.
type CreateApplicationInput struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Domains []string `json:"domains" validate:"required"`
}

// ApplicationService orchestrates search, creation and deletion of Applications.
// Event publishing is handled by the repository layer (outbox pattern).
// Searches are served from the Redis search cache when one is configured.
type ApplicationService struct {
	repo    repositories.ApplicationRepository
	cache   SearchCache
	log     logger.Logger
	metrics *counters
}

// NewApplicationService returns an ApplicationService. searchCache may be nil.
func NewApplicationService(repo repositories.ApplicationRepository, searchCache SearchCache, log logger.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, cache: searchCache, log: log, metrics: newCounters()}
}

// Search returns applications whose name contains query, ignoring case,
// ordered by name. Uses a read-through cache:
//  1. Read the current cache generation and look up the query under it.
//  2. On miss (or any cache error), query Postgres.
//  3. Store the result under the generation read in step 1.
//
// Cache failures are logged and never fail the search.
func (s *ApplicationService) Search(ctx context.Context, query string) ([]*models.Application, error) {
	gen, cacheOK := s.generation(ctx)
	if cacheOK {
		cached, err := s.cache.Get(ctx, gen, query)
		switch {
		case err == nil:
			s.metrics.searches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", true)))
			return fromCached(cached), nil
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "search cache read failed", "error", err)
		}
	}

	apps, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search applications: %w", err)
	}
	s.metrics.searches.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", false)))
	s.log.DebugContext(ctx, "applications searched", "query", query, "count", len(apps))

	if cacheOK {
		if err := s.cache.Set(ctx, gen, query, toCached(apps)); err != nil {
			s.log.WarnContext(ctx, "search cache write failed", "error", err)
		}
	}
	return apps, nil
}

// Create validates payload, persists the Application and returns it.
// Validation runs before any store access; failures wrap ErrInvalidApplication.
// The repository publishes ApplicationCreatedEvent.
func (s *ApplicationService) Create(ctx context.Context, payload []byte) (*models.Application, error) {
	if err := domainsvcs.ValidateCreatePayload(payload); err != nil {
		return nil, err
	}

	in, err := pkgvalidator.Decode[CreateApplicationInput](payload)
	if err != nil {
		if field, _, ok := pkgvalidator.FirstFieldError(err); ok {
			return nil, domainsvcs.MissingOrInvalidField(field)
		}
		return nil, fmt.Errorf("%w: %w", appdomain.ErrInvalidApplication, err)
	}

	app := models.NewApplication(in.ID, in.Name, in.Domains)
	if err := s.repo.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	s.metrics.created.Add(ctx, 1)
	s.invalidate(ctx)

	s.log.InfoContext(ctx, "application created", "application_id", app.ID)
	return app, nil
}

// Delete removes the Application with id. A missing id is a store failure.
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	s.metrics.deleted.Add(ctx, 1)
	s.invalidate(ctx)

	s.log.InfoContext(ctx, "application deleted", "application_id", id)
	return nil
}

// generation returns the current cache generation, or false when the cache
// is disabled or unreachable.
func (s *ApplicationService) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "search cache unavailable", "error", err)
		return 0, false
	}
	return gen, true
}

// invalidate bumps the cache generation before the write is acknowledged, so
// a search issued after a successful write never sees a pre-write result.
func (s *ApplicationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "search cache invalidation failed", "error", err)
	}
}

func toCached(apps []*models.Application) []pkgcache.CachedApplication {
	out := make([]pkgcache.CachedApplication, len(apps))
	for i, a := range apps {
		out[i] = pkgcache.CachedApplication{ID: a.ID, Name: a.Name, Domains: a.Domains}
	}
	return out
}

func fromCached(cached []pkgcache.CachedApplication) []*models.Application {
	out := make([]*models.Application, len(cached))
	for i, c := range cached {
		out[i] = models.NewApplication(c.ID, c.Name, c.Domains)
	}
	return out
}
