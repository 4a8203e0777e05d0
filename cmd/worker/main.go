package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/appdirectory/pkg/app"
	"github.com/ghuser/appdirectory/pkg/cache"
	"github.com/ghuser/appdirectory/pkg/config"
	"github.com/ghuser/appdirectory/pkg/database"
	"github.com/ghuser/appdirectory/pkg/events"
	"github.com/ghuser/appdirectory/pkg/logger"
	"github.com/ghuser/appdirectory/pkg/telemetry"
	appEvents "github.com/ghuser/appdirectory/services/application/domain/events"
)

// cacheInvalidator is the part of cache.SearchCache the worker needs.
type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close() //nolint:errcheck
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log, busOptions(cfg)...)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	var redisClient *cache.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// busOptions applies the EVENT_* settings to the subscriber side of the bus.
func busOptions(cfg *config.Config) []events.Option {
	return []events.Option{
		events.WithConsumerGroup(cfg.EventConsumerGroup),
		events.WithRetry(cfg.EventMaxAttempts, cfg.EventRetryDelay),
	}
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	var invalidator cacheInvalidator
	if sc := cache.NewSearchCache(a.Redis, a.Config.SearchCacheTTL); sc != nil {
		invalidator = sc
	}

	handlers := map[string]events.Handler{
		appEvents.TopicApplicationCreated: handleApplicationCreated(a.Logger, invalidator),
		appEvents.TopicApplicationDeleted: handleApplicationDeleted(a.Logger, invalidator),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
				telemetry.CaptureError(err, map[string]string{"topic": topic})
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleApplicationCreated returns a handler for application.created events.
// Handlers must be idempotent: the EventBus retries up to 3 times on failure.
// Bumping the search cache generation twice is harmless.
func handleApplicationCreated(log logger.Logger, c cacheInvalidator) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeMessage[appEvents.ApplicationCreatedEvent](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "application created event received",
			"application_id", evt.ApplicationID, "event_id", evt.EventID)
		return invalidate(ctx, c)
	}
}

// handleApplicationDeleted returns a handler for application.deleted events.
func handleApplicationDeleted(log logger.Logger, c cacheInvalidator) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeMessage[appEvents.ApplicationDeletedEvent](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "application deleted event received",
			"application_id", evt.ApplicationID, "event_id", evt.EventID)
		return invalidate(ctx, c)
	}
}

// invalidate covers writers that did not bump the cache themselves, such as
// an API instance whose Redis call failed after commit.
func invalidate(ctx context.Context, c cacheInvalidator) error {
	if c == nil {
		return nil
	}
	if err := c.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate search cache: %w", err)
	}
	return nil
}
