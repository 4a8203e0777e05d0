package app

import (
	"github.com/ghuser/appdirectory/pkg/cache"
	"github.com/ghuser/appdirectory/pkg/config"
	"github.com/ghuser/appdirectory/pkg/database"
	"github.com/ghuser/appdirectory/pkg/events"
	"github.com/ghuser/appdirectory/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to every service's route registration during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id and request_id are added automatically:
//
//	app.Logger.InfoContext(ctx, "application created", "application_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
//
// EventBus and Redis may be nil: writes then skip event publishing and
// searches go straight to PostgreSQL.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *cache.RedisClient
}
