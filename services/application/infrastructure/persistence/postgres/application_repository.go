package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/appdirectory/pkg/database"
	"github.com/ghuser/appdirectory/pkg/events"
	appdomain "github.com/ghuser/appdirectory/services/application/domain"
	domainevents "github.com/ghuser/appdirectory/services/application/domain/events"
	"github.com/ghuser/appdirectory/services/application/domain/models"
	"github.com/ghuser/appdirectory/services/application/infrastructure/persistence/postgres/db"
)

const eventVersion = 1

// ApplicationRepository implements repositories.ApplicationRepository against PostgreSQL.
type ApplicationRepository struct {
	db  *database.Database
	bus *events.EventBus
	now func() time.Time
}

// NewApplicationRepository returns an ApplicationRepository backed by the given
// connection pool. When bus is non-nil, writes publish domain events in the
// same transaction as the row change.
func NewApplicationRepository(database *database.Database, bus *events.EventBus) *ApplicationRepository {
	return &ApplicationRepository{db: database, bus: bus, now: time.Now}
}

// Save inserts app and publishes an ApplicationCreatedEvent within the same transaction.
func (r *ApplicationRepository) Save(ctx context.Context, app *models.Application) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).InsertApplication(ctx, db.InsertApplicationParams{
			ID:      app.ID,
			Name:    app.Name,
			Domains: nonNil(app.Domains),
		}); err != nil {
			return storeError("insert application", err)
		}
		return r.publishCreated(ctx, tx, app)
	})
}

// Search returns applications whose name contains query, ignoring case,
// ordered by name.
func (r *ApplicationRepository) Search(ctx context.Context, query string) ([]*models.Application, error) {
	rows, err := db.New(r.db.DB()).SearchApplications(ctx, query)
	if err != nil {
		return nil, storeError("search applications", err)
	}

	apps := make([]*models.Application, len(rows))
	for i, row := range rows {
		apps[i] = rowToApplication(row)
	}
	return apps, nil
}

// Delete removes the application with id and publishes an
// ApplicationDeletedEvent within the same transaction. Deleting an id that
// does not exist fails with ErrStoreOperation.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).DeleteApplication(ctx, id)
		if err != nil {
			return storeError("delete application", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: record to delete does not exist", appdomain.ErrStoreOperation)
		}
		return r.publishDeleted(ctx, tx, id)
	})
}

// InsertIfAbsent inserts app unless a row with the same id exists. An existing
// row is left untouched and no event is published.
func (r *ApplicationRepository) InsertIfAbsent(ctx context.Context, app *models.Application) (bool, error) {
	var inserted bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).InsertApplicationIfAbsent(ctx, db.InsertApplicationIfAbsentParams{
			ID:      app.ID,
			Name:    app.Name,
			Domains: nonNil(app.Domains),
		})
		if err != nil {
			return storeError("insert application", err)
		}
		if n == 0 {
			return nil
		}
		inserted = true
		return r.publishCreated(ctx, tx, app)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *ApplicationRepository) publishCreated(ctx context.Context, tx *sql.Tx, app *models.Application) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.ApplicationCreatedEvent{
		EventID:       uuid.New(),
		Version:       eventVersion,
		ApplicationID: app.ID,
		Name:          app.Name,
		Domains:       nonNil(app.Domains),
		OccurredAt:    r.now().UTC(),
	}
	msg, err := events.NewEventMessage(event.EventID, event.Version, event)
	if err != nil {
		return fmt.Errorf("publish application created: %w", err)
	}
	if err := r.bus.PublishTx(ctx, tx, domainevents.TopicApplicationCreated, msg); err != nil {
		return fmt.Errorf("publish application created: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) publishDeleted(ctx context.Context, tx *sql.Tx, id string) error {
	if r.bus == nil {
		return nil
	}
	event := domainevents.ApplicationDeletedEvent{
		EventID:       uuid.New(),
		Version:       eventVersion,
		ApplicationID: id,
		OccurredAt:    r.now().UTC(),
	}
	msg, err := events.NewEventMessage(event.EventID, event.Version, event)
	if err != nil {
		return fmt.Errorf("publish application deleted: %w", err)
	}
	if err := r.bus.PublishTx(ctx, tx, domainevents.TopicApplicationDeleted, msg); err != nil {
		return fmt.Errorf("publish application deleted: %w", err)
	}
	return nil
}

// storeError wraps errors reported by PostgreSQL in ErrStoreOperation.
// Driver and connection failures keep their own identity.
func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s: duplicate key violates %s", appdomain.ErrStoreOperation, op, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %s: %s (SQLSTATE %s)", appdomain.ErrStoreOperation, op, pgErr.Message, pgErr.Code)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// rowToApplication maps a db.Application to a domain models.Application.
func rowToApplication(row db.Application) *models.Application {
	return models.NewApplication(row.ID, row.Name, row.Domains)
}
