package repositories

import (
	"context"

	"github.com/ghuser/appdirectory/services/application/domain/models"
)

// ApplicationRepository is the persistence interface for the Application aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Every failure the database itself reports is returned wrapped in
// domain.ErrStoreOperation.
type ApplicationRepository interface {
	// Save inserts a new Application. A duplicate ID is a store failure.
	Save(ctx context.Context, app *models.Application) error

	// Search returns applications whose name contains query, ignoring case,
	// ordered by name ascending. An empty query matches everything.
	Search(ctx context.Context, query string) ([]*models.Application, error)

	// Delete removes the application with the given ID. A missing row is a
	// store failure, not a separate not-found condition.
	Delete(ctx context.Context, id string) error

	// InsertIfAbsent inserts app unless its ID already exists, in which case
	// nothing is written. Reports whether a row was inserted.
	InsertIfAbsent(ctx context.Context, app *models.Application) (bool, error)
}
