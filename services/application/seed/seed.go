// Package seed loads a fixed dataset of applications into the store.
// Existing ids are left untouched, so a run can be repeated safely.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/ghuser/appdirectory/pkg/logger"
	"github.com/ghuser/appdirectory/services/application/domain/models"
	domainsvcs "github.com/ghuser/appdirectory/services/application/domain/services"
)

//go:embed apps-db.json
var defaultDataset []byte

// Inserter is the store operation the seed run needs.
type Inserter interface {
	InsertIfAbsent(ctx context.Context, app *models.Application) (bool, error)
}

// Result counts what a run did.
type Result struct {
	Inserted int
	Skipped  int
}

type record struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

// Default returns the embedded dataset.
func Default() ([]*models.Application, error) {
	return parse(defaultDataset)
}

// Load reads a JSON array of {id,name,domains} records from r. Every record
// must pass the same checks as a create request.
func Load(r io.Reader) ([]*models.Application, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("seed: read dataset: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]*models.Application, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("seed: dataset is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("seed: dataset must be a JSON array")
	}

	elems := root.Array()
	apps := make([]*models.Application, 0, len(elems))
	for i, el := range elems {
		if err := domainsvcs.ValidateCreatePayload([]byte(el.Raw)); err != nil {
			return nil, fmt.Errorf("seed: record %d: %w", i, err)
		}
		var rec record
		if err := json.Unmarshal([]byte(el.Raw), &rec); err != nil {
			return nil, fmt.Errorf("seed: record %d: %w", i, err)
		}
		apps = append(apps, models.NewApplication(rec.ID, rec.Name, rec.Domains))
	}
	return apps, nil
}

// Run inserts each application whose id is not already stored. The first
// failing insert stops the run; records after it are not attempted.
func Run(ctx context.Context, store Inserter, apps []*models.Application, log logger.Logger) (Result, error) {
	var res Result
	for _, app := range apps {
		inserted, err := store.InsertIfAbsent(ctx, app)
		if err != nil {
			log.ErrorContext(ctx, "seed insert failed", "application_id", app.ID, "error", err)
			return res, fmt.Errorf("seed: insert %s: %w", app.ID, err)
		}
		if inserted {
			res.Inserted++
			log.DebugContext(ctx, "seeded application", "application_id", app.ID)
		} else {
			res.Skipped++
		}
	}
	log.InfoContext(ctx, "seed complete", "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}
