package httpx

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

// HealthChecker is anything with a Ping method: *database.Database,
// *cache.RedisClient and *events.EventBus all qualify.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency probed by HealthHandler. A nil Checker is
// reported as "disabled" and does not degrade the status.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler probes every check concurrently. Any failure answers 503 with
// status "degraded".
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var (
			mu   sync.Mutex
			resp = healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		)
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				state := probe(ctx, c.Checker)
				mu.Lock()
				defer mu.Unlock()
				resp.Checks[c.Name] = state
				if state == "unreachable" {
					resp.Status = "degraded"
				}
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func probe(ctx context.Context, c HealthChecker) string {
	if c == nil || isNilChecker(c) {
		return "disabled"
	}
	if err := c.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

// isNilChecker catches typed nil pointers, e.g. a (*cache.RedisClient)(nil)
// when REDIS_URL is empty.
func isNilChecker(c HealthChecker) bool {
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
