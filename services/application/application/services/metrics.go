package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/appdirectory/services/application"

// counters holds the application service's OTel instruments. They are
// exported through the Prometheus reader registered by telemetry.Setup.
type counters struct {
	searches metric.Int64Counter
	created  metric.Int64Counter
	deleted  metric.Int64Counter
}

func newCounters() *counters {
	m := otel.Meter(meterName)
	// Instrument creation only fails on an invalid name; the no-op fallback
	// returned alongside the error is still safe to use.
	searches, _ := m.Int64Counter("applications.searches",
		metric.WithDescription("Application searches served, by cache outcome"))
	created, _ := m.Int64Counter("applications.created",
		metric.WithDescription("Applications created"))
	deleted, _ := m.Int64Counter("applications.deleted",
		metric.WithDescription("Applications deleted"))
	return &counters{searches: searches, created: created, deleted: deleted}
}
