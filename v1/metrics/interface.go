package metrics

import (
	"net/http"
	"time"

	"github.com/chemsource/sourcing/v1/observability"
)

// MetricsCollector is what the HTTP layer and the stores record into.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	observability.Observer

	IncrementRequests(method, route string, status int)
	RecordRequestDuration(start time.Time, route string)
	RecordMigrationOutcome(namespace, outcome string)
	Handler() http.Handler
}
