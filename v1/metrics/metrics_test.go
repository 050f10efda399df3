package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chemsource/sourcing/v1/observability"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{Component: "vectordb", Operation: "query", Resource: "profiles", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "vectordb", Operation: "query", Resource: "profiles", Error: errors.New("boom")})

	assert.Equal(t, 1.0, counterValue(t, m.operationsTotal.WithLabelValues("vectordb", "query", "profiles", "success")))
	assert.Equal(t, 1.0, counterValue(t, m.operationsTotal.WithLabelValues("vectordb", "query", "profiles", "error")))
}

func TestRecordMigrationOutcome(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})
	m.RecordMigrationOutcome("buy-lists", "migrated")
	m.RecordMigrationOutcome("buy-lists", "migrated")
	m.RecordMigrationOutcome("buy-lists", "failed")

	assert.Equal(t, 2.0, counterValue(t, m.migrationRecords.WithLabelValues("buy-lists", "migrated")))
	assert.Equal(t, 1.0, counterValue(t, m.migrationRecords.WithLabelValues("buy-lists", "failed")))
}

func TestHandler_ExposesServiceLabel(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "sourcing"})
	m.IncrementRequests(http.MethodGet, "/products", http.StatusOK)
	m.RecordRequestDuration(time.Now(), "/products")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",route="/products",service="sourcing",status="200"} 1`), body)
	assert.Contains(t, body, "http_request_duration_seconds")
}

func TestNewMetrics_ServerOnlyWithAddress(t *testing.T) {
	assert.Nil(t, NewMetrics(Config{}).Server)
	m := NewMetrics(Config{Address: ":0", EnableDefaultCollectors: true})
	require.NotNil(t, m.Server)
	assert.Equal(t, ":0", m.Server.Addr)
}

func TestCreateCounter(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})
	c := m.CreateCounter("custom_total", "custom", []string{"kind"})
	c.WithLabelValues("a").Inc()
	assert.Equal(t, 1.0, counterValue(t, c.WithLabelValues("a")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, c.Write(&pb))
	return pb.GetCounter().GetValue()
}
