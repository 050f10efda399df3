package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry and the metrics the service records.
type Metrics struct {
	// Server serves /metrics on Config.Address. It is nil when no address
	// is configured.
	Server *http.Server

	// Registry is the service's own registry, isolated from the global one.
	Registry *prometheus.Registry

	registerer prometheus.Registerer

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	migrationRecords  *prometheus.CounterVec
}

// NewMetrics creates a registry with the service's metrics. Every metric is
// labelled with service="<cfg.ServiceName>".
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "sourcing"})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
	}

	m.requestsTotal = createCounterVec("http_requests_total", "Total number of processed HTTP requests", []string{"method", "route", "status"})
	m.requestDuration = createHistogramVec("http_request_duration_seconds", "Duration of HTTP requests in seconds", []string{"route"}, prometheus.DefBuckets)
	m.operationsTotal = createCounterVec("store_operations_total", "Operations performed against backing stores", []string{"component", "operation", "resource", "status"})
	m.operationDuration = createHistogramVec("store_operation_duration_seconds", "Duration of backing store operations in seconds", []string{"component", "operation"}, prometheus.DefBuckets)
	m.migrationRecords = createCounterVec("migration_records_total", "Records processed by migrations, by outcome", []string{"namespace", "outcome"})

	wrapped.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.operationsTotal,
		m.operationDuration,
		m.migrationRecords,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
