// Package metrics exposes the service's Prometheus metrics.
//
// Metrics records HTTP requests, operations against the vector store, Redis
// and MinIO (as an observability.Observer), and per-record outcomes of the
// buy-list migration. Every metric carries a constant service label and is
// registered on a dedicated registry.
//
//	m := metrics.NewMetrics(metrics.DefaultConfig())
//	store := vectordb.Observed(adapter, m)
//	migrator := buylist.NewMigrator(buylist.MigratorParams{Store: store, Recorder: m})
//
// Handler serves the registry; with Config.Address set, Server serves it on
// /metrics.
package metrics
