// Package vectordb defines the database-agnostic record store used by the
// sourcing domain.
//
// The backing service is a vector database, but the domain stores structured
// records (company profiles, sell-side products, buy lists) and addresses them
// only through metadata equality filters and storage identifiers. Store
// captures exactly that surface:
//
//	filter := vectordb.NewFilterSet(vectordb.Must(
//	    vectordb.NewMatch("sellerEmail", "ops@acme.example"),
//	    vectordb.NewMatch("sellerName", "Acme Co"),
//	    vectordb.NewMatch("sellerContact", "+91 98200 00000"),
//	))
//	matches, err := store.Query(ctx, "sell-products", vectordb.Query{
//	    Filter:          filter,
//	    TopK:            100,
//	    IncludeMetadata: true,
//	})
//
// Deletion is by storage identifier only:
//
//	err = store.Delete(ctx, "sell-products", []string{matches[0].ID})
//
// # Implementations
//
//   - qdrant.Adapter: the production store
//   - memory.Store: in-process store for tests and dry runs
//   - MockStore: gomock double for failure paths
//
// Wrap any implementation with Observed to report operations to an
// observability.Observer such as metrics.Metrics.
package vectordb
