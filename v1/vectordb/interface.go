package vectordb

import "context"

// Store is the record-level contract the sourcing domain needs from a vector
// database. The underlying service is built for similarity search; here it is
// addressed purely through metadata equality filters and storage identifiers.
//
// Namespaces partition records by business area (profiles, sell products,
// buy lists). A record never moves between namespaces.
//
// Example usage:
//
//	func NewProductService(db vectordb.Store) *ProductService {
//	    return &ProductService{db: db}
//	}
//
//	// Works with any implementation:
//	// - qdrant.NewAdapter(qdrantClient, cfg)
//	// - memory.NewStore()
//
//go:generate mockgen -source=interface.go -destination=mock_store.go -package=vectordb
type Store interface {
	// Upsert writes records, replacing any existing record with the same ID.
	Upsert(ctx context.Context, namespace string, records []Record) error

	// Query returns up to q.TopK records whose metadata satisfies q.Filter.
	// A nil filter matches every record in the namespace. Result order is
	// stable for an unchanged namespace.
	Query(ctx context.Context, namespace string, q Query) ([]Match, error)

	// Delete removes records by storage identifier. Unknown IDs are ignored.
	Delete(ctx context.Context, namespace string, ids []string) error
}

// NamespaceEnsurer is implemented by stores that must create a namespace
// and its payload indexes before use.
type NamespaceEnsurer interface {
	EnsureNamespace(ctx context.Context, namespace string, keywordFields ...string) error
}
