// Package qdrant implements vectordb.Store on the Qdrant vector database.
//
// Qdrant is built for similarity search. The records stored here are
// structured business records, so the adapter uses only the parts of the API
// that address points by payload and id:
//
//   - Scroll with a payload filter for lookups (no query vector)
//   - Upsert with Wait=true for writes
//   - Delete by point id
//
// Each namespace maps to one collection, CollectionPrefix+namespace. Collections
// are created on first write with a small placeholder vector size, and
// EnsureNamespace additionally creates keyword payload indexes for the
// identity fields that every lookup filters on.
//
// # Basic Usage
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: qdrant.FromEndpoint("localhost").WithCollectionPrefix("sourcing_"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := qdrant.NewAdapter(client)
//	_ = store.EnsureNamespace(ctx, "sell-products", "sellerEmail", "sellerName", "sellerContact", "productId")
//
// # Errors
//
// gRPC failures are translated by TranslateError: Unavailable,
// DeadlineExceeded, Unauthenticated and PermissionDenied become
// vectordb.ErrUnavailable; NotFound becomes vectordb.ErrNamespaceNotFound.
// Query and Delete treat a missing collection as empty.
//
// # Fx
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    fx.Provide(func() *qdrant.Config { return cfg }),
//	)
package qdrant
