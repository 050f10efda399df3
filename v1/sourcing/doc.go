// Package sourcing implements company profiles and sell-side products on top
// of a vectordb.Store.
//
// One login email may own several companies. A company is identified by the
// Triple (email, company name, contact number), which is copied onto every
// record that belongs to it because the store has no joins. Every lookup is
// an exact, case-sensitive equality filter built by BuildFilter; callers go
// through the Service, which normalizes the triple with the configured
// NormalizePolicy before any filter is built or record written.
//
// Records carry two identifiers that must not be confused: the StorageID the
// store addresses records by, and the business ProductID kept in the
// productId field. Updates and deletes resolve the unique record by triple
// plus ProductID, then act on its StorageID:
//
//	svc := sourcing.NewService(sourcing.Params{Store: store, Config: sourcing.DefaultConfig()})
//
//	p, err := svc.AddProduct(ctx, triple, sourcing.ProductFields{ProductName: "Acetone"})
//	...
//	err = svc.DeleteProduct(ctx, triple, p.ProductID)
//
// # Errors
//
// A lookup that matches nothing is ErrZeroMatch, or ErrFilterMismatch when a
// record under the same email differs from the request only by whitespace or
// case. Both come as *MatchError carrying the exact filter. A unique lookup
// that matches several records is ErrMultiMatch and nothing is modified. Store
// failures wrap ErrStoreUnavailable.
package sourcing
