package sourcing

import (
	"context"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// AddProduct ensures the owning profile exists and writes a new product with
// a fresh storage id. The productId is generated unless fields carries one;
// either way it must not already be used by the same company.
func (s *Service) AddProduct(ctx context.Context, t Triple, fields ProductFields) (product Product, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.AddProduct", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	t = s.Normalize(t)
	if _, _, err := s.EnsureProfile(ctx, t, ProfileDefaults{}); err != nil {
		return Product{}, err
	}

	now := s.Now()
	productID := fields.ProductID
	if productID == "" {
		productID = NewProductID(now)
	}

	ns := s.Config.SellProductsNamespace
	existing := BuildFilter(SellerFields, t, productID)
	matches, err := s.Find(ctx, ns, existing)
	if err != nil {
		return Product{}, err
	}
	if len(matches) > 0 {
		return Product{}, &MatchError{Kind: ErrDuplicateProductID, Namespace: ns, Filter: existing, Count: len(matches)}
	}

	product = Product{
		StorageID:            NewStorageID(),
		ProductID:            productID,
		ProductName:          fields.ProductName,
		Description:          fields.Description,
		Category:             fields.Category,
		Price:                fields.Price,
		Size:                 fields.Size,
		Unit:                 fields.Unit,
		MinimumOrderQuantity: fields.MinimumOrderQuantity,
		Pictures:             append([]string(nil), fields.Pictures...),
		Rating:               fields.Rating,
		Identity:             t,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.write(ctx, product); err != nil {
		return Product{}, err
	}

	s.Log.Info("product added", nil, map[string]interface{}{
		"storage_id": product.StorageID,
		"product_id": product.ProductID,
		"company":    t.CompanyName,
	})
	return product, nil
}

// UpdateProduct patches the single product addressed by t and productID and
// writes it back under its original storage id. Applying the same patch
// twice leaves the same field values.
func (s *Service) UpdateProduct(ctx context.Context, t Triple, productID ProductID, patch ProductPatch) (product Product, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.UpdateProduct", map[string]interface{}{"product_id": string(productID)})
	defer func() { end(err) }()

	product, err = s.resolveProduct(ctx, t, productID, true)
	if err != nil {
		return Product{}, err
	}

	if !patch.Apply(&product) {
		return product, nil
	}
	product.UpdatedAt = s.Now()
	if err := s.write(ctx, product); err != nil {
		return Product{}, err
	}

	s.Log.Info("product updated", nil, map[string]interface{}{
		"storage_id": product.StorageID,
		"product_id": product.ProductID,
	})
	return product, nil
}

// DeleteProduct resolves the single product addressed by t and productID,
// deletes it by storage id and re-queries by productId. A record still
// present afterwards is ErrPostDeleteVerificationFailed.
func (s *Service) DeleteProduct(ctx context.Context, t Triple, productID ProductID) (err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.DeleteProduct", map[string]interface{}{"product_id": string(productID)})
	defer func() { end(err) }()

	product, err := s.resolveProduct(ctx, t, productID, true)
	if err != nil {
		return err
	}
	if err := s.deleteAndVerify(ctx, product); err != nil {
		return err
	}

	s.Log.Info("product deleted", nil, map[string]interface{}{
		"storage_id": product.StorageID,
		"product_id": product.ProductID,
	})
	return nil
}

// GetProduct returns the single product with productID under t. Empty
// identity fields widen the lookup; a collision is ErrMultiMatch.
func (s *Service) GetProduct(ctx context.Context, t Triple, productID ProductID) (product Product, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.GetProduct", map[string]interface{}{"product_id": string(productID)})
	defer func() { end(err) }()

	return s.resolveProduct(ctx, t, productID, false)
}

// ListProducts returns the products matching the non-empty fields of t.
// At least the email is required.
func (s *Service) ListProducts(ctx context.Context, t Triple) (products []Product, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.ListProducts", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	t = s.Normalize(t)
	if t.Email == "" {
		return nil, &FieldError{Err: ErrIncompleteIdentity, Field: "email"}
	}

	matches, err := s.Find(ctx, s.Config.SellProductsNamespace, BuildFilter(SellerFields, t, ""))
	if err != nil {
		return nil, err
	}
	products = make([]Product, 0, len(matches))
	for _, m := range matches {
		p, err := decodeProduct(m)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// BatchFailure is one record a batch operation could not process.
type BatchFailure struct {
	StorageID StorageID `json:"storageId"`
	ProductID ProductID `json:"productId,omitempty"`
	Err       error     `json:"-"`
	Message   string    `json:"error"`
}

// BatchSummary reports a bulk clear. Filter is the identity filter the
// batch ran with, so an empty result can be compared with what is stored.
type BatchSummary struct {
	Filter  string         `json:"filter"`
	Matched int            `json:"matched"`
	Deleted int            `json:"deleted"`
	Failed  []BatchFailure `json:"failed"`
	Aborted bool           `json:"aborted"`
}

// PurgeProducts deletes every product of one company. Records are processed
// one at a time in store order; a failure is recorded and the batch moves
// on. When ctx is done no further deletes are issued and the partial summary
// is returned with ctx's error.
func (s *Service) PurgeProducts(ctx context.Context, t Triple) (summary BatchSummary, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.PurgeProducts", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	t = s.Normalize(t)
	filter, err := BuildIdentityFilter(SellerFields, t)
	if err != nil {
		return summary, err
	}

	matches, err := s.FindAll(ctx, s.Config.SellProductsNamespace, filter)
	if err != nil {
		return summary, err
	}
	summary.Filter = filter.String()
	summary.Matched = len(matches)
	if summary.Matched == 0 {
		s.Log.Warn("purge matched no products", nil, map[string]interface{}{"filter": summary.Filter})
	}

	for _, m := range matches {
		if ctx.Err() != nil {
			summary.Aborted = true
			break
		}
		p := Product{
			StorageID: StorageID(m.ID),
			ProductID: ProductID(Payload(m.Metadata).Lookup(ProductIDField)),
			Identity:  t,
		}
		if err := s.deleteAndVerify(ctx, p); err != nil {
			summary.Failed = append(summary.Failed, BatchFailure{
				StorageID: p.StorageID,
				ProductID: p.ProductID,
				Err:       err,
				Message:   err.Error(),
			})
			s.Log.Warn("purge: delete failed", err, map[string]interface{}{"storage_id": p.StorageID})
			continue
		}
		summary.Deleted++
	}

	s.Log.Info("purge finished", nil, map[string]interface{}{
		"company": t.CompanyName,
		"matched": summary.Matched,
		"deleted": summary.Deleted,
		"failed":  len(summary.Failed),
		"aborted": summary.Aborted,
	})
	if summary.Aborted {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (s *Service) resolveProduct(ctx context.Context, t Triple, productID ProductID, destructive bool) (Product, error) {
	t = s.Normalize(t)

	var filter *vectordb.FilterSet
	if destructive {
		f, err := BuildDestructiveFilter(SellerFields, t, productID)
		if err != nil {
			return Product{}, err
		}
		filter = f
	} else {
		if productID == "" {
			return Product{}, &FieldError{Err: ErrIncompleteIdentity, Field: ProductIDField}
		}
		filter = BuildFilter(SellerFields, t, productID)
	}

	match, err := s.ResolveUnique(ctx, s.Config.SellProductsNamespace, SellerFields, filter, t, productID)
	if err != nil {
		return Product{}, err
	}
	return decodeProduct(match)
}

func (s *Service) write(ctx context.Context, p Product) error {
	ns := s.Config.SellProductsNamespace
	if err := s.Store.Upsert(ctx, ns, []vectordb.Record{{
		ID:       string(p.StorageID),
		Metadata: p.metadata(),
	}}); err != nil {
		return StoreError("upsert", ns, err)
	}
	return nil
}

// deleteAndVerify deletes p by storage id, then re-queries by its identity
// and productId. The deleted storage id must not come back.
func (s *Service) deleteAndVerify(ctx context.Context, p Product) error {
	ns := s.Config.SellProductsNamespace
	if err := s.Store.Delete(ctx, ns, []string{string(p.StorageID)}); err != nil {
		return StoreError("delete", ns, err)
	}

	verify := BuildFilter(SellerFields, p.Identity, p.ProductID)
	matches, err := s.Find(ctx, ns, verify)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID != string(p.StorageID) {
			continue
		}
		err := &MatchError{
			Kind:      ErrPostDeleteVerificationFailed,
			Namespace: ns,
			Filter:    verify,
			Count:     1,
		}
		s.Log.Error("record still present after delete", err, map[string]interface{}{
			"storage_id": p.StorageID,
			"product_id": p.ProductID,
		})
		return err
	}
	return nil
}
