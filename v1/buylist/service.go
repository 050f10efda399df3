package buylist

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/vectordb"
)

// Service reads and edits per-company buy lists.
type Service struct {
	sourcing.Base
}

// NewService creates a buy-list Service.
func NewService(p sourcing.Params) *Service {
	return &Service{Base: sourcing.NewBase(p)}
}

// Bootstrap creates the buy-list namespace with identity indexes when the
// store supports it.
func (s *Service) Bootstrap(ctx context.Context) error {
	ensurer, ok := s.Store.(vectordb.NamespaceEnsurer)
	if !ok {
		return nil
	}
	keys := append(sourcing.BuyerFields.Keys(), FieldOriginalID)
	if err := ensurer.EnsureNamespace(ctx, s.Config.BuyListsNamespace, keys...); err != nil {
		return sourcing.StoreError("ensure", s.Config.BuyListsNamespace, err)
	}
	return nil
}

// Get returns the buy list of one company.
func (s *Service) Get(ctx context.Context, t sourcing.Triple) (rec Record, err error) {
	ctx, end := s.StartSpan(ctx, "buylist.Get", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	t = s.Normalize(t)
	filter, err := sourcing.BuildIdentityFilter(sourcing.BuyerFields, t)
	if err != nil {
		return Record{}, err
	}
	match, err := s.ResolveUnique(ctx, s.Config.BuyListsNamespace, sourcing.BuyerFields, filter, t, "")
	if err != nil {
		return Record{}, err
	}
	return Decode(match)
}

// AddItem appends name to the company's list, creating the record on first
// use. A name already on the list is not added twice.
func (s *Service) AddItem(ctx context.Context, t sourcing.Triple, name string) (rec Record, err error) {
	ctx, end := s.StartSpan(ctx, "buylist.AddItem", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, &sourcing.FieldError{Err: sourcing.ErrIncompleteIdentity, Field: "productName"}
	}

	t = s.Normalize(t)
	rec, err = s.Get(ctx, t)
	switch {
	case err == nil:
		if slices.Contains(rec.ProductList, name) {
			return rec, nil
		}
	case sourcing.IsNotFound(err):
		if errors.Is(err, sourcing.ErrFilterMismatch) {
			s.Log.Warn("creating buy list next to a formatting variant", err)
		}
		rec = Record{StorageID: sourcing.NewStorageID(), Identity: t}
	default:
		return Record{}, err
	}

	rec.ProductList = append(rec.ProductList, name)
	return s.write(ctx, rec)
}

// RemoveItem drops name from the company's list. Removing a name that is not
// on the list leaves the record unchanged.
func (s *Service) RemoveItem(ctx context.Context, t sourcing.Triple, name string) (rec Record, err error) {
	ctx, end := s.StartSpan(ctx, "buylist.RemoveItem", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	rec, err = s.Get(ctx, t)
	if err != nil {
		return Record{}, err
	}
	name = strings.TrimSpace(name)
	idx := slices.Index(rec.ProductList, name)
	if idx < 0 {
		return rec, nil
	}
	rec.ProductList = slices.Delete(rec.ProductList, idx, idx+1)
	return s.write(ctx, rec)
}

func (s *Service) write(ctx context.Context, rec Record) (Record, error) {
	rec.UpdatedAt = s.Now()
	rec.ProductCount = len(rec.ProductList)
	ns := s.Config.BuyListsNamespace
	if err := s.Store.Upsert(ctx, ns, []vectordb.Record{{
		ID:       string(rec.StorageID),
		Metadata: rec.Metadata(),
	}}); err != nil {
		return Record{}, sourcing.StoreError("upsert", ns, err)
	}
	rec.version = CurrentVersion
	rec.shape = ShapeNative
	return rec, nil
}
