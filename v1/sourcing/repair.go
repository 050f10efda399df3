package sourcing

import (
	"context"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// RepairSummary reports a RepairIdentity run.
type RepairSummary struct {
	Stored   Triple         `json:"stored"`
	Target   Triple         `json:"target"`
	Filter   string         `json:"filter"`
	Products int            `json:"productsRewritten"`
	Profiles int            `json:"profilesRewritten"`
	Merged   int            `json:"profilesMerged"`
	Failed   []BatchFailure `json:"failed"`
	Aborted  bool           `json:"aborted"`
}

// RepairIdentity moves the profile and products stored under exactly stored
// onto its normalized form, so that later calls with either spelling reach
// them. Storage ids and product ids are kept. A profile whose normalized
// form already exists is deleted instead of rewritten. A product whose
// productId is already taken under the normalized form is reported as
// failed and left in place. When ctx is done no further writes are issued.
func (s *Service) RepairIdentity(ctx context.Context, stored Triple) (summary RepairSummary, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.RepairIdentity", map[string]interface{}{"email": stored.Email})
	defer func() { end(err) }()

	filter, err := BuildIdentityFilter(SellerFields, stored)
	if err != nil {
		return summary, err
	}
	target := stored.Normalize(s.Config.Normalize)
	summary.Stored = stored
	summary.Target = target
	summary.Filter = filter.String()
	if target == stored {
		return summary, nil
	}

	products, err := s.FindAll(ctx, s.Config.SellProductsNamespace, filter)
	if err != nil {
		return summary, err
	}
	profiles, err := s.FindAll(ctx, s.Config.ProfilesNamespace, filter)
	if err != nil {
		return summary, err
	}
	if len(products)+len(profiles) == 0 {
		return summary, &MatchError{Kind: ErrZeroMatch, Namespace: s.Config.ProfilesNamespace, Filter: filter}
	}

	for _, m := range products {
		if ctx.Err() != nil {
			summary.Aborted = true
			break
		}
		if err := s.repairProduct(ctx, m, target); err != nil {
			summary.Failed = append(summary.Failed, BatchFailure{
				StorageID: StorageID(m.ID),
				ProductID: ProductID(Payload(m.Metadata).Lookup(ProductIDField)),
				Err:       err,
				Message:   err.Error(),
			})
			s.Log.Warn("repair: product rewrite failed", err, map[string]interface{}{"storage_id": m.ID})
			continue
		}
		summary.Products++
	}

	for _, m := range profiles {
		if summary.Aborted || ctx.Err() != nil {
			summary.Aborted = true
			break
		}
		merged, err := s.repairProfile(ctx, m, target)
		if err != nil {
			summary.Failed = append(summary.Failed, BatchFailure{
				StorageID: StorageID(m.ID),
				Err:       err,
				Message:   err.Error(),
			})
			s.Log.Warn("repair: profile rewrite failed", err, map[string]interface{}{"storage_id": m.ID})
			continue
		}
		if merged {
			summary.Merged++
		} else {
			summary.Profiles++
		}
	}

	s.Log.Info("identity repaired", nil, map[string]interface{}{
		"stored_company": stored.CompanyName,
		"company":        target.CompanyName,
		"products":       summary.Products,
		"profiles":       summary.Profiles,
		"merged":         summary.Merged,
		"failed":         len(summary.Failed),
		"aborted":        summary.Aborted,
	})
	if summary.Aborted {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (s *Service) repairProduct(ctx context.Context, m vectordb.Match, target Triple) error {
	p, err := decodeProduct(m)
	if err != nil {
		return err
	}
	ns := s.Config.SellProductsNamespace
	taken := BuildFilter(SellerFields, target, p.ProductID)
	clash, err := s.Find(ctx, ns, taken)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return &MatchError{Kind: ErrDuplicateProductID, Namespace: ns, Filter: taken, Count: len(clash)}
	}
	p.Identity = target
	p.UpdatedAt = s.Now()
	return s.write(ctx, p)
}

// repairProfile reports true when the profile was deleted in favour of one
// already stored under target.
func (s *Service) repairProfile(ctx context.Context, m vectordb.Match, target Triple) (bool, error) {
	p, err := decodeProfile(m)
	if err != nil {
		return false, err
	}
	ns := s.Config.ProfilesNamespace
	existing, err := s.Find(ctx, ns, BuildFilter(SellerFields, target, ""))
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		if err := s.Store.Delete(ctx, ns, []string{m.ID}); err != nil {
			return false, StoreError("delete", ns, err)
		}
		return true, nil
	}

	p.SellerEmail = target.Email
	p.SellerName = target.CompanyName
	p.SellerContact = target.ContactNumber
	if err := s.Store.Upsert(ctx, ns, []vectordb.Record{{ID: m.ID, Metadata: p.metadata()}}); err != nil {
		return false, StoreError("upsert", ns, err)
	}
	return false, nil
}
