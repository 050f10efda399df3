package sourcing

import (
	"context"
	"testing"

	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var acmeVariant = Triple{Email: acme.Email, CompanyName: "Acme  Co", ContactNumber: acme.ContactNumber}

func (f fixture) seedVariant(t *testing.T, ns, id string, productID ProductID) {
	t.Helper()
	m := map[string]any{}
	if productID != "" {
		m[ProductIDField] = string(productID)
	}
	SellerFields.Put(m, acmeVariant)
	require.NoError(t, f.store.Upsert(context.Background(), ns, []vectordb.Record{{ID: id, Metadata: m}}))
}

func TestExact_ReachesVariantSpelling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedVariant(t, f.cfg.SellProductsNamespace, "variant-1", "PRD-1")
	f.seedVariant(t, f.cfg.SellProductsNamespace, "variant-2", "PRD-2")

	err := f.svc.DeleteProduct(ctx, acmeVariant, "PRD-1")
	require.ErrorIs(t, err, ErrFilterMismatch)

	exact := f.svc.Exact()
	name := "Toluene"
	updated, err := exact.UpdateProduct(ctx, acmeVariant, "PRD-1", ProductPatch{ProductName: &name})
	require.NoError(t, err)
	assert.Equal(t, StorageID("variant-1"), updated.StorageID)
	assert.Equal(t, acmeVariant, updated.Identity)

	require.NoError(t, exact.DeleteProduct(ctx, acmeVariant, "PRD-1"))
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))

	summary, err := exact.PurgeProducts(ctx, acmeVariant)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)
	assert.Contains(t, summary.Filter, `sellerName="Acme  Co"`)
	assert.Zero(t, f.store.Len(f.cfg.SellProductsNamespace))

	// the original service still normalizes
	_, err = f.svc.GetProduct(ctx, acmeVariant, "PRD-2")
	assert.ErrorIs(t, err, ErrFilterMismatch)
}

func TestPurgeProducts_EmptyReportsFilter(t *testing.T) {
	f := newFixture(t)
	f.seedVariant(t, f.cfg.SellProductsNamespace, "variant-1", "PRD-1")

	summary, err := f.svc.PurgeProducts(context.Background(), acmeVariant)
	require.NoError(t, err)
	assert.Zero(t, summary.Matched)
	assert.Contains(t, summary.Filter, `sellerName="Acme Co"`)
	assert.Contains(t, summary.Filter, acme.Email)
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestRepairIdentity_RewritesVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedVariant(t, f.cfg.ProfilesNamespace, "profile-1", "")
	f.seedVariant(t, f.cfg.SellProductsNamespace, "variant-1", "PRD-1")

	summary, err := f.svc.RepairIdentity(ctx, acmeVariant)
	require.NoError(t, err)
	assert.Equal(t, acme, summary.Target)
	assert.Equal(t, 1, summary.Products)
	assert.Equal(t, 1, summary.Profiles)
	assert.Empty(t, summary.Failed)

	p, err := f.svc.GetProduct(ctx, acme, "PRD-1")
	require.NoError(t, err)
	assert.Equal(t, StorageID("variant-1"), p.StorageID)

	profile, outcome, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{})
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, StorageID("profile-1"), profile.StorageID)

	require.NoError(t, f.svc.DeleteProduct(ctx, acme, "PRD-1"))
}

func TestRepairIdentity_MergesProfileAndKeepsClash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{})
	require.NoError(t, err)
	taken, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductName: "x"})
	require.NoError(t, err)
	f.seedVariant(t, f.cfg.ProfilesNamespace, "profile-variant", "")
	f.seedVariant(t, f.cfg.SellProductsNamespace, "variant-1", taken.ProductID)

	summary, err := f.svc.RepairIdentity(ctx, acmeVariant)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Merged)
	assert.Zero(t, summary.Profiles)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, ErrDuplicateProductID)
	assert.Equal(t, StorageID("variant-1"), summary.Failed[0].StorageID)

	assert.Equal(t, 1, f.store.Len(f.cfg.ProfilesNamespace))
	assert.Equal(t, 2, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestRepairIdentity_NothingStored(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RepairIdentity(context.Background(), acmeVariant)
	assert.ErrorIs(t, err, ErrZeroMatch)

	summary, err := f.svc.RepairIdentity(context.Background(), acme)
	require.NoError(t, err)
	assert.Zero(t, summary.Products)
}
