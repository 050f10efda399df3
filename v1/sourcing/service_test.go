package sourcing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/chemsource/sourcing/v1/vectordb/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	acme       = Triple{Email: "ops@acme.example", CompanyName: "Acme Co", ContactNumber: "+91 98200 00000"}
	acmeLabs   = Triple{Email: "ops@acme.example", CompanyName: "Acme Labs", ContactNumber: "+91 98200 00000"}
	acmeOther  = Triple{Email: "ops@acme.example", CompanyName: "Acme Co", ContactNumber: "+91 98200 11111"}
	fixedClock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc   *Service
	store *memory.Store
	cfg   Config
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	cfg := DefaultConfig()
	return fixture{
		svc:   NewService(Params{Store: store, Config: cfg, Now: func() time.Time { return fixedClock }}),
		store: store,
		cfg:   cfg,
	}
}

func newMockService(t *testing.T) (*Service, *vectordb.MockStore) {
	t.Helper()
	store := vectordb.NewMockStore(gomock.NewController(t))
	return NewService(Params{Store: store, Config: DefaultConfig()}), store
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, outcome, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{Region: "West"})
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, "West", first.Region)
	assert.Equal(t, fixedClock, first.CreatedAt)

	second, outcome, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{Region: "East"})
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, first.StorageID, second.StorageID)
	assert.Equal(t, "West", second.Region)

	assert.Equal(t, 1, f.store.Len(f.cfg.ProfilesNamespace))
}

func TestEnsureProfile_NormalizesBeforeLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.EnsureProfile(ctx, Triple{Email: " ops@acme.example", CompanyName: "Acme  Co", ContactNumber: acme.ContactNumber}, ProfileDefaults{})
	require.NoError(t, err)

	p, outcome, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{})
	require.NoError(t, err)
	assert.Equal(t, Existing, outcome)
	assert.Equal(t, "Acme Co", p.SellerName)
}

func TestEnsureProfile_SeparateCompaniesUnderOneEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tr := range []Triple{acme, acmeLabs, acmeOther} {
		_, outcome, err := f.svc.EnsureProfile(ctx, tr, ProfileDefaults{})
		require.NoError(t, err)
		assert.Equal(t, Created, outcome)
	}

	profiles, err := f.svc.ListProfiles(ctx, acme.Email)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, acme, profiles[0].Identity())
	assert.Equal(t, acmeLabs, profiles[1].Identity())
}

func TestEnsureProfile_MultiMatchSurfaced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := map[string]any{}
	SellerFields.Put(meta, acme)
	require.NoError(t, f.store.Upsert(ctx, f.cfg.ProfilesNamespace, []vectordb.Record{
		{ID: "p1", Metadata: meta},
		{ID: "p2", Metadata: meta},
	}))

	_, _, err := f.svc.EnsureProfile(ctx, acme, ProfileDefaults{})
	require.ErrorIs(t, err, ErrMultiMatch)
	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 2, me.Count)
	assert.Equal(t, 2, f.store.Len(f.cfg.ProfilesNamespace))
}

func TestEnsureProfile_IncompleteIdentity(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.EnsureProfile(context.Background(), Triple{Email: "a@b.example", CompanyName: "  "}, ProfileDefaults{})
	assert.ErrorIs(t, err, ErrIncompleteIdentity)
	assert.Zero(t, f.store.Len(f.cfg.ProfilesNamespace))
}

func TestAddProduct_SeparateIdentifiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductName: "Acetone", Price: 120, Pictures: []string{"a.png"}})
	require.NoError(t, err)
	assert.NotEmpty(t, p.StorageID)
	assert.NotEqual(t, string(p.StorageID), string(p.ProductID))
	assert.Regexp(t, `^PRD-\d+-[a-z0-9]{6}$`, string(p.ProductID))
	assert.Equal(t, acme, p.Identity)

	assert.Equal(t, 1, f.store.Len(f.cfg.ProfilesNamespace))
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))

	got, err := f.svc.GetProduct(ctx, acme, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, p.StorageID, got.StorageID)
	assert.Equal(t, []string{"a.png"}, got.Pictures)
	assert.Equal(t, 120.0, got.Price)
}

func TestAddProduct_DuplicateProductID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductID: "PRD-1", ProductName: "Acetone"})
	require.NoError(t, err)

	_, err = f.svc.AddProduct(ctx, acme, ProductFields{ProductID: "PRD-1", ProductName: "Toluene"})
	assert.ErrorIs(t, err, ErrDuplicateProductID)

	_, err = f.svc.AddProduct(ctx, acmeLabs, ProductFields{ProductID: "PRD-1", ProductName: "Toluene"})
	assert.NoError(t, err)
}

func TestDeleteProduct_IsolatedAcrossCompanies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductID: "PRD-1", ProductName: "Acetone"})
	require.NoError(t, err)
	_, err = f.svc.AddProduct(ctx, acmeLabs, ProductFields{ProductID: "PRD-1", ProductName: "Acetone"})
	require.NoError(t, err)
	_, err = f.svc.AddProduct(ctx, acmeOther, ProductFields{ProductID: "PRD-1", ProductName: "Acetone"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, acme, target.ProductID))

	assert.Equal(t, 2, f.store.Len(f.cfg.SellProductsNamespace))
	_, err = f.svc.GetProduct(ctx, acme, target.ProductID)
	assert.ErrorIs(t, err, ErrZeroMatch)

	for _, tr := range []Triple{acmeLabs, acmeOther} {
		_, err := f.svc.GetProduct(ctx, tr, "PRD-1")
		assert.NoError(t, err)
	}

	matches, err := f.store.Query(ctx, f.cfg.SellProductsNamespace, vectordb.Query{
		Filter: BuildFilter(SellerFields, acme, target.ProductID),
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteProduct_RequiresFullScope(t *testing.T) {
	f := newFixture(t)
	err := f.svc.DeleteProduct(context.Background(), Triple{Email: acme.Email}, "PRD-1")
	assert.ErrorIs(t, err, ErrUnscopedDestructive)

	err = f.svc.DeleteProduct(context.Background(), acme, "")
	assert.ErrorIs(t, err, ErrUnscopedDestructive)
}

func TestDeleteProduct_FilterMismatchReportsStoredVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := map[string]any{ProductIDField: "PRD-9"}
	SellerFields.Put(legacy, Triple{Email: acme.Email, CompanyName: "ACME  Co", ContactNumber: acme.ContactNumber})
	require.NoError(t, f.store.Upsert(ctx, f.cfg.SellProductsNamespace, []vectordb.Record{{ID: "legacy-1", Metadata: legacy}}))

	err := f.svc.DeleteProduct(ctx, acme, "PRD-9")
	require.ErrorIs(t, err, ErrFilterMismatch)
	assert.True(t, IsNotFound(err))

	var me *MatchError
	require.ErrorAs(t, err, &me)
	require.NotNil(t, me.Stored)
	assert.Equal(t, "ACME  Co", me.Stored.CompanyName)
	assert.Contains(t, err.Error(), `sellerName="Acme Co"`)
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))

	err = f.svc.DeleteProduct(ctx, acme, "PRD-404")
	assert.ErrorIs(t, err, ErrZeroMatch)
	assert.NotErrorIs(t, err, ErrFilterMismatch)
}

func TestDeleteProduct_MultiMatchAborts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := map[string]any{ProductIDField: "PRD-1"}
	SellerFields.Put(meta, acme)
	require.NoError(t, f.store.Upsert(ctx, f.cfg.SellProductsNamespace, []vectordb.Record{
		{ID: "a", Metadata: meta},
		{ID: "b", Metadata: meta},
	}))

	err := f.svc.DeleteProduct(ctx, acme, "PRD-1")
	assert.ErrorIs(t, err, ErrMultiMatch)
	assert.Equal(t, 2, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestDeleteProduct_PostDeleteVerification(t *testing.T) {
	svc, store := newMockService(t)
	ctx := context.Background()

	meta := map[string]any{ProductIDField: "PRD-1"}
	SellerFields.Put(meta, acme)
	found := []vectordb.Match{{ID: "sid-1", Metadata: meta}}

	gomock.InOrder(
		store.EXPECT().Query(gomock.Any(), "sell-products", gomock.Any()).Return(found, nil),
		store.EXPECT().Delete(gomock.Any(), "sell-products", []string{"sid-1"}).Return(nil),
		store.EXPECT().Query(gomock.Any(), "sell-products", gomock.Any()).Return(found, nil),
	)

	err := svc.DeleteProduct(ctx, acme, "PRD-1")
	assert.ErrorIs(t, err, ErrPostDeleteVerificationFailed)
}

func TestDeleteProduct_StoreUnavailable(t *testing.T) {
	svc, store := newMockService(t)
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, vectordb.ErrUnavailable)

	err := svc.DeleteProduct(context.Background(), acme, "PRD-1")
	assert.True(t, IsStoreUnavailable(err))
	assert.ErrorIs(t, err, vectordb.ErrUnavailable)
}

func TestDeleteProduct_DeleteFailureIsStoreUnavailable(t *testing.T) {
	svc, store := newMockService(t)
	meta := map[string]any{ProductIDField: "PRD-1"}
	SellerFields.Put(meta, acme)

	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return([]vectordb.Match{{ID: "sid-1", Metadata: meta}}, nil)
	store.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	err := svc.DeleteProduct(context.Background(), acme, "PRD-1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestUpdateProduct_IdempotentAndKeepsStorageID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductName: "Acetone", Price: 100})
	require.NoError(t, err)

	price := 150.0
	name := "Acetone 99%"
	pictures := []string{"b.png"}
	patch := ProductPatch{Price: &price, ProductName: &name, Pictures: &pictures}

	once, err := f.svc.UpdateProduct(ctx, acme, p.ProductID, patch)
	require.NoError(t, err)
	twice, err := f.svc.UpdateProduct(ctx, acme, p.ProductID, patch)
	require.NoError(t, err)

	for _, got := range []Product{once, twice} {
		assert.Equal(t, p.StorageID, got.StorageID)
		assert.Equal(t, price, got.Price)
		assert.Equal(t, name, got.ProductName)
		assert.Equal(t, pictures, got.Pictures)
	}

	stored, err := f.svc.GetProduct(ctx, acme, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, price, stored.Price)
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestUpdateProduct_ZeroMatch(t *testing.T) {
	f := newFixture(t)
	price := 1.0
	_, err := f.svc.UpdateProduct(context.Background(), acme, "PRD-404", ProductPatch{Price: &price})
	assert.ErrorIs(t, err, ErrZeroMatch)
	assert.Zero(t, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestGetProduct_MalformedStoredData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := map[string]any{ProductIDField: "PRD-1", "price": "twelve"}
	SellerFields.Put(meta, acme)
	require.NoError(t, f.store.Upsert(ctx, f.cfg.SellProductsNamespace, []vectordb.Record{{ID: "x", Metadata: meta}}))

	_, err := f.svc.GetProduct(ctx, acme, "PRD-1")
	assert.ErrorIs(t, err, ErrMalformedStoredData)
}

func TestListProducts_ScopedByTriple(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tr := range []Triple{acme, acme, acmeLabs} {
		_, err := f.svc.AddProduct(ctx, tr, ProductFields{ProductName: "x"})
		require.NoError(t, err)
	}

	got, err := f.svc.ListProducts(ctx, acme)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := f.svc.ListProducts(ctx, Triple{Email: acme.Email})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListProducts(ctx, Triple{})
	assert.ErrorIs(t, err, ErrIncompleteIdentity)
}

func TestPurgeProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.AddProduct(ctx, acme, ProductFields{ProductName: "x"})
		require.NoError(t, err)
	}
	_, err := f.svc.AddProduct(ctx, acmeLabs, ProductFields{ProductName: "y"})
	require.NoError(t, err)

	summary, err := f.svc.PurgeProducts(ctx, acme)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Matched)
	assert.Equal(t, 3, summary.Deleted)
	assert.Empty(t, summary.Failed)
	assert.False(t, summary.Aborted)
	assert.Equal(t, 1, f.store.Len(f.cfg.SellProductsNamespace))
}

func TestPurgeProducts_ContinuesPastFailures(t *testing.T) {
	svc, store := newMockService(t)
	metaFor := func(id string) map[string]any {
		m := map[string]any{ProductIDField: id}
		SellerFields.Put(m, acme)
		return m
	}

	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return([]vectordb.Match{
		{ID: "a", Metadata: metaFor("PRD-a")},
		{ID: "b", Metadata: metaFor("PRD-b")},
	}, nil)
	store.EXPECT().Delete(gomock.Any(), gomock.Any(), []string{"a"}).Return(errors.New("boom"))
	store.EXPECT().Delete(gomock.Any(), gomock.Any(), []string{"b"}).Return(nil)
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	summary, err := svc.PurgeProducts(context.Background(), acme)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, StorageID("a"), summary.Failed[0].StorageID)
	assert.ErrorIs(t, summary.Failed[0].Err, ErrStoreUnavailable)
}

func TestPurgeProducts_StopsWhenContextDone(t *testing.T) {
	svc, store := newMockService(t)
	cctx, cancel := context.WithCancel(context.Background())
	meta := map[string]any{}
	SellerFields.Put(meta, acme)
	store.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, vectordb.Query) ([]vectordb.Match, error) {
			cancel()
			return []vectordb.Match{{ID: "a", Metadata: meta}}, nil
		})

	summary, err := svc.PurgeProducts(cctx, acme)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, summary.Aborted)
	assert.Zero(t, summary.Deleted)
}

func TestBootstrap_MemoryStoreIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Bootstrap(context.Background()))
}
