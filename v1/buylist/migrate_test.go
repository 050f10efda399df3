package buylist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/chemsource/sourcing/v1/vectordb/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type migrateFixture struct {
	store *memory.Store
	cfg   sourcing.Config
	ns    string
}

func newMigrateFixture(t *testing.T) migrateFixture {
	t.Helper()
	cfg := sourcing.DefaultConfig()
	return migrateFixture{store: memory.NewStore(), cfg: cfg, ns: cfg.BuyListsNamespace}
}

func (f migrateFixture) seed(t *testing.T, id string, metadata map[string]any) {
	t.Helper()
	require.NoError(t, f.store.Upsert(context.Background(), f.ns, []vectordb.Record{{ID: id, Metadata: metadata}}))
}

func (f migrateFixture) migrator(p MigratorParams) *Migrator {
	if p.Store == nil {
		p.Store = f.store
	}
	p.Config = f.cfg
	p.Now = func() time.Time { return fixedClock }
	return NewMigrator(p)
}

func (f migrateFixture) all(t *testing.T) []vectordb.Match {
	t.Helper()
	matches, err := f.store.Query(context.Background(), f.ns, vectordb.Query{IncludeMetadata: true})
	require.NoError(t, err)
	return matches
}

func legacyPayload(list any) map[string]any {
	m := map[string]any{
		"email":       buyer.Email,
		"companyName": buyer.CompanyName,
		"phoneNumber": buyer.ContactNumber,
	}
	if list != nil {
		m[FieldProductList] = list
	}
	return m
}

func TestRun_MigratesJSONStringList(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload(`["A","B"]`))

	summary, err := f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Migrated)
	assert.Empty(t, summary.Failed)

	matches := f.all(t)
	require.Len(t, matches, 1)
	assert.NotEqual(t, "legacy-1", matches[0].ID)

	rec, err := Decode(matches[0])
	require.NoError(t, err)
	assert.False(t, rec.Legacy())
	assert.Equal(t, []string{"A", "B"}, rec.ProductList)
	assert.Equal(t, int64(2), matches[0].Metadata[FieldProductCount])
	assert.Equal(t, sourcing.StorageID("legacy-1"), rec.OriginalID)
	assert.Equal(t, fixedClock, rec.MigratedAt)
	assert.Equal(t, buyer, rec.Identity)
}

func TestRun_SkipsIncompleteIdentity(t *testing.T) {
	f := newMigrateFixture(t)
	incomplete := legacyPayload([]any{"A"})
	delete(incomplete, "phoneNumber")
	f.seed(t, "legacy-1", incomplete)

	summary, err := f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, StateSkipped, summary.Skipped[0].State)
	assert.Equal(t, sourcing.StorageID("legacy-1"), summary.Skipped[0].StorageID)
	assert.Equal(t, buyer.Email, summary.Skipped[0].Email)

	matches, err := f.store.Query(context.Background(), f.ns, vectordb.Query{
		Filter:          vectordb.NewFilterSet(vectordb.Must(vectordb.NewMatch("email", buyer.Email))),
		IncludeMetadata: true,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "legacy-1", matches[0].ID)
}

func TestRun_MalformedListFailsRecordOnly(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "broken", legacyPayload(`["A",`))
	other := legacyPayload([]any{"C"})
	other["email"] = "second@acme.example"
	f.seed(t, "legacy-2", other)

	summary, err := f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, sourcing.StorageID("broken"), summary.Failed[0].StorageID)
	assert.ErrorIs(t, summary.Failed[0].Err, sourcing.ErrMalformedStoredData)
	assert.Equal(t, 1, summary.Migrated)
	assert.Len(t, f.all(t), 2)
}

func TestRun_Idempotent(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload([]any{"A"}))
	m := f.migrator(MigratorParams{})

	_, err := m.Run(context.Background(), Options{})
	require.NoError(t, err)
	first := f.all(t)

	summary, err := m.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Migrated)
	assert.Equal(t, 1, summary.AlreadyMigrated)
	assert.Equal(t, first, f.all(t))
}

func TestRun_ResumesAfterFailedDelete(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload([]any{"A"}))

	flaky := &failingDeletes{Store: f.store}
	summary, err := f.migrator(MigratorParams{Store: flaky}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, sourcing.ErrStoreUnavailable)
	assert.Len(t, f.all(t), 2)

	summary, err = f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resumed)
	assert.Equal(t, 1, summary.AlreadyMigrated)
	assert.Equal(t, 0, summary.Migrated)

	matches := f.all(t)
	require.Len(t, matches, 1)
	assert.Equal(t, "legacy-1", matches[0].Metadata[FieldOriginalID])
}

func TestRun_MergesIntoExistingCompanyRecord(t *testing.T) {
	f := newMigrateFixture(t)
	current := Record{StorageID: "current", Identity: buyer, ProductList: []string{"A"}}
	f.seed(t, "current", current.Metadata())
	f.seed(t, "legacy-1", legacyPayload([]any{"A", "B"}))

	summary, err := f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 1, summary.AlreadyMigrated)

	matches := f.all(t)
	require.Len(t, matches, 1)
	assert.Equal(t, "current", matches[0].ID)
	rec, err := Decode(matches[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rec.ProductList)
	assert.Equal(t, []sourcing.StorageID{"legacy-1"}, rec.MergedFrom)
	assert.Empty(t, rec.OriginalID)
}

func TestRun_ResumesMergeAfterFailedDelete(t *testing.T) {
	f := newMigrateFixture(t)
	current := Record{StorageID: "current", Identity: buyer, ProductList: []string{"A"}}
	f.seed(t, "current", current.Metadata())
	f.seed(t, "legacy-1", legacyPayload([]any{"B"}))

	flaky := &failingDeletes{Store: f.store}
	summary, err := f.migrator(MigratorParams{Store: flaky}).Run(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)

	summary, err = f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Resumed)
	assert.Equal(t, 0, summary.Merged)

	matches := f.all(t)
	require.Len(t, matches, 1)
	rec, err := Decode(matches[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rec.ProductList)
	assert.Equal(t, []sourcing.StorageID{"legacy-1"}, rec.MergedFrom)
}

func TestRun_ReadsPastScanLimit(t *testing.T) {
	f := newMigrateFixture(t)
	f.cfg.ScanLimit = 3
	for i, company := range []string{"Borax Ltd", "Cobalt Inc", "Delta Labs"} {
		current := Record{
			StorageID:   sourcing.StorageID(company),
			Identity:    sourcing.Triple{Email: buyer.Email, CompanyName: company, ContactNumber: buyer.ContactNumber},
			ProductList: []string{string(rune('A' + i))},
		}
		f.seed(t, company, current.Metadata())
	}
	f.seed(t, "legacy-1", legacyPayload([]any{"Z"}))

	summary, err := f.migrator(MigratorParams{}).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Scanned)
	assert.Equal(t, 3, summary.AlreadyMigrated)
	assert.Equal(t, 1, summary.Migrated)

	for _, m := range f.all(t) {
		assert.NotEqual(t, "legacy-1", m.ID)
	}
	assert.Len(t, f.all(t), 4)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload(`["A"]`))
	before := f.all(t)

	locks := &fakeLocker{}
	snaps := &fakeSnapshotter{}
	summary, err := f.migrator(MigratorParams{Locker: locks, Snapshotter: snaps}).Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Migrated)
	assert.Equal(t, before, f.all(t))
	assert.Zero(t, locks.acquired)
	assert.Zero(t, snaps.calls)
}

func TestRun_LockAndSnapshot(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload([]any{"A"}))

	locks := &fakeLocker{}
	snaps := &fakeSnapshotter{location: "s3://snapshots/buy-lists/1.json"}
	rec := &countingRecorder{}
	summary, err := f.migrator(MigratorParams{Locker: locks, Snapshotter: snaps, Recorder: rec}).Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, locks.acquired)
	assert.Equal(t, 1, locks.released)
	assert.Equal(t, DefaultLockKey, locks.key)
	assert.Equal(t, 1, snaps.calls)
	assert.Len(t, snaps.records, 1)
	assert.Equal(t, snaps.location, summary.Snapshot)
	assert.Equal(t, map[string]int{string(StateMigrated): 1}, rec.counts)
}

func TestRun_LockHeldElsewhere(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload([]any{"A"}))
	held := errors.New("lock not acquired")

	_, err := f.migrator(MigratorParams{Locker: &fakeLocker{err: held}}).Run(context.Background(), Options{})
	require.ErrorIs(t, err, held)
	assert.Equal(t, "legacy-1", f.all(t)[0].ID)
}

func TestRun_SnapshotFailureStopsBeforeWrites(t *testing.T) {
	f := newMigrateFixture(t)
	f.seed(t, "legacy-1", legacyPayload([]any{"A"}))

	_, err := f.migrator(MigratorParams{Snapshotter: &fakeSnapshotter{err: errors.New("bucket gone")}}).Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Equal(t, "legacy-1", f.all(t)[0].ID)
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	f := newMigrateFixture(t)
	for _, id := range []string{"l1", "l2", "l3"} {
		p := legacyPayload([]any{"A"})
		p["email"] = id + "@acme.example"
		f.seed(t, id, p)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &countingRecorder{onRecord: cancel}

	summary, err := f.migrator(MigratorParams{Recorder: rec}).Run(ctx, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, summary.Aborted)
	assert.Equal(t, 1, summary.Migrated)
	assert.Len(t, f.all(t), 3)
}

type failingDeletes struct {
	*memory.Store
}

func (s *failingDeletes) Delete(context.Context, string, []string) error {
	return vectordb.ErrUnavailable
}

type fakeLocker struct {
	err      error
	key      string
	acquired int
	released int
}

func (l *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.key = key
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakeSnapshotter struct {
	err      error
	location string
	calls    int
	records  []vectordb.Match
}

func (s *fakeSnapshotter) Snapshot(_ context.Context, _ string, records []vectordb.Match) (string, error) {
	s.calls++
	s.records = records
	return s.location, s.err
}

type countingRecorder struct {
	counts   map[string]int
	onRecord func()
}

func (r *countingRecorder) RecordMigrationOutcome(_, outcome string) {
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[outcome]++
	if r.onRecord != nil {
		r.onRecord()
	}
}
