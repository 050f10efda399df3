package buylist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/vectordb"
	"go.uber.org/fx"
)

// Locker grants exclusive access to a named resource. The returned function
// releases it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Snapshotter stores a copy of records before they are rewritten and returns
// where it put them.
type Snapshotter interface {
	Snapshot(ctx context.Context, namespace string, records []vectordb.Match) (location string, err error)
}

// Recorder counts per-record migration outcomes.
type Recorder interface {
	RecordMigrationOutcome(namespace, outcome string)
}

// State is what happened to one record during a run.
type State string

const (
	StateMigrated        State = "migrated"
	StateMerged          State = "merged"
	StateResumed         State = "resumed"
	StateAlreadyMigrated State = "already_migrated"
	StateSkipped         State = "skipped_for_manual_review"
	StateFailed          State = "failed"
)

// Report describes a skipped or failed record.
type Report struct {
	StorageID sourcing.StorageID `json:"storageId"`
	Email     string             `json:"email,omitempty"`
	State     State              `json:"state"`
	Reason    string             `json:"reason"`
	Err       error              `json:"-"`
}

// Summary is the end-of-run account of a migration.
type Summary struct {
	DryRun          bool     `json:"dryRun"`
	Scanned         int      `json:"scanned"`
	Migrated        int      `json:"migrated"`
	Merged          int      `json:"merged"`
	Resumed         int      `json:"resumed"`
	AlreadyMigrated int      `json:"alreadyMigrated"`
	Skipped         []Report `json:"skipped"`
	Failed          []Report `json:"failed"`
	Aborted         bool     `json:"aborted"`
	Snapshot        string   `json:"snapshot,omitempty"`
}

// Options control one migration run.
type Options struct {
	// DryRun computes the summary without writing or deleting anything.
	DryRun bool

	// LockKey and LockTTL are used when the Migrator has a Locker.
	LockKey string
	LockTTL time.Duration
}

const (
	DefaultLockKey = "sourcing:migrate-buylists"
	DefaultLockTTL = 30 * time.Minute
)

// MigratorParams groups the dependencies of a Migrator.
type MigratorParams struct {
	fx.In

	Store       vectordb.Store
	Config      sourcing.Config
	Logger      sourcing.Logger `optional:"true"`
	Tracer      sourcing.Tracer `optional:"true"`
	Locker      Locker          `optional:"true"`
	Snapshotter Snapshotter     `optional:"true"`
	Recorder    Recorder        `optional:"true"`

	Now func() time.Time `optional:"true"`
}

// Migrator rewrites legacy buy lists, one record per email, into one record
// per company.
type Migrator struct {
	sourcing.Base
	locker      Locker
	snapshotter Snapshotter
	recorder    Recorder
}

// NewMigrator creates a Migrator.
func NewMigrator(p MigratorParams) *Migrator {
	return &Migrator{
		Base: sourcing.NewBase(sourcing.Params{
			Store:  p.Store,
			Config: p.Config,
			Logger: p.Logger,
			Tracer: p.Tracer,
			Now:    p.Now,
		}),
		locker:      p.Locker,
		snapshotter: p.Snapshotter,
		recorder:    p.Recorder,
	}
}

// Run migrates every legacy record in the buy-list namespace.
//
// Each record is handled on its own: the new record is written first and the
// legacy record deleted only afterwards, so an interrupted run never loses
// data. A later run finishes such a record by deleting the legacy copy.
// Records without companyName or phoneNumber are left in place and reported.
// When ctx is done no further records are started; the partial summary is
// returned with ctx's error.
func (m *Migrator) Run(ctx context.Context, opts Options) (summary Summary, err error) {
	ctx, end := m.StartSpan(ctx, "buylist.Migrate", map[string]interface{}{"dry_run": opts.DryRun})
	defer func() { end(err) }()

	summary.DryRun = opts.DryRun
	ns := m.Config.BuyListsNamespace

	if m.locker != nil && !opts.DryRun {
		key, ttl := opts.LockKey, opts.LockTTL
		if key == "" {
			key = DefaultLockKey
		}
		if ttl <= 0 {
			ttl = DefaultLockTTL
		}
		release, err := m.locker.Lock(ctx, key, ttl)
		if err != nil {
			return summary, fmt.Errorf("acquire migration lock: %w", err)
		}
		defer func() {
			// release with a fresh context so an expired deadline still frees the lock
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				m.Log.Warn("failed to release migration lock", rerr, map[string]interface{}{"key": key})
			}
		}()
	}

	// the whole namespace is read before the first write so pages stay stable
	records, err := m.FindAll(ctx, ns, nil)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(records)

	if m.snapshotter != nil && !opts.DryRun && len(records) > 0 {
		location, err := m.snapshotter.Snapshot(ctx, ns, records)
		if err != nil {
			return summary, fmt.Errorf("snapshot before migration: %w", err)
		}
		summary.Snapshot = location
		m.Log.Info("buy lists snapshotted", nil, map[string]interface{}{"location": location, "records": len(records)})
	}

	idx := newIndex()
	decoded := make([]Record, len(records))
	decodeErrs := make([]error, len(records))
	for i, r := range records {
		decoded[i], decodeErrs[i] = Decode(r)
		if decodeErrs[i] == nil {
			idx.add(decoded[i])
		}
	}

	for i, rec := range decoded {
		if ctx.Err() != nil {
			summary.Aborted = true
			break
		}

		if decodeErrs[i] != nil {
			m.fail(&summary, records[i].ID, sourcing.Payload(records[i].Metadata).Lookup(sourcing.BuyerFields.Email), decodeErrs[i])
			continue
		}

		state, err := m.migrateOne(ctx, ns, rec, idx, opts.DryRun)
		switch state {
		case StateMigrated:
			summary.Migrated++
		case StateMerged:
			summary.Merged++
		case StateResumed:
			summary.Resumed++
		case StateAlreadyMigrated:
			summary.AlreadyMigrated++
		case StateSkipped:
			summary.Skipped = append(summary.Skipped, Report{
				StorageID: rec.StorageID,
				Email:     rec.Identity.Email,
				State:     StateSkipped,
				Reason:    err.Error(),
				Err:       err,
			})
		case StateFailed:
			m.fail(&summary, string(rec.StorageID), rec.Identity.Email, err)
			continue
		}
		m.record(ns, state)
	}

	m.Log.Info("buy-list migration finished", nil, map[string]interface{}{
		"dry_run":          summary.DryRun,
		"scanned":          summary.Scanned,
		"migrated":         summary.Migrated,
		"merged":           summary.Merged,
		"resumed":          summary.Resumed,
		"already_migrated": summary.AlreadyMigrated,
		"skipped":          len(summary.Skipped),
		"failed":           len(summary.Failed),
		"aborted":          summary.Aborted,
	})

	if summary.Aborted {
		return summary, ctx.Err()
	}
	return summary, nil
}

var errMissingIdentity = errors.New("companyName or phoneNumber missing")

func (m *Migrator) migrateOne(ctx context.Context, ns string, legacy Record, idx *index, dryRun bool) (State, error) {
	if !legacy.Legacy() {
		return StateAlreadyMigrated, nil
	}

	// an earlier run wrote the replacement but did not delete the legacy record
	if idx.hasOriginal(legacy.StorageID) {
		if !dryRun {
			if err := m.Store.Delete(ctx, ns, []string{string(legacy.StorageID)}); err != nil {
				return StateFailed, sourcing.StoreError("delete", ns, err)
			}
		}
		return StateResumed, nil
	}

	if legacy.Identity.CompanyName == "" || legacy.Identity.ContactNumber == "" || legacy.Identity.Email == "" {
		return StateSkipped, errMissingIdentity
	}

	identity := m.Normalize(legacy.Identity)
	now := m.Now()

	state := StateMigrated
	target := Record{
		StorageID:   sourcing.NewStorageID(),
		Identity:    identity,
		ProductList: slices.Clone(legacy.ProductList),
		MigratedAt:  now,
		OriginalID:  legacy.StorageID,
		UpdatedAt:   now,
		Extra:       legacy.Extra,
	}

	existing := idx.current(identity)
	switch {
	case len(existing) > 1:
		return StateFailed, &sourcing.MatchError{
			Kind:      sourcing.ErrMultiMatch,
			Namespace: ns,
			Filter:    sourcing.BuildFilter(sourcing.BuyerFields, identity, ""),
			Count:     len(existing),
		}
	case len(existing) == 1:
		// fold into the company's current record instead of creating a second one
		state = StateMerged
		merged := existing[0]
		for _, item := range legacy.ProductList {
			if !slices.Contains(merged.ProductList, item) {
				merged.ProductList = append(merged.ProductList, item)
			}
		}
		merged.MergedFrom = append(slices.Clone(merged.MergedFrom), legacy.StorageID)
		merged.UpdatedAt = now
		target = merged
	}

	if dryRun {
		return state, nil
	}

	if err := m.Store.Upsert(ctx, ns, []vectordb.Record{{
		ID:       string(target.StorageID),
		Metadata: target.Metadata(),
	}}); err != nil {
		return StateFailed, sourcing.StoreError("upsert", ns, err)
	}
	target.version = CurrentVersion
	if state == StateMigrated {
		idx.add(target)
	} else {
		idx.replace(target)
	}

	if err := m.Store.Delete(ctx, ns, []string{string(legacy.StorageID)}); err != nil {
		return StateFailed, fmt.Errorf("wrote %s but legacy delete failed, rerun to finish: %w",
			target.StorageID, sourcing.StoreError("delete", ns, err))
	}
	return state, nil
}

func (m *Migrator) fail(summary *Summary, id, email string, err error) {
	summary.Failed = append(summary.Failed, Report{
		StorageID: sourcing.StorageID(id),
		Email:     email,
		State:     StateFailed,
		Reason:    err.Error(),
		Err:       err,
	})
	m.Log.Warn("buy-list record failed", err, map[string]interface{}{"storage_id": id})
	m.record(m.Config.BuyListsNamespace, StateFailed)
}

func (m *Migrator) record(ns string, state State) {
	if m.recorder != nil {
		m.recorder.RecordMigrationOutcome(ns, string(state))
	}
}

// index tracks current-shape records by identity and the legacy ids they
// replaced, so a run sees its own writes without re-querying.
type index struct {
	originals map[sourcing.StorageID]struct{}
	byTriple  map[sourcing.Triple][]Record
}

func newIndex() *index {
	return &index{
		originals: make(map[sourcing.StorageID]struct{}),
		byTriple:  make(map[sourcing.Triple][]Record),
	}
}

func (x *index) add(r Record) {
	if r.Legacy() {
		return
	}
	x.remember(r)
	x.byTriple[r.Identity] = append(x.byTriple[r.Identity], r)
}

func (x *index) remember(r Record) {
	if r.OriginalID != "" {
		x.originals[r.OriginalID] = struct{}{}
	}
	for _, id := range r.MergedFrom {
		x.originals[id] = struct{}{}
	}
}

func (x *index) replace(r Record) {
	x.remember(r)
	list := x.byTriple[r.Identity]
	for i := range list {
		if list[i].StorageID == r.StorageID {
			list[i] = r
			return
		}
	}
	x.add(r)
}

func (x *index) hasOriginal(id sourcing.StorageID) bool {
	_, ok := x.originals[id]
	return ok
}

func (x *index) current(t sourcing.Triple) []Record {
	return x.byTriple[t]
}
