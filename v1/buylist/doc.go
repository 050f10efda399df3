/*
Package buylist keeps one buy list per buyer company and migrates the legacy
one-record-per-email lists into that shape.

A stored record carries the buyer identity (email, companyName, phoneNumber),
the product names in productList and a productCount. Legacy records may hold
productList as a JSON-encoded string; Decode accepts both shapes and Metadata
always writes a native list.

# Editing buy lists

	svc := buylist.NewService(sourcing.Params{Store: store, Config: sourcing.DefaultConfig()})
	rec, err := svc.AddItem(ctx, buyer, "Acetone")

# Migration

Migrator.Run scans the buy-list namespace and rewrites every legacy record.
The new record is written before the legacy one is deleted and carries the
legacy id in originalId, so a run that stops halfway is finished by the next.
Records missing companyName or phoneNumber are reported for manual review and
left untouched.

	m := buylist.NewMigrator(buylist.MigratorParams{Store: store, Config: cfg, Locker: locks})
	summary, err := m.Run(ctx, buylist.Options{DryRun: true})

When a Locker is configured only one run proceeds at a time. When a
Snapshotter is configured the scanned records are copied out before the first
write.
*/
package buylist
