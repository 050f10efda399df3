package minio

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// SnapshotRecord is one stored record in a snapshot.
type SnapshotRecord struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
}

// Snapshot is the document written before a namespace is rewritten.
type Snapshot struct {
	Namespace string           `json:"namespace"`
	TakenAt   time.Time        `json:"takenAt"`
	Count     int              `json:"count"`
	Records   []SnapshotRecord `json:"records"`
}

// SnapshotWriter writes namespace snapshots as JSON objects under
// <prefix>/<namespace>/<timestamp>.json.
type SnapshotWriter struct {
	Client *MinioClient

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Snapshot uploads records and returns the bucket-qualified object key.
func (w SnapshotWriter) Snapshot(ctx context.Context, namespace string, records []vectordb.Match) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	doc := NewSnapshot(namespace, records, now())
	key := SnapshotKey(w.Client.cfg.SnapshotPrefix, namespace, doc.TakenAt)

	if _, err := w.Client.PutJSON(ctx, key, doc); err != nil {
		return "", err
	}
	w.Client.logger.Info("snapshot written", nil, map[string]interface{}{
		"bucket":  w.Client.Bucket(),
		"object":  key,
		"records": doc.Count,
	})
	return path.Join(w.Client.Bucket(), key), nil
}

// NewSnapshot builds the snapshot document for records.
func NewSnapshot(namespace string, records []vectordb.Match, takenAt time.Time) Snapshot {
	doc := Snapshot{
		Namespace: namespace,
		TakenAt:   takenAt.UTC(),
		Count:     len(records),
		Records:   make([]SnapshotRecord, 0, len(records)),
	}
	for _, r := range records {
		doc.Records = append(doc.Records, SnapshotRecord{ID: r.ID, Metadata: r.Metadata})
	}
	return doc
}

// SnapshotKey returns the object key of a snapshot taken at t.
func SnapshotKey(prefix, namespace string, t time.Time) string {
	return path.Join(prefix, namespace, fmt.Sprintf("%s.json", t.UTC().Format("20060102T150405.000Z")))
}
