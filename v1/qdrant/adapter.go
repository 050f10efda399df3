package qdrant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/chemsource/sourcing/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// Adapter implements vectordb.Store on Qdrant.
//
// Each namespace is a collection named CollectionPrefix+namespace. Records
// are looked up with Scroll, so queries never depend on vector similarity;
// records without a vector are stored with a placeholder unit vector.
type Adapter struct {
	client *QdrantClient

	mu      sync.Mutex
	ensured map[string]struct{}
}

var _ vectordb.Store = (*Adapter)(nil)

// NewAdapter creates a Store backed by client.
func NewAdapter(client *QdrantClient) *Adapter {
	return &Adapter{
		client:  client,
		ensured: make(map[string]struct{}),
	}
}

// EnsureNamespace creates the namespace's collection if it does not exist
// and adds keyword payload indexes for the given fields. Safe to call
// repeatedly.
func (a *Adapter) EnsureNamespace(ctx context.Context, namespace string, keywordFields ...string) error {
	if namespace == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	name := a.client.cfg.CollectionName(namespace)

	ctx, cancel := a.client.withTimeout(ctx)
	defer cancel()

	collections, err := a.client.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", TranslateError(err))
	}

	if !slices.Contains(collections, name) {
		a.client.logger.Info("creating qdrant collection", nil, map[string]interface{}{
			"collection":  name,
			"vector_size": a.client.cfg.VectorSize,
		})
		err := a.client.api.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     max(a.client.cfg.VectorSize, 1),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %q: %w", name, TranslateError(err))
		}
	}

	wait := true
	for _, field := range keywordFields {
		_, err := a.client.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			Wait:           &wait,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to index field %q on %q: %w", field, name, TranslateError(err))
		}
	}

	a.mu.Lock()
	a.ensured[namespace] = struct{}{}
	a.mu.Unlock()
	return nil
}

func (a *Adapter) isEnsured(namespace string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ensured[namespace]
	return ok
}

// Upsert writes records and blocks until Qdrant has applied them.
// The collection is created on first write if needed.
func (a *Adapter) Upsert(ctx context.Context, namespace string, records []vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	if !a.isEnsured(namespace) {
		if err := a.EnsureNamespace(ctx, namespace); err != nil {
			return err
		}
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: empty id", vectordb.ErrInvalidRecord)
		}
		payload, err := toPayload(r.Metadata)
		if err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		vector := r.Vector
		if len(vector) == 0 {
			vector = placeholderVector(a.client.cfg.VectorSize)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(r.ID),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		})
	}

	ctx, cancel := a.client.withTimeout(ctx)
	defer cancel()

	wait := true
	_, err := a.client.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: a.client.cfg.CollectionName(namespace),
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", TranslateError(err))
	}
	return nil
}

// Query scrolls the collection with the converted filter. A missing
// collection holds no records and yields an empty result.
func (a *Adapter) Query(ctx context.Context, namespace string, q vectordb.Query) ([]vectordb.Match, error) {
	filter, err := convertFilterSet(q.Filter)
	if err != nil {
		return nil, err
	}

	limit := a.client.cfg.DefaultLimit
	if q.TopK > 0 {
		limit = uint32(q.TopK)
	}

	ctx, cancel := a.client.withTimeout(ctx)
	defer cancel()

	req := &qdrant.ScrollPoints{
		CollectionName: a.client.cfg.CollectionName(namespace),
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(q.IncludeMetadata),
	}
	if q.Offset != "" {
		req.Offset = pointID(q.Offset)
	}
	points, err := a.client.api.Scroll(ctx, req)
	if err != nil {
		translated := TranslateError(err)
		if errors.Is(translated, vectordb.ErrNamespaceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("qdrant scroll failed: %w", translated)
	}

	matches := make([]vectordb.Match, 0, len(points))
	for _, p := range points {
		id, err := extractPointID(p.GetId())
		if err != nil {
			return nil, err
		}
		m := vectordb.Match{ID: id}
		if q.IncludeMetadata {
			m.Metadata = convertPayload(p.GetPayload())
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Delete removes points by storage identifier and waits for completion.
func (a *Adapter) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	ctx, cancel := a.client.withTimeout(ctx)
	defer cancel()

	wait := true
	_, err := a.client.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: a.client.cfg.CollectionName(namespace),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: pointIDs},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		translated := TranslateError(err)
		if errors.Is(translated, vectordb.ErrNamespaceNotFound) {
			return nil
		}
		return fmt.Errorf("qdrant delete failed: %w", translated)
	}
	return nil
}
