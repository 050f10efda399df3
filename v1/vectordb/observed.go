package vectordb

import (
	"context"
	"time"

	"github.com/chemsource/sourcing/v1/observability"
)

const component = "vectordb"

// ObservedStore decorates a Store and reports every call to an Observer.
type ObservedStore struct {
	next     Store
	observer observability.Observer
}

// Observed wraps store so that each operation is reported to observer.
// A nil observer returns store unchanged.
func Observed(store Store, observer observability.Observer) Store {
	if observer == nil {
		return store
	}
	return &ObservedStore{next: store, observer: observer}
}

func (s *ObservedStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	start := time.Now()
	err := s.next.Upsert(ctx, namespace, records)
	s.observe("upsert", namespace, start, err, int64(len(records)), nil)
	return err
}

func (s *ObservedStore) Query(ctx context.Context, namespace string, q Query) ([]Match, error) {
	start := time.Now()
	matches, err := s.next.Query(ctx, namespace, q)
	s.observe("query", namespace, start, err, int64(len(matches)), map[string]interface{}{
		"filter": q.Filter.String(),
		"top_k":  q.TopK,
	})
	return matches, err
}

func (s *ObservedStore) Delete(ctx context.Context, namespace string, ids []string) error {
	start := time.Now()
	err := s.next.Delete(ctx, namespace, ids)
	s.observe("delete", namespace, start, err, int64(len(ids)), nil)
	return err
}

func (s *ObservedStore) observe(op, namespace string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	s.observer.ObserveOperation(observability.OperationContext{
		Component: component,
		Operation: op,
		Resource:  namespace,
		Duration:  time.Since(start),
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}

// EnsureNamespace forwards to the wrapped store when it supports it.
func (s *ObservedStore) EnsureNamespace(ctx context.Context, namespace string, keywordFields ...string) error {
	ensurer, ok := s.next.(NamespaceEnsurer)
	if !ok {
		return nil
	}
	start := time.Now()
	err := ensurer.EnsureNamespace(ctx, namespace, keywordFields...)
	s.observe("ensure", namespace, start, err, int64(len(keywordFields)), nil)
	return err
}
