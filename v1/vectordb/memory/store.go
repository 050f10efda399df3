// Package memory provides an in-process vectordb.Store.
//
// Records keep their insertion order, so enumeration is stable across calls
// as long as the namespace is unchanged. A query Offset that names no stored
// record yields nothing. Filters use the same exact equality
// rules as the production store.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/chemsource/sourcing/v1/vectordb"
)

type namespace struct {
	order   []string
	records map[string]vectordb.Record
}

// Store is a thread-safe in-memory implementation of vectordb.Store.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
}

var _ vectordb.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{namespaces: make(map[string]*namespace)}
}

func (s *Store) Upsert(ctx context.Context, ns string, records []vectordb.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("%w: empty id", vectordb.ErrInvalidRecord)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[ns]
	if !ok {
		n = &namespace{records: make(map[string]vectordb.Record)}
		s.namespaces[ns] = n
	}
	for _, r := range records {
		if _, exists := n.records[r.ID]; !exists {
			n.order = append(n.order, r.ID)
		}
		n.records[r.ID] = vectordb.Record{
			ID:       r.ID,
			Vector:   append([]float32(nil), r.Vector...),
			Metadata: maps.Clone(r.Metadata),
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, ns string, q vectordb.Query) ([]vectordb.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.namespaces[ns]
	if !ok {
		return nil, nil
	}

	order := n.order
	if q.Offset != "" {
		i := slices.Index(order, q.Offset)
		if i < 0 {
			return nil, nil
		}
		order = order[i:]
	}

	want := q.Filter.Equalities()
	var out []vectordb.Match
	for _, id := range order {
		if q.TopK > 0 && len(out) >= q.TopK {
			break
		}
		r := n.records[id]
		if !matches(r.Metadata, want) {
			continue
		}
		m := vectordb.Match{ID: r.ID}
		if q.IncludeMetadata {
			m.Metadata = maps.Clone(r.Metadata)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ns string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.namespaces[ns]
	if !ok {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := n.records[id]; exists {
			drop[id] = struct{}{}
			delete(n.records, id)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	kept := n.order[:0]
	for _, id := range n.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	n.order = kept
	return nil
}

// Len returns the number of records in a namespace.
func (s *Store) Len(ns string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.namespaces[ns]; ok {
		return len(n.order)
	}
	return 0
}

func matches(metadata map[string]any, want map[string]any) bool {
	for field, value := range want {
		stored, ok := metadata[field]
		if !ok || !vectordb.ValuesEqual(stored, value) {
			return false
		}
	}
	return true
}
