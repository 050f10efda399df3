package vectordb

import (
	"context"
	"fmt"
)

// DefaultPageSize is used by ScanAll when no page size is given.
const DefaultPageSize = 1000

// ScanAll returns every record matching filter, with metadata, fetching
// pageSize records per query. Each page asks for one extra record whose id
// becomes the next page's Offset, so the namespace must not be written while
// the scan runs.
func ScanAll(ctx context.Context, store Store, namespace string, filter *FilterSet, pageSize int) ([]Match, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []Match
	offset := ""
	for {
		page, err := store.Query(ctx, namespace, Query{
			Filter:          filter,
			TopK:            pageSize + 1,
			IncludeMetadata: true,
			Offset:          offset,
		})
		if err != nil {
			return nil, err
		}
		if len(page) <= pageSize {
			return append(all, page...), nil
		}

		next := page[pageSize].ID
		if next == offset {
			return nil, fmt.Errorf("scan of %s did not advance past %s", namespace, offset)
		}
		all = append(all, page[:pageSize]...)
		offset = next
	}
}
