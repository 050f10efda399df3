package vectordb

// Record is a single stored point: a storage identifier, an optional vector
// and the metadata the domain reads and filters on.
type Record struct {
	// ID is the storage identifier used for direct addressing and deletion.
	ID string `json:"id"`

	// Vector may be empty; adapters substitute a placeholder when the
	// backing service requires one.
	Vector []float32 `json:"vector,omitempty"`

	// Metadata holds the record's fields.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Query selects records by metadata.
type Query struct {
	// Filter is optional metadata filtering (implicit AND of equality conditions)
	Filter *FilterSet `json:"filter,omitempty"`

	// TopK is the maximum number of matches to return
	TopK int `json:"topK"`

	// IncludeMetadata controls whether Match.Metadata is populated
	IncludeMetadata bool `json:"includeMetadata"`

	// Offset is the storage id to start from, inclusive, in store order.
	// Empty starts at the beginning. See ScanAll.
	Offset string `json:"offset,omitempty"`
}

// Match is one record returned by Query.
type Match struct {
	// ID is the storage identifier of the matched record
	ID string `json:"id"`

	// Score is meaningless for metadata-only lookups and usually zero
	Score float32 `json:"score"`

	// Metadata is nil unless the query asked for it
	Metadata map[string]any `json:"metadata,omitempty"`
}
