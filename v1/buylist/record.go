package buylist

import (
	"encoding/json"
	"maps"
	"strings"
	"time"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/vectordb"
)

// Payload keys of a buy-list record beyond the identity fields.
const (
	FieldProductList   = "productList"
	FieldProductCount  = "productCount"
	FieldMigratedAt    = "migratedAt"
	FieldOriginalID    = "originalId"
	FieldMergedFrom    = "mergedFrom"
	FieldRecordVersion = "recordVersion"
	FieldUpdatedAt     = "updatedAt"
)

// CurrentVersion marks records in the one-record-per-company shape. Legacy
// records carry no version.
const CurrentVersion = 2

// ListShape tells how a stored productList was encoded.
type ListShape int

const (
	ShapeAbsent ListShape = iota
	ShapeNative
	ShapeJSONString
)

func (s ListShape) String() string {
	switch s {
	case ShapeNative:
		return "native"
	case ShapeJSONString:
		return "json-string"
	default:
		return "absent"
	}
}

// Record is one company's buy list. MergedFrom lists the legacy records
// folded into it after it was first written.
type Record struct {
	StorageID    sourcing.StorageID   `json:"storageId"`
	Identity     sourcing.Triple      `json:"identity"`
	ProductList  []string             `json:"productList"`
	ProductCount int                  `json:"productCount"`
	MigratedAt   time.Time            `json:"migratedAt,omitzero"`
	OriginalID   sourcing.StorageID   `json:"originalId,omitempty"`
	MergedFrom   []sourcing.StorageID `json:"mergedFrom,omitempty"`
	UpdatedAt    time.Time            `json:"updatedAt,omitzero"`

	// Extra holds every other stored field, copied through unchanged.
	Extra map[string]any `json:"-"`

	version int64
	shape   ListShape
}

// Shape reports how the product list was stored when the record was read.
func (r Record) Shape() ListShape { return r.shape }

// Legacy reports whether the record predates the per-company shape.
func (r Record) Legacy() bool {
	return r.version < CurrentVersion && r.OriginalID == ""
}

// DecodeProductList accepts a native list or a JSON-encoded string of one.
// Malformed JSON is ErrMalformedStoredData.
func DecodeProductList(v any) ([]string, ListShape, error) {
	switch val := v.(type) {
	case nil:
		return nil, ShapeAbsent, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return []string{}, ShapeJSONString, nil
		}
		var items []string
		if err := json.Unmarshal([]byte(val), &items); err != nil {
			return nil, ShapeJSONString, &sourcing.FieldError{
				Err:   sourcing.ErrMalformedStoredData,
				Field: FieldProductList,
				Cause: err,
			}
		}
		return items, ShapeJSONString, nil
	default:
		items, err := sourcing.Payload{FieldProductList: v}.Strings(FieldProductList)
		if err != nil {
			return nil, ShapeNative, err
		}
		return items, ShapeNative, nil
	}
}

var knownFields = map[string]struct{}{
	FieldProductList:             {},
	FieldProductCount:            {},
	FieldMigratedAt:              {},
	FieldOriginalID:              {},
	FieldMergedFrom:              {},
	FieldRecordVersion:           {},
	FieldUpdatedAt:               {},
	sourcing.BuyerFields.Email:   {},
	sourcing.BuyerFields.Company: {},
	sourcing.BuyerFields.Contact: {},
}

// Decode reads a stored buy-list record of either shape. Identity fields
// stored as numbers are formatted as strings.
func Decode(m vectordb.Match) (Record, error) {
	p := sourcing.Payload(m.Metadata)
	r := Record{StorageID: sourcing.StorageID(m.ID), Extra: map[string]any{}}

	var err error
	if r.Identity.Email, err = p.String(sourcing.BuyerFields.Email); err != nil {
		return Record{}, err
	}
	if r.Identity.CompanyName, err = p.String(sourcing.BuyerFields.Company); err != nil {
		return Record{}, err
	}
	if r.Identity.ContactNumber, err = p.String(sourcing.BuyerFields.Contact); err != nil {
		return Record{}, err
	}
	if r.ProductList, r.shape, err = DecodeProductList(m.Metadata[FieldProductList]); err != nil {
		return Record{}, err
	}
	r.ProductCount = len(r.ProductList)

	if r.MigratedAt, err = p.Time(FieldMigratedAt); err != nil {
		return Record{}, err
	}
	if r.UpdatedAt, err = p.Time(FieldUpdatedAt); err != nil {
		return Record{}, err
	}
	original, err := p.String(FieldOriginalID)
	if err != nil {
		return Record{}, err
	}
	r.OriginalID = sourcing.StorageID(original)
	merged, err := p.Strings(FieldMergedFrom)
	if err != nil {
		return Record{}, err
	}
	for _, id := range merged {
		r.MergedFrom = append(r.MergedFrom, sourcing.StorageID(id))
	}
	if r.version, err = p.Int(FieldRecordVersion); err != nil {
		return Record{}, err
	}

	for k, v := range m.Metadata {
		if _, known := knownFields[k]; !known {
			r.Extra[k] = v
		}
	}
	return r, nil
}

// Metadata encodes the record in the current shape. The list is always
// written natively and productCount is recomputed from it.
func (r Record) Metadata() map[string]any {
	m := maps.Clone(r.Extra)
	if m == nil {
		m = map[string]any{}
	}
	list := r.ProductList
	if list == nil {
		list = []string{}
	}
	sourcing.BuyerFields.Put(m, r.Identity)
	m[FieldProductList] = list
	m[FieldProductCount] = int64(len(list))
	m[FieldRecordVersion] = int64(CurrentVersion)
	if !r.MigratedAt.IsZero() {
		m[FieldMigratedAt] = r.MigratedAt.UTC().Format(time.RFC3339)
	}
	if r.OriginalID != "" {
		m[FieldOriginalID] = string(r.OriginalID)
	}
	if len(r.MergedFrom) > 0 {
		ids := make([]string, len(r.MergedFrom))
		for i, id := range r.MergedFrom {
			ids[i] = string(id)
		}
		m[FieldMergedFrom] = ids
	}
	if !r.UpdatedAt.IsZero() {
		m[FieldUpdatedAt] = sourcing.FormatTime(r.UpdatedAt)
	}
	return m
}
