package sourcing

import (
	"github.com/chemsource/sourcing/v1/vectordb"
)

// ProductIDField is the payload key holding a product's business id.
const ProductIDField = "productId"

// BuildFilter returns exact, case-sensitive equality conditions for every
// non-empty field of t, plus productId when given. Empty fields are left
// unconstrained. Nil means nothing was constrained.
//
// Callers normalize t first; BuildFilter uses the strings as given.
func BuildFilter(fields FieldNames, t Triple, productID ProductID) *vectordb.FilterSet {
	var conds []vectordb.FilterCondition
	if t.Email != "" {
		conds = append(conds, vectordb.NewMatch(fields.Email, t.Email))
	}
	if t.CompanyName != "" {
		conds = append(conds, vectordb.NewMatch(fields.Company, t.CompanyName))
	}
	if t.ContactNumber != "" {
		conds = append(conds, vectordb.NewMatch(fields.Contact, t.ContactNumber))
	}
	if productID != "" {
		conds = append(conds, vectordb.NewMatch(ProductIDField, string(productID)))
	}
	if len(conds) == 0 {
		return nil
	}
	return vectordb.NewFilterSet(vectordb.Must(conds...))
}

// BuildDestructiveFilter is BuildFilter for updates and deletes. It refuses to
// build anything narrower than the full triple plus productId.
func BuildDestructiveFilter(fields FieldNames, t Triple, productID ProductID) (*vectordb.FilterSet, error) {
	if !t.Complete() || productID == "" {
		return nil, ErrUnscopedDestructive
	}
	return BuildFilter(fields, t, productID), nil
}

// BuildIdentityFilter requires the complete triple. It scopes record-level
// writes such as profile creation and buy-list edits.
func BuildIdentityFilter(fields FieldNames, t Triple) (*vectordb.FilterSet, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return BuildFilter(fields, t, ""), nil
}
