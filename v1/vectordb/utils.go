package vectordb

// NewFilterSet creates a FilterSet with the given clauses.
//
// Example:
//
//	vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("sellerEmail", email), vectordb.NewMatch("productId", id)),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must creates a Must clause (AND logic) with the given conditions.
// Conditions are appended, so Must may be passed more than once.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		if fs.Must == nil {
			fs.Must = &ConditionSet{}
		}
		fs.Must.Conditions = append(fs.Must.Conditions, conditions...)
	}
}

// NewMatch creates an equality condition.
func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value}
}

// ValuesEqual compares a stored metadata value with a filter value using the
// store's equality rules: strings and bools compare exactly, integers compare
// across int, int64 and integral float64 representations.
func ValuesEqual(stored, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := stored.(string)
		return ok && s == w
	case bool:
		b, ok := stored.(bool)
		return ok && b == w
	case int:
		n, ok := asInt64(stored)
		return ok && n == int64(w)
	case int64:
		n, ok := asInt64(stored)
		return ok && n == w
	default:
		return false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
