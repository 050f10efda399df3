package vectordb

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FilterCondition is the interface all filter conditions must implement.
// Each database adapter converts these to its native filter format.
type FilterCondition interface {
	// IsFilterCondition is a marker method to ensure type safety
	IsFilterCondition()
}

// FilterSet is an implicit AND of conditions. The stores this package targets
// are only ever queried with equality predicates joined by AND.
//
// Example:
//
//	filters := &FilterSet{
//	    Must: &ConditionSet{
//	        Conditions: []FilterCondition{
//	            &MatchCondition{Field: "sellerEmail", Value: "ops@acme.example"},
//	        },
//	    },
//	}
type FilterSet struct {
	// Must: All conditions must match (AND)
	Must *ConditionSet `json:"must,omitempty"`
}

// ConditionSet holds a group of conditions for a single clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// MatchCondition represents an exact match filter (WHERE field = value).
// Supports string, bool, and int64 values. String comparison is exact and
// case-sensitive; no trimming happens at this layer.
type MatchCondition struct {
	Field string `json:"field"`
	Value any    `json:"equalTo"`
}

func (c *MatchCondition) IsFilterCondition() {}

// Conditions returns the Must conditions, or nil for an empty filter.
func (f *FilterSet) Conditions() []FilterCondition {
	if f == nil || f.Must == nil {
		return nil
	}
	return f.Must.Conditions
}

// IsEmpty reports whether the filter constrains nothing.
func (f *FilterSet) IsEmpty() bool {
	return len(f.Conditions()) == 0
}

// Equalities returns the filter as field -> value for every MatchCondition.
func (f *FilterSet) Equalities() map[string]any {
	out := make(map[string]any)
	for _, c := range f.Conditions() {
		if m, ok := c.(*MatchCondition); ok {
			out[m.Field] = m.Value
		}
	}
	return out
}

// String renders the filter deterministically, e.g.
// {sellerEmail="ops@acme.example" AND sellerName="Acme Co"}.
// Values are quoted so that whitespace differences stay visible.
func (f *FilterSet) String() string {
	eq := f.Equalities()
	if len(eq) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(eq))
	for k := range eq {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := eq[k].(type) {
		case string:
			parts = append(parts, fmt.Sprintf("%s=%q", k, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return "{" + strings.Join(parts, " AND ") + "}"
}

// MarshalJSON implements custom JSON marshaling for ConditionSet.
// This is needed because FilterCondition is an interface.
func (cs *ConditionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.Conditions)
}

// UnmarshalJSON decodes a list of equality conditions.
func (cs *ConditionSet) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cs.Conditions = make([]FilterCondition, 0, len(raw))
	for _, r := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(r, &fields); err != nil {
			return err
		}
		if _, ok := fields["equalTo"]; !ok {
			return fmt.Errorf("unknown filter condition type: %s", string(r))
		}
		var c MatchCondition
		if err := json.Unmarshal(r, &c); err != nil {
			return err
		}
		cs.Conditions = append(cs.Conditions, &c)
	}
	return nil
}
