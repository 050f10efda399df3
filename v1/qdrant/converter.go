package qdrant

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chemsource/sourcing/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertFilterSet converts a vectordb.FilterSet to a Qdrant filter.
// A condition that cannot be expressed is an error: dropping it would widen
// the match, which is unacceptable for filters that scope deletes.
func convertFilterSet(filters *vectordb.FilterSet) (*qdrant.Filter, error) {
	conds := filters.Conditions()
	if len(conds) == 0 {
		return nil, nil
	}

	must := make([]*qdrant.Condition, 0, len(conds))
	for _, c := range conds {
		qc, err := convertCondition(c)
		if err != nil {
			return nil, err
		}
		must = append(must, qc)
	}
	return &qdrant.Filter{Must: must}, nil
}

func convertCondition(c vectordb.FilterCondition) (*qdrant.Condition, error) {
	m, ok := c.(*vectordb.MatchCondition)
	if !ok {
		return nil, fmt.Errorf("unsupported filter condition %T", c)
	}

	switch v := m.Value.(type) {
	case string:
		return qdrant.NewMatch(m.Field, v), nil
	case bool:
		return qdrant.NewMatchBool(m.Field, v), nil
	case int:
		return qdrant.NewMatchInt(m.Field, int64(v)), nil
	case int64:
		return qdrant.NewMatchInt(m.Field, v), nil
	case float64:
		// JSON numbers decode as float64; only integral ones have a match form
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("field %q: non-integral number %v cannot be matched exactly", m.Field, v)
		}
		return qdrant.NewMatchInt(m.Field, int64(v)), nil
	default:
		return nil, fmt.Errorf("field %q: unsupported match value type %T", m.Field, m.Value)
	}
}

// ── Point Conversion ─────────────────────────────────────────────────────────

// pointID maps a storage identifier onto a Qdrant point id. Qdrant accepts
// unsigned integers and UUIDs.
func pointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	return qdrant.NewID(id)
}

// extractPointID extracts a string ID from Qdrant's PointId type.
func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}

// toPayload converts record metadata to a Qdrant payload. Typed slices and
// nested maps are flattened to the []any and map[string]any shapes the SDK
// understands.
func toPayload(metadata map[string]any) (map[string]*qdrant.Value, error) {
	normalized := make(map[string]any, len(metadata))
	for k, v := range metadata {
		normalized[k] = normalizeValue(v)
	}
	payload, err := qdrant.TryValueMap(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vectordb.ErrInvalidRecord, err)
	}
	return payload, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []int64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// convertPayload converts Qdrant's protobuf payload to a generic map.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

// extractValue recursively converts a Qdrant Value to a Go native type.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}

// placeholderVector returns a unit vector of the given size.
func placeholderVector(size uint64) []float32 {
	if size == 0 {
		size = 1
	}
	vec := make([]float32, size)
	vec[0] = 1
	return vec
}
