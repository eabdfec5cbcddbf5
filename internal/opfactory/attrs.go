package opfactory

import (
	"math"
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// Attrs maps attribute names to scalar or array values.
//
// Loaders store integers as int, other numbers as float64, and numeric arrays
// as []int or []float64; the accessors below also accept the other common Go
// numeric types.
type Attrs map[string]any

// Clone returns a deep copy: slices and nested maps are copied too.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	clone := make(Attrs, len(a))
	for k, v := range a {
		clone[k] = cloneValue(v)
	}
	return clone
}

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []int:
		return slices.Clone(x)
	case []int64:
		return slices.Clone(x)
	case []float64:
		return slices.Clone(x)
	case []float32:
		return slices.Clone(x)
	case []string:
		return slices.Clone(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case Attrs:
		return x.Clone()
	case map[string]any:
		return Attrs(x).Clone()
	default:
		return v
	}
}

// mergeAttrs merges maps left to right; later maps overwrite earlier keys.
func mergeAttrs(all ...Attrs) Attrs {
	merged := make(Attrs)
	for _, a := range all {
		for k, v := range a {
			merged[k] = cloneValue(v)
		}
	}
	return merged
}

// GetAttrInt returns an integer attribute or default value.
func GetAttrInt(attrs Attrs, name string, defaultVal int) int {
	if v, ok := lookupInt(attrs, name); ok {
		return v
	}
	return defaultVal
}

// GetAttrInts returns an integer array attribute, nil if absent or not integral.
func GetAttrInts(attrs Attrs, name string) []int {
	v, _ := lookupInts(attrs, name)
	return v
}

// GetAttrFloat returns a float attribute or default value.
func GetAttrFloat(attrs Attrs, name string, defaultVal float64) float64 {
	switch x := attrs[name].(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	}
	return defaultVal
}

// GetAttrString returns a string attribute or default value.
func GetAttrString(attrs Attrs, name, defaultVal string) string {
	if s, ok := attrs[name].(string); ok {
		return s
	}
	return defaultVal
}

// GetAttrBool returns a boolean attribute or default value. Numbers are true when non-zero.
func GetAttrBool(attrs Attrs, name string, defaultVal bool) bool {
	switch x := attrs[name].(type) {
	case bool:
		return x
	case nil:
		return defaultVal
	}
	if f, ok := asFloat(attrs[name]); ok {
		return f != 0
	}
	return defaultVal
}

func lookupInt(attrs Attrs, name string) (int, bool) {
	v, ok := attrs[name]
	if !ok {
		return 0, false
	}
	return asInt(v)
}

func lookupInts(attrs Attrs, name string) ([]int, bool) {
	switch x := attrs[name].(type) {
	case []int:
		return slices.Clone(x), true
	case []int64:
		return intsOf(x), true
	case []int32:
		return intsOf(x), true
	case []float64:
		if !allIntegral(x) {
			return nil, false
		}
		return intsOf(x), true
	case []any:
		out := make([]int, len(x))
		for i, item := range x {
			n, ok := asInt(item)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case int32:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case float32:
		if float64(x) != math.Trunc(float64(x)) {
			return 0, false
		}
		return int(x), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}

func intsOf[T constraints.Integer | constraints.Float](values []T) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

func allIntegral[T constraints.Float](values []T) bool {
	for _, v := range values {
		if float64(v) != math.Trunc(float64(v)) {
			return false
		}
	}
	return true
}
