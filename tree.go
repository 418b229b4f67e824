package jsondelta

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Kind defines all of the atoms in our universe, or the types of data we
// will encounter while walking a document tree
type Kind uint8

const (
	// KindUnknown defines a type outside our universe, treated as a leaf
	KindUnknown Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String implements the fmt.Stringer interface
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf reports the Kind of a decoded document value. Documents are
// expected to consist of the go types created by unmarshaling JSON:
//
//	map[string]interface{}
//	[]interface{}
//	string, float64, bool, nil
//
// any go integer or float type and json.Number are accepted as numbers
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return KindNumber
	default:
		return KindUnknown
	}
}

// IsLeaf is true for any value that is not an array or an object
func IsLeaf(v interface{}) bool {
	k := KindOf(v)
	return k != KindArray && k != KindObject
}

// Equal compares two document values. Numbers are compared by value, so an
// int 1 equals a float64 1
func Equal(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindNumber:
		fa, aok := toFloat(a)
		fb, bok := toFloat(b)
		if !aok || !bok {
			return reflect.DeepEqual(a, b)
		}
		return fa == fb
	case KindArray:
		aa, ba := a.([]interface{}), b.([]interface{})
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindObject:
		am, bm := a.(map[string]interface{}), b.(map[string]interface{})
		if len(am) != len(bm) {
			return false
		}
		for key, av := range am {
			bv, ok := bm[key]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// Render produces the canonical text form of a value: JSON with object keys
// sorted. values JSON can't represent fall back to their go formatting
func Render(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// sortedKeys returns object keys in the order the differ visits them.
// gotta sort keys for deterministic paths
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// frame is a pending visit in an explicit-stack walk
type frame struct {
	value interface{}
	path  string
	steps []step
	depth int
}

// walkLeaves visits every leaf of tree in depth-first order, object keys in
// sorted order & array elements in index order. Containers are descended
// into, never passed to fn. The walk keeps its own stack so document depth
// doesn't grow the call stack; maxDepth > 0 bounds container nesting
func walkLeaves(tree interface{}, maxDepth int, fn func(path string, steps []step, leaf interface{})) error {
	stack := []frame{{value: tree, path: rootMarker}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if maxDepth > 0 && f.depth > maxDepth {
			return fmt.Errorf("%w: %d levels at %s", ErrMaxDepth, f.depth, f.path)
		}

		switch x := f.value.(type) {
		case map[string]interface{}:
			keys := sortedKeys(x)
			// push in reverse so children pop in order
			for i := len(keys) - 1; i >= 0; i-- {
				key := keys[i]
				stack = append(stack, frame{
					value: x[key],
					path:  appendKey(f.path, key),
					steps: append(f.steps[:len(f.steps):len(f.steps)], step{key: key}),
					depth: f.depth + 1,
				})
			}
		case []interface{}:
			for i := len(x) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					value: x[i],
					path:  appendIndex(f.path, i),
					steps: append(f.steps[:len(f.steps):len(f.steps)], step{index: i, isIndex: true}),
					depth: f.depth + 1,
				})
			}
		default:
			fn(f.path, f.steps, f.value)
		}
	}

	return nil
}
