package jsondelta

// RemoveEmptyLevels prunes empty values from a document, bottom up. Children
// are pruned before their parent is checked, so a parent left empty by
// pruning is removed as well. containers are rewritten in place, callers
// should use the returned value
func RemoveEmptyLevels(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for key, child := range x {
			child = RemoveEmptyLevels(child)
			if IsEmpty(child) {
				delete(x, key)
				continue
			}
			x[key] = child
		}
		return x
	case []interface{}:
		kept := x[:0]
		for _, child := range x {
			child = RemoveEmptyLevels(child)
			if !IsEmpty(child) {
				kept = append(kept, child)
			}
		}
		return kept
	default:
		return v
	}
}

// IsEmpty is true for null, the empty string, an empty array and an empty
// object. false & 0 are not empty
func IsEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []interface{}:
		return len(x) == 0
	case map[string]interface{}:
		return len(x) == 0
	}
	return false
}
