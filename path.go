package jsondelta

import (
	"fmt"
	"strconv"
	"strings"
)

// rootMarker begins every path expression
const rootMarker = "$"

// PathItem is one dot-separated segment of a path expression. A segment
// carrying one or more bracket groups descends into nested arrays within a
// single field: "list[0][2]" is field "list", outer index 0, inner index 2
type PathItem struct {
	// field name with any bracket suffix stripped
	Key string
	// IsArray is true when the segment carries bracket indices
	IsArray bool
	// array indices, outer-to-inner
	Indices []int
	// IsLast is true for the final segment of the path
	IsLast bool
}

// IsRoot reports whether the item is the "$" root marker
func (pi PathItem) IsRoot() bool {
	return pi.Key == rootMarker
}

// AnalysePath parses a path expression into an ordered list of segments
func AnalysePath(path string) ([]PathItem, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	segments := strings.Split(path, ".")
	items := make([]PathItem, 0, len(segments))
	for i, seg := range segments {
		item, err := analyseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", ErrInvalidPath, path, err)
		}
		if item.Key == "" && !(i == 0 && item.IsArray) {
			return nil, fmt.Errorf("%w: %q: empty segment %d", ErrInvalidPath, path, i)
		}
		if i == 0 && !item.IsRoot() && item.Key != "" {
			return nil, fmt.Errorf("%w: %q: paths start at the root marker", ErrInvalidPath, path)
		}
		if i > 0 && item.IsRoot() {
			return nil, fmt.Errorf("%w: %q: root marker in segment %d", ErrInvalidPath, path, i)
		}
		item.IsLast = i == len(segments)-1
		items = append(items, item)
	}

	return items, nil
}

func analyseSegment(seg string) (item PathItem, err error) {
	start := strings.IndexByte(seg, '[')
	if start == -1 {
		if strings.IndexByte(seg, ']') != -1 {
			return item, fmt.Errorf("unopened bracket in %q", seg)
		}
		item.Key = seg
		return item, nil
	}

	item.Key = seg[:start]
	rest := seg[start:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return item, fmt.Errorf("unexpected %q after index in %q", rest, seg)
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return item, fmt.Errorf("unclosed bracket in %q", seg)
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 || rest[1] == '+' {
			return item, fmt.Errorf("invalid index %q in %q", rest[1:end], seg)
		}
		item.Indices = append(item.Indices, idx)
		rest = rest[end+1:]
	}
	item.IsArray = true

	return item, nil
}

// step is a single field or index access
type step struct {
	key     string
	index   int
	isIndex bool
}

// steps flattens path items into single accesses, dropping the root marker
func steps(items []PathItem) []step {
	var sts []step
	for i, item := range items {
		if !(i == 0 && item.IsRoot()) && item.Key != "" {
			sts = append(sts, step{key: item.Key})
		}
		for _, idx := range item.Indices {
			sts = append(sts, step{index: idx, isIndex: true})
		}
	}
	return sts
}

// JoinPath renders path items as a path expression. It is the inverse of
// AnalysePath
func JoinPath(items []PathItem) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(item.Key)
		for _, idx := range item.Indices {
			sb.WriteString(appendIndex("", idx))
		}
	}
	return sb.String()
}

func appendKey(path, key string) string {
	return path + "." + key
}

func appendIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// Lookup resolves a path expression against a document, reporting whether
// the path addresses a value. the value may be a leaf or a container
func Lookup(tree interface{}, path string) (interface{}, bool) {
	items, err := AnalysePath(path)
	if err != nil {
		return nil, false
	}
	return resolve(tree, steps(items))
}

func resolve(tree interface{}, sts []step) (interface{}, bool) {
	cur := tree
	for _, st := range sts {
		if st.isIndex {
			arr, ok := cur.([]interface{})
			if !ok || st.index >= len(arr) {
				return nil, false
			}
			cur = arr[st.index]
			continue
		}
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = obj[st.key]; !ok {
			return nil, false
		}
	}
	return cur, true
}
