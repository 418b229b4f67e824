package jsondelta

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
)

// JSONPatchOperation is a single RFC 6902 operation
type JSONPatchOperation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// MarshalJSON always writes value for add & replace, even when it's null
func (o JSONPatchOperation) MarshalJSON() ([]byte, error) {
	if o.Op == "remove" {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{o.Op, o.Path})
	}
	return json.Marshal(struct {
		Op    string      `json:"op"`
		Path  string      `json:"path"`
		Value interface{} `json:"value"`
	}{o.Op, o.Path, o.Value})
}

// ToJSONPatch converts deltas into an RFC 6902 patch for base. RFC 6902 never
// creates intermediate containers, so the deltas are replayed against a copy
// of base & "add" operations are emitted for every container Patch would
// create along the way. Delete runs are emitted in the order Patch applies
// them
func ToJSONPatch(base interface{}, deltas Deltas, opts PatchOptions) ([]JSONPatchOperation, error) {
	doc, err := clone(base)
	if err != nil {
		return nil, err
	}

	var ops []JSONPatchOperation
	for _, i := range applicationOrder(deltas, opts.Sequential) {
		dlt := deltas[i]
		if dlt == nil || !dlt.Operation.Valid() {
			return nil, &PatchError{Index: i, Delta: dlt, Err: ErrUnknownOperation}
		}
		items, err := AnalysePath(dlt.Path)
		if err != nil {
			return nil, &PatchError{Index: i, Delta: dlt, Err: err}
		}
		sts := steps(items)
		if len(sts) == 0 {
			return nil, &PatchError{Index: i, Delta: dlt, Err: fmt.Errorf("%w: json patch can't address the document root", ErrInvalidPath)}
		}
		pointer := toPointer(sts)

		switch dlt.Operation {
		case DTDelete:
			if _, ok := resolve(doc, sts); ok {
				ops = append(ops, JSONPatchOperation{Op: "remove", Path: pointer})
			}
		case DTChange:
			ops = append(ops, scaffold(doc, sts)...)
			if _, ok := resolve(doc, sts); ok {
				ops = append(ops, JSONPatchOperation{Op: "replace", Path: pointer, Value: dlt.NewValue})
			} else {
				ops = append(ops, JSONPatchOperation{Op: "add", Path: pointer, Value: dlt.NewValue})
			}
		case DTAdd:
			ops = append(ops, scaffold(doc, sts)...)
			ops = append(ops, JSONPatchOperation{Op: "add", Path: pointer, Value: dlt.NewValue})
		}

		value := dlt.NewValue
		if !IsLeaf(value) {
			if value, err = clone(value); err != nil {
				return nil, err
			}
		}
		if err := SetByPath(&doc, dlt.Path, value, dlt.Operation, opts); err != nil {
			return nil, &PatchError{Index: i, Delta: dlt, Err: err}
		}
	}

	return ops, nil
}

// scaffold lists the operations creating every container missing (or null) on
// the way to the parent of the final step, mirroring the placeholders
// SetByPath creates
func scaffold(doc interface{}, sts []step) (ops []JSONPatchOperation) {
	cur := doc
	for n, st := range sts[:len(sts)-1] {
		next := sts[n+1]
		prefix := toPointer(sts[:n+1])

		if st.isIndex {
			arr, ok := cur.([]interface{})
			if !ok {
				return ops
			}
			if st.index < len(arr) {
				if cur = arr[st.index]; cur == nil {
					cur = placeholder(next)
					ops = append(ops, JSONPatchOperation{Op: "replace", Path: prefix, Value: cur})
				}
				continue
			}
			parent := toPointer(sts[:n])
			for j := len(arr); j <= st.index; j++ {
				ops = append(ops, JSONPatchOperation{Op: "add", Path: parent + "/" + strconv.Itoa(j), Value: placeholder(next)})
			}
			cur = placeholder(next)
			continue
		}

		obj, ok := cur.(map[string]interface{})
		if !ok {
			return ops
		}
		if child, exists := obj[st.key]; exists {
			if cur = child; cur == nil {
				cur = placeholder(next)
				ops = append(ops, JSONPatchOperation{Op: "replace", Path: prefix, Value: cur})
			}
			continue
		}
		ops = append(ops, JSONPatchOperation{Op: "add", Path: prefix, Value: placeholder(next)})
		cur = placeholder(next)
	}
	return ops
}

// placeholder is the empty container a step descends into
func placeholder(next step) interface{} {
	if next.isIndex {
		return []interface{}{}
	}
	return map[string]interface{}{}
}

// toPointer renders steps as an RFC 6901 JSON pointer
func toPointer(sts []step) string {
	var b strings.Builder
	for _, st := range sts {
		b.WriteByte('/')
		if st.isIndex {
			b.WriteString(strconv.Itoa(st.index))
			continue
		}
		b.WriteString(escapePointer(st.key))
	}
	return b.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(key string) string {
	return pointerEscaper.Replace(key)
}

// ApplyJSONPatch applies an RFC 6902 patch to an encoded JSON document
func ApplyJSONPatch(doc []byte, ops []JSONPatchOperation) ([]byte, error) {
	data, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch(data)
	if err != nil {
		return nil, fmt.Errorf("decoding json patch: %w", err)
	}
	return patch.Apply(doc)
}
