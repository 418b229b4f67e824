package jsondelta

import (
	"encoding/json"
	"fmt"
)

// Operation defines the operation of a Delta item
type Operation string

const (
	// DTAdd means a leaf exists in the target document but not the source
	DTAdd = Operation("Add")
	// DTChange means a leaf exists in both documents with different values
	DTChange = Operation("Change")
	// DTDelete means a leaf exists in the source document but not the target
	DTDelete = Operation("Delete")
)

// Valid reports whether op is one of the known operations
func (op Operation) Valid() bool {
	switch op {
	case DTAdd, DTChange, DTDelete:
		return true
	}
	return false
}

// UnmarshalJSON rejects operations outside Add, Change & Delete
func (op *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !Operation(s).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
	*op = Operation(s)
	return nil
}

// Delta represents a single leaf-level change between a source & destination
// document. Deltas are never modified after construction
type Delta struct {
	// the type of change
	Operation Operation `json:"operation"`
	// Path is a path expression addressing the changed leaf, rooted at "$",
	// eg: $.nested.list[0][2].id
	Path string `json:"path"`
	// the value in the source document, nil for Add
	OldValue interface{} `json:"old_value"`
	// the value in the destination document, nil for Delete
	NewValue interface{} `json:"new_value"`
	// Hash is a fingerprint of operation, path & both values, computed once
	// at construction
	Hash string `json:"hash"`
}

// NewDelta creates a delta, computing its hash
func NewDelta(op Operation, path string, oldValue, newValue interface{}) *Delta {
	return &Delta{
		Operation: op,
		Path:      path,
		OldValue:  oldValue,
		NewValue:  newValue,
		Hash:      Fingerprint(op, path, oldValue, newValue),
	}
}

// Verify recomputes the fingerprint & reports whether it matches Hash
func (d *Delta) Verify() bool {
	return d.Hash == Fingerprint(d.Operation, d.Path, d.OldValue, d.NewValue)
}

// String renders a delta as a single line
func (d *Delta) String() string {
	switch d.Operation {
	case DTAdd:
		return fmt.Sprintf("%s %s: %s", d.Operation, d.Path, Render(d.NewValue))
	case DTDelete:
		return fmt.Sprintf("%s %s: %s", d.Operation, d.Path, Render(d.OldValue))
	default:
		return fmt.Sprintf("%s %s: %s => %s", d.Operation, d.Path, Render(d.OldValue), Render(d.NewValue))
	}
}

// Deltas is an ordered list of changes
type Deltas []*Delta

// Len returns the length of the slice
func (ds Deltas) Len() int { return len(ds) }

// ByPath returns the first delta at path, nil if there isn't one
func (ds Deltas) ByPath(path string) *Delta {
	for _, d := range ds {
		if d.Path == path {
			return d
		}
	}
	return nil
}

// HasPathChanged is true if a delta with the given operation exists at path
func (ds Deltas) HasPathChanged(path string, op Operation) bool {
	for _, d := range ds {
		if d.Path == path && d.Operation == op {
			return true
		}
	}
	return false
}

// HasChanges is true when the list is non-empty
func (ds Deltas) HasChanges() bool {
	return len(ds) > 0
}

// Paths lists the path of every delta, in order
func (ds Deltas) Paths() []string {
	paths := make([]string, len(ds))
	for i, d := range ds {
		paths[i] = d.Path
	}
	return paths
}

// Count returns the number of deltas with the given operation
func (ds Deltas) Count(op Operation) (n int) {
	for _, d := range ds {
		if d.Operation == op {
			n++
		}
	}
	return n
}
