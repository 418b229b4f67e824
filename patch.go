package jsondelta

import (
	"fmt"
	"log/slog"

	"github.com/mitchellh/copystructure"
)

// PatchOptions configure a call to Patch. The zero value is the default:
// no forcing, no pruning
type PatchOptions struct {
	// Force permits an Add onto an occupied array slot, shifting the
	// occupant right. object keys are always writable unless Strict is set
	Force bool
	// OmitEmpty removes containers left empty once every delta is applied
	OmitEmpty bool
	// Strict applies the occupied-slot check to object keys as well
	Strict bool
	// Sequential applies every delta in list order, Delete runs included.
	// Delete paths must then account for earlier removals
	Sequential bool
	// Logger receives a debug record per applied delta. nil discards
	Logger *slog.Logger
}

// DefaultPatchOptions returns options with every flag off
func DefaultPatchOptions() PatchOptions {
	return PatchOptions{}
}

// WithForce returns a copy of o with Force set
func (o PatchOptions) WithForce(force bool) PatchOptions {
	o.Force = force
	return o
}

// WithOmitEmpty returns a copy of o with OmitEmpty set
func (o PatchOptions) WithOmitEmpty(omitEmpty bool) PatchOptions {
	o.OmitEmpty = omitEmpty
	return o
}

// WithStrict returns a copy of o with Strict set
func (o PatchOptions) WithStrict(strict bool) PatchOptions {
	o.Strict = strict
	return o
}

// WithSequential returns a copy of o with Sequential set
func (o PatchOptions) WithSequential(sequential bool) PatchOptions {
	o.Sequential = sequential
	return o
}

// WithLogger returns a copy of o logging to l
func (o PatchOptions) WithLogger(l *slog.Logger) PatchOptions {
	o.Logger = l
	return o
}

func (o PatchOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Patch applies a change script (patch) to a copy of base & returns the copy.
// base itself is never modified. Deltas apply in list order, each observing
// the effects of those before it, except that a run of consecutive Deletes
// applies last-to-first: Delete paths address the document as it was before
// the run, so removing later array elements first keeps earlier indices
// valid. opts.Sequential turns the reordering off. The first failing delta
// stops the patch with a *PatchError
func Patch(base interface{}, deltas Deltas, opts PatchOptions) (interface{}, error) {
	doc, err := clone(base)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	for _, i := range applicationOrder(deltas, opts.Sequential) {
		dlt := deltas[i]
		if dlt == nil {
			return nil, &PatchError{Index: i, Err: fmt.Errorf("%w: nil delta", ErrUnknownOperation)}
		}
		// containers are copied so later deltas can't write through to this one
		value := dlt.NewValue
		if !IsLeaf(value) {
			if value, err = clone(value); err != nil {
				return nil, &PatchError{Index: i, Delta: dlt, Err: err}
			}
		}
		if err := SetByPath(&doc, dlt.Path, value, dlt.Operation, opts); err != nil {
			return nil, &PatchError{Index: i, Delta: dlt, Err: err}
		}
		log.Debug("applied delta", "index", i, "operation", dlt.Operation, "path", dlt.Path)
	}

	if opts.OmitEmpty {
		doc = RemoveEmptyLevels(doc)
	}
	return doc, nil
}

// applicationOrder lists delta positions in the order Patch applies them
func applicationOrder(deltas Deltas, sequential bool) []int {
	order := make([]int, 0, len(deltas))
	if sequential {
		for i := range deltas {
			order = append(order, i)
		}
		return order
	}
	for start := 0; start < len(deltas); {
		end := start + 1
		if isDelete(deltas[start]) {
			for end < len(deltas) && isDelete(deltas[end]) {
				end++
			}
			for i := end - 1; i >= start; i-- {
				order = append(order, i)
			}
		} else {
			order = append(order, start)
		}
		start = end
	}
	return order
}

func isDelete(d *Delta) bool {
	return d != nil && d.Operation == DTDelete
}

func clone(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	cp, err := copystructure.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("copying base document: %w", err)
	}
	return cp, nil
}

// slot is an assignable location in a document: the root, an object field
// or an array element. array headers can change on insert, so containers
// are always written back through the slot holding them
type slot struct {
	get func() interface{}
	set func(interface{})
}

func rootSlot(root *interface{}) slot {
	return slot{
		get: func() interface{} { return *root },
		set: func(v interface{}) { *root = v },
	}
}

func keySlot(obj map[string]interface{}, key string) slot {
	return slot{
		get: func() interface{} { return obj[key] },
		set: func(v interface{}) { obj[key] = v },
	}
}

func elemSlot(arr []interface{}, i int) slot {
	return slot{
		get: func() interface{} { return arr[i] },
		set: func(v interface{}) { arr[i] = v },
	}
}

// SetByPath applies a single operation to the document held at root,
// creating intermediate containers as needed. value is ignored for Delete
func SetByPath(root *interface{}, path string, value interface{}, op Operation, opts PatchOptions) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
	items, err := AnalysePath(path)
	if err != nil {
		return err
	}

	cur := rootSlot(root)
	for i, item := range items {
		if i == 0 && (item.IsRoot() || item.Key == "") {
			if !item.IsArray {
				if item.IsLast {
					return setRoot(cur, value, op, opts)
				}
				continue
			}
			if item.IsLast {
				return setIndices(cur, item.Indices, value, op, opts)
			}
			var ok bool
			if cur, ok, err = descendIndices(cur, item.Indices, op); err != nil || !ok {
				return err
			}
			continue
		}

		if item.IsLast {
			return setField(cur, item, value, op, opts)
		}

		obj, ok, err := objectAt(cur, op)
		if err != nil || !ok {
			return err
		}
		if _, exists := obj[item.Key]; !exists {
			if op == DTDelete {
				// nothing to delete beneath a missing field
				return nil
			}
			if item.IsArray {
				obj[item.Key] = []interface{}{}
			} else {
				obj[item.Key] = map[string]interface{}{}
			}
		}
		cur = keySlot(obj, item.Key)

		if item.IsArray {
			if cur, ok, err = descendIndices(cur, item.Indices, op); err != nil || !ok {
				return err
			}
		}
	}

	return nil
}

// objectAt returns the object held by s. a null slot becomes an empty object
// unless op is Delete, in which case ok is false & there's nothing to do
func objectAt(s slot, op Operation) (obj map[string]interface{}, ok bool, err error) {
	switch x := s.get().(type) {
	case map[string]interface{}:
		return x, true, nil
	case nil:
		if op == DTDelete {
			return nil, false, nil
		}
		obj = map[string]interface{}{}
		s.set(obj)
		return obj, true, nil
	default:
		return nil, false, fmt.Errorf("%w: expected object, found %s", ErrStructuralMismatch, KindOf(x))
	}
}

// arrayAt returns the array held by s, creating one in a null slot for Add
func arrayAt(s slot, op Operation) ([]interface{}, error) {
	switch x := s.get().(type) {
	case []interface{}:
		return x, nil
	case nil:
		if op != DTAdd {
			return nil, fmt.Errorf("%w: expected array, found null", ErrIndexOutOfBounds)
		}
		arr := []interface{}{}
		s.set(arr)
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: expected array, found %s", ErrStructuralMismatch, KindOf(x))
	}
}

// descendIndices moves from the array held by s through each index level.
// Add & Change pad short arrays with placeholders: arrays at outer levels,
// an object at the innermost level, where the next segment is a field.
// Delete never creates anything; ok is false when there's nothing to delete
func descendIndices(s slot, indices []int, op Operation) (next slot, ok bool, err error) {
	for depth, i := range indices {
		if s.get() == nil && op == DTDelete {
			return s, false, nil
		}
		arr, err := arrayAt(s, DTAdd)
		if err != nil {
			return s, false, err
		}

		if i >= len(arr) {
			if op == DTDelete {
				return s, false, nil
			}
			for len(arr) <= i {
				if depth == len(indices)-1 {
					arr = append(arr, map[string]interface{}{})
				} else {
					arr = append(arr, []interface{}{})
				}
			}
			s.set(arr)
		}
		s = elemSlot(arr, i)
	}
	return s, true, nil
}

// setRoot replaces or clears the whole document
func setRoot(s slot, value interface{}, op Operation, opts PatchOptions) error {
	switch op {
	case DTAdd:
		if opts.Strict && !opts.Force && s.get() != nil {
			return fmt.Errorf("%w: document root is already set", ErrConflict)
		}
		s.set(value)
	case DTChange:
		s.set(value)
	case DTDelete:
		s.set(nil)
	}
	return nil
}

// setField performs the terminal mutation on the object held by s
func setField(s slot, item PathItem, value interface{}, op Operation, opts PatchOptions) error {
	obj, ok, err := objectAt(s, op)
	if err != nil || !ok {
		return err
	}

	if item.IsArray {
		if _, exists := obj[item.Key]; !exists {
			if op != DTAdd {
				return fmt.Errorf("%w: field %q doesn't exist", ErrIndexOutOfBounds, item.Key)
			}
			obj[item.Key] = []interface{}{}
		}
		return setIndices(keySlot(obj, item.Key), item.Indices, value, op, opts)
	}

	switch op {
	case DTAdd:
		if _, exists := obj[item.Key]; exists && opts.Strict && !opts.Force {
			return fmt.Errorf("%w: field %q already exists", ErrConflict, item.Key)
		}
		obj[item.Key] = value
	case DTChange:
		obj[item.Key] = value
	case DTDelete:
		delete(obj, item.Key)
	}
	return nil
}

// setIndices dispatches to the multi-dimensional array mutators
func setIndices(s slot, indices []int, value interface{}, op Operation, opts PatchOptions) error {
	if _, err := arrayAt(s, op); err != nil {
		return err
	}

	switch op {
	case DTAdd:
		return insertElement(s, indices, value, opts)
	case DTChange:
		return changeElement(s, indices, value)
	default:
		return removeElement(s, indices, opts)
	}
}
