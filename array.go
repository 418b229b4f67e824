package jsondelta

import "fmt"

// insertElement inserts value into the array held by s at the position
// described by indices, one index per nesting level. Short outer levels are
// padded with empty arrays. At the innermost level the value is inserted,
// shifting later elements right; an occupied index is a conflict unless
// opts.Force is set
func insertElement(s slot, indices []int, value interface{}, opts PatchOptions) error {
	if len(indices) == 0 {
		return nil
	}

	arr, err := arrayAt(s, DTAdd)
	if err != nil {
		return err
	}
	i := indices[0]

	if len(indices) == 1 {
		if i > len(arr) {
			return fmt.Errorf("%w: array index %d exceeds %d", ErrIndexOutOfBounds, i, len(arr))
		}
		if i < len(arr) && !opts.Force {
			return fmt.Errorf("%w: array index %d is occupied", ErrConflict, i)
		}
		arr = append(arr, nil)
		copy(arr[i+1:], arr[i:])
		arr[i] = value
		s.set(arr)
		return nil
	}

	if i >= len(arr) {
		for len(arr) <= i {
			arr = append(arr, []interface{}{})
		}
		s.set(arr)
	}
	return insertElement(elemSlot(arr, i), indices[1:], value, opts)
}

// changeElement overwrites the element at indices
func changeElement(s slot, indices []int, value interface{}) error {
	if len(indices) == 0 {
		return nil
	}

	arr, err := arrayAt(s, DTChange)
	if err != nil {
		return err
	}
	i := indices[0]
	if i >= len(arr) {
		return fmt.Errorf("%w: array index %d exceeds %d", ErrIndexOutOfBounds, i, len(arr))
	}

	if len(indices) == 1 {
		arr[i] = value
		return nil
	}
	return changeElement(elemSlot(arr, i), indices[1:], value)
}

// removeElement removes the element at indices. With opts.OmitEmpty,
// removing the only element of an innermost array removes that array too,
// ahead of the pruning pass
func removeElement(s slot, indices []int, opts PatchOptions) error {
	if len(indices) == 0 {
		return nil
	}

	arr, err := arrayAt(s, DTDelete)
	if err != nil {
		return err
	}
	i := indices[0]
	if i >= len(arr) {
		return fmt.Errorf("%w: array index %d exceeds %d", ErrIndexOutOfBounds, i, len(arr))
	}

	if len(indices) == 1 {
		s.set(append(arr[:i:i], arr[i+1:]...))
		return nil
	}

	inner, ok := arr[i].([]interface{})
	if !ok {
		return fmt.Errorf("%w: expected array at index %d, found %s", ErrStructuralMismatch, i, KindOf(arr[i]))
	}
	if len(indices) == 2 && len(inner) == 1 && opts.OmitEmpty {
		if indices[1] != 0 {
			return fmt.Errorf("%w: array index %d exceeds %d", ErrIndexOutOfBounds, indices[1], len(inner))
		}
		s.set(append(arr[:i:i], arr[i+1:]...))
		return nil
	}
	return removeElement(elemSlot(arr, i), indices[1:], opts)
}
