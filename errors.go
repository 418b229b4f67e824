package jsondelta

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch means a path addresses a shape the document can't
	// satisfy, eg. an object field on a number
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrIndexOutOfBounds means a Change or Delete addressed an array index
	// beyond the current length
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrConflict means an Add addressed an occupied array slot without Force
	// (or an existing object key in Strict mode)
	ErrConflict = errors.New("conflict")
	// ErrInvalidPath means a path expression couldn't be parsed
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnknownOperation means a delta carries an operation outside
	// Add, Change & Delete
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrMaxDepth means a document nests deeper than the configured limit
	ErrMaxDepth = errors.New("max depth exceeded")
)

// PatchError reports the delta that stopped a patch. The partially patched
// document is discarded
type PatchError struct {
	// position of the failing delta in the list passed to Patch
	Index int
	Delta *Delta
	Err   error
}

// Error implements the error interface
func (e *PatchError) Error() string {
	if e.Delta == nil {
		return fmt.Sprintf("patch %d: %s", e.Index, e.Err)
	}
	return fmt.Sprintf("patch %d (%s %s): %s", e.Index, e.Delta.Operation, e.Delta.Path, e.Err)
}

// Unwrap exposes the underlying error kind to errors.Is & errors.As
func (e *PatchError) Unwrap() error { return e.Err }
