// Package jsondelta computes & applies leaf-level changes between JSON
// documents.
//
// Instead of operating on encoded JSON, jsondelta operates on document trees
// consisting of the go types created by unmarshaling from JSON, which are two
// complex types:
//
//	map[string]interface{}
//	[]interface{}
//
// and four scalar types:
//
//	string, float64, bool, nil
//
// by operating on native go types jsondelta can compare documents encoded in
// different formats, for example decoded YAML or TOML.
//
// Diff walks both documents depth first & reports every leaf that was added,
// changed or deleted as a Delta addressed by a path expression:
//
//	$.users[0].name
//	$.matrix[1][2]
//
// Arrays are compared position by position, there is no move detection. A
// path appears in at most one delta.
//
// Patch applies a list of deltas to a copy of a document, creating missing
// objects & arrays along each path. Diff followed by Patch reproduces the
// right document:
//
//	deltas, _ := jsondelta.Diff(left, right)
//	got, _ := jsondelta.Patch(left, deltas, jsondelta.DefaultPatchOptions())
//	// got is equal to right
//
// jsondelta also converts deltas to RFC 6902 JSON Patch, see ToJSONPatch
package jsondelta
