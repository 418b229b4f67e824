package jsondelta

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type PatchTestCase struct {
	description  string
	base, expect string
	patch        Deltas
	opts         PatchOptions
}

func TestPatch(t *testing.T) {
	cases := []PatchTestCase{
		{
			"add field",
			`{}`,
			`{"a":false}`,
			Deltas{NewDelta(DTAdd, "$.a", nil, false)},
			PatchOptions{},
		},
		{
			"add overwrites existing field",
			`{"a":1}`,
			`{"a":2}`,
			Deltas{NewDelta(DTAdd, "$.a", nil, float64(2))},
			PatchOptions{},
		},
		{
			"change field",
			`{"a":"before"}`,
			`{"a":"after"}`,
			Deltas{NewDelta(DTChange, "$.a", "before", "after")},
			PatchOptions{},
		},
		{
			"change missing field sets it",
			`{}`,
			`{"a":"after"}`,
			Deltas{NewDelta(DTChange, "$.a", nil, "after")},
			PatchOptions{},
		},
		{
			"delete field",
			`{"a":1,"b":2}`,
			`{"b":2}`,
			Deltas{NewDelta(DTDelete, "$.a", float64(1), nil)},
			PatchOptions{},
		},
		{
			"delete missing field",
			`{"b":2}`,
			`{"b":2}`,
			Deltas{NewDelta(DTDelete, "$.a", float64(1), nil)},
			PatchOptions{},
		},
		{
			"delete beneath missing field",
			`{"b":2}`,
			`{"b":2}`,
			Deltas{
				NewDelta(DTDelete, "$.a.b.c", float64(1), nil),
				NewDelta(DTDelete, "$.x[3].y", float64(1), nil),
			},
			PatchOptions{},
		},
		{
			"add creates intermediate objects",
			`{}`,
			`{"a":{"b":{"c":"d"}}}`,
			Deltas{NewDelta(DTAdd, "$.a.b.c", nil, "d")},
			PatchOptions{},
		},
		{
			"add into null creates an object",
			`{"a":null}`,
			`{"a":{"b":1}}`,
			Deltas{NewDelta(DTAdd, "$.a.b", nil, float64(1))},
			PatchOptions{},
		},
		{
			"add to end of array",
			`{"list":[1]}`,
			`{"list":[1,2]}`,
			Deltas{NewDelta(DTAdd, "$.list[1]", nil, float64(2))},
			PatchOptions{},
		},
		{
			"add creates array",
			`{}`,
			`{"list":["a"]}`,
			Deltas{NewDelta(DTAdd, "$.list[0]", nil, "a")},
			PatchOptions{},
		},
		{
			"forced add shifts elements right",
			`{"list":["a","c"]}`,
			`{"list":["a","b","c"]}`,
			Deltas{NewDelta(DTAdd, "$.list[1]", nil, "b")},
			PatchOptions{Force: true},
		},
		{
			"change array element",
			`{"list":["a","b"]}`,
			`{"list":["a","x"]}`,
			Deltas{NewDelta(DTChange, "$.list[1]", "b", "x")},
			PatchOptions{},
		},
		{
			"delete array element",
			`{"list":["a","b","c"]}`,
			`{"list":["a","c"]}`,
			Deltas{NewDelta(DTDelete, "$.list[1]", "b", nil)},
			PatchOptions{},
		},
		{
			"delete run shrinks array",
			`{"list":["a","b","c","d"]}`,
			`{"list":["a"]}`,
			Deltas{
				NewDelta(DTDelete, "$.list[1]", "b", nil),
				NewDelta(DTDelete, "$.list[2]", "c", nil),
				NewDelta(DTDelete, "$.list[3]", "d", nil),
			},
			PatchOptions{},
		},
		{
			"multi-dimensional sequence",
			`{}`,
			`{"test":[[1],[2]]}`,
			Deltas{
				NewDelta(DTAdd, "$.test[0][0]", nil, float64(1)),
				NewDelta(DTAdd, "$.test[1][0]", nil, float64(2)),
				NewDelta(DTAdd, "$.test[1][1]", nil, float64(3)),
				NewDelta(DTChange, "$.test[1][1]", float64(3), float64(4)),
				NewDelta(DTDelete, "$.test[1][1]", float64(4), nil),
			},
			PatchOptions{},
		},
		{
			"list of objects",
			`{}`,
			`{"list_of_objects":[[{"id":1}]]}`,
			Deltas{NewDelta(DTAdd, "$.list_of_objects[0][0].id", nil, float64(1))},
			PatchOptions{},
		},
		{
			"nested path through arrays",
			`{"nested":{"list":[[{"id":1},{"id":2},{"id":3}]]}}`,
			`{"nested":{"list":[[{"id":1},{"id":2},{"id":30}]]}}`,
			Deltas{NewDelta(DTChange, "$.nested.list[0][2].id", float64(3), float64(30))},
			PatchOptions{},
		},
		{
			"deep set by path",
			`{}`,
			`{"test":[[{"test":[[true,false]]}]]}`,
			Deltas{
				NewDelta(DTAdd, "$.test[0][0].test[0][0]", nil, true),
				NewDelta(DTAdd, "$.test[0][0].test[0][1]", nil, false),
			},
			PatchOptions{},
		},
		{
			"add container value",
			`{}`,
			`{"a":{"b":[1,2]}}`,
			Deltas{NewDelta(DTAdd, "$.a", nil, map[string]interface{}{"b": []interface{}{float64(1), float64(2)}})},
			PatchOptions{},
		},
		{
			"root array",
			`[1,2]`,
			`[1,3,{"a":true}]`,
			Deltas{
				NewDelta(DTChange, "$[1]", float64(2), float64(3)),
				NewDelta(DTAdd, "$[2].a", nil, true),
			},
			PatchOptions{},
		},
		{
			"replace root",
			`{"a":1}`,
			`"b"`,
			Deltas{NewDelta(DTChange, "$", map[string]interface{}{"a": float64(1)}, "b")},
			PatchOptions{},
		},
		{
			"omit empty prunes to empty object",
			`{"a":{"b":[[1]]},"c":""}`,
			`{}`,
			Deltas{NewDelta(DTDelete, "$.a.b[0][0]", float64(1), nil)},
			PatchOptions{OmitEmpty: true},
		},
		{
			"omit empty keeps false & zero",
			`{"a":{"b":[]},"c":false,"d":0,"e":null}`,
			`{"c":false,"d":0}`,
			nil,
			PatchOptions{OmitEmpty: true},
		},
		{
			"without omit empty, empty arrays stay",
			`{"a":{"b":[[1]]}}`,
			`{"a":{"b":[[]]}}`,
			Deltas{NewDelta(DTDelete, "$.a.b[0][0]", float64(1), nil)},
			PatchOptions{},
		},
		{
			"empty patch",
			`{"a":[1,{"b":null}]}`,
			`{"a":[1,{"b":null}]}`,
			Deltas{},
			PatchOptions{},
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := Patch(mustJSON(t, c.base), c.patch, c.opts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(mustJSON(t, c.expect), got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatchErrors(t *testing.T) {
	cases := []struct {
		description string
		base        string
		patch       Deltas
		opts        PatchOptions
		expect      error
		index       int
	}{
		{
			"add to occupied index",
			`{"list":["a"]}`,
			Deltas{NewDelta(DTAdd, "$.list[0]", nil, "b")},
			PatchOptions{},
			ErrConflict,
			0,
		},
		{
			"add past end of array",
			`{"list":["a"]}`,
			Deltas{NewDelta(DTAdd, "$.list[3]", nil, "b")},
			PatchOptions{},
			ErrIndexOutOfBounds,
			0,
		},
		{
			"change past end of array",
			`{"list":["a"]}`,
			Deltas{NewDelta(DTChange, "$.list[1]", nil, "b")},
			PatchOptions{},
			ErrIndexOutOfBounds,
			0,
		},
		{
			"delete past end of array",
			`{"list":["a"]}`,
			Deltas{
				NewDelta(DTAdd, "$.b", nil, true),
				NewDelta(DTDelete, "$.list[1]", "b", nil),
			},
			PatchOptions{},
			ErrIndexOutOfBounds,
			1,
		},
		{
			"change index of missing array",
			`{}`,
			Deltas{NewDelta(DTChange, "$.list[0]", nil, "b")},
			PatchOptions{},
			ErrIndexOutOfBounds,
			0,
		},
		{
			"field on a number",
			`{"a":1}`,
			Deltas{NewDelta(DTAdd, "$.a.b", nil, true)},
			PatchOptions{},
			ErrStructuralMismatch,
			0,
		},
		{
			"index on an object",
			`{"a":{}}`,
			Deltas{NewDelta(DTChange, "$.a[0]", nil, true)},
			PatchOptions{},
			ErrStructuralMismatch,
			0,
		},
		{
			"descend through a string",
			`{"a":["x"]}`,
			Deltas{NewDelta(DTDelete, "$.a[0][0]", "x", nil)},
			PatchOptions{},
			ErrStructuralMismatch,
			0,
		},
		{
			"invalid path",
			`{}`,
			Deltas{NewDelta(DTAdd, "$.a[x]", nil, true)},
			PatchOptions{},
			ErrInvalidPath,
			0,
		},
		{
			"unknown operation",
			`{}`,
			Deltas{{Operation: "Move", Path: "$.a"}},
			PatchOptions{},
			ErrUnknownOperation,
			0,
		},
		{
			"nil delta",
			`{}`,
			Deltas{nil},
			PatchOptions{},
			ErrUnknownOperation,
			0,
		},
		{
			"strict add onto existing key",
			`{"a":1}`,
			Deltas{NewDelta(DTAdd, "$.a", nil, float64(2))},
			PatchOptions{Strict: true},
			ErrConflict,
			0,
		},
		{
			"strict add onto existing root",
			`{"a":1}`,
			Deltas{NewDelta(DTAdd, "$", nil, float64(2))},
			PatchOptions{Strict: true},
			ErrConflict,
			0,
		},
		{
			"eager prune of a missing inner index",
			`{"m":[[1]]}`,
			Deltas{NewDelta(DTDelete, "$.m[0][3]", float64(1), nil)},
			PatchOptions{OmitEmpty: true},
			ErrIndexOutOfBounds,
			0,
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := Patch(mustJSON(t, c.base), c.patch, c.opts)
			if !errors.Is(err, c.expect) {
				t.Fatalf("expected error %q, got: %v", c.expect, err)
			}
			if got != nil {
				t.Errorf("expected no document on error, got: %v", got)
			}
			var perr *PatchError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a *PatchError, got: %T", err)
			}
			if perr.Index != c.index {
				t.Errorf("expected failing index %d, got %d", c.index, perr.Index)
			}
		})
	}
}

func TestPatchStrictForce(t *testing.T) {
	opts := DefaultPatchOptions().WithStrict(true).WithForce(true)
	got, err := Patch(mustJSON(t, `{"a":1}`), Deltas{NewDelta(DTAdd, "$.a", nil, float64(2))}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mustJSON(t, `{"a":2}`), got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchDoesntModifyBase(t *testing.T) {
	base := mustJSON(t, `{"a":{"b":[1,2,3]},"c":"d"}`)
	patch := Deltas{
		NewDelta(DTChange, "$.a.b[0]", float64(1), float64(10)),
		NewDelta(DTDelete, "$.c", "d", nil),
		NewDelta(DTAdd, "$.e", nil, true),
	}

	got, err := Patch(base, patch, DefaultPatchOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mustJSON(t, `{"a":{"b":[1,2,3]},"c":"d"}`), base); diff != "" {
		t.Errorf("base modified (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(mustJSON(t, `{"a":{"b":[10,2,3]},"e":true}`), got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchDoesntAliasDeltaValues(t *testing.T) {
	value := map[string]interface{}{"b": []interface{}{"x"}}
	patch := Deltas{
		NewDelta(DTAdd, "$.a", nil, value),
		NewDelta(DTChange, "$.a.b[0]", "x", "y"),
	}

	got, err := Patch(map[string]interface{}{}, patch, DefaultPatchOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mustJSON(t, `{"a":{"b":["y"]}}`), got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]interface{}{"b": []interface{}{"x"}}, value); diff != "" {
		t.Errorf("delta value modified (-want +got):\n%s", diff)
	}
	if !patch[0].Verify() {
		t.Error("expected delta to still verify after patching")
	}
}

func TestPatchOptions(t *testing.T) {
	opts := DefaultPatchOptions()
	if opts != (PatchOptions{}) {
		t.Errorf("expected zero default options, got: %+v", opts)
	}

	set := opts.WithForce(true).WithOmitEmpty(true).WithStrict(true).WithSequential(true)
	if !set.Force || !set.OmitEmpty || !set.Strict || !set.Sequential {
		t.Errorf("expected every flag set, got: %+v", set)
	}
	if opts.Force || opts.OmitEmpty || opts.Strict || opts.Sequential {
		t.Errorf("setters must not modify the receiver, got: %+v", opts)
	}
}

func TestSetByPath(t *testing.T) {
	var doc interface{}
	steps := []struct {
		path  string
		value interface{}
		op    Operation
	}{
		{"$.test[0][0]", float64(1), DTAdd},
		{"$.test[1][0]", float64(2), DTAdd},
		{"$.test[1][1]", float64(3), DTAdd},
		{"$.test[1][1]", float64(4), DTChange},
		{"$.test[1][1]", nil, DTDelete},
	}
	expect := []string{
		`{"test":[[1]]}`,
		`{"test":[[1],[2]]}`,
		`{"test":[[1],[2,3]]}`,
		`{"test":[[1],[2,4]]}`,
		`{"test":[[1],[2]]}`,
	}

	for i, s := range steps {
		if err := SetByPath(&doc, s.path, s.value, s.op, DefaultPatchOptions()); err != nil {
			t.Fatalf("step %d: %s", i, err)
		}
		if diff := cmp.Diff(mustJSON(t, expect[i]), doc); diff != "" {
			t.Errorf("step %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSetByPathRequiresRoot(t *testing.T) {
	for _, path := range []string{"a.b", "$$", "x[0]"} {
		doc := mustJSON(t, `{}`)
		if err := SetByPath(&doc, path, float64(1), DTAdd, DefaultPatchOptions()); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("%s: expected ErrInvalidPath, got: %v", path, err)
		}
		if diff := cmp.Diff(mustJSON(t, `{}`), doc); diff != "" {
			t.Errorf("%s: document modified (-want +got):\n%s", path, diff)
		}
	}
}

func TestPatchDeleteOrder(t *testing.T) {
	base := mustJSON(t, `{"a":[1,2,3]}`)
	deltas := Deltas{
		NewDelta(DTDelete, "$.a[0]", float64(1), nil),
		NewDelta(DTDelete, "$.a[1]", float64(2), nil),
	}

	cases := []struct {
		description string
		opts        PatchOptions
		expect      string
	}{
		{"delete runs address the original document", DefaultPatchOptions(), `{"a":[3]}`},
		{"sequential applies in list order", DefaultPatchOptions().WithSequential(true), `{"a":[2]}`},
	}
	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := Patch(base, deltas, c.opts)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(mustJSON(t, c.expect), got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPatchErrorMessage(t *testing.T) {
	err := &PatchError{Index: 2, Delta: NewDelta(DTAdd, "$.a", nil, 1), Err: ErrConflict}
	expect := "patch 2 (Add $.a): conflict"
	if err.Error() != expect {
		t.Errorf("want: %s\ngot:  %s", expect, err.Error())
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		description string
		left, right string
	}{
		{"scalars", `{"a":1,"b":"x","c":null}`, `{"a":2,"b":"x","d":true}`},
		{"array grows", `{"list":[1,2]}`, `{"list":[1,2,3,4]}`},
		{"array shrinks", `{"list":[1,2,3,4]}`, `{"list":[1]}`},
		{"array replaced", `{"list":[1,2,3]}`, `{"list":["a","b"]}`},
		{"nested arrays", `{"m":[[1,2],[3]]}`, `{"m":[[1],[3,4],[5]]}`},
		{"objects in arrays", `{"l":[{"id":1},{"id":2}]}`, `{"l":[{"id":1,"n":"a"},{"id":3}]}`},
		{"new subtree", `{}`, `{"test":[[{"test":[[true,false]]}]],"o":{"p":{"q":[0]}}}`},
		{"leaf becomes object", `{"a":1}`, `{"a":{"b":2,"c":{"d":3}}}`},
		{"root array", `[1,[2,3]]`, `[4,[2],5]`},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			left, right := mustJSON(t, c.left), mustJSON(t, c.right)
			deltas, err := Diff(left, right)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Patch(left, deltas, DefaultPatchOptions())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(right, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
