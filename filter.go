package jsondelta

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the environment a filter expression is evaluated against,
// one delta at a time
type filterEnv struct {
	Operation string      `expr:"operation"`
	Path      string      `expr:"path"`
	OldValue  interface{} `expr:"old_value"`
	NewValue  interface{} `expr:"new_value"`
	Hash      string      `expr:"hash"`
}

// Filter returns the deltas for which a boolean expression holds. the
// expression can reference operation, path, old_value, new_value & hash, eg:
//
//	operation == "Delete" && path startsWith "$.users"
//
// Order is preserved & the original list is left untouched
func (ds Deltas) Filter(expression string) (Deltas, error) {
	program, err := expr.Compile(expression, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling filter: %w", err)
	}

	var kept Deltas
	for _, d := range ds {
		if d == nil {
			continue
		}
		ok, err := matches(program, d)
		if err != nil {
			return nil, fmt.Errorf("filtering %s: %w", d.Path, err)
		}
		if ok {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

func matches(program *vm.Program, d *Delta) (bool, error) {
	res, err := vm.Run(program, filterEnv{
		Operation: string(d.Operation),
		Path:      d.Path,
		OldValue:  d.OldValue,
		NewValue:  d.NewValue,
		Hash:      d.Hash,
	})
	if err != nil {
		return false, err
	}
	b, _ := res.(bool)
	return b, nil
}
