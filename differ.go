package jsondelta

import (
	"log/slog"
)

// Diff computes the leaf-level deltas that turn the value at left into the
// value at right. It's shorthand for NewDiffer(left, right, opts...).Diff()
func Diff(left, right interface{}, opts ...DiffOption) (Deltas, error) {
	d := NewDiffer(left, right, opts...).Diff()
	return d.Deltas(), d.Err()
}

// DiffConfig are any possible configuration parameters for calculating diffs
type DiffConfig struct {
	// Provide a non-nil stats pointer & diff will populate it with data from
	// the diff process
	Stats *Stats
	// Logger receives debug records for each diff pass. nil discards
	Logger *slog.Logger
	// MaxDepth bounds container nesting. zero means unlimited
	MaxDepth int
}

// DiffOption is a function that adjust a config, zero or more DiffOptions
// can be passed to NewDiffer
type DiffOption func(cfg *DiffConfig)

// OptionSetStats will set the passed-in stats pointer when Diff is called
func OptionSetStats(st *Stats) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Stats = st
	}
}

// OptionSetLogger configures the logger a Differ writes to
func OptionSetLogger(l *slog.Logger) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Logger = l
	}
}

// OptionMaxDepth makes Diff fail with ErrMaxDepth on documents nested more
// than n containers deep
func OptionMaxDepth(n int) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.MaxDepth = n
	}
}

// Differ compares two documents. Documents are borrowed, never modified
type Differ struct {
	cfg         *DiffConfig
	log         *slog.Logger
	left, right interface{}

	deltas Deltas
	err    error
}

// NewDiffer creates a Differ for a pair of documents
func NewDiffer(left, right interface{}, opts ...DiffOption) *Differ {
	cfg := &DiffConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Differ{cfg: cfg, log: log, left: left, right: right}
}

// Diff calculates deltas between the two documents, replacing the results of
// any previous call. It returns the differ for chaining:
//
//  1. walk left depth-first. every leaf path is looked up in right: a
//     differing value is a Change, a missing path is a Delete
//  2. walk right depth-first, skipping paths already classified. a path
//     missing from left is an Add
//
// both passes share one set of seen paths, so each leaf path yields at most
// one delta
func (d *Differ) Diff() *Differ {
	var (
		deltas Deltas
		seen   = map[string]struct{}{}
	)

	if d.cfg.Stats != nil {
		*d.cfg.Stats = Stats{}
	}

	d.deltas, d.err = nil, nil
	if err := d.pass(d.left, d.right, &deltas, seen, false); err != nil {
		d.err = err
		return d
	}
	if err := d.pass(d.right, d.left, &deltas, seen, true); err != nil {
		d.err = err
		return d
	}

	d.deltas = deltas
	if st := d.cfg.Stats; st != nil {
		st.Adds = deltas.Count(DTAdd)
		st.Changes = deltas.Count(DTChange)
		st.Deletes = deltas.Count(DTDelete)
	}
	return d
}

// pass classifies every unseen leaf of source against target. reverse is
// false for the left-to-right pass
func (d *Differ) pass(source, target interface{}, deltas *Deltas, seen map[string]struct{}, reverse bool) error {
	before := len(*deltas)
	err := walkLeaves(source, d.cfg.MaxDepth, func(path string, sts []step, leaf interface{}) {
		d.count(leaf, reverse)

		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}

		match, found := resolve(target, sts)
		switch {
		case found && !Equal(leaf, match):
			// old values always come from left
			if reverse {
				*deltas = append(*deltas, NewDelta(DTChange, path, match, leaf))
			} else {
				*deltas = append(*deltas, NewDelta(DTChange, path, leaf, match))
			}
		case !found && reverse:
			*deltas = append(*deltas, NewDelta(DTAdd, path, nil, leaf))
		case !found:
			*deltas = append(*deltas, NewDelta(DTDelete, path, leaf, nil))
		}
	})
	if err != nil {
		return err
	}

	d.log.Debug("diff pass complete", "reverse", reverse, "deltas", len(*deltas)-before)
	return nil
}

func (d *Differ) count(leaf interface{}, right bool) {
	st := d.cfg.Stats
	if st == nil {
		return
	}
	if right {
		st.Right++
		st.RightWeight += len(Render(leaf))
		return
	}
	st.Left++
	st.LeftWeight += len(Render(leaf))
}

// Err returns the error that stopped the last call to Diff, if any
func (d *Differ) Err() error { return d.err }

// Deltas returns the result of the last call to Diff
func (d *Differ) Deltas() Deltas { return d.deltas }

// DeltaByPath returns the delta at path, nil if path is unchanged
func (d *Differ) DeltaByPath(path string) *Delta { return d.deltas.ByPath(path) }

// HasPathChanged is true if path carries a delta of the given operation
func (d *Differ) HasPathChanged(path string, op Operation) bool {
	return d.deltas.HasPathChanged(path, op)
}

// HasChanges is true if the documents differ
func (d *Differ) HasChanges() bool { return d.deltas.HasChanges() }
