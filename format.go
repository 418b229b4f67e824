package jsondelta

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var opSymbols = map[Operation]string{
	DTAdd:    "+",
	DTDelete: "-",
	DTChange: "~",
}

// palette maps each operation to its terminal color:
// green "+" for additions
// red "-" for deletions
// blue "~" for changes
type palette struct {
	ops     map[Operation]*color.Color
	neutral *color.Color
}

func newPalette() *palette {
	p := &palette{
		ops: map[Operation]*color.Color{
			DTAdd:    color.New(color.FgGreen),
			DTDelete: color.New(color.FgRed),
			DTChange: color.New(color.FgBlue),
		},
		neutral: color.New(color.FgWhite),
	}
	// callers decide when to color, not color's terminal detection
	for _, c := range p.ops {
		c.EnableColor()
	}
	p.neutral.EnableColor()
	return p
}

// FormatPrettyString is a convenience wrapper that outputs to a string instead of
// an io.Writer
func FormatPrettyString(changes Deltas, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, changes, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report to w, one line per delta. if colorTTY is
// true lines are colored by operation & changed strings show an inline
// character diff
func FormatPretty(w io.Writer, changes Deltas, colorTTY bool) error {
	var p *palette
	if colorTTY {
		p = newPalette()
	}

	for _, d := range changes {
		if d == nil {
			continue
		}
		symbol, ok := opSymbols[d.Operation]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOperation, d.Operation)
		}

		var line string
		switch d.Operation {
		case DTAdd:
			line = fmt.Sprintf("%s %s: %s", symbol, d.Path, Render(d.NewValue))
		case DTDelete:
			line = fmt.Sprintf("%s %s: %s", symbol, d.Path, Render(d.OldValue))
		case DTChange:
			if p != nil {
				if inline, ok := inlineStringDiff(d.OldValue, d.NewValue); ok {
					line = p.ops[DTChange].Sprintf("%s %s: ", symbol, d.Path) + inline
					break
				}
			}
			line = fmt.Sprintf("%s %s: %s => %s", symbol, d.Path, Render(d.OldValue), Render(d.NewValue))
			if p != nil {
				line = p.ops[DTChange].Sprint(line)
			}
		}
		if p != nil && d.Operation != DTChange {
			line = p.ops[d.Operation].Sprint(line)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

// inlineStringDiff renders a character-level diff between two strings with
// inserted text in green and deleted text in red
func inlineStringDiff(from, to interface{}) (string, bool) {
	a, aok := from.(string)
	b, bok := to.(string)
	if !aok || !bok {
		return "", false
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))
	return dmp.DiffPrettyText(diffs), true
}

// FormatPrettyStatsString prints a string of stats info, with ANSI colors if
// colorTTY is true. nil stats print nothing
func FormatPrettyStatsString(ds *Stats, colorTTY bool) string {
	if ds == nil {
		return ""
	}

	sprint := func(op Operation, format string, args ...interface{}) string {
		return fmt.Sprintf(format, args...)
	}
	if colorTTY {
		p := newPalette()
		sprint = func(op Operation, format string, args ...interface{}) string {
			if c, ok := p.ops[op]; ok {
				return c.Sprintf(format, args...)
			}
			return p.neutral.Sprintf(format, args...)
		}
	}

	buf := &bytes.Buffer{}

	change := ds.LeafChange()
	changeOp, sign := DTAdd, "+"
	if change < 0 {
		changeOp, sign = DTDelete, ""
	} else if change == 0 {
		changeOp, sign = "", ""
	}
	buf.WriteString(sprint(changeOp, "%s%d", sign, change))
	buf.WriteString(sprint("", " %s.", plural(change, "leaf", "leaves")))

	buf.WriteString(sprint(DTAdd, " %d %s.", ds.Adds, plural(ds.Adds, "add", "adds")))
	buf.WriteString(sprint(DTDelete, " %d %s.", ds.Deletes, plural(ds.Deletes, "delete", "deletes")))
	buf.WriteString(sprint(DTChange, " %d %s.", ds.Changes, plural(ds.Changes, "change", "changes")))
	buf.WriteRune('\n')

	return buf.String()
}

func plural(n int, one, many string) string {
	if n == 1 || n == -1 {
		return one
	}
	return many
}
