package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/qri-io/jsondelta"
	"github.com/urfave/cli/v3"
)

var diffCmd = cli.Command{
	Name:      "diff",
	Usage:     "Print the deltas that turn LEFT into RIGHT",
	ArgsUsage: "LEFT RIGHT",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:        "left",
			Destination: &destinations.diff.left,
			Config:      cli.StringConfig{TrimSpace: true},
		},
		&cli.StringArg{
			Name:        "right",
			Destination: &destinations.diff.right,
			Config:      cli.StringConfig{TrimSpace: true},
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "One of json, pretty or jsonpatch.",
			Value:       "json",
			Destination: &destinations.diff.format,
			Validator: func(s string) error {
				switch s {
				case "json", "pretty", "jsonpatch":
					return nil
				}
				return fmt.Errorf("invalid format: %s, must be one of json, pretty, or jsonpatch", s)
			},
		},
		&cli.StringFlag{
			Name:        "filter",
			Usage:       `Expression selecting deltas to keep, e.g. 'operation == "delete"'.`,
			Destination: &destinations.diff.filter,
		},
		&cli.BoolFlag{
			Name:        "stats",
			Usage:       "Write a summary of the change to stderr.",
			Destination: &destinations.diff.stats,
		},
		&cli.IntFlag{
			Name:        "max-depth",
			Usage:       "Refuse documents nested deeper than this. 0 means no limit.",
			Destination: &destinations.diff.maxDepth,
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		if destinations.diff.left == "" || destinations.diff.right == "" {
			return errors.New("diff requires LEFT and RIGHT documents")
		}
		left, err := readDocument(destinations.diff.left)
		if err != nil {
			return err
		}
		right, err := readDocument(destinations.diff.right)
		if err != nil {
			return err
		}

		stats := &jsondelta.Stats{}
		deltas, err := jsondelta.Diff(left, right,
			jsondelta.OptionSetStats(stats),
			jsondelta.OptionSetLogger(logger),
			jsondelta.OptionMaxDepth(destinations.diff.maxDepth),
		)
		if err != nil {
			return err
		}
		if destinations.diff.filter != "" {
			if deltas, err = deltas.Filter(destinations.diff.filter); err != nil {
				return err
			}
		}

		var buf bytes.Buffer
		if err := writeDeltas(&buf, left, deltas, destinations.diff.format, useColor(os.Stdout), patchOptions(command)); err != nil {
			return err
		}
		if _, err := buf.WriteTo(os.Stdout); err != nil {
			return err
		}

		if destinations.diff.stats {
			fmt.Fprint(os.Stderr, jsondelta.FormatPrettyStatsString(stats, useColor(os.Stderr)))
		}
		return nil
	},
}

// writeDeltas renders deltas in the named format. left is the document the
// deltas apply to, needed to build a JSON Patch
func writeDeltas(buf *bytes.Buffer, left interface{}, deltas jsondelta.Deltas, format string, color bool, opts jsondelta.PatchOptions) error {
	switch format {
	case "pretty":
		return jsondelta.FormatPretty(buf, deltas, color)
	case "jsonpatch":
		ops, err := jsondelta.ToJSONPatch(left, deltas, opts)
		if err != nil {
			return err
		}
		if ops == nil {
			ops = []jsondelta.JSONPatchOperation{}
		}
		return writeJSON(buf, ops)
	default:
		if deltas == nil {
			deltas = jsondelta.Deltas{}
		}
		return writeJSON(buf, deltas)
	}
}
