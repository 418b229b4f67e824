package main

import (
	"context"
	"errors"

	"github.com/qri-io/jsondelta"
	"github.com/urfave/cli/v3"
)

var patchCmd = cli.Command{
	Name:      "patch",
	Usage:     "Apply deltas to BASE. Deltas are read from stdin when no DELTAS file is given",
	ArgsUsage: "BASE [DELTAS]",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:        "base",
			Destination: &destinations.patch.base,
			Config:      cli.StringConfig{TrimSpace: true},
		},
		&cli.StringArg{
			Name:        "deltas",
			Destination: &destinations.patch.deltas,
			Config:      cli.StringConfig{TrimSpace: true},
		},
	},
	Flags:                  patchFlags,
	MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{outputterFlags},
	Action: func(ctx context.Context, command *cli.Command) error {
		if destinations.patch.base == "" {
			return errors.New("patch requires a BASE document")
		}
		if destinations.patch.base == "-" && destinations.patch.deltas == "" {
			return errors.New("BASE and DELTAS cannot both be read from stdin")
		}
		f, err := formatOf(destinations.patch.base)
		if err != nil {
			return err
		}
		base, err := readDocument(destinations.patch.base)
		if err != nil {
			return err
		}
		deltas, err := readDeltas(destinations.patch.deltas)
		if err != nil {
			return err
		}

		patched, err := jsondelta.Patch(base, deltas, patchOptions(command))
		if err != nil {
			return err
		}
		buf, err := encodeDocument(patched, f)
		if err != nil {
			return err
		}
		return output(destinations.patch.base, buf)
	},
}
