package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/qri-io/jsondelta"
	"github.com/qri-io/jsondelta/journal"
	"github.com/urfave/cli/v3"
)

var journalCmd = cli.Command{
	Name:  "journal",
	Usage: "Record, list & replay the history of documents",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Usage:       "Path to the journal database.",
			Value:       "jsondelta.db",
			Destination: &destinations.journal.db,
			TakesFile:   true,
		},
		&cli.StringFlag{
			Name:        "doc",
			Usage:       "Name of the document within the journal.",
			Destination: &destinations.journal.doc,
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "append",
			Usage:     "Store a changeset for a document. Deltas are read from stdin when no DELTAS file is given",
			ArgsUsage: "[DELTAS]",
			Arguments: []cli.Argument{
				&cli.StringArg{
					Name:        "deltas",
					Destination: &destinations.journal.deltas,
					Config:      cli.StringConfig{TrimSpace: true},
				},
			},
			Action: func(ctx context.Context, command *cli.Command) error {
				if err := requireDoc(); err != nil {
					return err
				}
				deltas, err := readDeltas(destinations.journal.deltas)
				if err != nil {
					return err
				}
				return withJournal(false, func(j *journal.Journal) error {
					seq, err := j.Append(destinations.journal.doc, deltas)
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, seq)
					return nil
				})
			},
		},
		{
			Name:      "replay",
			Usage:     "Apply a document's changesets to BASE in order",
			ArgsUsage: "BASE",
			Arguments: []cli.Argument{
				&cli.StringArg{
					Name:        "base",
					Destination: &destinations.journal.base,
					Config:      cli.StringConfig{TrimSpace: true},
				},
			},
			Flags: append([]cli.Flag{
				&cli.Uint64Flag{
					Name:        "seq",
					Usage:       "Stop after this changeset. 0 replays everything.",
					Destination: &destinations.journal.seq,
				},
			}, patchFlags...),
			MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{outputterFlags},
			Action: func(ctx context.Context, command *cli.Command) error {
				if err := requireDoc(); err != nil {
					return err
				}
				if destinations.journal.base == "" {
					return errors.New("replay requires a BASE document")
				}
				f, err := formatOf(destinations.journal.base)
				if err != nil {
					return err
				}
				base, err := readDocument(destinations.journal.base)
				if err != nil {
					return err
				}

				upTo := destinations.journal.seq
				if upTo == 0 {
					upTo = math.MaxUint64
				}
				var result interface{}
				err = withJournal(true, func(j *journal.Journal) (err error) {
					result, err = j.ReplayTo(destinations.journal.doc, base, upTo, patchOptions(command))
					return err
				})
				if err != nil {
					return err
				}

				buf, err := encodeDocument(result, f)
				if err != nil {
					return err
				}
				return output(destinations.journal.base, buf)
			},
		},
		{
			Name:  "list",
			Usage: "List journalled documents, or the changesets of --doc",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "verbose",
					Aliases:     []string{"v"},
					Usage:       "Print every delta of each changeset.",
					Destination: &destinations.journal.verbose,
				},
			},
			Action: func(ctx context.Context, command *cli.Command) error {
				var buf bytes.Buffer
				err := withJournal(true, func(j *journal.Journal) error {
					return list(&buf, j, destinations.journal.doc, destinations.journal.verbose, useColor(os.Stdout))
				})
				if err != nil {
					return err
				}
				_, err = buf.WriteTo(os.Stdout)
				return err
			},
		},
	},
}

func requireDoc() error {
	if destinations.journal.doc == "" {
		return errors.New("--doc is required")
	}
	return nil
}

// withJournal opens the journal for the duration of fn
func withJournal(readOnly bool, fn func(j *journal.Journal) error) error {
	j, err := journal.Open(destinations.journal.db, journal.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

// list writes document names when doc is empty, otherwise one line per
// changeset of doc
func list(buf *bytes.Buffer, j *journal.Journal, doc string, verbose, color bool) error {
	if doc == "" {
		docs, err := j.Documents()
		if err != nil {
			return err
		}
		for _, name := range docs {
			fmt.Fprintln(buf, name)
		}
		return nil
	}

	entries, err := j.Changesets(doc)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(buf, "%d\t%d adds, %d changes, %d deletes\n", e.Seq,
			e.Deltas.Count(jsondelta.DTAdd), e.Deltas.Count(jsondelta.DTChange), e.Deltas.Count(jsondelta.DTDelete))
		if verbose {
			if err := jsondelta.FormatPretty(buf, e.Deltas, color); err != nil {
				return err
			}
		}
	}
	return nil
}
