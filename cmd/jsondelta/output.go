package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

var outputterFlags = cli.MutuallyExclusiveFlags{
	Flags: [][]cli.Flag{
		{
			&cli.StringFlag{
				Name:        "output",
				DefaultText: "STDOUT",
				Usage:       "File to write the resulting document to.",
				Destination: &destinations.outputter.output,
				Aliases:     []string{"o"},
				TakesFile:   true,
				OnlyOnce:    true,
			},
		},
		{
			&cli.BoolFlag{
				Name:        "in-place",
				Usage:       "Rewrite the input document with the result. Cannot be combined with output.",
				Destination: &destinations.outputter.inPlace,
				Aliases:     []string{"i"},
				OnlyOnce:    true,
			},
		},
	},
}

// output writes content to wherever the outputter flags point: back over
// originalPath, to a named file, or to stdout
func output(originalPath string, content *bytes.Buffer) error {
	switch {
	case destinations.outputter.inPlace:
		if originalPath == "" || originalPath == "-" {
			return fmt.Errorf("cannot rewrite stdin in place")
		}
		stat, err := os.Stat(originalPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", originalPath, err)
		}
		return writeFileAtomically(originalPath, content.Bytes(), stat.Mode().Perm())
	case destinations.outputter.output != "":
		return writeFileAtomically(filepath.Clean(destinations.outputter.output), content.Bytes(), 0644)
	default:
		_, err := io.Copy(os.Stdout, content)
		return err
	}
}

// writeFileAtomically writes content to a temporary file beside destination,
// then renames it into place
func writeFileAtomically(destination string, content []byte, perm os.FileMode) (err error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destination), ".jsondelta-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmpFile.Write(content); err != nil {
		return err
	}
	if err = tmpFile.Sync(); err != nil {
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, destination)
}
