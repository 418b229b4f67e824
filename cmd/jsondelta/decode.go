package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/qri-io/jsondelta"
)

type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

func (f format) String() string {
	switch f {
	case formatYAML:
		return "yaml"
	case formatTOML:
		return "toml"
	default:
		return "json"
	}
}

// formatOf picks a document format from a file extension. stdin ("-" or no
// path) is read as JSON
func formatOf(path string) (format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return formatJSON, fmt.Errorf("unsupported file extension %q, must be one of .json, .yaml, .yml or .toml", ext)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readDocument loads the document at path. "-" reads stdin
func readDocument(path string) (interface{}, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := decodeDocument(data, f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Debug("read document", "path", path, "format", f)
	return v, nil
}

// decodeDocument parses data into the JSON value model. YAML & TOML
// documents are normalized through JSON so integers, dates and the like
// arrive as float64 & string leaves
func decodeDocument(data []byte, f format) (interface{}, error) {
	var v interface{}
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
	case formatTOML:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		v = m
	default:
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return normalize(v)
}

func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = json.Unmarshal(data, &out)
	return out, err
}

// encodeDocument writes v in format f
func encodeDocument(v interface{}, f format) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	switch f {
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	case formatTOML:
		if jsondelta.KindOf(v) != jsondelta.KindObject {
			return nil, fmt.Errorf("toml documents must be tables, got %s", jsondelta.KindOf(v))
		}
		if err := toml.NewEncoder(buf).Encode(v); err != nil {
			return nil, err
		}
	default:
		if err := writeJSON(buf, v); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// readDeltas loads a list of deltas from a JSON or YAML file, or stdin
func readDeltas(path string) (jsondelta.Deltas, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading deltas: %w", err)
	}
	if f != formatJSON {
		v, err := decodeDocument(data, f)
		if err != nil {
			return nil, fmt.Errorf("decoding deltas: %w", err)
		}
		if data, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}

	var deltas jsondelta.Deltas
	if err := json.Unmarshal(data, &deltas); err != nil {
		return nil, fmt.Errorf("decoding deltas: %w", err)
	}
	return deltas, nil
}
