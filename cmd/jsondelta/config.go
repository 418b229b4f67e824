package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pelletier/go-toml/v2"
	"github.com/qri-io/jsondelta"
	"github.com/urfave/cli/v3"
)

// Config is the optional TOML configuration file. command line flags take
// precedence over every value
type Config struct {
	Patch struct {
		Force      bool `toml:"force"`
		OmitEmpty  bool `toml:"omit_empty"`
		Strict     bool `toml:"strict"`
		Sequential bool `toml:"sequential"`
	} `toml:"patch"`
	Output struct {
		// auto, always or never
		Color string `toml:"color"`
	} `toml:"output"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

var (
	settings = defaultConfig()
	logger   = slog.New(slog.DiscardHandler)
)

func defaultConfig() Config {
	var cfg Config
	cfg.Output.Color = "auto"
	cfg.Log.Level = "warn"
	return cfg
}

// loadConfig reads the configuration file at path over the defaults. an
// empty path returns the defaults
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := validateColor(cfg.Output.Color); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if err := validateLevel(cfg.Log.Level); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func validateColor(s string) error {
	switch s {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid color: %s, must be one of auto, always, or never", s)
	}
}

func validateLevel(s string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level: %s, must be one of debug, info, warn, or error", s)
	}
	return nil
}

// newLogger writes text records without timestamps to w
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})), nil
}

// useColor reports whether output written to f should carry ANSI colors
func useColor(f *os.File) bool {
	switch settings.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// patchOptions merges the configured patch defaults with any flags set on
// command
func patchOptions(command *cli.Command) jsondelta.PatchOptions {
	opts := jsondelta.DefaultPatchOptions().
		WithForce(settings.Patch.Force).
		WithOmitEmpty(settings.Patch.OmitEmpty).
		WithStrict(settings.Patch.Strict).
		WithSequential(settings.Patch.Sequential).
		WithLogger(logger)

	if command.IsSet("force") {
		opts = opts.WithForce(destinations.patch.force)
	}
	if command.IsSet("omit-empty") {
		opts = opts.WithOmitEmpty(destinations.patch.omitEmpty)
	}
	if command.IsSet("strict") {
		opts = opts.WithStrict(destinations.patch.strict)
	}
	if command.IsSet("sequential") {
		opts = opts.WithSequential(destinations.patch.sequential)
	}
	return opts
}

// patchFlags bind the patch options shared by every command that patches
var patchFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:        "force",
		Usage:       "Permit adds onto occupied array positions, shifting later elements right.",
		Destination: &destinations.patch.force,
	},
	&cli.BoolFlag{
		Name:        "omit-empty",
		Usage:       "Remove null values, empty strings and containers left empty after patching.",
		Destination: &destinations.patch.omitEmpty,
	},
	&cli.BoolFlag{
		Name:        "strict",
		Usage:       "Reject adds onto existing object keys as conflicts.",
		Destination: &destinations.patch.strict,
	},
	&cli.BoolFlag{
		Name:        "sequential",
		Usage:       "Apply deltas strictly in list order, including runs of deletes.",
		Destination: &destinations.patch.sequential,
	},
}
