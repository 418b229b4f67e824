package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

var (
	destinations = struct {
		config    string
		logLevel  string
		color     string
		outputter struct {
			output  string
			inPlace bool
		}
		diff struct {
			left, right string
			format      string
			filter      string
			stats       bool
			maxDepth    int
		}
		patch struct {
			base, deltas string
			force        bool
			omitEmpty    bool
			strict       bool
			sequential   bool
		}
		journal struct {
			db      string
			doc     string
			deltas  string
			base    string
			seq     uint64
			verbose bool
		}
	}{}

	jsondeltaCmd = cli.Command{
		Name:   "jsondelta",
		Usage:  "Compute & apply leaf-level changes between JSON, YAML and TOML documents",
		Before: setup,
		Commands: []*cli.Command{
			&diffCmd,
			&patchCmd,
			&journalCmd,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to a TOML configuration file.",
				Sources:     cli.EnvVars("JSONDELTA_CONFIG"),
				Destination: &destinations.config,
				TakesFile:   true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "One of debug, info, warn or error. Overrides the configuration file.",
				Destination: &destinations.logLevel,
				Validator:   validateLevel,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "One of auto, always or never. Overrides the configuration file.",
				Destination: &destinations.color,
				Validator:   validateColor,
			},
		},
	}
)

// setup loads configuration & the logger ahead of any subcommand
func setup(ctx context.Context, command *cli.Command) (context.Context, error) {
	cfg, err := loadConfig(destinations.config)
	if err != nil {
		return ctx, err
	}
	if command.IsSet("log-level") {
		cfg.Log.Level = destinations.logLevel
	}
	if command.IsSet("color") {
		cfg.Output.Color = destinations.color
	}

	if logger, err = newLogger(os.Stderr, cfg.Log.Level); err != nil {
		return ctx, err
	}
	settings = cfg
	logger.Debug("configured", "config", destinations.config, "color", cfg.Output.Color)
	return ctx, nil
}

func main() {
	if err := jsondeltaCmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(fmt.Errorf("jsondelta: %w", err))
	}
}
