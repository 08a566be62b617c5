package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tmf/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool

	// cfg is the config file loaded by setup.
	cfg Config
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup loads the config file and installs the logger into the command
// context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	loaded, err := LoadConfig()
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}
	cfg = loaded
	applyLoggingConfig(cmd, cfg, &logLevel, &logFormat)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Setup(logger.Options{Format: logFormat, Level: level})
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}
	return logger.WithContext(ctx, log), nil
}
