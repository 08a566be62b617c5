package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "TMF_CONFIG"

// Config represents the tmf configuration file (~/.config/tmf/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Batch conversion
	OutDir          string `yaml:"out_dir"`
	Jobs            *int64 `yaml:"jobs"`
	InitialCapacity *int64 `yaml:"initial_capacity"`

	// Server
	ServerAddress string `yaml:"server_address"`
	StorePath     string `yaml:"store_path"`
}

func configPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfig)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tmf", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config; a
// file that does not parse is an error.
func LoadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

// applyBatchConfig applies config file defaults to batch command variables
// when the corresponding CLI flag was not explicitly set.
func applyBatchConfig(c *cli.Command, cfg Config, outDir *string, jobs, capacity *int64) {
	if cfg.OutDir != "" && !c.IsSet("out-dir") {
		*outDir = cfg.OutDir
	}
	if cfg.Jobs != nil && !c.IsSet("jobs") {
		*jobs = *cfg.Jobs
	}
	if cfg.InitialCapacity != nil && !c.IsSet("initial-capacity") {
		*capacity = *cfg.InitialCapacity
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr, storePath *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.StorePath != "" && !c.IsSet("store") {
		*storePath = cfg.StorePath
	}
}
