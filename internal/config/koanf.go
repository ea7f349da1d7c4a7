// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"songlake.yaml",
	"songlake.yml",
	"/etc/songlake/config.yaml",
	"/etc/songlake/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Mode:              InputLocal,
			Root:              "data",
			SongPattern:       "song_data/*/*/*/*.json",
			LogPattern:        "log_data/*/*/*.json",
			RequestsPerSecond: 0,
			S3: S3Config{
				Region: "us-west-2",
			},
		},
		Output: OutputConfig{
			Root:        "output",
			Mode:        WriteOverwrite,
			Compression: "snappy",
			S3: S3Config{
				Region: "us-west-2",
			},
		},
		Pipeline: PipelineConfig{
			PlayAction: "NextSong",
			Unmatched:  "drop",
			Workers:    0, // 0 = use runtime.NumCPU()
			DryRun:     false,
		},
		Retry: RetryConfig{
			Attempts:     3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML file (path argument, CONFIG_PATH, or DefaultConfigPaths)
//  3. Environment Variables: override any mapped setting
//
// An explicit path that does not exist is an error. A missing default file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := resolveConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// INPUT_ROOT -> input.root, AWS_REGION -> input.s3.region
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.inheritOutputCredentials()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigFile returns the config file to load, or "" when none applies.
// Priority: explicit path, then CONFIG_PATH, then the first existing default path.
func resolveConfigFile(path string) (string, error) {
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// inheritOutputCredentials copies the input S3 settings to the output when the
// output has none of its own, so a single AWS_* set serves both sides.
func (c *Config) inheritOutputCredentials() {
	if !c.Output.IsRemote() {
		return
	}
	if !c.Output.S3.HasStaticCredentials() && c.Input.S3.HasStaticCredentials() {
		c.Output.S3.AccessKeyID = c.Input.S3.AccessKeyID
		c.Output.S3.SecretAccessKey = c.Input.S3.SecretAccessKey
		c.Output.S3.SessionToken = c.Input.S3.SessionToken
	}
	if c.Output.S3.Endpoint == "" {
		c.Output.S3.Endpoint = c.Input.S3.Endpoint
		c.Output.S3.UsePathStyle = c.Input.S3.UsePathStyle
	}
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Input
	"input_mode":                "input.mode",
	"input_root":                "input.root",
	"song_data_pattern":         "input.song_pattern",
	"log_data_pattern":          "input.log_pattern",
	"input_requests_per_second": "input.requests_per_second",
	"aws_region":                "input.s3.region",
	"aws_endpoint_url":          "input.s3.endpoint",
	"aws_access_key_id":         "input.s3.access_key_id",
	"aws_secret_access_key":     "input.s3.secret_access_key",
	"aws_session_token":         "input.s3.session_token",
	"s3_use_path_style":         "input.s3.use_path_style",

	// Output
	"output_root":                  "output.root",
	"write_mode":                   "output.mode",
	"output_compression":           "output.compression",
	"output_aws_region":            "output.s3.region",
	"output_aws_endpoint_url":      "output.s3.endpoint",
	"output_aws_access_key_id":     "output.s3.access_key_id",
	"output_aws_secret_access_key": "output.s3.secret_access_key",
	"output_aws_session_token":     "output.s3.session_token",

	// Pipeline
	"play_action":      "pipeline.play_action",
	"unmatched_events": "pipeline.unmatched",
	"pipeline_workers": "pipeline.workers",
	"dry_run":          "pipeline.dry_run",

	// Retry
	"write_retry_attempts":      "retry.attempts",
	"write_retry_initial_delay": "retry.initial_delay",
	"write_retry_max_delay":     "retry.max_delay",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Metrics
	"metrics_textfile": "metrics.textfile",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - INPUT_ROOT -> input.root
//   - WRITE_MODE -> output.mode
//   - UNMATCHED_EVENTS -> pipeline.unmatched
//   - AWS_ACCESS_KEY_ID -> input.s3.access_key_id
func envTransformFunc(key string) string {
	// Returning "" skips the variable, so unrelated environment never leaks into config.
	return envMappings[strings.ToLower(key)]
}
