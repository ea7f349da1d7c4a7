// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package config provides configuration loading and validation for Songlake.
//
// # Configuration Sources
//
// Load layers three koanf providers, later layers winning:
//
//  1. Built-in defaults (structs provider over defaultConfig)
//  2. Optional YAML file: the -config flag, CONFIG_PATH, or songlake.yaml
//  3. Environment variables with an explicit name mapping
//
// Unmapped environment variables are ignored.
//
// # Environment Variables
//
// Input (InputConfig):
//   - INPUT_MODE: local or remote (default: local)
//   - INPUT_ROOT: directory, or s3://bucket/prefix in remote mode (default: data)
//   - SONG_DATA_PATTERN: catalog glob (default: song_data/*/*/*/*.json)
//   - LOG_DATA_PATTERN: activity log glob (default: log_data/*/*/*.json)
//   - INPUT_REQUESTS_PER_SECOND: S3 read rate limit, 0 = unlimited
//   - AWS_REGION, AWS_ENDPOINT_URL, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
//     AWS_SESSION_TOKEN, S3_USE_PATH_STYLE
//
// Output (OutputConfig):
//   - OUTPUT_ROOT: directory or s3://bucket/prefix (default: output)
//   - WRITE_MODE: overwrite or append (default: overwrite)
//   - OUTPUT_COMPRESSION: snappy, zstd, gzip or uncompressed (default: snappy)
//   - OUTPUT_AWS_*: as above; inherited from AWS_* when unset
//
// Pipeline (PipelineConfig):
//   - PLAY_ACTION: page value that marks a play event (default: NextSong)
//   - UNMATCHED_EVENTS: drop or retain (default: drop)
//   - PIPELINE_WORKERS: decode workers, 0 = CPU count
//   - DRY_RUN: transform without writing
//
// Retry (RetryConfig):
//   - WRITE_RETRY_ATTEMPTS (default: 3)
//   - WRITE_RETRY_INITIAL_DELAY (default: 2s)
//   - WRITE_RETRY_MAX_DELAY (default: 30s)
//
// Logging and metrics:
//   - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
//   - METRICS_TEXTFILE: path of a node-exporter textfile written at exit
//
// # Example YAML
//
//	input:
//	  mode: remote
//	  root: s3://udacity-dend
//	  s3:
//	    region: us-west-2
//	output:
//	  root: s3://my-lake/sparkify
//	  mode: overwrite
//	pipeline:
//	  unmatched: retain
package config
