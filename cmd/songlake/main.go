// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package main is the entry point for the songlake batch job.
//
// Songlake reads a music catalog (song_data) and a user-activity log
// (log_data), builds a star schema of songs, artists, users and time
// dimensions plus a songplays fact table, and writes each table as
// partitioned Parquet.
//
// # Run Order
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog configured from the logging section
//  3. Sources: a local directory or an S3 bucket prefix
//  4. Pipeline: load, filter, resolve dimensions and facts
//  5. Sink: DuckDB Parquet export with retries, skipped in dry-run mode
//  6. Metrics: optional node-exporter textfile
//
// # Usage
//
//	songlake [-config path] [-dry-run]
//
// Local run against the sample dataset:
//
//	INPUT_ROOT=./data OUTPUT_ROOT=./output songlake
//
// Remote run:
//
//	export INPUT_MODE=remote
//	export INPUT_ROOT=s3://udacity-dend/
//	export OUTPUT_ROOT=s3://my-lake/sparkify
//	export AWS_ACCESS_KEY_ID=... AWS_SECRET_ACCESS_KEY=...
//	songlake
//
// The process exits 0 when every table was built and written, 1 otherwise.
// SIGINT and SIGTERM cancel the run.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/songlake/internal/config"
	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: CONFIG_PATH or songlake.yaml)")
	dryRun := flag.Bool("dry-run", false, "build every table but skip writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dryRun {
		cfg.Pipeline.DryRun = true
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = run(ctx, cfg, openDuckDBWriter)
	metrics.RecordRun(time.Since(start), err)

	if cfg.Metrics.Textfile != "" {
		if mErr := metrics.WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
			logging.Err(mErr).Msg("Failed to write metrics textfile")
		}
	}

	if err != nil {
		stop()
		logging.Fatal().Err(err).Dur("duration", time.Since(start)).Msg("Run failed")
	}
	logging.Info().Dur("duration", time.Since(start)).Msg("Run completed")
}
