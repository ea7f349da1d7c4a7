// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/songlake/internal/config"
	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/pipeline"
	"github.com/tomtom215/songlake/internal/sink"
	"github.com/tomtom215/songlake/internal/source"
)

// writerOpener builds the table writer of a run and returns its cleanup.
type writerOpener func(ctx context.Context, cfg *config.Config, runID string) (sink.Writer, func() error, error)

// run executes one batch: sources, pipeline, then the writer unless dry-run.
func run(ctx context.Context, cfg *config.Config, openWriter writerOpener) error {
	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.Ctx(ctx)

	log.Info().
		Str("input_mode", string(cfg.Input.Mode)).
		Str("input_root", cfg.Input.Root).
		Str("output_root", cfg.Output.Root).
		Str("s3_endpoint", logging.SanitizeURL(cfg.Input.S3.Endpoint)).
		Str("aws_access_key_id", logging.SanitizeSecret(cfg.Input.S3.AccessKeyID)).
		Str("write_mode", string(cfg.Output.Mode)).
		Bool("dry_run", cfg.Pipeline.DryRun).
		Msg("Configuration loaded")

	src, err := openSource(ctx, cfg.Input)
	if err != nil {
		return err
	}

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	// Both datasets live under the same input root.
	res, err := pipeline.New(opts, src, src).Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	tables := res.SinkTables()
	if cfg.Pipeline.DryRun {
		for _, t := range tables {
			log.Info().
				Str("table", t.Name).
				Int("rows", len(t.Rows)).
				Strs("partition_by", t.PartitionBy).
				Msg("Dry run, table not written")
		}
		return nil
	}

	w, closeWriter, err := openWriter(ctx, cfg, runID)
	if err != nil {
		return fmt.Errorf("open writer: %w", err)
	}
	defer func() {
		if cerr := closeWriter(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close writer")
		}
	}()

	wctx := logging.ContextWithStage(ctx, "write")
	if err := w.Write(wctx, tables); err != nil {
		return fmt.Errorf("write tables: %w", err)
	}
	return nil
}

// openSource builds the input source selected by the input mode.
func openSource(ctx context.Context, in config.InputConfig) (source.Source, error) {
	switch in.Mode {
	case config.InputRemote:
		bucket, prefix, err := config.ParseS3URL(in.Root)
		if err != nil {
			return nil, err
		}
		client, err := source.NewS3Client(ctx, in.S3)
		if err != nil {
			return nil, err
		}
		return source.NewS3(client, source.S3Options{
			Bucket:            bucket,
			Prefix:            prefix,
			RequestsPerSecond: in.RequestsPerSecond,
		}), nil
	case config.InputLocal:
		return source.NewLocal(in.Root), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownInputMode, in.Mode)
}

// openDuckDBWriter returns a retrying DuckDB Parquet writer.
func openDuckDBWriter(ctx context.Context, cfg *config.Config, runID string) (sink.Writer, func() error, error) {
	dw, err := sink.NewDuckDBWriter(ctx, sink.DuckDBOptions{
		Root:        cfg.Output.Root,
		Mode:        cfg.Output.Mode,
		Compression: cfg.Output.Compression,
		S3:          cfg.Output.S3,
		RunID:       runID,
		Threads:     cfg.Pipeline.Workers,
	})
	if err != nil {
		return nil, nil, err
	}

	w := sink.NewRetryWriter(dw, sink.RetryConfig{
		Attempts:     cfg.Retry.Attempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
	})
	return w, dw.Close, nil
}
