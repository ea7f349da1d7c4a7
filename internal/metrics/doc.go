// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

/*
Package metrics provides Prometheus instrumentation for Songlake batch runs.

All collectors are registered on the default registry through promauto and
carry the songlake_ prefix.

# Metric Families

Loader:
  - songlake_files_read_total{source}
  - songlake_records_loaded_total{source}
  - songlake_records_malformed_total{source, reason}

Transformation:
  - songlake_events_filtered_total{outcome}
  - songlake_fact_resolutions_total{outcome}
  - songlake_table_rows{table}
  - songlake_stage_duration_seconds{stage}

Sink and source:
  - songlake_write_attempts_total{table}, songlake_write_failures_total{table}
  - songlake_s3_requests_total{operation, result}
  - songlake_circuit_breaker_state{name} and related breaker counters

Run:
  - songlake_run_duration_seconds, songlake_run_last_success_timestamp_seconds,
    songlake_run_failures_total

# Export

A run is short-lived, so there is no scrape endpoint. When a textfile path is
configured the CLI calls WriteTextfile once before exit:

	if cfg.Metrics.Textfile != "" {
	    if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
	        logging.Warn().Err(err).Msg("Failed to write metrics textfile")
	    }
	}
*/
package metrics
