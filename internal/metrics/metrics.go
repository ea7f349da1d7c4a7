// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch run instrumentation:
// - Record loading per source (catalog, events)
// - Event filtering and fact resolution outcomes
// - Output table sizes and write attempts
// - S3 reads and the S3 circuit breaker

var (
	// Loader Metrics
	FilesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_files_read_total",
			Help: "Total number of input files decoded",
		},
		[]string{"source"}, // "catalog", "events"
	)

	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_records_loaded_total",
			Help: "Total number of raw records decoded and validated",
		},
		[]string{"source"},
	)

	RecordsMalformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_records_malformed_total",
			Help: "Total number of raw records dropped as malformed",
		},
		[]string{"source", "reason"}, // reason: "json", "validation"
	)

	// Transformation Metrics
	EventsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_events_filtered_total",
			Help: "Total number of activity events by filter outcome",
		},
		[]string{"outcome"}, // "kept", "filtered_out"
	)

	FactResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_fact_resolutions_total",
			Help: "Total number of play events by fact resolution outcome",
		},
		[]string{"outcome"}, // "matched", "unmatched", "missing_keys", "ambiguous", "time_miss"
	)

	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songlake_table_rows",
			Help: "Number of rows in each output table of the last run",
		},
		[]string{"table"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songlake_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"stage"}, // "load", "transform", "write"
	)

	// Sink Metrics
	WriteAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_write_attempts_total",
			Help: "Total number of table write attempts",
		},
		[]string{"table"},
	)

	WriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_write_failures_total",
			Help: "Total number of failed table write attempts",
		},
		[]string{"table"},
	)

	// Source Metrics
	S3Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_s3_requests_total",
			Help: "Total number of S3 requests",
		},
		[]string{"operation", "result"}, // operation: "list", "get"; result: "success", "failure"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songlake_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songlake_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Run Metrics
	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songlake_run_duration_seconds",
			Help: "Wall time of the last run in seconds",
		},
	)

	RunLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songlake_run_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful run",
		},
	)

	RunFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "songlake_run_failures_total",
			Help: "Total number of failed runs",
		},
	)
)

// RecordLoad records the decoded files and record outcomes of one source.
func RecordLoad(source string, files, loaded, malformedJSON, malformedValidation int) {
	FilesRead.WithLabelValues(source).Add(float64(files))
	RecordsLoaded.WithLabelValues(source).Add(float64(loaded))
	if malformedJSON > 0 {
		RecordsMalformed.WithLabelValues(source, "json").Add(float64(malformedJSON))
	}
	if malformedValidation > 0 {
		RecordsMalformed.WithLabelValues(source, "validation").Add(float64(malformedValidation))
	}
}

// RecordFilter records the event filter outcome of a run.
func RecordFilter(kept, filteredOut int) {
	EventsFiltered.WithLabelValues("kept").Add(float64(kept))
	EventsFiltered.WithLabelValues("filtered_out").Add(float64(filteredOut))
}

// RecordFactOutcome adds n events to a fact resolution outcome.
func RecordFactOutcome(outcome string, n int) {
	if n > 0 {
		FactResolutions.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordStage records a stage duration.
func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordWrite records a table write attempt.
func RecordWrite(table string, err error) {
	WriteAttempts.WithLabelValues(table).Inc()
	if err != nil {
		WriteFailures.WithLabelValues(table).Inc()
	}
}

// RecordS3Request records an S3 request outcome.
func RecordS3Request(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	S3Requests.WithLabelValues(operation, result).Inc()
}

// RecordRun records the outcome of a whole run.
func RecordRun(duration time.Duration, err error) {
	RunDuration.Set(duration.Seconds())
	if err != nil {
		RunFailures.Inc()
		return
	}
	RunLastSuccess.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// format, for collection by the node-exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
