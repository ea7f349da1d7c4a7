// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/songlake/internal/metrics"
)

// flakyWriter fails the first failures calls for each table.
type flakyWriter struct {
	failures int
	err      error
	calls    map[string]int
	inner    *MemoryWriter
}

func newFlakyWriter(failures int, err error) *flakyWriter {
	return &flakyWriter{failures: failures, err: err, calls: map[string]int{}, inner: NewMemoryWriter()}
}

func (f *flakyWriter) Write(ctx context.Context, tables []Table) error {
	for _, t := range tables {
		f.calls[t.Name]++
		if f.calls[t.Name] <= f.failures {
			return f.err
		}
	}
	return f.inner.Write(ctx, tables)
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{Attempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func namedTable(name string) Table {
	spec := testSpec()
	spec.Name = name
	return Table{TableSpec: spec, Rows: [][]any{{"x", 1, 1}}}
}

func TestRetryWriter_SucceedsAfterFailures(t *testing.T) {
	next := newFlakyWriter(2, errors.New("s3: 503 slow down"))
	w := NewRetryWriter(next, fastRetry(3))

	attempts := testutil.ToFloat64(metrics.WriteAttempts.WithLabelValues("retry_ok"))
	failures := testutil.ToFloat64(metrics.WriteFailures.WithLabelValues("retry_ok"))

	if err := w.Write(context.Background(), []Table{namedTable("retry_ok")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if next.calls["retry_ok"] != 3 {
		t.Errorf("calls = %d, want 3", next.calls["retry_ok"])
	}
	if _, ok := next.inner.Table("retry_ok"); !ok {
		t.Error("table not written")
	}
	if got := testutil.ToFloat64(metrics.WriteAttempts.WithLabelValues("retry_ok")) - attempts; got != 3 {
		t.Errorf("write attempts delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.WriteFailures.WithLabelValues("retry_ok")) - failures; got != 2 {
		t.Errorf("write failures delta = %v, want 2", got)
	}
}

func TestRetryWriter_GivesUp(t *testing.T) {
	cause := errors.New("connection reset")
	next := newFlakyWriter(10, cause)
	w := NewRetryWriter(next, fastRetry(2))

	err := w.Write(context.Background(), []Table{namedTable("retry_fail"), namedTable("never")})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if next.calls["retry_fail"] != 2 {
		t.Errorf("calls = %d, want 2", next.calls["retry_fail"])
	}
	if next.calls["never"] != 0 {
		t.Error("tables after a failed table should not be written")
	}
}

func TestRetryWriter_NoRetryOnInvalidTable(t *testing.T) {
	next := newFlakyWriter(10, ErrInvalidTable)
	w := NewRetryWriter(next, fastRetry(5))

	err := w.Write(context.Background(), []Table{namedTable("retry_invalid")})
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if next.calls["retry_invalid"] != 1 {
		t.Errorf("calls = %d, want 1", next.calls["retry_invalid"])
	}
}

func TestRetryWriter_ContextCancelledDuringBackoff(t *testing.T) {
	next := newFlakyWriter(10, errors.New("timeout"))
	w := NewRetryWriter(next, RetryConfig{Attempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Write(ctx, []Table{namedTable("retry_ctx")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if next.calls["retry_ctx"] != 1 {
		t.Errorf("calls = %d, want 1", next.calls["retry_ctx"])
	}
}

func TestNewRetryWriter_Defaults(t *testing.T) {
	w := NewRetryWriter(NewMemoryWriter(), RetryConfig{})
	def := DefaultRetryConfig()
	if w.cfg.Attempts != def.Attempts {
		t.Errorf("Attempts = %d, want %d", w.cfg.Attempts, def.Attempts)
	}
	if w.cfg.BackoffMult != def.BackoffMult {
		t.Errorf("BackoffMult = %v, want %v", w.cfg.BackoffMult, def.BackoffMult)
	}
}
