// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/metrics"
)

// RetryConfig controls RetryWriter backoff.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	BackoffMult  float64
}

// DefaultRetryConfig returns 3 attempts starting at 2s, doubling up to 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		BackoffMult:  2.0,
	}
}

// RetryWriter writes tables one at a time through next, retrying a failed
// table with exponential backoff. Tables written before a failure are not
// rewritten.
type RetryWriter struct {
	next Writer
	cfg  RetryConfig
}

// NewRetryWriter wraps next. Zero fields of cfg take their defaults.
func NewRetryWriter(next Writer, cfg RetryConfig) *RetryWriter {
	def := DefaultRetryConfig()
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.BackoffMult < 1 {
		cfg.BackoffMult = def.BackoffMult
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	return &RetryWriter{next: next, cfg: cfg}
}

// Write implements Writer.
func (r *RetryWriter) Write(ctx context.Context, tables []Table) error {
	for _, t := range tables {
		if err := r.writeTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *RetryWriter) writeTable(ctx context.Context, t Table) error {
	var lastErr error
	delay := r.cfg.InitialDelay

	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		if attempt > 1 {
			logging.Ctx(ctx).Debug().
				Str("table", t.Name).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying table write")
			if err := sleep(ctx, delay); err != nil {
				return fmt.Errorf("write %s: %w (last error: %w)", t.Name, err, lastErr)
			}
			delay = min(time.Duration(float64(delay)*r.cfg.BackoffMult), r.cfg.MaxDelay)
		}

		err := r.next.Write(ctx, []Table{t})
		metrics.RecordWrite(t.Name, err)
		if err == nil {
			return nil
		}
		lastErr = err

		// Cancellation and invalid specs will not succeed on retry.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrInvalidTable) {
			return fmt.Errorf("write %s: %w", t.Name, err)
		}

		logging.Ctx(ctx).Warn().
			Err(err).
			Str("table", t.Name).
			Int("attempt", attempt).
			Int("max_attempts", r.cfg.Attempts).
			Msg("Table write failed")
	}

	return fmt.Errorf("write %s: giving up after %d attempts: %w", t.Name, r.cfg.Attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
