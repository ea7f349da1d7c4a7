// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package loader decodes JSON-lines input files into typed records.
//
// Every non-blank line of a matched file is one record. A line that is not
// valid JSON, or whose decoded record fails struct validation, is dropped and
// counted in Stats. Failing to list, open or read a file aborts the load.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/source"
	"github.com/tomtom215/songlake/internal/validation"
)

// MaxLineSize is the longest input line accepted.
const MaxLineSize = 16 << 20

// ErrLineTooLong is returned when a line exceeds MaxLineSize.
var ErrLineTooLong = errors.New("input line exceeds maximum size")

// Stats counts the outcome of a load.
type Stats struct {
	Files   int `json:"files"`
	Records int `json:"records"`

	// Malformed counts every dropped line. Invalid is the subset that parsed
	// as JSON but failed validation.
	Malformed int `json:"malformed"`
	Invalid   int `json:"invalid"`
}

// MalformedJSON returns the number of lines dropped because they did not parse.
func (s *Stats) MalformedJSON() int {
	return s.Malformed - s.Invalid
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Records += o.Records
	s.Malformed += o.Malformed
	s.Invalid += o.Invalid
}

// Stream returns a sequence over every record of every file matching pattern.
// Files are visited in sorted name order and records in file order. The
// sequence is lazy and can be ranged over again to reload from scratch.
//
// A fatal error is yielded once as the final element. When stats is non-nil
// it accumulates counts as files are read.
func Stream[T any](ctx context.Context, src source.Source, pattern string, stats *Stats) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		total := stats
		if total == nil {
			total = &Stats{}
		}

		names, err := src.List(ctx, pattern)
		if err != nil {
			yield(zero, fmt.Errorf("list %s: %w", pattern, err))
			return
		}

		for _, name := range names {
			stopped := false
			var fileStats Stats
			err := decodeFile(ctx, src, name, &fileStats, func(rec T) bool {
				if !yield(rec, nil) {
					stopped = true
					return false
				}
				return true
			})
			total.add(fileStats)
			if stopped {
				return
			}
			if err != nil {
				yield(zero, err)
				return
			}
		}
	}
}

// Collect decodes every file matching pattern on up to workers goroutines and
// returns all records. Per-file results are concatenated in sorted file
// order, so the output does not depend on scheduling. workers <= 0 means
// runtime.NumCPU(); a single worker reads through Stream.
func Collect[T any](ctx context.Context, src source.Source, pattern string, workers int) ([]T, *Stats, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		records []T
		stats   *Stats
		err     error
	)
	if workers == 1 {
		records, stats, err = collectSequential[T](ctx, src, pattern)
	} else {
		records, stats, err = collectParallel[T](ctx, src, pattern, workers)
	}
	if err != nil {
		return nil, nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("pattern", pattern).
		Int("workers", workers).
		Int("files", stats.Files).
		Int("records", stats.Records).
		Int("malformed", stats.Malformed).
		Msg("Loaded records")

	return records, stats, nil
}

func collectSequential[T any](ctx context.Context, src source.Source, pattern string) ([]T, *Stats, error) {
	stats := &Stats{}
	records := make([]T, 0)
	for rec, err := range Stream[T](ctx, src, pattern, stats) {
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, stats, nil
}

func collectParallel[T any](ctx context.Context, src source.Source, pattern string, workers int) ([]T, *Stats, error) {
	names, err := src.List(ctx, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", pattern, err)
	}

	results := make([][]T, len(names))
	perFile := make([]Stats, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			return decodeFile(gctx, src, name, &perFile[i], func(rec T) bool {
				results[i] = append(results[i], rec)
				return true
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{}
	total := 0
	for i := range names {
		stats.add(perFile[i])
		total += len(results[i])
	}

	records := make([]T, 0, total)
	for _, part := range results {
		records = append(records, part...)
	}
	return records, stats, nil
}

// decodeFile reads one file and calls emit for each valid record until emit
// returns false.
func decodeFile[T any](ctx context.Context, src source.Source, name string, stats *Stats, emit func(T) bool) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	stats.Files++
	log := logging.Ctx(ctx)

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			stats.Malformed++
			log.Debug().Str("file", name).Int("line", lineNo).Err(err).Msg("Dropping malformed record")
			continue
		}

		if verr := validation.ValidateStruct(&rec); verr != nil {
			stats.Malformed++
			stats.Invalid++
			log.Debug().Str("file", name).Int("line", lineNo).Strs("fields", verr.Fields()).Msg("Dropping invalid record")
			continue
		}

		stats.Records++
		if !emit(rec) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("read %s line %d: %w", name, lineNo+1, ErrLineTooLong)
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}
