// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package source discovers and opens raw input files.
//
// A Source is rooted at a directory or an S3 prefix. Names returned by List
// are slash-separated and relative to that root, and Open accepts the same
// names. Patterns are doublestar globs, so "song_data/**/*.json" matches at
// any depth.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned when a glob pattern is malformed.
var ErrBadPattern = errors.New("bad glob pattern")

// ErrRootNotFound is returned when a local root directory does not exist.
var ErrRootNotFound = errors.New("input root not found")

// Source lists and opens input files.
type Source interface {
	// List returns the names matching pattern in ascending order.
	List(ctx context.Context, pattern string) ([]string, error)

	// Open returns a reader for one listed name. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

func validatePattern(pattern string) error {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return nil
}
