// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Local reads files beneath a directory, or any fs.FS.
type Local struct {
	root string
	fsys fs.FS
}

// NewLocal returns a Source rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir, fsys: os.DirFS(dir)}
}

// NewFS returns a Source over fsys. name is used in errors and logs only.
func NewFS(fsys fs.FS, name string) *Local {
	return &Local{root: name, fsys: fsys}
}

// String returns the root the source reads from.
func (l *Local) String() string {
	return l.root
}

// List returns the regular files matching pattern, sorted by name.
func (l *Local) List(ctx context.Context, pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Glob swallows a missing root, so check it explicitly.
	if _, err := fs.Stat(l.fsys, "."); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRootNotFound, l.root, err)
	}

	matches, err := doublestar.Glob(l.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, l.root, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// Open opens a file returned by List.
func (l *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s in %s: %w", name, l.root, err)
	}
	return f, nil
}
