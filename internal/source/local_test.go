// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocal_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "song_data/A/B/C/TRABCEI128F424C983.json", "{}")
	writeFile(t, root, "song_data/A/A/B/TRAABJL12903CDCF1A.json", "{}")
	writeFile(t, root, "song_data/A/A/B/notes.txt", "x")
	writeFile(t, root, "song_data/A/too_shallow.json", "{}")
	writeFile(t, root, "log_data/2018/11/2018-11-01-events.json", "{}")

	src := NewLocal(root)

	tests := []struct {
		pattern string
		want    []string
	}{
		{
			pattern: "song_data/*/*/*/*.json",
			want: []string{
				"song_data/A/A/B/TRAABJL12903CDCF1A.json",
				"song_data/A/B/C/TRABCEI128F424C983.json",
			},
		},
		{
			pattern: "song_data/**/*.json",
			want: []string{
				"song_data/A/A/B/TRAABJL12903CDCF1A.json",
				"song_data/A/B/C/TRABCEI128F424C983.json",
				"song_data/A/too_shallow.json",
			},
		},
		{
			pattern: "log_data/*/*/*.json",
			want:    []string{"log_data/2018/11/2018-11-01-events.json"},
		},
		{
			pattern: "missing/*.json",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := src.List(context.Background(), tt.pattern)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("List()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLocal_ListDirectoriesExcluded(t *testing.T) {
	src := NewFS(fstest.MapFS{
		"log_data/2018/11/a.json":  {Data: []byte("{}")},
		"log_data/2018/dir.json/x": {Data: []byte("{}")},
	}, "memfs")

	got, err := src.List(context.Background(), "log_data/*/*")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no files at depth 2, got %v", got)
	}

	got, err = src.List(context.Background(), "log_data/*/*/*")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 files at depth 3, got %v", got)
	}
}

func TestLocal_ListErrors(t *testing.T) {
	t.Run("bad pattern", func(t *testing.T) {
		_, err := NewLocal(t.TempDir()).List(context.Background(), "song_data/[a")
		if !errors.Is(err, ErrBadPattern) {
			t.Errorf("expected ErrBadPattern, got %v", err)
		}
	})

	t.Run("empty pattern", func(t *testing.T) {
		_, err := NewLocal(t.TempDir()).List(context.Background(), "")
		if !errors.Is(err, ErrBadPattern) {
			t.Errorf("expected ErrBadPattern, got %v", err)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := NewLocal(filepath.Join(t.TempDir(), "nope")).List(context.Background(), "*.json")
		if !errors.Is(err, ErrRootNotFound) {
			t.Errorf("expected ErrRootNotFound, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLocal(t.TempDir()).List(ctx, "*.json")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestLocal_Open(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "log_data/2018/11/a.json", `{"page":"NextSong"}`)
	src := NewLocal(root)

	rc, err := src.Open(context.Background(), "log_data/2018/11/a.json")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != `{"page":"NextSong"}` {
		t.Errorf("content = %q", data)
	}

	if _, err := src.Open(context.Background(), "log_data/missing.json"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
