// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseInputMode(t *testing.T) {
	for _, s := range []string{"local", "remote"} {
		if m, err := ParseInputMode(s); err != nil || string(m) != s {
			t.Errorf("ParseInputMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseInputMode("Local"); !errors.Is(err, ErrUnknownInputMode) {
		t.Errorf("expected ErrUnknownInputMode for Local, got %v", err)
	}
}

func TestParseWriteMode(t *testing.T) {
	for _, s := range []string{"overwrite", "append"} {
		if m, err := ParseWriteMode(s); err != nil || string(m) != s {
			t.Errorf("ParseWriteMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseWriteMode("upsert"); !errors.Is(err, ErrUnknownWriteMode) {
		t.Errorf("expected ErrUnknownWriteMode for upsert, got %v", err)
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		raw        string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{"s3://udacity-dend", "udacity-dend", "", false},
		{"s3://udacity-dend/", "udacity-dend", "", false},
		{"s3://lake/sparkify/output/", "lake", "sparkify/output", false},
		{"https://lake/sparkify", "", "", true},
		{"s3:///prefix-only", "", "", true},
		{"s3://lake/p?versionId=1", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, prefix, err := ParseS3URL(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidS3URL) {
					t.Errorf("expected ErrInvalidS3URL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseS3URL() error = %v", err)
			}
			if bucket != tt.wantBucket || prefix != tt.wantPrefix {
				t.Errorf("ParseS3URL() = %q, %q; want %q, %q", bucket, prefix, tt.wantBucket, tt.wantPrefix)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown input mode",
			mutate:  func(c *Config) { c.Input.Mode = "hdfs" },
			wantErr: ErrUnknownInputMode,
		},
		{
			name:    "unknown write mode",
			mutate:  func(c *Config) { c.Output.Mode = "merge" },
			wantErr: ErrUnknownWriteMode,
		},
		{
			name: "remote mode needs s3 root",
			mutate: func(c *Config) {
				c.Input.Mode = InputRemote
				c.Input.Root = "/data"
			},
			wantErr: ErrInvalidS3URL,
		},
		{
			name:    "local mode rejects s3 root",
			mutate:  func(c *Config) { c.Input.Root = "s3://bucket" },
			wantMsg: "set INPUT_MODE=remote",
		},
		{
			name:    "empty input root",
			mutate:  func(c *Config) { c.Input.Root = "" },
			wantMsg: "INPUT_ROOT is required",
		},
		{
			name:    "unpaired credentials",
			mutate:  func(c *Config) { c.Input.S3.AccessKeyID = "AKIA" },
			wantMsg: "must be set together",
		},
		{
			name:    "bad endpoint",
			mutate:  func(c *Config) { c.Input.S3.Endpoint = "localhost:9000" },
			wantMsg: "AWS_ENDPOINT_URL",
		},
		{
			name:    "unknown unmatched policy",
			mutate:  func(c *Config) { c.Pipeline.Unmatched = "keep" },
			wantMsg: "unmatched must be one of: drop retain",
		},
		{
			name:    "empty play action",
			mutate:  func(c *Config) { c.Pipeline.PlayAction = "" },
			wantMsg: "play_action is required",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = -1 },
			wantMsg: "workers must be greater than or equal to 0",
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.Retry.Attempts = 0 },
			wantMsg: "attempts must be greater than or equal to 1",
		},
		{
			name: "max delay below initial delay",
			mutate: func(c *Config) {
				c.Retry.InitialDelay = time.Minute
				c.Retry.MaxDelay = time.Second
			},
			wantMsg: "WRITE_RETRY_MAX_DELAY",
		},
		{
			name:    "unknown compression",
			mutate:  func(c *Config) { c.Output.Compression = "lz4" },
			wantMsg: "compression must be one of",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantMsg: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantMsg: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should have returned an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidate_RemoteConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Input.Mode = InputRemote
	cfg.Input.Root = "s3://udacity-dend"
	cfg.Input.S3.Endpoint = "http://localhost:9000"
	cfg.Output.Root = "s3://lake/out"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
