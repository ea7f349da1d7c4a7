// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package config

import (
	"errors"
	"time"
)

// Sentinel errors returned by Validate and the enum parsers.
var (
	// ErrUnknownInputMode is returned when input.mode is neither local nor remote.
	ErrUnknownInputMode = errors.New("unknown input mode")

	// ErrUnknownWriteMode is returned when output.mode is neither overwrite nor append.
	ErrUnknownWriteMode = errors.New("unknown write mode")

	// ErrInvalidS3URL is returned when a remote root is not an s3://bucket[/prefix] URL.
	ErrInvalidS3URL = errors.New("invalid s3 url")
)

// InputMode selects where the raw sources are read from.
type InputMode string

const (
	InputLocal  InputMode = "local"
	InputRemote InputMode = "remote"
)

// ParseInputMode converts a string into an InputMode.
func ParseInputMode(s string) (InputMode, error) {
	switch m := InputMode(s); m {
	case InputLocal, InputRemote:
		return m, nil
	}
	return "", ErrUnknownInputMode
}

// WriteMode selects how table output interacts with existing data at the
// destination. Overwrite is idempotent; append duplicates rows on rerun.
type WriteMode string

const (
	WriteOverwrite WriteMode = "overwrite"
	WriteAppend    WriteMode = "append"
)

// ParseWriteMode converts a string into a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(s); m {
	case WriteOverwrite, WriteAppend:
		return m, nil
	}
	return "", ErrUnknownWriteMode
}

// Config holds all application configuration.
//
// One value is loaded at startup and passed explicitly into construction.
// Nothing in the process reads configuration from the environment after Load.
type Config struct {
	Input    InputConfig    `koanf:"input"`
	Output   OutputConfig   `koanf:"output"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Retry    RetryConfig    `koanf:"retry"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// InputConfig locates the two raw sources.
//
// Root is a directory in local mode and an s3://bucket/prefix URL in remote
// mode. The patterns are doublestar globs relative to Root.
type InputConfig struct {
	Mode        InputMode `koanf:"mode"`
	Root        string    `koanf:"root"`
	SongPattern string    `koanf:"song_pattern" validate:"required"`
	LogPattern  string    `koanf:"log_pattern" validate:"required"`
	S3          S3Config  `koanf:"s3"`

	// RequestsPerSecond caps object reads in remote mode. 0 disables the limit.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
}

// S3Config carries the credentials and endpoint for an S3-compatible store.
// Empty credentials fall back to the AWS default credential chain.
type S3Config struct {
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	SessionToken    string `koanf:"session_token"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

// HasStaticCredentials reports whether an explicit key pair is configured.
func (s S3Config) HasStaticCredentials() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// OutputConfig controls where and how finished tables are written.
type OutputConfig struct {
	Root        string    `koanf:"root" validate:"required"`
	Mode        WriteMode `koanf:"mode"`
	Compression string    `koanf:"compression" validate:"oneof=snappy zstd gzip uncompressed"`
	S3          S3Config  `koanf:"s3"`
}

// IsRemote reports whether the output root is an S3 URL.
func (o OutputConfig) IsRemote() bool {
	return isS3URL(o.Root)
}

// PipelineConfig tunes the transformation.
type PipelineConfig struct {
	PlayAction string `koanf:"play_action" validate:"required"`
	Unmatched  string `koanf:"unmatched" validate:"oneof=drop retain"`
	Workers    int    `koanf:"workers" validate:"gte=0,lte=1024"` // 0 = runtime.NumCPU()
	DryRun     bool   `koanf:"dry_run"`
}

// RetryConfig controls the sink retry wrapper.
type RetryConfig struct {
	Attempts     int           `koanf:"attempts" validate:"gte=1,lte=20"`
	InitialDelay time.Duration `koanf:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration `koanf:"max_delay" validate:"gte=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls metric export. The job is a batch process, so
// metrics are written once to a node-exporter textfile at exit.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}
