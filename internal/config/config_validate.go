// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package config

import (
	"fmt"

	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	// Field-level rules (required, oneof, ranges) live in struct tags.
	for _, section := range []interface{}{&c.Input, &c.Output, &c.Pipeline, &c.Retry} {
		if verr := validation.ValidateStruct(section); verr != nil {
			return verr
		}
	}

	if err := c.validateInput(); err != nil {
		return err
	}

	if err := c.validateOutput(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateInput validates the input mode and its root
func (c *Config) validateInput() error {
	if _, err := ParseInputMode(string(c.Input.Mode)); err != nil {
		return fmt.Errorf("INPUT_MODE must be local or remote, got %q: %w", c.Input.Mode, err)
	}

	if c.Input.Root == "" {
		return fmt.Errorf("INPUT_ROOT is required")
	}

	switch c.Input.Mode {
	case InputRemote:
		if _, _, err := ParseS3URL(c.Input.Root); err != nil {
			return fmt.Errorf("INPUT_ROOT must be an s3:// URL in remote mode: %w", err)
		}
		if c.Input.S3.Region == "" {
			return fmt.Errorf("AWS_REGION is required in remote mode")
		}
	case InputLocal:
		if isS3URL(c.Input.Root) {
			return fmt.Errorf("INPUT_ROOT %s is an s3:// URL, set INPUT_MODE=remote", c.Input.Root)
		}
	}

	return validateS3Config(c.Input.S3, "AWS")
}

// validateOutput validates the write mode and output root
func (c *Config) validateOutput() error {
	if _, err := ParseWriteMode(string(c.Output.Mode)); err != nil {
		return fmt.Errorf("WRITE_MODE must be overwrite or append, got %q: %w", c.Output.Mode, err)
	}

	if c.Output.IsRemote() {
		if _, _, err := ParseS3URL(c.Output.Root); err != nil {
			return fmt.Errorf("OUTPUT_ROOT is invalid: %w", err)
		}
		if c.Output.S3.Region == "" {
			return fmt.Errorf("OUTPUT_AWS_REGION is required for s3:// output")
		}
	}

	return validateS3Config(c.Output.S3, "OUTPUT_AWS")
}

// validateS3Config checks that credentials come in pairs and the endpoint parses.
func validateS3Config(s S3Config, prefix string) error {
	if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
		return fmt.Errorf("%s_ACCESS_KEY_ID and %s_SECRET_ACCESS_KEY must be set together", prefix, prefix)
	}
	if s.Endpoint != "" {
		if err := validateHTTPURL(s.Endpoint, prefix+"_ENDPOINT_URL"); err != nil {
			return err
		}
	}
	return nil
}

// validateRetry validates backoff bounds
func (c *Config) validateRetry() error {
	if c.Retry.MaxDelay > 0 && c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("WRITE_RETRY_MAX_DELAY (%s) must not be less than WRITE_RETRY_INITIAL_DELAY (%s)",
			c.Retry.MaxDelay, c.Retry.InitialDelay)
	}
	return nil
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
