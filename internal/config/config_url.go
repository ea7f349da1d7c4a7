// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package config

import (
	"fmt"
	"net/url"
	"strings"
)

func isS3URL(raw string) bool {
	return strings.HasPrefix(raw, "s3://")
}

// ParseS3URL splits an s3://bucket/prefix URL into bucket and key prefix.
// The prefix is returned without leading or trailing slashes and may be empty.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrInvalidS3URL, raw, err)
	}

	if parsedURL.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: scheme must be s3, got: %q", ErrInvalidS3URL, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return "", "", fmt.Errorf("%w: bucket is required in %s", ErrInvalidS3URL, raw)
	}

	if parsedURL.RawQuery != "" {
		return "", "", fmt.Errorf("%w: should not contain query parameters, remove: ?%s", ErrInvalidS3URL, parsedURL.RawQuery)
	}

	return parsedURL.Host, strings.Trim(parsedURL.Path, "/"), nil
}

// validateHTTPURL validates that an endpoint URL is an absolute http(s) URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	return nil
}
