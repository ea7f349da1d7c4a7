// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package logging

import (
	"fmt"

	smithylogging "github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
)

// AWSLogger implements the smithy-go logging.Logger used by the AWS SDK,
// with zerolog as the backend. SDK warnings log at warn level, everything
// else at debug.
//
// Usage:
//
//	cfg, err := awsconfig.LoadDefaultConfig(ctx,
//	    awsconfig.WithLogger(logging.NewAWSLogger()),
//	    awsconfig.WithClientLogMode(aws.LogRetries))
type AWSLogger struct {
	logger zerolog.Logger
}

// NewAWSLogger creates an AWSLogger over the global logger.
func NewAWSLogger() *AWSLogger {
	return &AWSLogger{logger: WithComponent("aws-sdk")}
}

// NewAWSLoggerWithLogger creates an AWSLogger with a specific zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAWSLoggerWithLogger(logger zerolog.Logger) *AWSLogger {
	return &AWSLogger{logger: logger}
}

// Logf implements smithylogging.Logger.
func (l *AWSLogger) Logf(classification smithylogging.Classification, format string, v ...interface{}) {
	event := l.logger.WithLevel(classificationToLevel(classification))
	if event == nil {
		return
	}
	event.Str("classification", string(classification)).Msg(fmt.Sprintf(format, v...))
}

func classificationToLevel(c smithylogging.Classification) zerolog.Level {
	if c == smithylogging.Warn {
		return zerolog.WarnLevel
	}
	return zerolog.DebugLevel
}

var _ smithylogging.Logger = (*AWSLogger)(nil)
