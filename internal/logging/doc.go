// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package logging provides the zerolog-based global logger used by every
// Songlake package.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("table", "songs").Int("rows", n).Msg("Table written")
//	logging.Error().Err(err).Msg("Write failed")
//
// # Run Context
//
// A batch run carries its run ID (and the current stage) in its context.
// Ctx attaches both as fields:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	ctx = logging.ContextWithStage(ctx, "load")
//	logging.Ctx(ctx).Info().Msg("Loading catalog")
//	// {"level":"info","run_id":"...","stage":"load","message":"Loading catalog"}
//
// # Library Adapters
//
// NewAWSLogger routes AWS SDK log output through zerolog. SanitizeSecret and
// SanitizeURL mask credentials before they are logged.
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never emitted.
package logging
