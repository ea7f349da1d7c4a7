// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by every caller. It is built once with
// WithRequiredStructEnabled and reports field names by their json or koanf tag, so a
// failure on models.EventRecord.TS reads "ts is required".
//
// The loader validates every decoded raw record and the config package checks
// its enum fields with the same instance:
//
//	type EventRecord struct {
//	    Page string `json:"page" validate:"required"`
//	    TS   *int64 `json:"ts" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&rec); verr != nil {
//	    logging.Debug().Strs("fields", verr.Fields()).Msg("dropping malformed record")
//	}
//
// ValidateStruct returns a concrete *RecordValidationError. Compare it against
// nil before storing it in an error variable.
package validation
