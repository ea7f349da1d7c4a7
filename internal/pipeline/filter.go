// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"github.com/tomtom215/songlake/internal/models"
)

// DefaultPlayAction is the page value of a song play event.
const DefaultPlayAction = "NextSong"

// IsPlay returns a predicate matching events whose page equals action.
func IsPlay(action string) func(models.EventRecord) bool {
	return func(e models.EventRecord) bool {
		return e.Page == action
	}
}

// Filter returns the events matching keep, in input order, and the number
// discarded.
func Filter(events []models.EventRecord, keep func(models.EventRecord) bool) ([]models.EventRecord, int) {
	kept := make([]models.EventRecord, 0, len(events))
	for i := range events {
		if keep(events[i]) {
			kept = append(kept, events[i])
		}
	}
	return kept, len(events) - len(kept)
}
