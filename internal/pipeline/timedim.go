// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"slices"

	"github.com/tomtom215/songlake/internal/models"
)

// BuildTime returns one time row per distinct start time, ascending.
func BuildTime(events []TimedEvent) []models.TimeDim {
	seen := make(map[int64]struct{}, len(events))
	rows := make([]models.TimeDim, 0, len(events))

	for i := range events {
		ms := events[i].Time.StartTime.UnixMilli()
		if _, ok := seen[ms]; ok {
			continue
		}
		seen[ms] = struct{}{}
		rows = append(rows, events[i].Time)
	}

	slices.SortFunc(rows, func(a, b models.TimeDim) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return rows
}
