// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"time"

	"github.com/tomtom215/songlake/internal/models"
)

// Decompose converts an epoch-millisecond timestamp into a time dimension row.
// All calendar fields are taken in UTC.
func Decompose(ms int64) models.TimeDim {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()

	return models.TimeDim{
		StartTime: t,
		Year:      t.Year(),
		Month:     int(t.Month()),
		Week:      week,
		Weekday:   isoWeekday(t.Weekday()),
		Day:       t.Day(),
		Hour:      t.Hour(),
	}
}

// isoWeekday maps Sunday=0..Saturday=6 onto Monday=0..Sunday=6.
func isoWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// TimedEvent is a play event paired with its decomposed timestamp.
type TimedEvent struct {
	models.EventRecord
	Time models.TimeDim
}

// Timed decomposes the timestamp of every event.
func Timed(events []models.EventRecord) []TimedEvent {
	out := make([]TimedEvent, len(events))
	for i := range events {
		out[i] = TimedEvent{
			EventRecord: events[i],
			Time:        Decompose(events[i].Timestamp()),
		}
	}
	return out
}
