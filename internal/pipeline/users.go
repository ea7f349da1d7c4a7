// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/tomtom215/songlake/internal/models"
)

// BuildUsers returns one row per non-empty user_id. The row's attributes,
// including the subscription level, come from that user's most recent event.
func BuildUsers(events []TimedEvent) []models.User {
	latest := make(map[string]*TimedEvent)
	for i := range events {
		e := &events[i]
		id := e.UserID.String()
		if id == "" {
			continue
		}
		if cur, ok := latest[id]; !ok || newer(e, cur) {
			latest[id] = e
		}
	}

	users := make([]models.User, 0, len(latest))
	for id, e := range latest {
		users = append(users, models.User{
			UserID:    id,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Gender:    e.Gender,
			Level:     e.Level,
		})
	}

	slices.SortFunc(users, func(a, b models.User) int {
		return compareUserIDs(a.UserID, b.UserID)
	})
	return users
}

// newer reports whether a supersedes b. Ties on start time go to the larger
// session, then the later item in session, then the greater level.
func newer(a, b *TimedEvent) bool {
	return cmp.Or(
		cmp.Compare(a.Timestamp(), b.Timestamp()),
		cmp.Compare(a.SessionID, b.SessionID),
		cmp.Compare(a.ItemInSession, b.ItemInSession),
		cmp.Compare(a.Level, b.Level),
	) > 0
}

// compareUserIDs orders numeric ids by value ahead of non-numeric ids, which
// sort lexically.
func compareUserIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Or(cmp.Compare(na, nb), cmp.Compare(a, b))
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
