// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package models

import (
	"time"

	"github.com/google/uuid"
)

// Song is a row of the songs dimension.
type Song struct {
	SongID   string  `json:"song_id"`
	ArtistID string  `json:"artist_id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Year     int     `json:"year"`
}

// Artist is a row of the artists dimension.
//
// The full attribute tuple is the identity: the catalog can carry the same
// artist_id with different locations, and each variant is kept.
type Artist struct {
	ArtistID  string   `json:"artist_id"`
	Name      string   `json:"name"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// User is a row of the users dimension. Level is the user's current
// subscription tier (taken from their latest play event).
type User struct {
	UserID    string  `json:"user_id"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	Level     string  `json:"level"`
}

// TimeDim is a row of the time dimension. Every field other than StartTime
// is derived from StartTime in UTC.
type TimeDim struct {
	StartTime time.Time `json:"start_time"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Week      int       `json:"week"`    // ISO-8601 week number
	Weekday   int       `json:"weekday"` // Monday=0 .. Sunday=6
	Day       int       `json:"day"`
	Hour      int       `json:"hour"`
}

// Songplay is a row of the songplays fact table.
//
// SongID and ArtistID are nil only when unmatched events are retained.
type Songplay struct {
	SongplayID    uuid.UUID `json:"songplay_id"`
	StartTime     time.Time `json:"start_time"`
	UserID        string    `json:"user_id"`
	SessionID     int64     `json:"session_id"`
	ItemInSession int       `json:"item_in_session"`
	Level         string    `json:"level"`
	SongID        *string   `json:"song_id,omitempty"`
	ArtistID      *string   `json:"artist_id,omitempty"`
	Location      *string   `json:"location,omitempty"`
	UserAgent     *string   `json:"user_agent,omitempty"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
}
