// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// CatalogRecord is one raw entry of the music catalog (song_data).
//
// Example:
//
//	{"num_songs":1,"artist_id":"ARJIE2Y1187B994AB7","artist_latitude":null,
//	 "artist_longitude":null,"artist_location":"","artist_name":"Line Renaud",
//	 "song_id":"SOUPIRU12A6D4FA1E1","title":"Der Kleine Dompfaff",
//	 "duration":152.92036,"year":0}
type CatalogRecord struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id" validate:"required"`
	ArtistName      string   `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	SongID          string   `json:"song_id" validate:"required"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`
}

// EventRecord is one raw entry of the user-activity log (log_data).
//
// Only Page and TS are required; every other attribute depends on the
// action and is often null for non-play pages.
type EventRecord struct {
	Artist        *string    `json:"artist"`
	Auth          string     `json:"auth"`
	FirstName     *string    `json:"firstName"`
	Gender        *string    `json:"gender"`
	ItemInSession int        `json:"itemInSession"`
	LastName      *string    `json:"lastName"`
	Length        *float64   `json:"length"`
	Level         string     `json:"level"`
	Location      *string    `json:"location"`
	Method        string     `json:"method"`
	Page          string     `json:"page" validate:"required"`
	Registration  *float64   `json:"registration"`
	SessionID     int64      `json:"sessionId"`
	Song          *string    `json:"song"`
	Status        int        `json:"status"`
	TS            *int64     `json:"ts" validate:"required"`
	UserAgent     *string    `json:"userAgent"`
	UserID        FlexString `json:"userId"`
}

// Timestamp returns the event time in epoch milliseconds (0 when absent).
func (e *EventRecord) Timestamp() int64 {
	if e.TS == nil {
		return 0
	}
	return *e.TS
}

// FlexString decodes a JSON string or number into a string.
// The activity log carries userId as a string, but some exports write it as
// a bare number. JSON null decodes to the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: unsupported value %s", string(data))
	}
	// Integral float forms such as 26.0 are normalized to "26".
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	if fl, err := n.Float64(); err == nil && fl == float64(int64(fl)) {
		*f = FlexString(strconv.FormatInt(int64(fl), 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the underlying string value.
func (f FlexString) String() string {
	return string(f)
}
