// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"github.com/tomtom215/songlake/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// play builds a NextSong event.
func play(ts int64, userID, level, artist, song string) models.EventRecord {
	return models.EventRecord{
		Page:      DefaultPlayAction,
		TS:        &ts,
		UserID:    models.FlexString(userID),
		Level:     level,
		Artist:    strPtr(artist),
		Song:      strPtr(song),
		SessionID: 1,
		UserAgent: strPtr("Mozilla/5.0"),
		Location:  strPtr("Tampa, FL"),
	}
}

func catalogRecord(songID, artistID, artistName, title string) models.CatalogRecord {
	return models.CatalogRecord{
		SongID:     songID,
		ArtistID:   artistID,
		ArtistName: artistName,
		Title:      title,
		Duration:   200.5,
		Year:       2001,
	}
}
