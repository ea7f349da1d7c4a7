// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"cmp"
	"slices"

	"github.com/tomtom215/songlake/internal/models"
)

// artistKey is the comparable form of an artist attribute tuple. A nil
// attribute and an empty one are different keys.
type artistKey struct {
	id, name       string
	location       string
	hasLocation    bool
	lat, lon       float64
	hasLat, hasLon bool
}

func keyOfArtist(a models.Artist) artistKey {
	k := artistKey{id: a.ArtistID, name: a.Name}
	if a.Location != nil {
		k.location, k.hasLocation = *a.Location, true
	}
	if a.Latitude != nil {
		k.lat, k.hasLat = *a.Latitude, true
	}
	if a.Longitude != nil {
		k.lon, k.hasLon = *a.Longitude, true
	}
	return k
}

// ResolveCatalog projects the catalog onto the song and artist dimensions,
// keeping one row per distinct attribute tuple.
func ResolveCatalog(records []models.CatalogRecord) ([]models.Song, []models.Artist) {
	songSeen := make(map[models.Song]struct{}, len(records))
	artistSeen := make(map[artistKey]struct{}, len(records))

	songs := make([]models.Song, 0, len(records))
	artists := make([]models.Artist, 0, len(records))

	for i := range records {
		rec := &records[i]

		song := models.Song{
			SongID:   rec.SongID,
			ArtistID: rec.ArtistID,
			Title:    rec.Title,
			Duration: rec.Duration,
			Year:     rec.Year,
		}
		if _, ok := songSeen[song]; !ok {
			songSeen[song] = struct{}{}
			songs = append(songs, song)
		}

		artist := models.Artist{
			ArtistID:  rec.ArtistID,
			Name:      rec.ArtistName,
			Location:  rec.ArtistLocation,
			Latitude:  rec.ArtistLatitude,
			Longitude: rec.ArtistLongitude,
		}
		key := keyOfArtist(artist)
		if _, ok := artistSeen[key]; !ok {
			artistSeen[key] = struct{}{}
			artists = append(artists, artist)
		}
	}

	slices.SortFunc(songs, compareSongs)
	slices.SortFunc(artists, compareArtists)
	return songs, artists
}

func compareSongs(a, b models.Song) int {
	return cmp.Or(
		cmp.Compare(a.SongID, b.SongID),
		cmp.Compare(a.ArtistID, b.ArtistID),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.Duration, b.Duration),
		cmp.Compare(a.Year, b.Year),
	)
}

func compareArtists(a, b models.Artist) int {
	return cmp.Or(
		cmp.Compare(a.ArtistID, b.ArtistID),
		cmp.Compare(a.Name, b.Name),
		compareNullable(a.Location, b.Location),
		compareNullable(a.Latitude, b.Latitude),
		compareNullable(a.Longitude, b.Longitude),
	)
}

// compareNullable orders nil before any value.
func compareNullable[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}
