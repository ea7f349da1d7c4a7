// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/models"
)

// ErrUnknownPolicy is returned for an unmatched-event policy other than drop or retain.
var ErrUnknownPolicy = errors.New("unknown unmatched-event policy")

// UnmatchedPolicy decides what happens to a play event with no catalog match.
type UnmatchedPolicy string

const (
	// UnmatchedDrop excludes the event from the fact table (inner join).
	UnmatchedDrop UnmatchedPolicy = "drop"

	// UnmatchedRetain emits the event with null song and artist ids.
	UnmatchedRetain UnmatchedPolicy = "retain"
)

// ParseUnmatchedPolicy converts a string into an UnmatchedPolicy.
func ParseUnmatchedPolicy(s string) (UnmatchedPolicy, error) {
	switch p := UnmatchedPolicy(s); p {
	case UnmatchedDrop, UnmatchedRetain:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Fact resolution outcomes, also used as metric label values.
const (
	OutcomeMatched     = "matched"
	OutcomeUnmatched   = "unmatched"
	OutcomeMissingKeys = "missing_keys"
	OutcomeAmbiguous   = "ambiguous"
	OutcomeTimeMiss    = "time_miss"
)

// FactStats counts the fact resolution outcome of every play event.
// Ambiguous events are also counted as matched.
type FactStats struct {
	Matched     int `json:"matched"`
	Unmatched   int `json:"unmatched"`
	MissingKeys int `json:"missing_keys"`
	Ambiguous   int `json:"ambiguous"`
	TimeMisses  int `json:"time_misses"`
}

// songplayNamespace seeds the name-based songplay ids.
var songplayNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tomtom215/songlake/songplay"))

// SongplayID derives the id of a songplay from its natural key, so the same
// event always produces the same id.
func SongplayID(startMs int64, userID string, sessionID int64, itemInSession int) uuid.UUID {
	name := fmt.Sprintf("%d:%s:%d:%d", startMs, userID, sessionID, itemInSession)
	return uuid.NewSHA1(songplayNamespace, []byte(name))
}

type matchKey struct {
	artistName string
	title      string
}

type candidate struct {
	songID   string
	artistID string
}

// catalogMatch is the winning candidate for a key and how many distinct
// candidates competed for it.
type catalogMatch struct {
	best  candidate
	count int
}

// indexCatalog joins songs to artists on artist_id and indexes the pairs by
// (artist name, song title). The smallest song_id wins, then the smallest
// artist_id.
func indexCatalog(songs []models.Song, artists []models.Artist) map[matchKey]*catalogMatch {
	namesByArtist := make(map[string]map[string]struct{}, len(artists))
	for i := range artists {
		names, ok := namesByArtist[artists[i].ArtistID]
		if !ok {
			names = make(map[string]struct{}, 1)
			namesByArtist[artists[i].ArtistID] = names
		}
		names[artists[i].Name] = struct{}{}
	}

	index := make(map[matchKey]*catalogMatch, len(songs))
	seen := make(map[matchKey]map[candidate]struct{}, len(songs))

	for i := range songs {
		song := &songs[i]
		for name := range namesByArtist[song.ArtistID] {
			key := matchKey{artistName: name, title: song.Title}
			c := candidate{songID: song.SongID, artistID: song.ArtistID}

			if seen[key] == nil {
				seen[key] = make(map[candidate]struct{}, 1)
			}
			if _, dup := seen[key][c]; dup {
				continue
			}
			seen[key][c] = struct{}{}

			m, ok := index[key]
			if !ok {
				index[key] = &catalogMatch{best: c, count: 1}
				continue
			}
			m.count++
			if compareCandidates(c, m.best) < 0 {
				m.best = c
			}
		}
	}
	return index
}

func compareCandidates(a, b candidate) int {
	return cmp.Or(cmp.Compare(a.songID, b.songID), cmp.Compare(a.artistID, b.artistID))
}

// ResolveFacts builds the songplay fact table from play events.
//
// An event matches when some song by an artist of the same name has the
// event's title. Names come from the artist dimension, so a song is reachable
// under every name recorded for its artist_id. Events without an artist name
// or song title never produce a row. Unmatched events are dropped or kept with null ids according to policy.
func ResolveFacts(events []TimedEvent, songs []models.Song, artists []models.Artist, times []models.TimeDim, policy UnmatchedPolicy) ([]models.Songplay, FactStats) {
	index := indexCatalog(songs, artists)

	timeByMs := make(map[int64]*models.TimeDim, len(times))
	for i := range times {
		timeByMs[times[i].StartTime.UnixMilli()] = &times[i]
	}

	var stats FactStats
	reported := make(map[matchKey]struct{})
	plays := make([]models.Songplay, 0, len(events))

	for i := range events {
		e := &events[i]

		if e.Artist == nil || *e.Artist == "" || e.Song == nil || *e.Song == "" {
			stats.MissingKeys++
			continue
		}

		ms := e.Timestamp()
		td, ok := timeByMs[ms]
		if !ok {
			stats.TimeMisses++
			continue
		}

		key := matchKey{artistName: *e.Artist, title: *e.Song}
		play := models.Songplay{
			SongplayID:    SongplayID(ms, e.UserID.String(), e.SessionID, e.ItemInSession),
			StartTime:     td.StartTime,
			UserID:        e.UserID.String(),
			SessionID:     e.SessionID,
			ItemInSession: e.ItemInSession,
			Level:         e.Level,
			Location:      e.Location,
			UserAgent:     e.UserAgent,
			Month:         td.Month,
			Year:          td.Year,
		}

		m, ok := index[key]
		if !ok {
			stats.Unmatched++
			if policy != UnmatchedRetain {
				continue
			}
			plays = append(plays, play)
			continue
		}

		stats.Matched++
		if m.count > 1 {
			stats.Ambiguous++
			if _, done := reported[key]; !done {
				reported[key] = struct{}{}
				logging.Debug().
					Str("artist", key.artistName).
					Str("title", key.title).
					Int("candidates", m.count).
					Str("song_id", m.best.songID).
					Msg("Ambiguous catalog match, using smallest song_id")
			}
		}

		songID, artistID := m.best.songID, m.best.artistID
		play.SongID = &songID
		play.ArtistID = &artistID
		plays = append(plays, play)
	}

	slices.SortStableFunc(plays, compareSongplays)
	return plays, stats
}

func compareSongplays(a, b models.Songplay) int {
	return cmp.Or(
		a.StartTime.Compare(b.StartTime),
		compareUserIDs(a.UserID, b.UserID),
		cmp.Compare(a.SessionID, b.SessionID),
		cmp.Compare(a.ItemInSession, b.ItemInSession),
	)
}
