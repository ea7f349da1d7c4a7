// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"github.com/tomtom215/songlake/internal/sink"
)

var (
	songsSpec = sink.TableSpec{
		Name: TableSongs,
		Columns: []sink.Column{
			{Name: "song_id", Type: "VARCHAR"},
			{Name: "title", Type: "VARCHAR"},
			{Name: "artist_id", Type: "VARCHAR"},
			{Name: "year", Type: "INTEGER"},
			{Name: "duration", Type: "DOUBLE"},
		},
		PartitionBy: []string{"artist_id", "year"},
	}

	artistsSpec = sink.TableSpec{
		Name: TableArtists,
		Columns: []sink.Column{
			{Name: "artist_id", Type: "VARCHAR"},
			{Name: "name", Type: "VARCHAR"},
			{Name: "location", Type: "VARCHAR"},
			{Name: "latitude", Type: "DOUBLE"},
			{Name: "longitude", Type: "DOUBLE"},
		},
	}

	usersSpec = sink.TableSpec{
		Name: TableUsers,
		Columns: []sink.Column{
			{Name: "user_id", Type: "VARCHAR"},
			{Name: "first_name", Type: "VARCHAR"},
			{Name: "last_name", Type: "VARCHAR"},
			{Name: "gender", Type: "VARCHAR"},
			{Name: "level", Type: "VARCHAR"},
		},
	}

	timeSpec = sink.TableSpec{
		Name: TableTime,
		Columns: []sink.Column{
			{Name: "start_time", Type: "TIMESTAMP"},
			{Name: "hour", Type: "INTEGER"},
			{Name: "day", Type: "INTEGER"},
			{Name: "week", Type: "INTEGER"},
			{Name: "month", Type: "INTEGER"},
			{Name: "year", Type: "INTEGER"},
			{Name: "weekday", Type: "INTEGER"},
		},
		PartitionBy: []string{"year", "month"},
	}

	songplaysSpec = sink.TableSpec{
		Name: TableSongplays,
		Columns: []sink.Column{
			{Name: "songplay_id", Type: "UUID"},
			{Name: "start_time", Type: "TIMESTAMP"},
			{Name: "user_id", Type: "VARCHAR"},
			{Name: "level", Type: "VARCHAR"},
			{Name: "song_id", Type: "VARCHAR"},
			{Name: "artist_id", Type: "VARCHAR"},
			{Name: "session_id", Type: "BIGINT"},
			{Name: "item_in_session", Type: "INTEGER"},
			{Name: "location", Type: "VARCHAR"},
			{Name: "user_agent", Type: "VARCHAR"},
			{Name: "year", Type: "INTEGER"},
			{Name: "month", Type: "INTEGER"},
		},
		PartitionBy: []string{"year", "month"},
	}
)

// Specs returns the output schema and partitioning of every table.
// Users are unpartitioned and always replaced as a whole.
func (r *Result) Specs() []sink.TableSpec {
	return []sink.TableSpec{songsSpec, artistsSpec, usersSpec, timeSpec, songplaysSpec}
}

// SinkTables converts the result into writer tables, in Specs order.
func (r *Result) SinkTables() []sink.Table {
	t := &r.Tables

	songs := make([][]any, len(t.Songs))
	for i, s := range t.Songs {
		songs[i] = []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
	}

	artists := make([][]any, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = []any{a.ArtistID, a.Name, nullable(a.Location), nullable(a.Latitude), nullable(a.Longitude)}
	}

	users := make([][]any, len(t.Users))
	for i, u := range t.Users {
		users[i] = []any{u.UserID, nullable(u.FirstName), nullable(u.LastName), nullable(u.Gender), u.Level}
	}

	times := make([][]any, len(t.Time))
	for i, td := range t.Time {
		times[i] = []any{td.StartTime, td.Hour, td.Day, td.Week, td.Month, td.Year, td.Weekday}
	}

	plays := make([][]any, len(t.Songplays))
	for i, sp := range t.Songplays {
		plays[i] = []any{
			sp.SongplayID.String(), sp.StartTime, sp.UserID, sp.Level,
			nullable(sp.SongID), nullable(sp.ArtistID),
			sp.SessionID, sp.ItemInSession,
			nullable(sp.Location), nullable(sp.UserAgent),
			sp.Year, sp.Month,
		}
	}

	return []sink.Table{
		{TableSpec: songsSpec, Rows: songs},
		{TableSpec: artistsSpec, Rows: artists},
		{TableSpec: usersSpec, Rows: users},
		{TableSpec: timeSpec, Rows: times},
		{TableSpec: songplaysSpec, Rows: plays},
	}
}

// nullable unwraps p, mapping nil to an untyped nil so drivers bind NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
