// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

/*
Package models defines the record and row types shared by the Songlake packages.

Raw Records:

  - CatalogRecord: one entry of the song_data catalog feed
  - EventRecord: one entry of the log_data user-activity log

Star Schema Rows:

  - Song, Artist, User, TimeDim: dimension rows
  - Songplay: fact row, one per resolved play event

Optional source attributes (artist location and coordinates, event artist and
song names, user agent) are pointers so that a JSON null stays distinct from an
empty string all the way into the Parquet output.
*/
package models
