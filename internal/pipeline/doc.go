// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

/*
Package pipeline turns the raw catalog and activity records into the five
star-schema tables.

The stages are:

  - Load: both sources are decoded in parallel by the loader package
  - Filter: only play events (page == play action) are kept
  - Decompose: each event timestamp becomes a time dimension row
  - Resolve: songs and artists are deduplicated from the catalog, users and
    time rows from the filtered events
  - Facts: play events are joined to the catalog on (artist name, song title)

Every builder is a pure function over materialized slices. Output rows are
sorted, so two runs over identical input return identical tables.

Usage:

	p := pipeline.New(opts, catalogSrc, eventSrc)
	res, err := p.Run(ctx)
	if err != nil {
	    return err
	}
	err = writer.Write(ctx, res.SinkTables())
*/
package pipeline
