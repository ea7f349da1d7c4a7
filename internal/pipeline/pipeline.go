// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/songlake/internal/config"
	"github.com/tomtom215/songlake/internal/loader"
	"github.com/tomtom215/songlake/internal/logging"
	"github.com/tomtom215/songlake/internal/metrics"
	"github.com/tomtom215/songlake/internal/models"
	"github.com/tomtom215/songlake/internal/source"
)

// Table names, also used as output directory names and metric labels.
const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongplays = "songplays"
)

// Options tunes a pipeline run.
type Options struct {
	SongPattern string
	LogPattern  string
	PlayAction  string
	Unmatched   UnmatchedPolicy

	// Workers bounds concurrent file decoding per source. <= 0 uses runtime.NumCPU().
	Workers int
}

// DefaultOptions returns the options of the standard dataset layout.
func DefaultOptions() Options {
	return Options{
		SongPattern: "song_data/*/*/*/*.json",
		LogPattern:  "log_data/*/*/*.json",
		PlayAction:  DefaultPlayAction,
		Unmatched:   UnmatchedDrop,
	}
}

// OptionsFromConfig maps the input and pipeline sections of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := ParseUnmatchedPolicy(cfg.Pipeline.Unmatched)
	if err != nil {
		return Options{}, err
	}
	return Options{
		SongPattern: cfg.Input.SongPattern,
		LogPattern:  cfg.Input.LogPattern,
		PlayAction:  cfg.Pipeline.PlayAction,
		Unmatched:   policy,
		Workers:     cfg.Pipeline.Workers,
	}, nil
}

// Tables holds the five output tables of a run.
type Tables struct {
	Songs     []models.Song
	Artists   []models.Artist
	Users     []models.User
	Time      []models.TimeDim
	Songplays []models.Songplay
}

// Stats collects the counters of a run.
type Stats struct {
	Catalog     loader.Stats
	Events      loader.Stats
	Plays       int
	FilteredOut int
	Facts       FactStats

	LoadDuration      time.Duration
	TransformDuration time.Duration
}

// Result is the outcome of a successful run.
type Result struct {
	RunID  string
	Tables Tables
	Stats  Stats
}

// Pipeline builds the star schema from a catalog and an event source.
type Pipeline struct {
	opts    Options
	catalog source.Source
	events  source.Source
}

// New creates a Pipeline. Empty option fields take their defaults.
func New(opts Options, catalog, events source.Source) *Pipeline {
	def := DefaultOptions()
	if opts.SongPattern == "" {
		opts.SongPattern = def.SongPattern
	}
	if opts.LogPattern == "" {
		opts.LogPattern = def.LogPattern
	}
	if opts.PlayAction == "" {
		opts.PlayAction = def.PlayAction
	}
	if opts.Unmatched == "" {
		opts.Unmatched = def.Unmatched
	}
	return &Pipeline{opts: opts, catalog: catalog, events: events}
}

// Run loads both sources and builds every table. The run ID is taken from
// ctx when present, otherwise generated. A run either returns all tables or
// an error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.GenerateRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}

	res := &Result{RunID: runID}

	logging.Ctx(ctx).Info().
		Str("catalog", fmt.Sprint(p.catalog)).
		Str("events", fmt.Sprint(p.events)).
		Str("play_action", p.opts.PlayAction).
		Str("unmatched", string(p.opts.Unmatched)).
		Msg("Pipeline run started")

	catalog, events, err := p.load(logging.ContextWithStage(ctx, "load"), &res.Stats)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tctx := logging.ContextWithStage(ctx, "transform")
	res.Tables = p.transform(tctx, catalog, events, &res.Stats)
	res.Stats.TransformDuration = time.Since(start)
	metrics.RecordStage("transform", res.Stats.TransformDuration)

	for name, n := range res.Tables.counts() {
		metrics.TableRows.WithLabelValues(name).Set(float64(n))
	}

	logging.Ctx(tctx).Info().
		Int(TableSongs, len(res.Tables.Songs)).
		Int(TableArtists, len(res.Tables.Artists)).
		Int(TableUsers, len(res.Tables.Users)).
		Int(TableTime, len(res.Tables.Time)).
		Int(TableSongplays, len(res.Tables.Songplays)).
		Dur("duration", res.Stats.TransformDuration).
		Msg("Tables built")

	return res, nil
}

// load decodes both sources concurrently.
func (p *Pipeline) load(ctx context.Context, stats *Stats) ([]models.CatalogRecord, []models.EventRecord, error) {
	start := time.Now()

	var (
		catalog []models.CatalogRecord
		events  []models.EventRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, s, err := loader.Collect[models.CatalogRecord](gctx, p.catalog, p.opts.SongPattern, p.opts.Workers)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		catalog, stats.Catalog = recs, *s
		return nil
	})
	g.Go(func() error {
		recs, s, err := loader.Collect[models.EventRecord](gctx, p.events, p.opts.LogPattern, p.opts.Workers)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		events, stats.Events = recs, *s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats.LoadDuration = time.Since(start)
	metrics.RecordStage("load", stats.LoadDuration)
	recordLoad("catalog", stats.Catalog)
	recordLoad("events", stats.Events)

	log := logging.Ctx(ctx)
	log.Info().
		Int("files", stats.Catalog.Files).
		Int("records", stats.Catalog.Records).
		Int("malformed", stats.Catalog.Malformed).
		Msg("Catalog loaded")
	log.Info().
		Int("files", stats.Events.Files).
		Int("records", stats.Events.Records).
		Int("malformed", stats.Events.Malformed).
		Dur("duration", stats.LoadDuration).
		Msg("Events loaded")

	return catalog, events, nil
}

func recordLoad(name string, s loader.Stats) {
	metrics.RecordLoad(name, s.Files, s.Records, s.MalformedJSON(), s.Invalid)
}

func (p *Pipeline) transform(ctx context.Context, catalog []models.CatalogRecord, events []models.EventRecord, stats *Stats) Tables {
	log := logging.Ctx(ctx)

	plays, filtered := Filter(events, IsPlay(p.opts.PlayAction))
	stats.Plays, stats.FilteredOut = len(plays), filtered
	metrics.RecordFilter(len(plays), filtered)
	log.Debug().Int("plays", len(plays)).Int("filtered_out", filtered).Msg("Events filtered")

	timed := Timed(plays)

	var t Tables
	t.Songs, t.Artists = ResolveCatalog(catalog)
	t.Users = BuildUsers(timed)
	t.Time = BuildTime(timed)
	t.Songplays, stats.Facts = ResolveFacts(timed, t.Songs, t.Artists, t.Time, p.opts.Unmatched)

	metrics.RecordFactOutcome(OutcomeMatched, stats.Facts.Matched)
	metrics.RecordFactOutcome(OutcomeUnmatched, stats.Facts.Unmatched)
	metrics.RecordFactOutcome(OutcomeMissingKeys, stats.Facts.MissingKeys)
	metrics.RecordFactOutcome(OutcomeAmbiguous, stats.Facts.Ambiguous)
	metrics.RecordFactOutcome(OutcomeTimeMiss, stats.Facts.TimeMisses)

	if stats.Facts.Ambiguous > 0 {
		log.Warn().Int("events", stats.Facts.Ambiguous).Msg("Play events matched more than one catalog song")
	}
	log.Info().
		Int("matched", stats.Facts.Matched).
		Int("unmatched", stats.Facts.Unmatched).
		Int("missing_keys", stats.Facts.MissingKeys).
		Msg("Songplays resolved")

	return t
}

func (t *Tables) counts() map[string]int {
	return map[string]int{
		TableSongs:     len(t.Songs),
		TableArtists:   len(t.Artists),
		TableUsers:     len(t.Users),
		TableTime:      len(t.Time),
		TableSongplays: len(t.Songplays),
	}
}
