// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/songlake/internal/config"
	"github.com/tomtom215/songlake/internal/logging"
)

// DuckDBOptions configures a DuckDBWriter.
type DuckDBOptions struct {
	// Root is a local directory or an s3://bucket/prefix URL. Each table is
	// written beneath Root/<table name>.
	Root string

	Mode        config.WriteMode
	Compression string

	// S3 is used when Root is remote.
	S3 config.S3Config

	// RunID names the files written in append mode so runs never collide.
	RunID string

	Threads   int
	MaxMemory string
}

// DuckDBWriter exports tables as Parquet through an in-memory DuckDB.
type DuckDBWriter struct {
	conn   *sql.DB
	opts   DuckDBOptions
	remote bool
}

// NewDuckDBWriter opens an in-memory DuckDB. For an s3:// root it loads the
// httpfs extension and registers an S3 secret built from opts.S3.
func NewDuckDBWriter(ctx context.Context, opts DuckDBOptions) (*DuckDBWriter, error) {
	if opts.Mode == "" {
		opts.Mode = config.WriteOverwrite
	}
	if _, err := config.ParseWriteMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if opts.Compression == "" {
		opts.Compression = "snappy"
	}
	if opts.MaxMemory == "" {
		opts.MaxMemory = "1GB"
	}
	if opts.Mode == config.WriteAppend && opts.RunID == "" {
		opts.RunID = time.Now().UTC().Format("20060102T150405Z")
	}

	connStr := fmt.Sprintf("?max_memory=%s", opts.MaxMemory)
	if opts.Threads > 0 {
		connStr += fmt.Sprintf("&threads=%d", opts.Threads)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	w := &DuckDBWriter{
		conn:   conn,
		opts:   opts,
		remote: strings.HasPrefix(opts.Root, "s3://"),
	}

	if w.remote {
		if err := w.configureS3(ctx); err != nil {
			closeQuietly(conn)
			return nil, err
		}
	}

	return w, nil
}

// configureS3 loads httpfs (installing it when absent) and creates the secret.
func (w *DuckDBWriter) configureS3(ctx context.Context) error {
	if _, err := w.conn.ExecContext(ctx, "LOAD httpfs;"); err != nil {
		logging.Debug().Err(err).Msg("httpfs not loaded, installing")
		if _, err := w.conn.ExecContext(ctx, "INSTALL httpfs;"); err != nil {
			return fmt.Errorf("failed to install httpfs extension: %w", err)
		}
		if _, err := w.conn.ExecContext(ctx, "LOAD httpfs;"); err != nil {
			return fmt.Errorf("failed to load httpfs extension: %w", err)
		}
	}

	stmt, err := secretStatement(w.opts.S3)
	if err != nil {
		return err
	}
	if _, err := w.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create s3 secret: %w", err)
	}
	return nil
}

// Close releases the DuckDB connection.
func (w *DuckDBWriter) Close() error {
	return w.conn.Close()
}

// Write implements Writer. Each table is staged, exported and dropped in turn.
func (w *DuckDBWriter) Write(ctx context.Context, tables []Table) error {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return err
		}
		start := time.Now()
		if err := w.writeTable(ctx, t); err != nil {
			return fmt.Errorf("failed to write table %s: %w", t.Name, err)
		}
		logging.Ctx(ctx).Info().
			Str("table", t.Name).
			Int("rows", len(t.Rows)).
			Str("path", w.tablePath(t.Name)).
			Dur("duration", time.Since(start)).
			Msg("Table written")
	}
	return nil
}

func (w *DuckDBWriter) writeTable(ctx context.Context, t Table) (err error) {
	staging := "stage_" + t.Name

	if err := w.stage(ctx, staging, t); err != nil {
		return err
	}
	defer func() {
		if _, dropErr := w.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(staging)); dropErr != nil {
			logging.Warn().Err(dropErr).Str("table", staging).Msg("Failed to drop staging table")
		}
	}()

	target := w.tablePath(t.Name)
	if len(t.PartitionBy) == 0 {
		target, err = w.prepareFileTarget(t.Name)
		if err != nil {
			return err
		}
	}

	if _, err := w.conn.ExecContext(ctx, copyStatement(staging, target, t.TableSpec, w.opts, w.remote)); err != nil {
		return fmt.Errorf("failed to export parquet: %w", err)
	}
	return nil
}

// stage creates the staging table and inserts every row in one transaction.
func (w *DuckDBWriter) stage(ctx context.Context, name string, t Table) (err error) {
	if _, err := w.conn.ExecContext(ctx, createStatement(name, t.TableSpec)); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}
	if len(t.Rows) == 0 {
		return nil
	}

	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertStatement(name, t.TableSpec))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d of %s has %d values, want %d", ErrInvalidTable, i, t.Name, len(row), len(t.Columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (w *DuckDBWriter) tablePath(name string) string {
	root := strings.TrimSuffix(w.opts.Root, "/")
	if w.remote {
		return root + "/" + name
	}
	return filepath.Join(root, name)
}

// prepareFileTarget returns the single file an unpartitioned table is copied
// to. Locally, overwrite mode clears the table directory first.
func (w *DuckDBWriter) prepareFileTarget(name string) (string, error) {
	file := "data_0.parquet"
	if w.opts.Mode == config.WriteAppend {
		file = "data_" + w.opts.RunID + ".parquet"
	}

	dir := w.tablePath(name)
	if w.remote {
		return dir + "/" + file, nil
	}

	if w.opts.Mode == config.WriteOverwrite {
		if err := os.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, file), nil
}

func createStatement(name string, spec TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = quoteIdent(c.Name) + " " + c.Type
	}
	return fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
}

func insertStatement(name string, spec TableSpec) string {
	cols := make([]string, len(spec.Columns))
	marks := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// copyStatement builds the COPY that exports staging to target.
//
// Partitioned tables are written as hive directories. Overwrite replaces the
// directory locally; remote stores cannot delete directories, so files are
// replaced in place by name. Append writes run-scoped file names.
func copyStatement(staging, target string, spec TableSpec, opts DuckDBOptions, remote bool) string {
	options := []string{
		"FORMAT PARQUET",
		"COMPRESSION " + quoteLiteral(strings.ToUpper(opts.Compression)),
	}

	if len(spec.PartitionBy) > 0 {
		parts := make([]string, len(spec.PartitionBy))
		for i, p := range spec.PartitionBy {
			parts[i] = quoteIdent(p)
		}
		options = append(options, "PARTITION_BY ("+strings.Join(parts, ", ")+")")

		switch {
		case opts.Mode == config.WriteAppend:
			options = append(options,
				"OVERWRITE_OR_IGNORE true",
				"FILENAME_PATTERN "+quoteLiteral("data_"+opts.RunID+"_{i}"))
		case remote:
			options = append(options,
				"OVERWRITE_OR_IGNORE true",
				"FILENAME_PATTERN "+quoteLiteral("data_{i}"))
		default:
			options = append(options,
				"OVERWRITE true",
				"FILENAME_PATTERN "+quoteLiteral("data_{i}"))
		}
	}

	return fmt.Sprintf("COPY %s TO %s (%s)",
		quoteIdent(staging), quoteLiteral(target), strings.Join(options, ", "))
}

// secretStatement builds the S3 secret for httpfs. Without static keys the
// AWS credential chain is used.
func secretStatement(cfg config.S3Config) (string, error) {
	params := []string{"TYPE S3"}
	if cfg.HasStaticCredentials() {
		params = append(params,
			"KEY_ID "+quoteLiteral(cfg.AccessKeyID),
			"SECRET "+quoteLiteral(cfg.SecretAccessKey))
		if cfg.SessionToken != "" {
			params = append(params, "SESSION_TOKEN "+quoteLiteral(cfg.SessionToken))
		}
	} else {
		params = append(params, "PROVIDER credential_chain")
	}
	if cfg.Region != "" {
		params = append(params, "REGION "+quoteLiteral(cfg.Region))
	}

	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" {
			return "", fmt.Errorf("invalid s3 endpoint %q", cfg.Endpoint)
		}
		params = append(params,
			"ENDPOINT "+quoteLiteral(u.Host),
			fmt.Sprintf("USE_SSL %t", u.Scheme == "https"))
	}
	if cfg.UsePathStyle {
		params = append(params, "URL_STYLE 'path'")
	}

	return "CREATE OR REPLACE SECRET songlake_output (" + strings.Join(params, ", ") + ")", nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close duckdb connection")
	}
}
