// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

/*
Package sink writes finished star-schema tables to their destination.

A Table is a schema (TableSpec) plus rows of driver values in column order.
Writers:

  - DuckDBWriter: stages each table in an in-memory DuckDB and exports it
    as Parquet with COPY, partitioned by the spec's columns, to a local
    directory or an s3:// prefix
  - MemoryWriter: keeps the tables in memory
  - RetryWriter: retries each table write with exponential backoff
*/
package sink

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidTable is returned when a table spec cannot be written.
	ErrInvalidTable = errors.New("invalid table")
)

// Column is a named column with its DuckDB type.
type Column struct {
	Name string
	Type string
}

// TableSpec describes one output table.
type TableSpec struct {
	Name        string
	Columns     []Column
	PartitionBy []string
}

// Validate checks that the spec is non-empty and that every partition column
// is a declared column.
func (s TableSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTable)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: %s has no columns", ErrInvalidTable, s.Name)
	}
	for _, p := range s.PartitionBy {
		if !slices.ContainsFunc(s.Columns, func(c Column) bool { return c.Name == p }) {
			return fmt.Errorf("%w: %s partitions on unknown column %s", ErrInvalidTable, s.Name, p)
		}
	}
	return nil
}

// ColumnNames returns the column names in order.
func (s TableSpec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Table is a spec with its rows. Each row holds one value per column, nil
// for NULL.
type Table struct {
	TableSpec
	Rows [][]any
}

// Writer persists tables. All tables handed to one Write call belong to the
// same run.
type Writer interface {
	Write(ctx context.Context, tables []Table) error
}
