// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"errors"
	"testing"
)

func testSpec() TableSpec {
	return TableSpec{
		Name: "time",
		Columns: []Column{
			{Name: "start_time", Type: "TIMESTAMP"},
			{Name: "year", Type: "INTEGER"},
			{Name: "month", Type: "INTEGER"},
		},
		PartitionBy: []string{"year", "month"},
	}
}

func TestTableSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TableSpec)
		wantErr bool
	}{
		{"valid", func(*TableSpec) {}, false},
		{"unpartitioned", func(s *TableSpec) { s.PartitionBy = nil }, false},
		{"empty name", func(s *TableSpec) { s.Name = "" }, true},
		{"no columns", func(s *TableSpec) { s.Columns = nil; s.PartitionBy = nil }, true},
		{"unknown partition", func(s *TableSpec) { s.PartitionBy = []string{"week"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestTableSpec_ColumnNames(t *testing.T) {
	got := testSpec().ColumnNames()
	want := []string{"start_time", "year", "month"}
	if len(got) != len(want) {
		t.Fatalf("ColumnNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ColumnNames()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
