// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"strings"
	"testing"

	"github.com/tomtom215/songlake/internal/config"
)

func TestCreateAndInsertStatements(t *testing.T) {
	spec := testSpec()

	create := createStatement("stage_time", spec)
	want := `CREATE OR REPLACE TABLE "stage_time" ("start_time" TIMESTAMP, "year" INTEGER, "month" INTEGER)`
	if create != want {
		t.Errorf("createStatement() =\n%s\nwant\n%s", create, want)
	}

	insert := insertStatement("stage_time", spec)
	want = `INSERT INTO "stage_time" ("start_time", "year", "month") VALUES (?, ?, ?)`
	if insert != want {
		t.Errorf("insertStatement() =\n%s\nwant\n%s", insert, want)
	}
}

func TestCopyStatement(t *testing.T) {
	partitioned := testSpec()
	flat := testSpec()
	flat.PartitionBy = nil

	tests := []struct {
		name     string
		spec     TableSpec
		opts     DuckDBOptions
		remote   bool
		contains []string
		excludes []string
	}{
		{
			name:     "local overwrite partitioned",
			spec:     partitioned,
			opts:     DuckDBOptions{Mode: config.WriteOverwrite, Compression: "snappy"},
			contains: []string{"FORMAT PARQUET", "COMPRESSION 'SNAPPY'", `PARTITION_BY ("year", "month")`, "OVERWRITE true", "'data_{i}'"},
			excludes: []string{"OVERWRITE_OR_IGNORE"},
		},
		{
			name:     "remote overwrite partitioned",
			spec:     partitioned,
			opts:     DuckDBOptions{Mode: config.WriteOverwrite, Compression: "zstd"},
			remote:   true,
			contains: []string{"COMPRESSION 'ZSTD'", "OVERWRITE_OR_IGNORE true", "'data_{i}'"},
		},
		{
			name:     "append partitioned",
			spec:     partitioned,
			opts:     DuckDBOptions{Mode: config.WriteAppend, Compression: "snappy", RunID: "run1"},
			contains: []string{"OVERWRITE_OR_IGNORE true", "'data_run1_{i}'"},
			excludes: []string{"OVERWRITE true"},
		},
		{
			name:     "unpartitioned",
			spec:     flat,
			opts:     DuckDBOptions{Mode: config.WriteOverwrite, Compression: "gzip"},
			contains: []string{"FORMAT PARQUET", "COMPRESSION 'GZIP'"},
			excludes: []string{"PARTITION_BY", "OVERWRITE", "FILENAME_PATTERN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := copyStatement("stage_time", "out/time", tt.spec, tt.opts, tt.remote)
			if !strings.HasPrefix(stmt, `COPY "stage_time" TO 'out/time' (`) {
				t.Errorf("unexpected statement prefix: %s", stmt)
			}
			for _, s := range tt.contains {
				if !strings.Contains(stmt, s) {
					t.Errorf("statement missing %q: %s", s, stmt)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(stmt, s) {
					t.Errorf("statement should not contain %q: %s", s, stmt)
				}
			}
		})
	}
}

func TestSecretStatement(t *testing.T) {
	t.Run("static credentials with endpoint", func(t *testing.T) {
		stmt, err := secretStatement(config.S3Config{
			Region:          "us-east-1",
			Endpoint:        "http://localhost:9000",
			AccessKeyID:     "minio",
			SecretAccessKey: "mini'o123",
			UsePathStyle:    true,
		})
		if err != nil {
			t.Fatalf("secretStatement() error = %v", err)
		}
		for _, s := range []string{"TYPE S3", "KEY_ID 'minio'", "SECRET 'mini''o123'", "REGION 'us-east-1'", "ENDPOINT 'localhost:9000'", "USE_SSL false", "URL_STYLE 'path'"} {
			if !strings.Contains(stmt, s) {
				t.Errorf("statement missing %q: %s", s, stmt)
			}
		}
		if strings.Contains(stmt, "credential_chain") {
			t.Errorf("static credentials should not use the credential chain: %s", stmt)
		}
	})

	t.Run("credential chain", func(t *testing.T) {
		stmt, err := secretStatement(config.S3Config{Region: "us-west-2"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stmt, "PROVIDER credential_chain") {
			t.Errorf("expected credential chain: %s", stmt)
		}
		if strings.Contains(stmt, "KEY_ID") {
			t.Errorf("unexpected key id: %s", stmt)
		}
	})

	t.Run("bad endpoint", func(t *testing.T) {
		if _, err := secretStatement(config.S3Config{Endpoint: "::not a url"}); err == nil {
			t.Error("expected error for bad endpoint")
		}
	})
}

func TestQuoting(t *testing.T) {
	if got := quoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("quoteIdent() = %s", got)
	}
	if got := quoteLiteral("it's"); got != "'it''s'" {
		t.Errorf("quoteLiteral() = %s", got)
	}
}
