// Songlake - Music Activity Star-Schema Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songlake

package sink

import (
	"context"
	"sort"
	"sync"
)

// MemoryWriter keeps the last written version of every table.
type MemoryWriter struct {
	mu     sync.RWMutex
	tables map[string]Table
	writes int
}

// NewMemoryWriter creates an empty MemoryWriter.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{tables: make(map[string]Table)}
}

// Write stores a copy of each table, replacing any earlier version.
func (m *MemoryWriter) Write(ctx context.Context, tables []Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range tables {
		rows := make([][]any, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = append([]any(nil), row...)
		}
		t.Rows = rows
		m.tables[t.Name] = t
	}
	m.writes++
	return nil
}

// Table returns the stored table by name.
func (m *MemoryWriter) Table(name string) (Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[name]
	return t, ok
}

// Names returns the stored table names, sorted.
func (m *MemoryWriter) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Writes returns the number of successful Write calls.
func (m *MemoryWriter) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
