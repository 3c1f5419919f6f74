// Package cache accumulates mapped records by identity key until the end of a
// run. Records sharing a RECORD_ID are folded with record.Merge, and Each
// yields the merged records in the order their keys were first seen.
//
// A Cache is owned by a single goroutine; implementations are not safe for
// concurrent use.
package cache

import (
	"context"
	"fmt"

	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/record"
)

// Cache is an identity-keyed record accumulator.
type Cache interface {
	// Add folds rec into the cache. Empty records are ignored.
	Add(ctx context.Context, rec *record.Record) error

	// Each calls fn for every cached record in first-seen order. It stops at
	// the first error returned by fn.
	Each(ctx context.Context, fn func(*record.Record) error) error

	// Len returns the number of distinct identity keys.
	Len() int

	// Close releases resources held by the cache. Add and Each return
	// errors.ErrClosed afterwards.
	Close() error
}

// canceled reports a done ctx as errors.ErrCanceled, still matching the
// context error.
func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return nil
}

// Memory is the default in-memory cache.
type Memory struct {
	records map[string]*record.Record
	order   []string
	closed  bool
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*record.Record)}
}

// Add implements Cache. The cache keeps its own copy of rec.
func (m *Memory) Add(_ context.Context, rec *record.Record) error {
	if m.closed {
		return errors.ErrClosed
	}
	if rec == nil || rec.Empty() {
		return nil
	}
	existing, ok := m.records[rec.RecordID]
	if !ok {
		m.records[rec.RecordID] = rec.Clone()
		m.order = append(m.order, rec.RecordID)
		return nil
	}
	return record.Merge(existing, rec)
}

// Each implements Cache.
func (m *Memory) Each(ctx context.Context, fn func(*record.Record) error) error {
	if m.closed {
		return errors.ErrClosed
	}
	for _, id := range m.order {
		if err := canceled(ctx); err != nil {
			return err
		}
		if err := fn(m.records[id]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached record for id.
func (m *Memory) Get(id string) (*record.Record, bool) {
	r, ok := m.records[id]
	return r, ok
}

// Len implements Cache.
func (m *Memory) Len() int { return len(m.order) }

// Close implements Cache.
func (m *Memory) Close() error {
	m.records = make(map[string]*record.Record)
	m.order = nil
	m.closed = true
	return nil
}
