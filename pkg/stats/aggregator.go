package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/record"
)

// key is a composite path of at most constants.MaxStatDepth levels.
type key struct {
	depth int
	parts [constants.MaxStatDepth]string
}

func (k key) prefix(n int) key {
	p := key{depth: n}
	copy(p.parts[:n], k.parts[:n])
	return p
}

type entry struct {
	count   int
	samples []any
}

// Aggregator is the default Recorder. It is safe for concurrent use; producers
// hold the lock only for the map update.
type Aggregator struct {
	mu      sync.Mutex
	entries map[key]*entry
	order   []key
	limit   int
}

// NewAggregator returns an empty aggregator keeping constants.MaxSamples
// samples per leaf.
func NewAggregator() *Aggregator {
	return &Aggregator{
		entries: make(map[key]*entry),
		limit:   constants.MaxSamples,
	}
}

// fold turns a path into a key. Levels past the fourth are joined into the
// fourth with "|".
func fold(path []string) (key, bool) {
	if len(path) == 0 {
		return key{}, false
	}
	var k key
	if len(path) > constants.MaxStatDepth {
		last := constants.MaxStatDepth - 1
		copy(k.parts[:last], path[:last])
		k.parts[last] = strings.Join(path[last:], "|")
		k.depth = constants.MaxStatDepth
		return k, true
	}
	copy(k.parts[:], path)
	k.depth = len(path)
	return k, true
}

// Observe counts one occurrence of path.
func (a *Aggregator) Observe(path ...string) {
	a.observe(nil, false, path)
}

// ObserveValue counts one occurrence of path and keeps value as a sample if
// the leaf has fewer than ten distinct samples.
func (a *Aggregator) ObserveValue(value any, path ...string) {
	a.observe(sample(value), true, path)
}

func (a *Aggregator) observe(value any, hasValue bool, path []string) {
	k, ok := fold(path)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var leaf *entry
	for n := 1; n <= k.depth; n++ {
		leaf = a.lookup(k.prefix(n))
		leaf.count++
	}
	if hasValue && len(leaf.samples) < a.limit && !slices.Contains(leaf.samples, value) {
		leaf.samples = append(leaf.samples, value)
	}
}

// lookup returns the entry for k, inserting it when missing. Callers hold mu.
func (a *Aggregator) lookup(k key) *entry {
	e, ok := a.entries[k]
	if !ok {
		e = &entry{}
		a.entries[k] = e
		a.order = append(a.order, k)
	}
	return e
}

// sample reduces a value to a comparable scalar so distinctness checks never
// panic on slices or maps.
func sample(v any) any {
	switch v := v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Count returns the occurrence count of path, or zero if it was never observed.
func (a *Aggregator) Count(path ...string) int {
	k, ok := fold(path)
	if !ok {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[k]; ok {
		return e.count
	}
	return 0
}

// Samples returns a copy of the samples kept for path.
func (a *Aggregator) Samples(path ...string) []any {
	k, ok := fold(path)
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.entries[k]; ok {
		return slices.Clone(e.samples)
	}
	return nil
}

// Len returns the number of distinct paths (at every level) observed so far.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Snapshot returns the nested document form of the aggregator: every level is
// a map holding a "count", an optional "value" sample list, and its children.
// A child named "count" or "value", or starting with "~", is keyed with a "~"
// prefix so it cannot replace the parent's own entries.
// The result shares no memory with the aggregator.
func (a *Aggregator) Snapshot() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	root := make(map[string]any)
	for _, k := range a.order {
		e := a.entries[k]
		node := root
		for i := 0; i < k.depth; i++ {
			name := snapshotKey(k.parts[i])
			child, ok := node[name].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[name] = child
			}
			node = child
		}
		node[countKey] = e.count
		if len(e.samples) > 0 {
			node[valueKey] = slices.Clone(e.samples)
		}
	}
	return root
}

const (
	countKey  = "count"
	valueKey  = "value"
	escapeTag = "~"
)

func snapshotKey(name string) string {
	if name == countKey || name == valueKey || strings.HasPrefix(name, escapeTag) {
		return escapeTag + name
	}
	return name
}

// WriteJSON writes the snapshot as one pretty-printed JSON document with
// sorted keys.
func (a *Aggregator) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(a.Snapshot())
}

// CaptureRecord observes every attribute of an emitted record under its
// RECORD_TYPE, with the attribute value as sample.
func CaptureRecord(rec Recorder, r *record.Record) {
	if r == nil || r.RecordType == "" {
		return
	}
	r.Each(func(attr, value string) {
		rec.ObserveValue(value, r.RecordType, attr)
	})
}
