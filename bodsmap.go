// Package bodsmap converts Beneficial Ownership Data Standard statements into
// flat entity-resolution records.
//
// Each input line is one statement. Entity and person statements become
// ORGANIZATION and PERSON records keyed by their statement ID; ownership or
// control statements become relationship fragments keyed by their subject.
// Records sharing a key are merged, and the merged records are written once
// all input has been read, or as soon as the context is cancelled.
//
// Example usage:
//
//	agg := stats.NewAggregator()
//	conv, err := bodsmap.New(
//	    bodsmap.WithPolicy(vocab.Generic()),
//	    bodsmap.WithRecorder(agg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.ConvertFiles(ctx, "statements.json.gz", "records.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
//
//	// Persist what was observed along the way
//	_ = bodsmap.WriteStats("stats.json", agg)
package bodsmap

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/bodsmap/pkg/cache"
	"github.com/agentstation/bodsmap/pkg/mapper"
	"github.com/agentstation/bodsmap/pkg/metrics"
	"github.com/agentstation/bodsmap/pkg/stats"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// Soft anomalies raised by the run loop.
const (
	AlertMalformedJSON             = "malformed-json!"
	AlertRelationshipWithoutEntity = "relationship-without-entity!"
)

// Source yields raw statement lines. *ndjson.Reader implements it.
type Source interface {
	Next() bool
	Bytes() []byte
	Line() int
	Err() error
}

// Sink receives merged records. *ndjson.Writer implements it.
type Sink interface {
	Write(v any) error
}

// Converter runs conversions under one configuration. A Converter may be
// reused for several runs, but not concurrently.
type Converter struct {
	options  *options
	mapper   *mapper.Mapper
	recorder stats.Recorder
}

// New creates a converter with the given options.
func New(opts ...Option) (*Converter, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	// Metrics see every observation, so anomaly counters stay in step with the
	// statistics document.
	var rec stats.Recorder = o.recorder
	if o.metrics != nil {
		rec = stats.Tee(o.recorder, o.metrics)
	}

	return &Converter{
		options:  o,
		mapper:   mapper.New(o.policy, rec),
		recorder: rec,
	}, nil
}

// Policy returns the mapping policy in use.
func (c *Converter) Policy() *vocab.Policy { return c.options.policy }

// Metrics returns the metric set, or nil when metrics are disabled.
func (c *Converter) Metrics() *metrics.Set { return c.options.metrics }

func (c *Converter) newCache() cache.Cache {
	if c.options.cache != nil {
		return c.options.cache
	}
	return cache.NewMemory()
}

func (c *Converter) logger() *zerolog.Logger {
	return c.options.logger
}

func newRunID() string {
	return uuid.NewString()
}
