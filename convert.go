package bodsmap

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/cache"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/logging"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
)

// Convert reads every statement from src, merges the mapped records and
// writes them to dst. Cancelling ctx stops reading at the next record; what
// has been merged so far is still written and the result is marked
// interrupted. Only read, write and (in strict mode) parse failures are
// returned as errors.
func (c *Converter) Convert(ctx context.Context, src Source, dst Sink) (*Result, error) {
	runID := c.options.runID
	if runID == "" {
		runID = newRunID()
	}

	logger := c.logger()
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithRunID(logging.WithLogger(ctx, logger), runID)
	ctx = logging.WithPolicy(ctx, c.options.policy.Name)
	if path := sourcePath(src); path != "" {
		ctx = logging.WithInputFile(ctx, path)
	}
	if path := sourcePath(dst); path != "" {
		ctx = logging.WithOutputFile(ctx, path)
	}
	log := logging.FromContext(ctx)
	log.Debug().Msg("conversion started")

	result := newResult(runID, c.options.policy.Name)
	c.recorder.ObserveValue(runID, stats.Run, "id")

	store := c.newCache()
	if c.options.cache == nil {
		defer func() { _ = store.Close() }()
	}

	// Cache and output work must finish even once ctx is cancelled.
	work := context.WithoutCancel(ctx)

	readErr := c.read(ctx, work, src, store, result, log)

	if m := c.options.metrics; m != nil {
		m.SetCacheRecords(store.Len())
	}
	result.CacheRecords = store.Len()

	var parseErr *errors.ParseError
	if errors.As(readErr, &parseErr) {
		result.finalize()
		return result, readErr
	}

	if err := c.flush(work, store, dst, result, log); err != nil {
		result.finalize()
		return result, err
	}
	result.finalize()
	if m := c.options.metrics; m != nil {
		m.SetRunDuration(result.Duration)
	}

	event := log.Info()
	if result.Interrupted {
		event = log.Warn()
	}
	event.
		Int("rows_read", result.RowsRead).
		Int("records_written", result.RecordsWritten).
		Dur("duration", result.Duration).
		Msg(result.Summary())

	return result, readErr
}

// read consumes src into store. A parse failure in strict mode aborts the run
// before anything is written; any other failure still lets the caller flush.
func (c *Converter) read(ctx, work context.Context, src Source, store cache.Cache, result *Result, log *zerolog.Logger) error {
	for {
		if ctx.Err() != nil {
			result.Interrupted = true
			log.Warn().Int("rows_read", result.RowsRead).Msg("interrupted, flushing merged records")
			return nil
		}
		if !src.Next() {
			break
		}
		result.RowsRead++

		if err := c.process(work, src, store, result); err != nil {
			return err
		}

		if result.RowsRead%c.options.progressInterval == 0 {
			log.Info().Int("rows_read", result.RowsRead).Msg("rows processed")
		}
	}
	return src.Err()
}

func (c *Converter) process(ctx context.Context, src Source, store cache.Cache, result *Result) error {
	statement, err := bods.Parse(src.Bytes())
	if err != nil {
		if c.options.strict {
			return errors.WrapParse("json", sourcePath(src), src.Line(), err)
		}
		result.Malformed++
		c.recorder.ObserveValue(src.Line(), stats.Alert, AlertMalformedJSON)
		return nil
	}

	if m := c.options.metrics; m != nil {
		m.StatementRead(statement.Type.String())
	}

	rec := c.mapper.Map(statement)
	if rec == nil {
		result.StatementsDropped++
		return nil
	}
	result.StatementsMapped++
	return store.Add(ctx, rec)
}

// flush writes every cached record that has a RECORD_TYPE. Fragments whose
// subject never appeared are counted and dropped.
func (c *Converter) flush(ctx context.Context, store cache.Cache, dst Sink, result *Result, log *zerolog.Logger) error {
	start := time.Now()
	err := store.Each(ctx, func(rec *record.Record) error {
		if rec.RecordType == "" {
			result.Orphans++
			c.recorder.ObserveValue(rec.RecordID, stats.Alert, AlertRelationshipWithoutEntity)
			return nil
		}

		rec.Prune()
		stats.CaptureRecord(c.recorder, rec)
		if err := dst.Write(rec); err != nil {
			return err
		}
		result.RecordsWritten++
		if m := c.options.metrics; m != nil {
			m.RecordWritten()
		}
		if result.RecordsWritten%c.options.progressInterval == 0 {
			log.Info().Int("records_written", result.RecordsWritten).Msg("rows written")
		}
		return nil
	})
	log.Debug().
		Int("records_written", result.RecordsWritten).
		Int("orphans", result.Orphans).
		Dur("elapsed", time.Since(start)).
		Msg("flush complete")
	return err
}

// sourcePath returns the file behind a source or sink, if it has one.
func sourcePath(v any) string {
	if p, ok := v.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
