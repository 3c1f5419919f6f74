package bodsmap

import (
	"context"
	"os"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/ndjson"
	"github.com/agentstation/bodsmap/pkg/stats"
)

// ConvertFiles converts the NDJSON file in into the NDJSON file out. Either
// may be gzip-compressed, chosen by a ".gz" extension.
func (c *Converter) ConvertFiles(ctx context.Context, in, out string) (result *Result, err error) {
	src, err := ndjson.Open(in)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	dst, err := ndjson.Create(out)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := dst.Close(); err == nil {
			err = closeErr
		}
	}()

	return c.Convert(ctx, src, dst)
}

// WriteStats writes the aggregator as a pretty-printed JSON document.
func WriteStats(path string, agg *stats.Aggregator) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = errors.WrapIO("close", path, closeErr)
		}
	}()

	if err := agg.WriteJSON(f); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
