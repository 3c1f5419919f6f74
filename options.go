package bodsmap

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/bodsmap/pkg/cache"
	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/metrics"
	"github.com/agentstation/bodsmap/pkg/stats"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// options holds the converter configuration.
type options struct {
	policy           *vocab.Policy
	recorder         stats.Recorder
	cache            cache.Cache
	logger           *zerolog.Logger
	metrics          *metrics.Set
	progressInterval int
	strict           bool
	runID            string
}

func defaultOptions() *options {
	return &options{
		policy:           vocab.Register(),
		recorder:         stats.Discard,
		progressInterval: constants.ProgressInterval,
	}
}

// Option is a function that configures a Converter.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithPolicy sets the mapping policy.
func WithPolicy(policy *vocab.Policy) Option {
	return func(o *options) error {
		if policy == nil {
			return &errors.ValidationError{Field: "policy", Message: "cannot be nil"}
		}
		if err := policy.Validate(); err != nil {
			return err
		}
		o.policy = policy
		return nil
	}
}

// WithRecorder sets the statistics recorder. The default discards statistics.
func WithRecorder(rec stats.Recorder) Option {
	return func(o *options) error {
		if rec == nil {
			rec = stats.Discard
		}
		o.recorder = rec
		return nil
	}
}

// WithCache sets the merge cache. The default is a fresh in-memory cache per
// run. A supplied cache is used as is and is not closed by the converter.
func WithCache(c cache.Cache) Option {
	return func(o *options) error {
		o.cache = c
		return nil
	}
}

// WithLogger sets the logger. The default is the logger carried by the
// context passed to Convert.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics enables Prometheus metrics for the run.
func WithMetrics(m *metrics.Set) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithProgressInterval sets how many records pass between progress log lines.
func WithProgressInterval(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return errors.NewValidationError("progress_interval", n, "must be positive")
		}
		o.progressInterval = n
		return nil
	}
}

// WithStrictParsing makes a malformed input line fail the run instead of
// being skipped.
func WithStrictParsing(strict bool) Option {
	return func(o *options) error {
		o.strict = strict
		return nil
	}
}

// WithRunID fixes the run identifier. The default is a random UUID per run.
func WithRunID(id string) Option {
	return func(o *options) error {
		o.runID = id
		return nil
	}
}
