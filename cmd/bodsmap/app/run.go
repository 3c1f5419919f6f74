package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bodsmap"
	"github.com/agentstation/bodsmap/internal/cmd/output"
	"github.com/agentstation/bodsmap/pkg/logging"
	"github.com/agentstation/bodsmap/pkg/metrics"
	"github.com/agentstation/bodsmap/pkg/stats"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// runConvert converts the input file into the output file. An interrupted
// run still flushes the records read so far and exits successfully.
func (a *App) runConvert(cmd *cobra.Command, _ []string) error {
	cfg := a.config
	if err := cfg.Validate(); err != nil {
		_ = cmd.Usage()
		return err
	}
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	policy, err := vocab.Resolve(cfg.Policy, cfg.Profile)
	if err != nil {
		return err
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	opts := []bodsmap.Option{
		bodsmap.WithPolicy(policy),
		bodsmap.WithLogger(a.logger),
		bodsmap.WithStrictParsing(cfg.Strict),
		bodsmap.WithProgressInterval(cfg.ProgressInterval),
	}

	var agg *stats.Aggregator
	if cfg.LogFile != "" {
		agg = stats.NewAggregator()
		opts = append(opts, bodsmap.WithRecorder(agg))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, bodsmap.WithMetrics(metrics.New()))
	}
	if cfg.SpillFile != "" {
		spill, err := a.openSpill(ctx, cfg.SpillFile)
		if err != nil {
			return err
		}
		defer func() { _ = a.closeSpill() }()
		opts = append(opts, bodsmap.WithCache(spill))
	}

	conv, err := bodsmap.New(opts...)
	if err != nil {
		return err
	}

	result, err := conv.ConvertFiles(ctx, cfg.InputFile, cfg.OutputFile)
	if err != nil {
		return err
	}

	if agg != nil {
		if err := bodsmap.WriteStats(cfg.LogFile, agg); err != nil {
			return err
		}
		a.logger.Debug().Str("log_file", cfg.LogFile).Int("keys", agg.Len()).Msg("statistics written")
	}
	if cfg.MetricsFile != "" {
		if err := conv.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		a.logger.Debug().Str("metrics_file", cfg.MetricsFile).Msg("metrics written")
	}

	if result.Interrupted {
		a.logger.Warn().
			Int("rows_written", result.RecordsWritten).
			Msg("interrupted, records read so far were written")
	}

	if cfg.Quiet {
		return nil
	}
	return output.NewFormatter(output.DetectFormat(string(format))).Format(cmd.OutOrStdout(), result)
}
