package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/logging"
)

// Execute runs the bodsmap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd, err := a.createRootCommand()
	if err != nil {
		return err
	}
	rootCmd.SetArgs(args)
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:     "bodsmap -i statements.jsonl[.gz] -o records.jsonl[.gz]",
		Short:   "Map BODS statements to entity-resolution records",
		Version: a.version,
		Long: `bodsmap converts a newline-delimited stream of Beneficial Ownership Data
Standard statements (entity, person and ownership-or-control statements) into
newline-delimited entity-resolution records.

Statements about the same subject are merged into one record, relationships
are attached to the record they describe, and an optional statistics document
summarizes the attributes and anomalies seen along the way.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE:              a.runConvert,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is ./.bodsmap.yaml or $HOME/.bodsmap.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.Bool("no-color", false, "disable colored output")
	pf.String("format", "", "summary format: table, json, yaml (default table on a terminal, json otherwise)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.String("policy", a.config.Policy, "built-in mapping policy: register, generic")
	pf.String("profile", "", "YAML mapping profile; overrides --policy")

	f := rootCmd.Flags()
	f.StringP("input_file", "i", "", "BODS statements, one JSON object per line (.gz for gzip)")
	f.StringP("output_file", "o", "", "destination for records, one JSON object per line (.gz for gzip)")
	f.StringP("log_file", "l", "", "write the statistics document as JSON to this file")
	f.String("spill_file", "", "keep the merge cache in this SQLite file instead of memory")
	f.String("metrics_file", "", "write Prometheus metrics in text format to this file")
	f.Bool("strict", false, "fail on the first malformed input line instead of skipping it")
	f.Int("progress_interval", a.config.ProgressInterval, "records between progress log lines")

	if err := a.viper.BindPFlags(pf); err != nil {
		return nil, errors.WrapConfig("flags", "failed to bind persistent flags", err)
	}
	if err := a.viper.BindPFlags(f); err != nil {
		return nil, errors.WrapConfig("flags", "failed to bind flags", err)
	}

	rootCmd.SetVersionTemplate("bodsmap {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd, nil
}

// setupCommand is called before any command runs. Flags are parsed by now,
// so the configuration is reloaded to let them take precedence.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	config, err := LoadConfig(a.viper)
	if err != nil {
		return err
	}
	a.config = config

	// The package default follows the flags too, for code that logs
	// without a context logger.
	if !a.loggerFixed {
		logging.Configure(loggerConfig(a.config))
		logger := *logging.Default()
		a.logger = &logger
	}

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewPolicyCommand())
	rootCmd.AddCommand(a.NewVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
