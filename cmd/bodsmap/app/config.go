package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// EnvPrefix is prepended to every environment variable the CLI reads,
// e.g. BODSMAP_INPUT_FILE or BODSMAP_LOG_LEVEL.
const EnvPrefix = "BODSMAP"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Conversion
	InputFile        string
	OutputFile       string
	LogFile          string
	Policy           string
	Profile          string
	SpillFile        string
	MetricsFile      string
	Strict           bool
	ProgressInterval int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// NewViper returns a viper instance reading BODSMAP_* environment variables,
// with .env and .env.local loaded into the process environment first.
func NewViper() *viper.Viper {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("policy", vocab.DefaultPolicy)
	v.SetDefault("progress_interval", constants.ProgressInterval)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	return v
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound to v by the root command)
// 2. Environment variables
// 3. .env files
// 4. Config file (--config, or .bodsmap.yaml in the working or home directory)
// 5. Defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".bodsmap")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config is fine, an explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.WrapConfig("config", "failed to read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		InputFile:        v.GetString("input_file"),
		OutputFile:       v.GetString("output_file"),
		LogFile:          v.GetString("log_file"),
		Policy:           v.GetString("policy"),
		Profile:          v.GetString("profile"),
		SpillFile:        v.GetString("spill_file"),
		MetricsFile:      v.GetString("metrics_file"),
		Strict:           v.GetBool("strict"),
		ProgressInterval: v.GetInt("progress_interval"),

		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// Validate checks the settings a conversion run needs.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return errors.NewValidationError("input_file", c.InputFile, "is required")
	}
	info, err := os.Stat(c.InputFile)
	if err != nil {
		return errors.NewValidationError("input_file", c.InputFile, "does not exist")
	}
	if info.IsDir() {
		return errors.NewValidationError("input_file", c.InputFile, "is a directory")
	}
	if c.OutputFile == "" {
		return errors.NewValidationError("output_file", c.OutputFile, "is required")
	}
	if c.ProgressInterval <= 0 {
		return errors.NewValidationError("progress_interval", c.ProgressInterval, "must be positive")
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
