// =============================================================================
// Catalog Seeder - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration and
// the lookup tables used by the enrichment engine.
//
// CONFIGURATION SOURCES (highest priority first):
//   1. Command line flags (applied by the cmd package)
//   2. Environment variables with the SEEDER_ prefix (SEEDER_OUTPUT_FILE, ...)
//   3. The YAML config file (config.yaml by default, optional)
//   4. Built-in defaults
//
// The lookup tables live in tables.go. They are kept separate from the main
// configuration because they are data, not settings: they can be swapped for
// a YAML file or an XLSX workbook without touching the rest of the config.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the catalog XML export to convert.
	// Default: "cars.xml"
	InputFile string `mapstructure:"input_file"`

	// OutputFile is the SQL dump written by the generate command.
	// Default: "database/dumps/initial-data.sql"
	OutputFile string `mapstructure:"output_file"`

	// OutputArchiveDir receives a copy of every successfully written dump.
	// Archival is disabled when empty.
	OutputArchiveDir string `mapstructure:"output_archive_dir"`

	// ArchiveNameFormat names the archived copy.
	// Placeholders: {original}, {uuid}, {timestamp}, {date}, {time}
	// Default: "{original}_{timestamp}_{uuid}.sql"
	ArchiveNameFormat string `mapstructure:"archive_name_format"`

	// TablesFile points at alternate lookup tables (.yaml, .yml or .xlsx).
	// The built-in tables are used when empty.
	TablesFile string `mapstructure:"tables_file"`

	// InputEncoding forces the charset of the input document. When empty the
	// encoding declared in the XML prolog is used.
	InputEncoding string `mapstructure:"input_encoding"`

	// =========================================================================
	// GENERATION SETTINGS
	// =========================================================================

	// BatchSize is the maximum number of rows per INSERT statement for the
	// Model and Specification tables.
	// Default: 1000
	BatchSize int `mapstructure:"batch_size"`

	// DefaultBodyType is used for modifications without a <body_type> child.
	// Default: "Седан"
	DefaultBodyType string `mapstructure:"default_body_type"`

	// AssetBaseURL prefixes the generated brand logo and model image URLs.
	// Default: "https://cdn.example.com"
	AssetBaseURL string `mapstructure:"asset_base_url"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile receives JSON log lines in addition to the console.
	// Disabled when empty.
	LogFile string `mapstructure:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level"`

	// =========================================================================
	// DATABASE AND METRICS
	// =========================================================================

	// DatabaseURL is the PostgreSQL connection string used by the apply
	// command.
	DatabaseURL string `mapstructure:"database_url"`

	// Metrics configures the optional Pushgateway backend.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds the Prometheus Pushgateway settings.
type MetricsConfig struct {
	// PushgatewayURL enables metrics when set, e.g. "http://localhost:9091".
	PushgatewayURL string `mapstructure:"pushgateway_url"`

	// Job is the Pushgateway job name.
	// Default: "catalog_seed"
	Job string `mapstructure:"job"`
}

// envPrefix is prepended to every environment override.
const envPrefix = "SEEDER"

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file.
//   - required: When false a missing file is not an error and the defaults
//     (plus environment overrides) are used.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or fails validation.
func LoadMainConfig(configPath string, required bool) (*MainConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if required || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config MainConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := ValidateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *MainConfig {
	v := viper.New()
	setDefaults(v)

	var config MainConfig
	// Decoding the defaults alone cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults registers the default value of every key. Registering each key
// also makes AutomaticEnv see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_file", "cars.xml")
	v.SetDefault("output_file", "database/dumps/initial-data.sql")
	v.SetDefault("output_archive_dir", "")
	v.SetDefault("archive_name_format", "{original}_{timestamp}_{uuid}.sql")
	v.SetDefault("tables_file", "")
	v.SetDefault("input_encoding", "")
	v.SetDefault("batch_size", 1000)
	v.SetDefault("default_body_type", "Седан")
	v.SetDefault("asset_base_url", "https://cdn.example.com")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "catalog_seed")
}

// ValidateMainConfig checks the settings the pipeline cannot run without.
func ValidateMainConfig(config *MainConfig) error {
	if strings.TrimSpace(config.InputFile) == "" {
		return fmt.Errorf("input_file must be set")
	}
	if strings.TrimSpace(config.OutputFile) == "" {
		return fmt.Errorf("output_file must be set")
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", config.BatchSize)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(config.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
