// =============================================================================
// Catalog Seeder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to. Called without a
// subcommand it runs 'generate'.
//
// COBRA CLI STRUCTURE:
//   rootCmd (seeder)
//   ├── generateCmd (seeder generate)
//   ├── validateCmd (seeder validate)
//   ├── applyCmd    (seeder apply)
//   └── versionCmd  (seeder version)
//
// CONFIGURATION:
//   The helpers at the bottom of this file are shared by the subcommands:
//   1. Loading the main configuration (file, SEEDER_* environment, defaults)
//   2. Loading the lookup tables (built-in, YAML or XLSX)
//   3. Setting up logging and the optional metrics backend
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/metrics"
	"github.com/buccaneer33/spectr-cars-claude/internal/metrics/prompush"
	"github.com/buccaneer33/spectr-cars-claude/internal/xlsxparser"
	"github.com/buccaneer33/spectr-cars-claude/pkg/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// envFile is a dotenv file whose variables (SEEDER_DATABASE_URL, ...) are
// loaded before the configuration. Variables already set in the environment
// win.
var envFile string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Catalog Seeder - Turn a vehicle catalog XML export into a PostgreSQL seed dump",
	Long: `Catalog Seeder reads a hierarchical vehicle catalog (brands, models,
modifications) exported as XML and produces a SQL script that seeds the
catalog database: lookup dictionaries, brands, models and specifications.

Key Features:
  - Engine attributes parsed from modification names
  - Country, price segment and performance figures derived from lookup tables
  - Lookup tables editable as YAML or as an XLSX workbook
  - Deterministic output with a body checksum in the dump header
  - Optional loading of the dump into PostgreSQL

Example Usage:
  seeder                                  # Same as 'seeder generate'
  seeder generate --input cars.xml        # Convert a specific export
  seeder generate --dry-run -v            # Run the pipeline, write nothing
  seeder validate                         # Check configuration and tables
  seeder apply --file initial-data.sql    # Load a dump into the database`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd)
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file; a missing default file is ignored",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Dotenv file loaded before the configuration; a missing default file is ignored",
	)

	addGenerateFlags(rootCmd)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadEnvFile loads the dotenv file. An explicitly passed --env-file must
// exist.
func loadEnvFile(cmd *cobra.Command) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if f := cmd.Flag("env-file"); f != nil && f.Changed {
			return fmt.Errorf("env file %s not found", envFile)
		}
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// loadConfig loads the main configuration. An explicitly passed --config file
// must exist; the default one is optional.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	required := false
	if f := cmd.Flag("config"); f != nil {
		required = f.Changed
	}

	cfg, err := config.LoadMainConfig(cfgFile, required)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadTables loads the lookup tables named by path, dispatching on the file
// extension. An empty path selects the built-in tables.
func loadTables(path string) (config.Tables, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return config.DefaultTables(), nil
		}
	case ".yaml", ".yml":
		return config.LoadTables(path)
	case ".xlsx":
		return xlsxparser.Parse(path)
	}
	return config.Tables{}, fmt.Errorf("unsupported tables file %q: expected .yaml, .yml or .xlsx", path)
}

// newLogger builds the logger described by cfg. --verbose forces debug level.
func newLogger(cfg *config.MainConfig) (*logger.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, File: cfg.LogFile})
}

// setupMetrics installs the Pushgateway backend when one is configured and
// returns a function that pushes the collected metrics.
func setupMetrics(cfg *config.MainConfig, log *logger.Logger) (flush func(), err error) {
	if cfg.Metrics.PushgatewayURL == "" {
		return func() {}, nil
	}

	backend, err := prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
	if err != nil {
		return nil, err
	}
	metrics.SetBackend(backend)
	log.Debug("Pushing metrics to %s as job %s", cfg.Metrics.PushgatewayURL, cfg.Metrics.Job)

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("Failed to push metrics: %v", err)
		}
	}, nil
}
