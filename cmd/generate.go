// =============================================================================
// Catalog Seeder - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, the main command of the seeder.
// It converts the catalog export into the seed dump.
//
// COMMAND USAGE:
//   seeder generate [flags]
//
// FLAGS:
//   --input       : Catalog XML export (overrides input_file)
//   --output      : SQL dump to write (overrides output_file)
//   --tables      : Lookup tables, .yaml or .xlsx (overrides tables_file)
//   --encoding    : Force the input charset (overrides input_encoding)
//   --batch-size  : Rows per INSERT for models and specifications
//   --dry-run     : Run the whole pipeline but write nothing
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type generateFlags struct {
	input     string
	output    string
	tables    string
	encoding  string
	batchSize int
	dryRun    bool
}

var genFlags generateFlags

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Convert the catalog XML export into a SQL seed dump",
	Long: `The generate command parses the catalog export, derives the missing
attributes of every modification and writes a SQL script that seeds the
Country, City, BodyType, FuelType, Transmission, DriveType, Brand, Model and
Specification tables inside a single transaction.

The dump is rendered in memory and written atomically, so a failed run never
leaves a truncated file behind. When output_archive_dir is set, a copy of
every dump is kept there.`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

// addGenerateFlags registers the generate flags on cmd. The root command gets
// them too, since it runs generate when called without a subcommand.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&genFlags.input, "input", "i", "", "Catalog XML export (default from config: cars.xml)")
	cmd.Flags().StringVarP(&genFlags.output, "output", "o", "", "SQL dump to write (default from config: database/dumps/initial-data.sql)")
	cmd.Flags().StringVar(&genFlags.tables, "tables", "", "Lookup tables file (.yaml, .yml or .xlsx)")
	cmd.Flags().StringVar(&genFlags.encoding, "encoding", "", "Force the input charset, e.g. windows-1251")
	cmd.Flags().IntVar(&genFlags.batchSize, "batch-size", 0, "Rows per INSERT statement for models and specifications")
	cmd.Flags().BoolVar(&genFlags.dryRun, "dry-run", false, "Run the pipeline without writing the dump")
}

// applyGenerateFlags copies explicitly set flags over cfg.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.MainConfig) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputFile = genFlags.input
	}
	if flags.Changed("output") {
		cfg.OutputFile = genFlags.output
	}
	if flags.Changed("tables") {
		cfg.TablesFile = genFlags.tables
	}
	if flags.Changed("encoding") {
		cfg.InputEncoding = genFlags.encoding
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = genFlags.batchSize
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	if err := config.ValidateMainConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	tables, err := loadTables(cfg.TablesFile)
	if err != nil {
		return fmt.Errorf("failed to load lookup tables: %w", err)
	}
	if cfg.TablesFile != "" {
		log.Debug("Using lookup tables from %s", cfg.TablesFile)
	}

	flush, err := setupMetrics(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	defer flush()

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================

	conv := converter.New(cfg, tables, log)
	result := conv.Run(genFlags.dryRun)
	if result.Error != nil {
		log.Error("Generation failed: %v", result.Error)
		return result.Error
	}

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	log.Info("Parsed: %d brands, %d models, %d modifications",
		result.Stats.Brands, result.Stats.Models, result.Stats.Specifications)
	conv.LogSummary(result.Stats)
	log.Debug("Processing time: %s", result.Stats.ProcessingTime)

	if result.OutputFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "SQL dump saved to: %s\n", result.OutputFile)
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived copy: %s\n", result.ArchivePath)
	}

	return nil
}
