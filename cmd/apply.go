// =============================================================================
// Catalog Seeder - Apply Command
// =============================================================================
//
// This file defines the 'apply' command, which loads a generated dump into
// PostgreSQL and checks the resulting row counts.
//
// COMMAND USAGE:
//   seeder apply [--file dump.sql] [--database-url postgres://...]
//
// The target schema must already exist; the dump only inserts rows and resets
// the id sequences.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/buccaneer33/spectr-cars-claude/internal/database"
)

var (
	applyFile    string
	applyURL     string
	applyTimeout time.Duration
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Load a generated dump into PostgreSQL",
	Long: `The apply command executes a dump produced by 'generate' against the
database named by database_url (or SEEDER_DATABASE_URL) and verifies that
every seeded table holds exactly the rows the dump inserted.`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runApply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Dump to load (default: output_file)")
	applyCmd.Flags().StringVar(&applyURL, "database-url", "", "PostgreSQL connection string (default: database_url)")
	applyCmd.Flags().DurationVar(&applyTimeout, "timeout", 5*time.Minute, "Maximum time for the whole load")
}

func runApply(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("file") {
		cfg.OutputFile = applyFile
	}
	if cmd.Flags().Changed("database-url") {
		cfg.DatabaseURL = applyURL
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	script, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), applyTimeout)
	defer cancel()

	applier, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer applier.Close(context.Background())

	log.Info("Applying %s (%d bytes)", cfg.OutputFile, len(script))
	started := time.Now()
	if err := applier.Apply(ctx, string(script)); err != nil {
		return err
	}
	log.Info("Dump applied in %s", time.Since(started).Round(time.Millisecond))

	expected := database.ExpectedCounts(string(script))
	actual, err := applier.Counts(ctx, database.Tables(expected))
	if err != nil {
		return err
	}

	for _, table := range database.Tables(expected) {
		fmt.Fprintf(cmd.OutOrStdout(), "%-15s %d\n", table, actual[table])
	}

	return database.Verify(expected, actual)
}
