// =============================================================================
// Catalog Seeder - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the lookup tables without reading the catalog.
//
// COMMAND USAGE:
//   seeder validate [--tables tables.xlsx] [--strict] [--export out.xlsx]
//
// EXIT STATUS:
//   0 when no error-level issue is found (warnings are printed), 1 otherwise.
//   With --strict, warnings fail the command too.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buccaneer33/spectr-cars-claude/internal/validation"
	"github.com/buccaneer33/spectr-cars-claude/internal/xlsxparser"
)

var (
	validateTables string
	validateStrict bool
	validateExport string
	validateLog    string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the lookup tables",
	Long: `The validate command loads the configuration and the lookup tables and
reports issues that would make a generated dump wrong without failing the
run: brands listed under two countries, cities whose country can never
appear, missing country codes, non-positive prices.

--export writes the effective lookup tables to an XLSX workbook in the
layout accepted by tables_file, as a starting point for editing them.`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateTables, "tables", "", "Lookup tables file to check instead of tables_file")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringVar(&validateExport, "export", "", "Write the effective lookup tables to this .xlsx file")
	validateCmd.Flags().StringVar(&validateLog, "log", "", "Also write the report to this file")
}

func runValidate(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tables") {
		cfg.TablesFile = validateTables
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

	validator := validation.NewValidatorWithOptions(validation.ValidationOptions{
		TreatWarningsAsErrors: validateStrict,
	})
	result := validator.ValidateAll(cfg, tables)

	for _, issue := range result.Errors {
		if issue.Severity == validation.SeverityError {
			log.Error("%s", issue.Error())
		} else {
			log.Warn("%s", issue.Error())
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), validation.FormatErrors(result.Errors))

	if validateLog != "" {
		if err := validation.WriteErrorLog(result.Errors, validateLog); err != nil {
			return err
		}
	}

	if validateExport != "" {
		if err := xlsxparser.Export(tables, validateExport); err != nil {
			return err
		}
		log.Info("Lookup tables exported to %s", validateExport)
	}

	if !result.IsValid {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", result.ErrorCount, result.WarningCount)
	}
	return nil
}
