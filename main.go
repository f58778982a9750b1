// =============================================================================
// Catalog Seeder - Main Entry Point
// =============================================================================
//
// Catalog Seeder turns a vehicle catalog XML export into a SQL script that
// seeds the catalog database.
//
// USAGE:
//   seeder generate   - Convert the catalog export into a SQL dump
//   seeder validate   - Check the configuration and lookup tables
//   seeder apply      - Load a generated dump into PostgreSQL
//   seeder version    - Display the application version
//
// LAYOUT:
//   cmd/       : CLI command definitions (Cobra)
//   internal/  : Parsing, enrichment, dictionaries and SQL generation
//   pkg/       : Logging and file helpers
//
// =============================================================================

package main

import (
	"github.com/buccaneer33/spectr-cars-claude/cmd"
)

func main() {
	cmd.Execute()
}
