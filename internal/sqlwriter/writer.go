// =============================================================================
// Catalog Seeder - SQL Dump Writer
// =============================================================================
//
// This module renders the collected catalog as a PostgreSQL seed script.
//
// OUTPUT STRUCTURE:
//   -- Cars Database Dump                     <-- header comment block
//   -- Generated: 2024-01-15 14:30:22
//   -- Brands: 1
//   -- Models: 1
//   -- Modifications: 1
//   -- Checksum: 9f1c0e2a7b3d4c5e             <-- xxh3 of everything below
//
//   SET client_encoding = 'UTF8';
//   SET standard_conforming_strings = on;
//
//   BEGIN;
//
//   -- Countries
//   INSERT INTO "Country" (...) VALUES
//   (1, 'Япония', 'JP', NOW(), NOW());
//   ...                                       <-- nine tables, fixed order
//   -- Update sequences
//   SELECT setval('"Country_id_seq"', 1, true);
//   ...
//   COMMIT;
//
// The body below the header depends only on the catalog, so two runs over the
// same document differ only in the Generated line. The checksum makes that
// easy to verify.
//
// =============================================================================

package sqlwriter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/buccaneer33/spectr-cars-claude/internal/dictionary"
	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for dump generation.
type GenerateOptions struct {
	// BatchSize is the maximum number of rows per INSERT statement for the
	// Model and Specification tables.
	BatchSize int

	// GeneratedAt is written to the header.
	GeneratedAt time.Time

	// AssetBaseURL prefixes brand logo and model image URLs.
	AssetBaseURL string
}

// Summary describes a generated dump.
type Summary struct {
	// Checksum is the xxh3 hash of the dump body (everything after the header).
	Checksum uint64

	// Statements is the number of INSERT statements written.
	Statements int

	// ModelBatches and SpecificationBatches count the INSERT statements of the
	// two batched tables.
	ModelBatches         int
	SpecificationBatches int

	// Rows is the final row count of every table, keyed by table name.
	Rows map[string]int
}

// Table names in emission order.
const (
	TableCountry       = "Country"
	TableCity          = "City"
	TableBodyType      = "BodyType"
	TableFuelType      = "FuelType"
	TableTransmission  = "Transmission"
	TableDriveType     = "DriveType"
	TableBrand         = "Brand"
	TableModel         = "Model"
	TableSpecification = "Specification"
)

// Tables lists every table of the dump in emission order.
var Tables = []string{
	TableCountry, TableCity, TableBodyType, TableFuelType, TableTransmission,
	TableDriveType, TableBrand, TableModel, TableSpecification,
}

const (
	countryColumns       = `(id, name, code, "createdAt", "updatedAt")`
	cityColumns          = `(id, name, "countryId", "createdAt", "updatedAt")`
	namedColumns         = `(id, name, "createdAt", "updatedAt")`
	brandColumns         = `(id, name, code, country, logo, "isPopular", "createdAt", "updatedAt")`
	modelColumns         = `(id, name, code, "brandId", "generationId", image, "createdAt", "updatedAt")`
	specificationColumns = `(id, "modelId", "brandId", name, "externalId", "bodyTypeId", "engineVolume", horsepower, "fuelTypeId", "transmissionId", "driveTypeId", "yearFrom", "yearTo", "priceMin", "priceMax", "fuelConsumption", "acceleration0to100", "maxSpeed", "maintenanceCostPerYear", "createdAt", "updatedAt")`
)

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// GenerateWithOptions renders the dump.
//
// PARAMETERS:
//   - catalog: The collected brands, models and specifications.
//   - dicts: The frozen dictionaries every specification refers to.
//   - options: Batch size, header timestamp and asset URL base.
//
// RETURNS:
//   - The complete dump.
//   - A summary with the body checksum and row counts.
//   - An error if a specification references a value missing from its
//     dictionary.
func GenerateWithOptions(catalog *types.Catalog, dicts *dictionary.Dictionaries, options GenerateOptions) ([]byte, Summary, error) {
	if options.BatchSize <= 0 {
		return nil, Summary{}, fmt.Errorf("batch size must be positive, got %d", options.BatchSize)
	}

	w := &dumpWriter{options: options}
	summary := Summary{Rows: map[string]int{
		TableCountry:       len(dicts.CountryRows),
		TableCity:          len(dicts.Cities),
		TableBodyType:      dicts.BodyTypes.Len(),
		TableFuelType:      dicts.FuelTypes.Len(),
		TableTransmission:  dicts.Transmissions.Len(),
		TableDriveType:     dicts.DriveTypes.Len(),
		TableBrand:         len(catalog.Brands),
		TableModel:         len(catalog.Models),
		TableSpecification: len(catalog.Specifications),
	}}

	w.body.WriteString("SET client_encoding = 'UTF8';\n")
	w.body.WriteString("SET standard_conforming_strings = on;\n\n")
	w.body.WriteString("BEGIN;\n\n")

	w.writeDictionaries(dicts)
	w.writeBrands(catalog.Brands)
	summary.ModelBatches = w.writeModels(catalog.Models)

	specBatches, err := w.writeSpecifications(catalog.Specifications, dicts)
	if err != nil {
		return nil, Summary{}, err
	}
	summary.SpecificationBatches = specBatches

	w.body.WriteString("-- Update sequences\n")
	for _, table := range Tables {
		w.body.WriteString(setval(table, summary.Rows[table]))
	}
	w.body.WriteString("\nCOMMIT;\n")

	summary.Checksum = xxh3.Hash(w.body.Bytes())
	summary.Statements = w.statements

	var out bytes.Buffer
	out.Grow(w.body.Len() + 256)
	out.WriteString("-- Cars Database Dump\n")
	fmt.Fprintf(&out, "-- Generated: %s\n", options.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&out, "-- Brands: %d\n", len(catalog.Brands))
	fmt.Fprintf(&out, "-- Models: %d\n", len(catalog.Models))
	fmt.Fprintf(&out, "-- Modifications: %d\n", len(catalog.Specifications))
	fmt.Fprintf(&out, "-- Checksum: %016x\n\n", summary.Checksum)
	out.Write(w.body.Bytes())

	return out.Bytes(), summary, nil
}

// =============================================================================
// TABLE WRITERS
// =============================================================================

type dumpWriter struct {
	body       bytes.Buffer
	options    GenerateOptions
	statements int
}

func (w *dumpWriter) writeDictionaries(dicts *dictionary.Dictionaries) {
	rows := make([]string, 0, len(dicts.CountryRows))
	for _, c := range dicts.CountryRows {
		rows = append(rows, fmt.Sprintf("(%d, %s, %s, NOW(), NOW())", c.ID, quote(c.Name), quote(c.Code)))
	}
	w.writeTable("Countries", TableCountry, countryColumns, rows)

	rows = make([]string, 0, len(dicts.Cities))
	for _, c := range dicts.Cities {
		rows = append(rows, fmt.Sprintf("(%d, %s, %d, NOW(), NOW())", c.ID, quote(c.Name), c.CountryID))
	}
	w.writeTable("Cities", TableCity, cityColumns, rows)

	w.writeTable("Body Types", TableBodyType, namedColumns, namedRows(dicts.BodyTypes))
	w.writeTable("Fuel Types", TableFuelType, namedColumns, namedRows(dicts.FuelTypes))
	w.writeTable("Transmissions", TableTransmission, namedColumns, namedRows(dicts.Transmissions))
	w.writeTable("Drive Types", TableDriveType, namedColumns, namedRows(dicts.DriveTypes))
}

func namedRows(d *dictionary.Dictionary) []string {
	values := d.Values()
	rows := make([]string, len(values))
	for i, v := range values {
		rows[i] = fmt.Sprintf("(%d, %s, NOW(), NOW())", i+1, quote(v))
	}
	return rows
}

func (w *dumpWriter) writeBrands(brands []types.Brand) {
	rows := make([]string, 0, len(brands))
	for _, b := range brands {
		rows = append(rows, fmt.Sprintf("(%d, %s, %s, %s, %s, %t, NOW(), NOW())",
			b.ID, quote(b.Name), quote(b.Code), quote(b.Country),
			quote(w.assetURL("brands", b.Code)), b.Popular))
	}
	w.writeTable("Brands", TableBrand, brandColumns, rows)
}

func (w *dumpWriter) writeModels(models []types.Model) int {
	rows := make([]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, fmt.Sprintf("(%d, %s, %s, %d, %s, %s, NOW(), NOW())",
			m.ID, quote(m.Name), quote(m.Code), m.BrandID, quote(m.GenerationID),
			quote(w.assetURL("models", m.Code))))
	}

	w.body.WriteString("-- Models\n")
	return w.writeBatches(TableModel, modelColumns, rows)
}

func (w *dumpWriter) writeSpecifications(specs []types.Specification, dicts *dictionary.Dictionaries) (int, error) {
	rows := make([]string, 0, len(specs))
	for _, s := range specs {
		row, err := specificationRow(s, dicts)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	w.body.WriteString("-- Specifications\n")
	return w.writeBatches(TableSpecification, specificationColumns, rows), nil
}

func specificationRow(s types.Specification, dicts *dictionary.Dictionaries) (string, error) {
	bodyTypeID, err := lookup(dicts.BodyTypes, TableBodyType, s.BodyType, s.ID)
	if err != nil {
		return "", err
	}
	fuelTypeID, err := lookup(dicts.FuelTypes, TableFuelType, s.FuelType, s.ID)
	if err != nil {
		return "", err
	}
	transmissionID, err := lookup(dicts.Transmissions, TableTransmission, s.Transmission, s.ID)
	if err != nil {
		return "", err
	}

	driveTypeID := "NULL"
	if s.HasDriveType() {
		id, err := lookup(dicts.DriveTypes, TableDriveType, s.DriveType, s.ID)
		if err != nil {
			return "", err
		}
		driveTypeID = strconv.Itoa(id)
	}

	return fmt.Sprintf("(%d, %d, %d, %s, %s, %d, %s, %d, %d, %d, %s, %d, %d, %d, %d, %s, %s, %d, %d, NOW(), NOW())",
		s.ID, s.ModelID, s.BrandID, quote(s.Name), quote(s.ExternalID),
		bodyTypeID, formatFloat(s.Volume), s.Horsepower, fuelTypeID, transmissionID, driveTypeID,
		s.YearFrom, s.YearTo, s.PriceMin, s.PriceMax,
		formatFloat(s.FuelConsumption), formatFloat(s.Acceleration), s.MaxSpeed, s.MaintenanceCost,
	), nil
}

func lookup(d *dictionary.Dictionary, table, value string, specID int) (int, error) {
	id, ok := d.ID(value)
	if !ok {
		return 0, fmt.Errorf("specification %d references %q missing from %s", specID, value, table)
	}
	return id, nil
}

// writeTable writes a single multi-row INSERT. Empty tables get the comment
// only, since an INSERT without rows is not valid SQL.
func (w *dumpWriter) writeTable(comment, table, columns string, rows []string) {
	fmt.Fprintf(&w.body, "-- %s\n", comment)
	if len(rows) == 0 {
		w.body.WriteString("\n")
		return
	}
	w.writeInsert(table, columns, rows)
}

// writeBatches splits rows into INSERT statements of at most BatchSize rows
// and returns the number of statements written.
func (w *dumpWriter) writeBatches(table, columns string, rows []string) int {
	if len(rows) == 0 {
		w.body.WriteString("\n")
		return 0
	}

	batches := 0
	for start := 0; start < len(rows); start += w.options.BatchSize {
		end := min(start+w.options.BatchSize, len(rows))
		w.writeInsert(table, columns, rows[start:end])
		batches++
	}
	return batches
}

func (w *dumpWriter) writeInsert(table, columns string, rows []string) {
	fmt.Fprintf(&w.body, "INSERT INTO %q %s VALUES\n", table, columns)
	w.body.WriteString(strings.Join(rows, ",\n"))
	w.body.WriteString(";\n\n")
	w.statements++
}

func (w *dumpWriter) assetURL(kind, code string) string {
	base := strings.TrimRight(w.options.AssetBaseURL, "/")
	return fmt.Sprintf("%s/%s/%s.png", base, kind, strings.ToLower(code))
}

// =============================================================================
// LITERAL HELPERS
// =============================================================================

// quote renders s as a SQL string literal. Embedded single quotes are doubled;
// the input is trusted, so nothing else is escaped.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// formatFloat renders v the way the seed data has always been written: the
// shortest exact representation with at least one decimal ("2.0", "6.3").
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// setval resets a table's id sequence. A table without rows restarts at 1,
// because setval rejects 0.
func setval(table string, rows int) string {
	if rows == 0 {
		return fmt.Sprintf("SELECT setval('\"%s_id_seq\"', 1, false);\n", table)
	}
	return fmt.Sprintf("SELECT setval('\"%s_id_seq\"', %d, true);\n", table, rows)
}
