// =============================================================================
// Catalog Seeder - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for one catalog document, from XML parsing to the SQL dump.
//
// CONVERSION PIPELINE:
//   1. Decode the XML document (charset-aware)
//   2. Walk brands, models and modifications
//   3. Extract engine attributes and enrich every modification
//   4. Freeze the dictionaries and resolve the sample cities
//   5. Render the SQL dump in memory
//   6. Write the dump (atomically) and archive a copy
//
// Nothing touches the output path until the dump is fully rendered, so a
// failing run leaves the previous dump in place.
//
// =============================================================================

package converter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/buccaneer33/spectr-cars-claude/internal/catalog"
	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/dictionary"
	"github.com/buccaneer33/spectr-cars-claude/internal/enrich"
	"github.com/buccaneer33/spectr-cars-claude/internal/extract"
	"github.com/buccaneer33/spectr-cars-claude/internal/metrics"
	"github.com/buccaneer33/spectr-cars-claude/internal/sqlwriter"
	"github.com/buccaneer33/spectr-cars-claude/pkg/utils"
)

// Pipeline step names, used for metrics labels.
const (
	StepDecode  = "decode"
	StepWalk    = "walk"
	StepCollect = "collect"
	StepFreeze  = "freeze"
	StepEmit    = "emit"
	StepWrite   = "write"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a Run.
type Result struct {
	// InputFile is the catalog document that was processed.
	InputFile string

	// OutputFile is the path of the written dump. Empty on failure or in
	// dry-run mode.
	OutputFile string

	// ArchivePath is the path of the archived copy, if archival is enabled.
	ArchivePath string

	// Success indicates whether the run was successful.
	Success bool

	// DryRun is set when the dump was rendered but not written.
	DryRun bool

	// Error contains the error if the run failed.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about a conversion.
type Stats struct {
	Brands         int
	Models         int
	Specifications int

	Countries     int
	Cities        int
	SkippedCities int
	BodyTypes     int
	FuelTypes     int
	Transmissions int
	DriveTypes    int

	// Statements is the number of INSERT statements in the dump.
	Statements int

	// Checksum is the xxh3 hash of the dump body, as written in its header.
	Checksum uint64

	// Bytes is the size of the rendered dump.
	Bytes int

	// ProcessingTime is the time taken by the conversion.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter turns a catalog document into a SQL dump.
type Converter struct {
	config *config.MainConfig
	tables config.Tables
	logger Logger
	files  *utils.FileManager

	// now supplies the run time: the current year for open-ended year ranges
	// and the Generated header line.
	now func() time.Time
}

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The main application configuration.
//   - tables: The lookup tables used for enrichment and the City table.
//   - logger: Receives progress messages. A nil logger discards them.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.MainConfig, tables config.Tables, logger Logger) *Converter {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Converter{
		config: cfg,
		tables: tables,
		logger: logger,
		files:  utils.NewFileManager(cfg.OutputArchiveDir, cfg.ArchiveNameFormat),
		now:    time.Now,
	}
}

// WithClock replaces the time source. It is used to produce reproducible
// dumps.
func (c *Converter) WithClock(now func() time.Time) *Converter {
	c.now = now
	c.files.WithClock(now)
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the pipeline for the configured input file and writes the dump
// to the configured output file. With dryRun set, the dump is rendered but
// nothing is written.
//
// RETURNS:
//   - A Result struct containing the outcome of the run.
func (c *Converter) Run(dryRun bool) Result {
	result := Result{
		InputFile: c.config.InputFile,
		DryRun:    dryRun,
	}

	c.logger.Info("Parsing XML file: %s", c.config.InputFile)

	f, err := os.Open(c.config.InputFile)
	if err != nil {
		result.Error = fmt.Errorf("failed to open input: %w", err)
		return result
	}
	defer f.Close()

	dump, stats, err := c.Convert(f)
	result.Stats = stats
	if err != nil {
		result.Error = err
		return result
	}

	if dryRun {
		c.logger.Info("Dry run: %d bytes rendered, nothing written", stats.Bytes)
		result.Success = true
		return result
	}

	started := time.Now()
	err = utils.WriteFileAtomic(c.config.OutputFile, dump)
	metrics.RecordStep(c.job(), StepWrite, err, time.Since(started))
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	result.OutputFile = c.config.OutputFile
	c.logger.Info("SQL dump created: %s", c.config.OutputFile)

	// An archive failure does not invalidate the dump that was just written.
	if archivePath, err := c.files.ArchiveOutputFile(c.config.OutputFile); err != nil {
		c.logger.Warn("Failed to archive dump: %v", err)
	} else if archivePath != "" {
		result.ArchivePath = archivePath
		c.logger.Debug("Archived dump to: %s", archivePath)
	}

	result.Success = true
	return result
}

// Convert runs the pipeline over the document read from r and returns the
// rendered dump.
//
// RETURNS:
//   - The complete dump.
//   - Statistics about the catalog and the dump. Counts are filled in as far
//     as the pipeline got, even on error.
//   - An error if the document cannot be decoded or walked, or the dump
//     cannot be rendered.
func (c *Converter) Convert(r io.Reader) ([]byte, Stats, error) {
	startTime := time.Now()
	now := c.now()
	var stats Stats

	// =========================================================================
	// STEP 1: DECODE
	// =========================================================================

	var root *catalog.Node
	err := c.step(StepDecode, func() (err error) {
		root, err = catalog.Decode(r, c.config.InputEncoding)
		return err
	})
	if err != nil {
		return nil, stats, err
	}

	// =========================================================================
	// STEP 2: WALK
	// =========================================================================

	var brands []catalog.BrandNode
	err = c.step(StepWalk, func() (err error) {
		brands, err = catalog.Walk(root, catalog.WalkOptions{DefaultBodyType: c.config.DefaultBodyType})
		if err != nil {
			return fmt.Errorf("failed to read catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	c.logger.Debug("Found %d brands", len(brands))

	// =========================================================================
	// STEP 3: EXTRACT AND ENRICH
	// =========================================================================

	enricher := enrich.New(c.tables)
	years := extract.NewYearParser(now.Year())

	var collection *catalog.Collection
	c.timed(StepCollect, func() {
		collection = catalog.Collect(brands, years, enricher)
	})

	cat := &collection.Catalog
	stats.Brands = len(cat.Brands)
	stats.Models = len(cat.Models)
	stats.Specifications = len(cat.Specifications)

	for _, b := range cat.Brands {
		c.logger.Debug("Processing brand: %s (%s, %s)", b.Name, b.Code, b.Country)
	}

	// =========================================================================
	// STEP 4: FREEZE DICTIONARIES
	// =========================================================================

	var dicts *dictionary.Dictionaries
	c.timed(StepFreeze, func() {
		dicts = collection.Dictionary.Freeze(c.tables.Cities, enricher.CountryCode)
	})

	for _, city := range dicts.SkippedCities {
		c.logger.Warn("Skipping city %s: country %s does not occur in the catalog", city.Name, city.Country)
	}

	stats.Countries = len(dicts.CountryRows)
	stats.Cities = len(dicts.Cities)
	stats.SkippedCities = len(dicts.SkippedCities)
	stats.BodyTypes = dicts.BodyTypes.Len()
	stats.FuelTypes = dicts.FuelTypes.Len()
	stats.Transmissions = dicts.Transmissions.Len()
	stats.DriveTypes = dicts.DriveTypes.Len()

	// =========================================================================
	// STEP 5: EMIT SQL
	// =========================================================================

	var (
		dump    []byte
		summary sqlwriter.Summary
	)
	err = c.step(StepEmit, func() (err error) {
		dump, summary, err = sqlwriter.GenerateWithOptions(cat, dicts, sqlwriter.GenerateOptions{
			BatchSize:    c.config.BatchSize,
			GeneratedAt:  now,
			AssetBaseURL: c.config.AssetBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to generate SQL: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Statements = summary.Statements
	stats.Checksum = summary.Checksum
	stats.Bytes = len(dump)
	stats.ProcessingTime = time.Since(startTime)

	for _, table := range sqlwriter.Tables {
		metrics.RecordRows(c.job(), table, summary.Rows[table])
	}
	metrics.RecordStatements(c.job(), summary.Statements)

	c.logger.Debug("Rendered %d statements, checksum %016x", summary.Statements, summary.Checksum)

	return dump, stats, nil
}

// ConvertTo is Convert followed by a single write of the dump to w.
func (c *Converter) ConvertTo(r io.Reader, w io.Writer) (Stats, error) {
	dump, stats, err := c.Convert(r)
	if err != nil {
		return stats, err
	}
	if _, err := io.Copy(w, bytes.NewReader(dump)); err != nil {
		return stats, fmt.Errorf("failed to write output: %w", err)
	}
	return stats, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// step runs fn and records its duration and outcome.
func (c *Converter) step(name string, fn func() error) error {
	started := time.Now()
	err := fn()
	metrics.RecordStep(c.job(), name, err, time.Since(started))
	return err
}

// timed runs a step that cannot fail and records its duration.
func (c *Converter) timed(name string, fn func()) {
	started := time.Now()
	fn()
	metrics.RecordStep(c.job(), name, nil, time.Since(started))
}

func (c *Converter) job() string {
	return c.config.Metrics.Job
}

// LogSummary writes the end-of-run summary through the converter's logger.
func (c *Converter) LogSummary(stats Stats) {
	c.logger.Info("Brands: %d", stats.Brands)
	c.logger.Info("Models: %d", stats.Models)
	c.logger.Info("Modifications: %d", stats.Specifications)
	c.logger.Info("Body types: %d", stats.BodyTypes)
	c.logger.Info("Fuel types: %d", stats.FuelTypes)
	c.logger.Info("Transmissions: %d", stats.Transmissions)
	c.logger.Info("Drive types: %d", stats.DriveTypes)
	c.logger.Info("Checksum: %016x", stats.Checksum)
}

// =============================================================================
// DEFAULT LOGGER
// =============================================================================

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
