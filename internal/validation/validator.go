// =============================================================================
// Catalog Seeder - Validation Engine
// =============================================================================
//
// This module checks the configuration and the lookup tables before a run.
// The pipeline itself never rejects a catalog entry: unknown brands fall back
// to the default country, unknown markers to default values. The mistakes
// worth catching are therefore in the tables, where a typo silently moves a
// brand to "Другое" or a price segment to the default base.
//
// VALIDATION STRATEGY:
//   1. Configuration: settings the pipeline cannot run with
//   2. Countries: duplicate groups, duplicate brands, missing codes
//   3. Segments: brands listed in more than one price segment
//   4. Cities: cities whose country can never occur in a dump
//   5. Pricing: non-positive prices and maintenance factors below 1
//
// ERROR HANDLING:
//   - Issues are collected, not returned one by one
//   - "error" issues make the tables or config unusable
//   - "warning" issues describe data that will be used, but probably not as
//     intended
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Section names the part that was checked: "config", "countries",
	// "segments", "cities" or "pricing".
	Section string

	// Item is the offending key, brand, country or city.
	Item string

	// Rule is the identifier of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s '%s': %s (%s)",
		strings.ToUpper(e.Severity),
		e.Section,
		e.Item,
		e.Message,
		e.Rule,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all issues, warnings included, in check order.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func (r *ValidationResult) add(options ValidationOptions, e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if options.TreatWarningsAsErrors {
		r.IsValid = false
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes any warning invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator checks a configuration and its lookup tables.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate checks cfg and tables with default options.
func Validate(cfg *config.MainConfig, tables config.Tables) *ValidationResult {
	return NewValidator().ValidateAll(cfg, tables)
}

// ValidateAll checks cfg (when non-nil) and tables and returns every issue.
func (v *Validator) ValidateAll(cfg *config.MainConfig, tables config.Tables) *ValidationResult {
	result := &ValidationResult{IsValid: true}
	report := func(severity, section, item, rule, format string, args ...interface{}) {
		result.add(v.options, &ValidationError{
			Severity: severity,
			Section:  section,
			Item:     item,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if cfg != nil {
		validateConfig(cfg, report)
	}
	groups := validateCountries(tables, report)
	validateSegments(tables, report)
	validateCities(tables, groups, report)
	validatePricing(tables.Pricing, report)

	return result
}

type reporter func(severity, section, item, rule, format string, args ...interface{})

func validateConfig(cfg *config.MainConfig, report reporter) {
	if cfg.BatchSize <= 0 {
		report(SeverityError, "config", "batch_size", "positive",
			"must be positive, got %d", cfg.BatchSize)
	}
	if strings.TrimSpace(cfg.OutputFile) == "" {
		report(SeverityError, "config", "output_file", "required", "must be set")
	}
	if strings.TrimSpace(cfg.DefaultBodyType) == "" {
		report(SeverityError, "config", "default_body_type", "required", "must be set")
	}

	if _, err := os.Stat(cfg.InputFile); err != nil {
		report(SeverityWarning, "config", "input_file", "exists",
			"%s is not readable: %v", cfg.InputFile, err)
	}

	if cfg.InputEncoding != "" {
		if _, err := htmlindex.Get(cfg.InputEncoding); err != nil {
			report(SeverityError, "config", "input_encoding", "known_charset",
				"unknown charset %q", cfg.InputEncoding)
		}
	}

	if u, err := url.Parse(cfg.AssetBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		report(SeverityError, "config", "asset_base_url", "absolute_url",
			"%q is not an absolute URL", cfg.AssetBaseURL)
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if u, err := url.Parse(cfg.Metrics.PushgatewayURL); err != nil || u.Scheme == "" {
			report(SeverityError, "config", "metrics.pushgateway_url", "absolute_url",
				"%q is not an absolute URL", cfg.Metrics.PushgatewayURL)
		}
	}
}

// validateCountries returns the set of country names a dump can contain.
func validateCountries(tables config.Tables, report reporter) map[string]struct{} {
	countries := make(map[string]struct{}, len(tables.Countries)+1)
	owner := make(map[string]string)

	for _, g := range tables.Countries {
		if strings.TrimSpace(g.Name) == "" {
			report(SeverityError, "countries", "", "required", "country group without a name")
			continue
		}
		if _, dup := countries[g.Name]; dup {
			report(SeverityWarning, "countries", g.Name, "unique_country",
				"listed more than once; only the first code is used")
		}
		countries[g.Name] = struct{}{}

		if g.Code == "" {
			report(SeverityWarning, "countries", g.Name, "code_required",
				"has no code; %q will be used", tables.DefaultCountryCode)
		}
		if len(g.Brands) == 0 {
			report(SeverityWarning, "countries", g.Name, "brands_required", "lists no brands")
		}

		for _, b := range g.Brands {
			if first, seen := owner[b]; seen {
				report(SeverityWarning, "countries", b, "unique_brand",
					"listed under %s and %s; %s wins", first, g.Name, first)
				continue
			}
			owner[b] = g.Name
		}
	}

	if strings.TrimSpace(tables.DefaultCountry) == "" {
		report(SeverityError, "countries", "default_country", "required", "must be set")
	} else {
		countries[tables.DefaultCountry] = struct{}{}
	}
	if strings.TrimSpace(tables.DefaultCountryCode) == "" {
		report(SeverityWarning, "countries", "default_country_code", "required", "is empty")
	}

	return countries
}

func validateSegments(tables config.Tables, report reporter) {
	luxury := make(map[string]struct{}, len(tables.LuxuryBrands))
	for _, b := range tables.LuxuryBrands {
		luxury[b] = struct{}{}
	}
	for _, b := range tables.PremiumBrands {
		if _, ok := luxury[b]; ok {
			report(SeverityWarning, "segments", b, "single_segment",
				"listed as luxury and premium; luxury pricing is used")
		}
	}
}

func validateCities(tables config.Tables, countries map[string]struct{}, report reporter) {
	for _, c := range tables.Cities {
		if _, ok := countries[c.Country]; !ok {
			report(SeverityWarning, "cities", c.Name, "known_country",
				"country %q is not a country group and will always be skipped", c.Country)
		}
	}
}

func validatePricing(p config.Pricing, report reporter) {
	bases := []struct {
		key   string
		value int64
	}{
		{"default_base", p.DefaultBase},
		{"premium_base", p.PremiumBase},
		{"luxury_base", p.LuxuryBase},
	}
	for _, b := range bases {
		if b.value <= 0 {
			report(SeverityError, "pricing", b.key, "positive", "must be positive, got %d", b.value)
		}
	}

	factors := []struct {
		key   string
		value float64
	}{
		{"premium_maintenance_factor", p.PremiumMaintenanceFactor},
		{"luxury_maintenance_factor", p.LuxuryMaintenanceFactor},
	}
	for _, f := range factors {
		if f.value < 1 {
			report(SeverityWarning, "pricing", f.key, "at_least_one",
				"%.2f makes the segment cheaper to maintain than the default", f.value)
		}
	}
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatErrors(errors)); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush validation log: %w", err)
	}
	return file.Sync()
}
