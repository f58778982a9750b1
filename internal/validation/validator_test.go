package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
)

// validConfig returns the default configuration pointing at an existing input.
func validConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	input := filepath.Join(t.TempDir(), "cars.xml")
	require.NoError(t, os.WriteFile(input, []byte("<catalog/>"), 0644))

	cfg := config.Default()
	cfg.InputFile = input
	return cfg
}

func rules(result *ValidationResult) []string {
	var out []string
	for _, e := range result.Errors {
		out = append(out, e.Section+"/"+e.Rule)
	}
	return out
}

func TestDefaultsAreValid(t *testing.T) {
	result := Validate(validConfig(t), config.DefaultTables())

	assert.True(t, result.IsValid)
	assert.Zero(t, result.ErrorCount, FormatErrors(result.Errors))
	assert.Zero(t, result.WarningCount, FormatErrors(result.Errors))
}

func TestValidateTables(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*config.Tables)
		wantRule  string
		wantValid bool
	}{
		{
			name: "brand in two countries",
			modify: func(tb *config.Tables) {
				tb.Countries[1].Brands = append(tb.Countries[1].Brands, "Toyota")
			},
			wantRule:  "countries/unique_brand",
			wantValid: true,
		},
		{
			name:      "missing country code",
			modify:    func(tb *config.Tables) { tb.Countries[0].Code = "" },
			wantRule:  "countries/code_required",
			wantValid: true,
		},
		{
			name:      "empty default country",
			modify:    func(tb *config.Tables) { tb.DefaultCountry = "" },
			wantRule:  "countries/required",
			wantValid: false,
		},
		{
			name: "city in unknown country",
			modify: func(tb *config.Tables) {
				tb.Cities = append(tb.Cities, config.City{Name: "Lisbon", Country: "Португалия"})
			},
			wantRule:  "cities/known_country",
			wantValid: true,
		},
		{
			name:      "luxury and premium",
			modify:    func(tb *config.Tables) { tb.PremiumBrands = append(tb.PremiumBrands, "Ferrari") },
			wantRule:  "segments/single_segment",
			wantValid: true,
		},
		{
			name:      "zero price",
			modify:    func(tb *config.Tables) { tb.Pricing.PremiumBase = 0 },
			wantRule:  "pricing/positive",
			wantValid: false,
		},
		{
			name:      "factor below one",
			modify:    func(tb *config.Tables) { tb.Pricing.LuxuryMaintenanceFactor = 0.5 },
			wantRule:  "pricing/at_least_one",
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := config.DefaultTables()
			tt.modify(&tables)

			result := NewValidator().ValidateAll(nil, tables)
			assert.Contains(t, rules(result), tt.wantRule)
			assert.Equal(t, tt.wantValid, result.IsValid)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*config.MainConfig)
		wantRule string
	}{
		{name: "batch size", modify: func(c *config.MainConfig) { c.BatchSize = 0 }, wantRule: "config/positive"},
		{name: "unknown charset", modify: func(c *config.MainConfig) { c.InputEncoding = "klingon" }, wantRule: "config/known_charset"},
		{name: "relative asset URL", modify: func(c *config.MainConfig) { c.AssetBaseURL = "/static" }, wantRule: "config/absolute_url"},
		{name: "missing input", modify: func(c *config.MainConfig) { c.InputFile = "/nonexistent/cars.xml" }, wantRule: "config/exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)

			result := Validate(cfg, config.DefaultTables())
			assert.Contains(t, rules(result), tt.wantRule)
		})
	}
}

func TestKnownCharsetIsAccepted(t *testing.T) {
	cfg := validConfig(t)
	cfg.InputEncoding = "windows-1251"

	result := Validate(cfg, config.DefaultTables())
	assert.NotContains(t, rules(result), "config/known_charset")
}

func TestTreatWarningsAsErrors(t *testing.T) {
	tables := config.DefaultTables()
	tables.Countries[0].Code = ""

	result := NewValidatorWithOptions(ValidationOptions{TreatWarningsAsErrors: true}).ValidateAll(nil, tables)
	assert.False(t, result.IsValid)
	assert.Zero(t, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)
}

func TestWriteErrorLog(t *testing.T) {
	tables := config.DefaultTables()
	tables.Pricing.DefaultBase = -1
	result := NewValidator().ValidateAll(nil, tables)

	path := filepath.Join(t.TempDir(), "validation.log")
	require.NoError(t, WriteErrorLog(result.Errors, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] pricing 'default_base'")
}
