package sqlwriter

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/dictionary"
	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

var generatedAt = time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

func testOptions() GenerateOptions {
	return GenerateOptions{
		BatchSize:    1000,
		GeneratedAt:  generatedAt,
		AssetBaseURL: "https://cdn.example.com/",
	}
}

func camrySpecification() types.Specification {
	return types.Specification{
		ID:         1,
		ModelID:    1,
		BrandID:    1,
		Name:       "2.5 AT (181 л.с.) FWD",
		ExternalID: "M1",
		BodyType:   "Седан",
		Engine: types.Engine{
			Volume:       2.5,
			Horsepower:   181,
			FuelType:     types.FuelGasoline,
			Transmission: types.TransmissionAutomatic,
			DriveType:    types.DriveFrontWheel,
		},
		YearFrom: 2018,
		YearTo:   2023,
		Figures: types.Figures{
			PriceMin:        2405000,
			PriceMax:        3607500,
			FuelConsumption: 12,
			Acceleration:    6.3,
			MaxSpeed:        240,
			MaintenanceCost: 173700,
		},
	}
}

// fixture builds a catalog and frozen dictionaries the way the collect stage
// does.
func fixture(specs ...types.Specification) (*types.Catalog, *dictionary.Dictionaries) {
	cat := &types.Catalog{
		Brands: []types.Brand{{ID: 1, Name: "Toyota", Code: "TOYOTA", Country: "Япония", Popular: true}},
		Models: []types.Model{{ID: 1, BrandID: 1, Name: "Camry", Code: "CAMRY", GenerationID: "G1"}},
	}
	cat.Specifications = specs

	b := dictionary.NewBuilder()
	b.AddCountry("Япония")
	for _, s := range specs {
		b.AddBodyType(s.BodyType)
		b.AddFuelType(s.FuelType)
		b.AddTransmission(s.Transmission)
		b.AddDriveType(s.DriveType)
	}

	cities := []config.City{{Name: "Tokyo", Country: "Япония"}, {Name: "Berlin", Country: "Германия"}}
	dicts := b.Freeze(cities, func(string) string { return "JP" })
	return cat, dicts
}

func TestGenerateRoundTrip(t *testing.T) {
	cat, dicts := fixture(camrySpecification())

	out, summary, err := GenerateWithOptions(cat, dicts, testOptions())
	require.NoError(t, err)
	dump := string(out)

	assert.True(t, strings.HasPrefix(dump, "-- Cars Database Dump\n-- Generated: 2024-01-15 14:30:22\n"))
	assert.Contains(t, dump, "-- Brands: 1\n-- Models: 1\n-- Modifications: 1\n")
	assert.Contains(t, dump, fmt.Sprintf("-- Checksum: %016x\n", summary.Checksum))
	assert.Contains(t, dump, "SET client_encoding = 'UTF8';\nSET standard_conforming_strings = on;\n\nBEGIN;\n\n")

	assert.Contains(t, dump, `INSERT INTO "Country" (id, name, code, "createdAt", "updatedAt") VALUES`+"\n(1, 'Япония', 'JP', NOW(), NOW());\n")
	assert.Contains(t, dump, "(1, 'Tokyo', 1, NOW(), NOW());\n")
	assert.NotContains(t, dump, "Berlin")
	assert.Contains(t, dump, `INSERT INTO "FuelType" (id, name, "createdAt", "updatedAt") VALUES`+"\n(1, 'Бензин', NOW(), NOW());\n")
	assert.Contains(t, dump, "(1, 'Toyota', 'TOYOTA', 'Япония', 'https://cdn.example.com/brands/toyota.png', true, NOW(), NOW());\n")
	assert.Contains(t, dump, "(1, 'Camry', 'CAMRY', 1, 'G1', 'https://cdn.example.com/models/camry.png', NOW(), NOW());\n")
	assert.Contains(t, dump, "(1, 1, 1, '2.5 AT (181 л.с.) FWD', 'M1', 1, 2.5, 181, 1, 1, 1, 2018, 2023, 2405000, 3607500, 12.0, 6.3, 240, 173700, NOW(), NOW());\n")

	assert.Contains(t, dump, "-- Update sequences\n")
	assert.Contains(t, dump, `SELECT setval('"Specification_id_seq"', 1, true);`)
	assert.True(t, strings.HasSuffix(dump, "\nCOMMIT;\n"))

	assert.Equal(t, 1, summary.Rows[TableSpecification])
	assert.Equal(t, 1, summary.Rows[TableCity])
	assert.Equal(t, 9, summary.Statements)
}

func TestGenerateTableOrder(t *testing.T) {
	cat, dicts := fixture(camrySpecification())

	out, _, err := GenerateWithOptions(cat, dicts, testOptions())
	require.NoError(t, err)
	dump := string(out)

	last := -1
	for _, table := range Tables {
		idx := strings.Index(dump, fmt.Sprintf("INSERT INTO %q", table))
		require.GreaterOrEqual(t, idx, 0, "missing INSERT for %s", table)
		assert.Greater(t, idx, last, "%s is out of order", table)
		last = idx
	}
	assert.Greater(t, strings.Index(dump, "-- Update sequences"), last)
}

func TestGenerateNullDriveType(t *testing.T) {
	spec := camrySpecification()
	spec.Name = "2.5 AT (181 л.с.)"
	spec.DriveType = ""
	cat, dicts := fixture(spec)

	out, summary, err := GenerateWithOptions(cat, dicts, testOptions())
	require.NoError(t, err)
	dump := string(out)

	assert.Contains(t, dump, ", 1, 1, NULL, 2018, 2023,")
	assert.Contains(t, dump, "-- Drive Types\n\n")
	assert.NotContains(t, dump, `INSERT INTO "DriveType"`)
	assert.Contains(t, dump, `SELECT setval('"DriveType_id_seq"', 1, false);`)
	assert.Equal(t, 0, summary.Rows[TableDriveType])
}

func TestGenerateEscapesQuotes(t *testing.T) {
	spec := camrySpecification()
	spec.Name = "2.5 AT (181 л.с.) FWD O'Neil"
	cat, dicts := fixture(spec)
	cat.Models[0].Name = "Camry 'Black'"

	out, _, err := GenerateWithOptions(cat, dicts, testOptions())
	require.NoError(t, err)
	dump := string(out)

	assert.Contains(t, dump, "'2.5 AT (181 л.с.) FWD O''Neil'")
	assert.Contains(t, dump, "'Camry ''Black'''")
}

func TestGenerateBatching(t *testing.T) {
	tests := []struct {
		name        string
		specs       int
		wantBatches int
	}{
		{name: "exactly one batch", specs: 1000, wantBatches: 1},
		{name: "one row over", specs: 1001, wantBatches: 2},
		{name: "empty", specs: 0, wantBatches: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			specs := make([]types.Specification, tt.specs)
			for i := range specs {
				specs[i] = camrySpecification()
				specs[i].ID = i + 1
			}
			cat, dicts := fixture(specs...)

			out, summary, err := GenerateWithOptions(cat, dicts, testOptions())
			require.NoError(t, err)

			assert.Equal(t, tt.wantBatches, summary.SpecificationBatches)
			assert.Equal(t, tt.wantBatches, strings.Count(string(out), `INSERT INTO "Specification"`))
			if tt.specs > 0 {
				assert.Contains(t, string(out), fmt.Sprintf(`SELECT setval('"Specification_id_seq"', %d, true);`, tt.specs))
			}
		})
	}
}

func TestGenerateChecksumIgnoresHeaderTime(t *testing.T) {
	cat, dicts := fixture(camrySpecification())

	first, s1, err := GenerateWithOptions(cat, dicts, testOptions())
	require.NoError(t, err)

	opts := testOptions()
	opts.GeneratedAt = generatedAt.Add(48 * time.Hour)
	second, s2, err := GenerateWithOptions(cat, dicts, opts)
	require.NoError(t, err)

	assert.Equal(t, s1.Checksum, s2.Checksum)
	assert.Equal(t, withoutGeneratedLine(string(first)), withoutGeneratedLine(string(second)))
	assert.NotEqual(t, string(first), string(second))
}

func withoutGeneratedLine(dump string) string {
	lines := strings.Split(dump, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, "-- Generated:") {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func TestGenerateRejectsUnknownDictionaryValue(t *testing.T) {
	cat, dicts := fixture(camrySpecification())
	cat.Specifications[0].FuelType = types.FuelDiesel

	_, _, err := GenerateWithOptions(cat, dicts, testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FuelType")
}

func TestGenerateRejectsBadBatchSize(t *testing.T) {
	cat, dicts := fixture(camrySpecification())
	opts := testOptions()
	opts.BatchSize = 0

	_, _, err := GenerateWithOptions(cat, dicts, opts)
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "2.0"},
		{2.5, "2.5"},
		{12, "12.0"},
		{6.3, "6.3"},
		{0.1, "0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFloat(tt.in))
		})
	}
}
