// =============================================================================
// Catalog Seeder - XLSX Lookup Table Parser
// =============================================================================
//
// This module reads the enrichment lookup tables from an XLSX workbook, so the
// people maintaining brand countries and price segments can do it in a
// spreadsheet instead of YAML.
//
// WORKBOOK STRUCTURE (one sheet per section, first row is a header):
//
//   Sheet "Countries"                     Sheet "Segments"
//   | Country  | Code | Brands        |   | Brand   | Segment |
//   |----------|------|---------------|   |---------|---------|
//   | Япония   | JP   | Toyota, Honda |   | Ferrari | luxury  |
//   | Германия | DE   | BMW, Audi     |   | BMW     | premium |
//                                         | BMW     | popular |
//
//   Sheet "Cities"                        Sheet "Settings"
//   | City   | Country |                  | Key                  | Value   |
//   |--------|---------|                  |----------------------|---------|
//   | Москва | Россия  |                  | default_country      | Другое  |
//   | Tokyo  | Япония  |                  | default_base         | 1500000 |
//
// A sheet that is present replaces the whole section it describes; a missing
// sheet keeps the built-in values. Row order is significant in "Countries":
// the first group listing a brand wins.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
)

// Sheet names.
const (
	SheetCountries = "Countries"
	SheetSegments  = "Segments"
	SheetCities    = "Cities"
	SheetSettings  = "Settings"
)

// Segment names used in the Segments sheet.
const (
	SegmentLuxury  = "luxury"
	SegmentPremium = "premium"
	SegmentPopular = "popular"
)

// Keys of the Settings sheet.
const (
	KeyDefaultCountry           = "default_country"
	KeyDefaultCountryCode       = "default_country_code"
	KeyDefaultBase              = "default_base"
	KeyPremiumBase              = "premium_base"
	KeyLuxuryBase               = "luxury_base"
	KeyPremiumMaintenanceFactor = "premium_maintenance_factor"
	KeyLuxuryMaintenanceFactor  = "luxury_maintenance_factor"
)

// DataStartRow is the first data row (0-based); row 0 holds the headers.
const DataStartRow = 1

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads lookup tables from an XLSX workbook.
//
// PARAMETERS:
//   - path: The path to the workbook.
//
// RETURNS:
//   - The lookup tables: built-in defaults overridden by every sheet present.
//   - An error if the file cannot be read or a cell cannot be parsed.
func Parse(path string) (config.Tables, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return config.Tables{}, fmt.Errorf("failed to open tables workbook: %w", err)
	}
	defer f.Close()

	tables := config.DefaultTables()

	parsers := []struct {
		sheet string
		parse func(rows [][]string, tables *config.Tables) error
	}{
		{SheetCountries, parseCountries},
		{SheetSegments, parseSegments},
		{SheetCities, parseCities},
		{SheetSettings, parseSettings},
	}

	for _, p := range parsers {
		rows, ok, err := sheetRows(f, p.sheet)
		if err != nil {
			return config.Tables{}, err
		}
		if !ok {
			continue
		}
		if err := p.parse(rows, &tables); err != nil {
			return config.Tables{}, fmt.Errorf("sheet %q: %w", p.sheet, err)
		}
	}

	return tables, nil
}

// sheetRows returns the data rows of a sheet. ok is false when the workbook
// has no such sheet.
func sheetRows(f *excelize.File, sheet string) (rows [][]string, ok bool, err error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		return nil, false, nil
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rows of %q: %w", sheet, err)
	}

	for i := DataStartRow; i < len(all); i++ {
		if isRowEmpty(all[i]) {
			continue
		}
		rows = append(rows, all[i])
	}
	return rows, true, nil
}

func parseCountries(rows [][]string, tables *config.Tables) error {
	tables.Countries = nil
	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			return errors.New("country name is empty")
		}
		tables.Countries = append(tables.Countries, config.CountryGroup{
			Name:   name,
			Code:   cell(row, 1),
			Brands: splitList(cell(row, 2)),
		})
	}
	return nil
}

func parseSegments(rows [][]string, tables *config.Tables) error {
	tables.LuxuryBrands = nil
	tables.PremiumBrands = nil
	tables.PopularBrands = nil

	for i, row := range rows {
		brand := cell(row, 0)
		if brand == "" {
			continue
		}
		switch strings.ToLower(cell(row, 1)) {
		case SegmentLuxury:
			tables.LuxuryBrands = append(tables.LuxuryBrands, brand)
		case SegmentPremium:
			tables.PremiumBrands = append(tables.PremiumBrands, brand)
		case SegmentPopular:
			tables.PopularBrands = append(tables.PopularBrands, brand)
		default:
			return fmt.Errorf("row %d: unknown segment %q for %s", i+DataStartRow+1, cell(row, 1), brand)
		}
	}
	return nil
}

func parseCities(rows [][]string, tables *config.Tables) error {
	tables.Cities = nil
	for i, row := range rows {
		name, country := cell(row, 0), cell(row, 1)
		if name == "" || country == "" {
			return fmt.Errorf("row %d: city and country are required", i+DataStartRow+1)
		}
		tables.Cities = append(tables.Cities, config.City{Name: name, Country: country})
	}
	return nil
}

func parseSettings(rows [][]string, tables *config.Tables) error {
	for _, row := range rows {
		key, value := strings.ToLower(cell(row, 0)), cell(row, 1)

		var err error
		switch key {
		case KeyDefaultCountry:
			tables.DefaultCountry = value
		case KeyDefaultCountryCode:
			tables.DefaultCountryCode = value
		case KeyDefaultBase:
			tables.Pricing.DefaultBase, err = parseInt(value)
		case KeyPremiumBase:
			tables.Pricing.PremiumBase, err = parseInt(value)
		case KeyLuxuryBase:
			tables.Pricing.LuxuryBase, err = parseInt(value)
		case KeyPremiumMaintenanceFactor:
			tables.Pricing.PremiumMaintenanceFactor, err = strconv.ParseFloat(value, 64)
		case KeyLuxuryMaintenanceFactor:
			tables.Pricing.LuxuryMaintenanceFactor, err = strconv.ParseFloat(value, 64)
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes tables to a new workbook in the layout Parse reads. It is the
// starting point for maintaining the tables in a spreadsheet.
func Export(tables config.Tables, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	var countries [][]interface{}
	for _, g := range tables.Countries {
		countries = append(countries, []interface{}{g.Name, g.Code, strings.Join(g.Brands, ", ")})
	}

	var segments [][]interface{}
	for _, b := range tables.LuxuryBrands {
		segments = append(segments, []interface{}{b, SegmentLuxury})
	}
	for _, b := range tables.PremiumBrands {
		segments = append(segments, []interface{}{b, SegmentPremium})
	}
	for _, b := range tables.PopularBrands {
		segments = append(segments, []interface{}{b, SegmentPopular})
	}

	var cities [][]interface{}
	for _, c := range tables.Cities {
		cities = append(cities, []interface{}{c.Name, c.Country})
	}

	p := tables.Pricing
	settings := [][]interface{}{
		{KeyDefaultCountry, tables.DefaultCountry},
		{KeyDefaultCountryCode, tables.DefaultCountryCode},
		{KeyDefaultBase, strconv.FormatInt(p.DefaultBase, 10)},
		{KeyPremiumBase, strconv.FormatInt(p.PremiumBase, 10)},
		{KeyLuxuryBase, strconv.FormatInt(p.LuxuryBase, 10)},
		{KeyPremiumMaintenanceFactor, strconv.FormatFloat(p.PremiumMaintenanceFactor, 'f', -1, 64)},
		{KeyLuxuryMaintenanceFactor, strconv.FormatFloat(p.LuxuryMaintenanceFactor, 'f', -1, 64)},
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{SheetCountries, []interface{}{"Country", "Code", "Brands"}, countries},
		{SheetSegments, []interface{}{"Brand", "Segment"}, segments},
		{SheetCities, []interface{}{"City", "Country"}, cities},
		{SheetSettings, []interface{}{"Key", "Value"}, settings},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", s.name, err)
		}

		for r, row := range append([][]interface{}{s.header}, s.rows...) {
			ref, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, ref, &row); err != nil {
				return fmt.Errorf("failed to write sheet %q: %w", s.name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save tables workbook: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cell returns the trimmed value at index, or "" for short rows.
func cell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// splitList splits a comma separated cell, dropping empty items.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt(value string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(value, " ", ""), 10, 64)
}
