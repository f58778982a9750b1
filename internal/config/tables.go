package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// LOOKUP TABLES
// =============================================================================

// Tables holds the static lookup data used to enrich catalog records.
// The enrichment engine receives Tables explicitly, so tests and alternate
// catalogs can substitute their own data.
type Tables struct {
	// Countries are checked in order; the first group listing a brand wins.
	Countries []CountryGroup `yaml:"countries"`

	// DefaultCountry is assigned to brands not listed in any group.
	DefaultCountry string `yaml:"default_country"`

	// DefaultCountryCode is the code of DefaultCountry and of any country
	// without an explicit code.
	DefaultCountryCode string `yaml:"default_country_code"`

	// LuxuryBrands get the luxury base price and maintenance surcharge.
	LuxuryBrands []string `yaml:"luxury_brands"`

	// PremiumBrands get the premium base price and maintenance surcharge.
	PremiumBrands []string `yaml:"premium_brands"`

	// PopularBrands are flagged with isPopular = true.
	PopularBrands []string `yaml:"popular_brands"`

	// Cities is the fixed sample written to the City table.
	Cities []City `yaml:"cities"`

	// Pricing holds the constants of the price and maintenance formulas.
	Pricing Pricing `yaml:"pricing"`
}

// CountryGroup maps a country to the brands manufactured there.
type CountryGroup struct {
	Name   string   `yaml:"name"`
	Code   string   `yaml:"code"`
	Brands []string `yaml:"brands"`
}

// City is a sample city and the name of its country.
type City struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

// Pricing holds the base prices and maintenance surcharge factors.
type Pricing struct {
	DefaultBase int64 `yaml:"default_base"`
	PremiumBase int64 `yaml:"premium_base"`
	LuxuryBase  int64 `yaml:"luxury_base"`

	PremiumMaintenanceFactor float64 `yaml:"premium_maintenance_factor"`
	LuxuryMaintenanceFactor  float64 `yaml:"luxury_maintenance_factor"`
}

// DefaultTables returns the built-in lookup tables. Every call returns a new
// value so callers may modify their copy freely.
func DefaultTables() Tables {
	return Tables{
		Countries: []CountryGroup{
			{Name: "Россия", Code: "RU", Brands: []string{"Lada", "ГАЗ", "УАЗ", "Москвич", "Marussia"}},
			{Name: "Германия", Code: "DE", Brands: []string{"Mercedes-Benz", "BMW", "Audi", "Volkswagen", "Porsche", "Opel"}},
			{Name: "Япония", Code: "JP", Brands: []string{"Toyota", "Honda", "Nissan", "Mazda", "Subaru", "Mitsubishi", "Lexus", "Suzuki", "Isuzu"}},
			{Name: "США", Code: "US", Brands: []string{"Ford", "Chevrolet", "Dodge", "Jeep", "Tesla", "Cadillac", "Chrysler"}},
			{Name: "Южная Корея", Code: "KR", Brands: []string{"Hyundai", "Kia", "Genesis", "Daewoo"}},
			{Name: "Китай", Code: "CN", Brands: []string{"Chery", "Geely", "BYD", "Great Wall", "Haval", "Changan"}},
			{Name: "Франция", Code: "FR", Brands: []string{"Renault", "Peugeot", "Citroën", "DS"}},
			{Name: "Италия", Code: "IT", Brands: []string{"Ferrari", "Lamborghini", "Maserati", "Alfa Romeo", "Fiat"}},
			{Name: "Великобритания", Code: "GB", Brands: []string{"Aston Martin", "Bentley", "Rolls-Royce", "Jaguar", "Land Rover", "McLaren"}},
			{Name: "Швеция", Code: "SE", Brands: []string{"Volvo", "Saab", "Koenigsegg", "Polestar"}},
		},
		DefaultCountry:     "Другое",
		DefaultCountryCode: "XX",
		LuxuryBrands: []string{
			"Ferrari", "Lamborghini", "Rolls-Royce", "Bentley", "Aston Martin",
			"Maserati", "Porsche", "McLaren", "Koenigsegg", "Bugatti",
		},
		PremiumBrands: []string{"Mercedes-Benz", "BMW", "Audi", "Lexus", "Cadillac", "Genesis", "Volvo"},
		PopularBrands: []string{
			"Toyota", "Honda", "Mercedes-Benz", "BMW", "Audi", "Volkswagen",
			"Ford", "Hyundai", "Kia", "Mazda", "Nissan", "Lexus",
			"Lada", "Renault", "Peugeot", "Citroën",
		},
		Cities: []City{
			{Name: "Москва", Country: "Россия"},
			{Name: "Санкт-Петербург", Country: "Россия"},
			{Name: "Екатеринбург", Country: "Россия"},
			{Name: "Новосибирск", Country: "Россия"},
			{Name: "Казань", Country: "Россия"},
			{Name: "Berlin", Country: "Германия"},
			{Name: "München", Country: "Германия"},
			{Name: "Tokyo", Country: "Япония"},
			{Name: "Osaka", Country: "Япония"},
			{Name: "New York", Country: "США"},
			{Name: "Los Angeles", Country: "США"},
			{Name: "Seoul", Country: "Южная Корея"},
			{Name: "Beijing", Country: "Китай"},
			{Name: "Shanghai", Country: "Китай"},
			{Name: "Paris", Country: "Франция"},
			{Name: "Milan", Country: "Италия"},
			{Name: "London", Country: "Великобритания"},
			{Name: "Stockholm", Country: "Швеция"},
		},
		Pricing: Pricing{
			DefaultBase:              1500000,
			PremiumBase:              4000000,
			LuxuryBase:               15000000,
			PremiumMaintenanceFactor: 1.8,
			LuxuryMaintenanceFactor:  3,
		},
	}
}

// LoadTables reads lookup tables from a YAML file. Sections missing from the
// file keep their built-in values.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read tables file: %w", err)
	}

	tables := DefaultTables()
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("failed to parse tables file: %w", err)
	}

	return tables, nil
}
