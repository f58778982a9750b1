// Package dictionary collects the distinct values of the lookup tables
// (countries, body types, fuel types, transmissions, drive types) while the
// catalog is traversed, and freezes them into ordered lists whose 1-based
// positions become the row identifiers in the generated dump.
package dictionary

import (
	"sort"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
)

// =============================================================================
// BUILDER
// =============================================================================

// Builder accumulates distinct dictionary values. The zero value is not
// usable; create one with NewBuilder.
type Builder struct {
	countries     map[string]struct{}
	bodyTypes     map[string]struct{}
	fuelTypes     map[string]struct{}
	transmissions map[string]struct{}
	driveTypes    map[string]struct{}
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		countries:     make(map[string]struct{}),
		bodyTypes:     make(map[string]struct{}),
		fuelTypes:     make(map[string]struct{}),
		transmissions: make(map[string]struct{}),
		driveTypes:    make(map[string]struct{}),
	}
}

// AddCountry records a country of origin.
func (b *Builder) AddCountry(name string) { b.countries[name] = struct{}{} }

// AddBodyType records a body type.
func (b *Builder) AddBodyType(name string) { b.bodyTypes[name] = struct{}{} }

// AddFuelType records a fuel type.
func (b *Builder) AddFuelType(name string) { b.fuelTypes[name] = struct{}{} }

// AddTransmission records a transmission.
func (b *Builder) AddTransmission(name string) { b.transmissions[name] = struct{}{} }

// AddDriveType records a drive type. An empty name means "no drive type" and
// is never stored.
func (b *Builder) AddDriveType(name string) {
	if name == "" {
		return
	}
	b.driveTypes[name] = struct{}{}
}

// =============================================================================
// FROZEN DICTIONARIES
// =============================================================================

// Dictionary is an ordered, immutable list of distinct values.
type Dictionary struct {
	values []string
	index  map[string]int
}

func freeze(set map[string]struct{}) *Dictionary {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)

	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i + 1
	}

	return &Dictionary{values: values, index: index}
}

// ID returns the 1-based identifier of value.
func (d *Dictionary) ID(value string) (int, bool) {
	id, ok := d.index[value]
	return id, ok
}

// Values returns the values in identifier order. Values()[i] has ID i+1.
func (d *Dictionary) Values() []string {
	return append([]string(nil), d.values...)
}

// Len returns the number of values.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// Country is a row of the Country table.
type Country struct {
	ID   int
	Name string
	Code string
}

// City is a row of the City table.
type City struct {
	ID        int
	Name      string
	CountryID int
}

// Dictionaries is the frozen state of a Builder.
type Dictionaries struct {
	Countries     *Dictionary
	BodyTypes     *Dictionary
	FuelTypes     *Dictionary
	Transmissions *Dictionary
	DriveTypes    *Dictionary

	// CountryRows carries the country codes alongside the frozen countries.
	CountryRows []Country

	// Cities are the sample cities whose country is present in Countries.
	Cities []City

	// SkippedCities are sample cities dropped because their country does not
	// occur in the catalog.
	SkippedCities []config.City
}

// Freeze sorts every collected set and assigns identifiers. codeOf supplies the
// code of each country; cities are resolved against the frozen country list.
// The Builder may keep growing afterwards without affecting the result.
func (b *Builder) Freeze(cities []config.City, codeOf func(country string) string) *Dictionaries {
	d := &Dictionaries{
		Countries:     freeze(b.countries),
		BodyTypes:     freeze(b.bodyTypes),
		FuelTypes:     freeze(b.fuelTypes),
		Transmissions: freeze(b.transmissions),
		DriveTypes:    freeze(b.driveTypes),
	}

	for i, name := range d.Countries.values {
		d.CountryRows = append(d.CountryRows, Country{ID: i + 1, Name: name, Code: codeOf(name)})
	}

	for _, c := range cities {
		countryID, ok := d.Countries.ID(c.Country)
		if !ok {
			d.SkippedCities = append(d.SkippedCities, c)
			continue
		}
		d.Cities = append(d.Cities, City{
			ID:        len(d.Cities) + 1,
			Name:      c.Name,
			CountryID: countryID,
		})
	}

	return d
}
