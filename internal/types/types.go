// =============================================================================
// Catalog Seeder - Shared Types
// =============================================================================
//
// This package contains the record types shared by every pipeline stage so
// that the walker, extractor, enrichment engine, dictionary builder and SQL
// emitter can exchange values without import cycles. Types defined here are
// used by:
//   - catalog
//   - extract
//   - enrich
//   - sqlwriter
//   - converter
//
// All records are plain values. They are created once during traversal and
// never updated afterwards.
//
// =============================================================================

package types

// =============================================================================
// DICTIONARY LABELS
// =============================================================================

// Fuel type labels as they appear in the FuelType table.
const (
	FuelGasoline = "Бензин"
	FuelDiesel   = "Дизель"
	FuelHybrid   = "Гибрид"
	FuelElectric = "Электро"
)

// Transmission labels as they appear in the Transmission table.
const (
	TransmissionAutomatic = "AT"
	TransmissionManual    = "MT"
)

// Drive type labels as they appear in the DriveType table.
const (
	DriveAllWheel   = "4WD"
	DriveFrontWheel = "FWD"
	DriveRearWheel  = "RWD"
)

// =============================================================================
// CATALOG RECORDS
// =============================================================================

// Brand is a vehicle manufacturer (a <mark> element of the catalog).
type Brand struct {
	// ID is the 1-based position of the brand in traversal order.
	ID int

	// Name is the display name taken from the name attribute.
	Name string

	// Code is the <code> child text, or the upper-cased name when absent.
	Code string

	// Country is the inferred country of origin.
	Country string

	// Popular marks brands listed as popular in the lookup tables.
	Popular bool
}

// Model is a vehicle model (a <folder> element of the catalog).
type Model struct {
	ID      int
	BrandID int

	Name string

	// Code is the <model> child text, or the model name when absent.
	Code string

	// GenerationID is the folder's id attribute as provided by the source.
	GenerationID string
}

// Engine holds the attributes extracted from a modification name.
type Engine struct {
	// Volume is the engine displacement in liters.
	Volume float64

	// Horsepower is the engine output in metric horsepower.
	Horsepower int

	FuelType     string
	Transmission string

	// DriveType is empty when the name carries no drive marker.
	DriveType string
}

// Figures are the synthetic commercial and performance values derived by the
// enrichment engine.
type Figures struct {
	PriceMin int64
	PriceMax int64

	// FuelConsumption is l/100 km, or kWh/100 km for electric vehicles.
	FuelConsumption float64

	// Acceleration is the 0-100 km/h time in seconds.
	Acceleration float64

	// MaxSpeed is in km/h.
	MaxSpeed int

	// MaintenanceCost is the yearly maintenance estimate.
	MaintenanceCost int64
}

// Specification is a single modification of a model with all derived fields.
type Specification struct {
	ID      int
	ModelID int
	BrandID int

	Name       string
	ExternalID string
	BodyType   string

	Engine

	YearFrom int
	YearTo   int

	Figures
}

// HasDriveType reports whether the specification references a drive type.
func (s Specification) HasDriveType() bool {
	return s.DriveType != ""
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the full set of records collected from one input document.
type Catalog struct {
	Brands         []Brand
	Models         []Model
	Specifications []Specification
}
