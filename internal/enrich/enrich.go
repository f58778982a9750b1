// Package enrich derives the attributes a catalog export does not carry:
// country of origin, popularity, and synthetic commercial and performance
// figures. Every value is a pure function of the brand name and the
// extracted engine attributes, computed against the lookup tables the engine
// was built with.
package enrich

import (
	"math"
	"strconv"

	"github.com/buccaneer33/spectr-cars-claude/internal/config"
	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

// powerThreshold separates the sports-car branch of the acceleration and
// top speed formulas.
const powerThreshold = 500

type segment int

const (
	segmentDefault segment = iota
	segmentPremium
	segmentLuxury
)

// Engine evaluates the enrichment formulas against a fixed set of tables.
type Engine struct {
	pricing config.Pricing

	defaultCountry     string
	defaultCountryCode string

	// countries preserves group order; the first group listing a brand wins.
	countries []config.CountryGroup
	codes     map[string]string

	luxury  map[string]struct{}
	premium map[string]struct{}
	popular map[string]struct{}
}

// New builds an Engine from tables. The engine keeps its own copies of the
// brand lists, so later changes to tables do not affect it.
func New(tables config.Tables) *Engine {
	e := &Engine{
		pricing:            tables.Pricing,
		defaultCountry:     tables.DefaultCountry,
		defaultCountryCode: tables.DefaultCountryCode,
		countries:          make([]config.CountryGroup, len(tables.Countries)),
		codes:              make(map[string]string, len(tables.Countries)),
		luxury:             toSet(tables.LuxuryBrands),
		premium:            toSet(tables.PremiumBrands),
		popular:            toSet(tables.PopularBrands),
	}

	for i, group := range tables.Countries {
		e.countries[i] = config.CountryGroup{
			Name:   group.Name,
			Code:   group.Code,
			Brands: append([]string(nil), group.Brands...),
		}
		if _, seen := e.codes[group.Name]; !seen && group.Code != "" {
			e.codes[group.Name] = group.Code
		}
	}

	return e
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Country returns the country of origin of a brand. Matching is exact and
// case-sensitive.
func (e *Engine) Country(brand string) string {
	for _, group := range e.countries {
		for _, b := range group.Brands {
			if b == brand {
				return group.Name
			}
		}
	}
	return e.defaultCountry
}

// CountryCode returns the code of a country, or the default code when the
// tables do not define one.
func (e *Engine) CountryCode(country string) string {
	if code, ok := e.codes[country]; ok {
		return code
	}
	return e.defaultCountryCode
}

// IsPopular reports whether a brand is flagged as popular.
func (e *Engine) IsPopular(brand string) bool {
	_, ok := e.popular[brand]
	return ok
}

func (e *Engine) segment(brand string) segment {
	if _, ok := e.luxury[brand]; ok {
		return segmentLuxury
	}
	if _, ok := e.premium[brand]; ok {
		return segmentPremium
	}
	return segmentDefault
}

// Synthesize computes the commercial and performance figures of one
// modification.
func (e *Engine) Synthesize(brand string, engine types.Engine) types.Figures {
	seg := e.segment(brand)
	hp := engine.Horsepower

	priceMin := int64(float64(e.basePrice(seg)) * (1 + float64(hp)/300))

	return types.Figures{
		PriceMin:        priceMin,
		PriceMax:        int64(float64(priceMin) * 1.5),
		FuelConsumption: FuelConsumption(engine.FuelType, hp, engine.Volume),
		Acceleration:    Acceleration(hp),
		MaxSpeed:        MaxSpeed(hp),
		MaintenanceCost: e.maintenanceCost(seg, hp, engine.Volume),
	}
}

func (e *Engine) basePrice(seg segment) int64 {
	switch seg {
	case segmentLuxury:
		return e.pricing.LuxuryBase
	case segmentPremium:
		return e.pricing.PremiumBase
	default:
		return e.pricing.DefaultBase
	}
}

func (e *Engine) maintenanceCost(seg segment, hp int, volume float64) int64 {
	cost := float64(int64(100000 + float64(hp)*200 + volume*15000))

	switch seg {
	case segmentLuxury:
		cost *= e.pricing.LuxuryMaintenanceFactor
	case segmentPremium:
		cost *= e.pricing.PremiumMaintenanceFactor
	}

	// maintenanceCostPerYear is an integer column; a fractional factor
	// product is stored rounded to the nearest ruble.
	return int64(math.Round(cost))
}

// FuelConsumption returns l/100 km, or kWh/100 km for electric vehicles,
// rounded to one decimal.
func FuelConsumption(fuelType string, hp int, volume float64) float64 {
	switch fuelType {
	case types.FuelElectric:
		return round1(15 + float64(hp)/50)
	case types.FuelHybrid:
		return round1(4 + volume*1.5)
	case types.FuelDiesel:
		return round1(5 + volume*1.2)
	default:
		return round1(7 + volume*2)
	}
}

// Acceleration returns the 0-100 km/h time in seconds, rounded to one
// decimal. hp must be positive.
func Acceleration(hp int) float64 {
	if hp > powerThreshold {
		return round1(2.5 + 1000/float64(hp))
	}
	return round1(3 + 600/float64(hp))
}

// MaxSpeed returns the top speed in km/h.
func MaxSpeed(hp int) int {
	if hp > powerThreshold {
		return 250 + hp/5
	}
	return 180 + hp/3
}

// round1 rounds the exact binary value of v to one decimal place, ties to
// even. Scaling by 10 first would round 5.3499999... up to 5.4.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
