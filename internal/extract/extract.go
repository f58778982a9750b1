// Package extract turns the free-text parts of a catalog entry into
// structured values: engine attributes from a modification name and a
// start/end year pair from a year-range string.
//
// Extraction never fails. Anything that cannot be recognised falls back to a
// documented default so every modification yields a complete record.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

// Defaults applied when a modification name carries no usable value.
const (
	DefaultVolume     = 2.0
	DefaultHorsepower = 150
)

// defaultSpan is the length of the default year range ending at the current year.
const defaultSpan = 4

// presentMarker marks a model that is still in production ("по н.в.").
const presentMarker = "н.в."

var (
	volumeRe = regexp.MustCompile(`(\d+\.\d+)`)
	powerRe  = regexp.MustCompile(`(\d+)\s*л\.с\.`)
	dieselRe = regexp.MustCompile(`\d+\.\d+d`)
	yearRe   = regexp.MustCompile(`(\d{4})`)
)

// ParseModificationName extracts engine attributes from a modification name
// such as "2.8d MT (177 л.с.) 4WD".
func ParseModificationName(name string) types.Engine {
	engine := types.Engine{
		Volume:     DefaultVolume,
		Horsepower: DefaultHorsepower,
	}

	if m := volumeRe.FindStringSubmatch(name); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			engine.Volume = v
		}
	}

	if m := powerRe.FindStringSubmatch(name); m != nil {
		if hp, err := strconv.Atoi(m[1]); err == nil && hp > 0 {
			engine.Horsepower = hp
		}
	}

	engine.FuelType = fuelType(name)
	engine.Transmission = transmission(name)
	engine.DriveType = driveType(name)

	return engine
}

// fuelType classifies the fuel by the first matching rule: diesel volume
// suffix, hybrid marker, electric marker, otherwise gasoline.
func fuelType(name string) string {
	lower := strings.ToLower(name)

	switch {
	case dieselRe.MatchString(lower):
		return types.FuelDiesel
	case strings.Contains(lower, "hyb"):
		return types.FuelHybrid
	case strings.Contains(lower, "electric"), strings.Contains(lower, "ev"):
		return types.FuelElectric
	default:
		return types.FuelGasoline
	}
}

// transmission markers are case-sensitive. "AMT" and "CVT" count as automatic
// and are checked before the manual marker because "AMT" contains "MT".
func transmission(name string) string {
	switch {
	case strings.Contains(name, "AT"), strings.Contains(name, "AMT"), strings.Contains(name, "CVT"):
		return types.TransmissionAutomatic
	case strings.Contains(name, "MT"):
		return types.TransmissionManual
	default:
		return types.TransmissionAutomatic
	}
}

func driveType(name string) string {
	switch {
	case strings.Contains(name, "4WD"), strings.Contains(name, "4X4"):
		return types.DriveAllWheel
	case strings.Contains(name, "FWD"):
		return types.DriveFrontWheel
	case strings.Contains(name, "RWD"), strings.Contains(name, "RR"):
		return types.DriveRearWheel
	default:
		return ""
	}
}

// YearParser parses year ranges relative to a fixed current year.
type YearParser struct {
	currentYear int
}

// NewYearParser returns a parser whose defaults and open-ended ranges resolve
// against currentYear.
func NewYearParser(currentYear int) *YearParser {
	return &YearParser{currentYear: currentYear}
}

// Parse reads a range like "2010 - 2014" or "2024 - по н.в.". Without a start
// year the range defaults to the last few years; without an end year it ends
// at the current year.
func (p *YearParser) Parse(text string) (from, to int) {
	from = p.currentYear - defaultSpan
	to = p.currentYear

	if text == "" {
		return from, to
	}

	years := yearRe.FindAllString(text, 2)
	if len(years) > 0 {
		from, _ = strconv.Atoi(years[0])
	}

	if strings.Contains(text, presentMarker) {
		return from, p.currentYear
	}
	if len(years) > 1 {
		to, _ = strconv.Atoi(years[1])
	}

	return from, to
}
