package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

func TestParseModificationName(t *testing.T) {
	tests := []struct {
		name string
		want types.Engine
	}{
		{
			name: "2.5 AT (181 л.с.) FWD",
			want: types.Engine{Volume: 2.5, Horsepower: 181, FuelType: types.FuelGasoline, Transmission: types.TransmissionAutomatic, DriveType: types.DriveFrontWheel},
		},
		{
			name: "2.8d MT (177 л.с.) 4WD",
			want: types.Engine{Volume: 2.8, Horsepower: 177, FuelType: types.FuelDiesel, Transmission: types.TransmissionManual, DriveType: types.DriveAllWheel},
		},
		{
			name: "1.8 hyb CVT (122 л.с.)",
			want: types.Engine{Volume: 1.8, Horsepower: 122, FuelType: types.FuelHybrid, Transmission: types.TransmissionAutomatic},
		},
		{
			name: "Electric (300 л.с.) RWD",
			want: types.Engine{Volume: DefaultVolume, Horsepower: 300, FuelType: types.FuelElectric, Transmission: types.TransmissionAutomatic, DriveType: types.DriveRearWheel},
		},
		{
			name: "1.6 AMT (106 л.с.) 4X4",
			want: types.Engine{Volume: 1.6, Horsepower: 106, FuelType: types.FuelGasoline, Transmission: types.TransmissionAutomatic, DriveType: types.DriveAllWheel},
		},
		{
			name: "Base",
			want: types.Engine{Volume: DefaultVolume, Horsepower: DefaultHorsepower, FuelType: types.FuelGasoline, Transmission: types.TransmissionAutomatic},
		},
		{
			name: "",
			want: types.Engine{Volume: DefaultVolume, Horsepower: DefaultHorsepower, FuelType: types.FuelGasoline, Transmission: types.TransmissionAutomatic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModificationName(tt.name))
		})
	}
}

func TestParseModificationNameFuelMarkers(t *testing.T) {
	tests := []struct {
		name  string
		fuel  string
		drive string
	}{
		{"4.0d AT (249 л.с.) 4WD", types.FuelDiesel, types.DriveAllWheel},
		{"2.0 AT (150 л.с.) 4WD", types.FuelGasoline, types.DriveAllWheel},
		{"2.0D AT (190 л.с.)", types.FuelDiesel, ""},
		{"2.0 d AT", types.FuelGasoline, ""},
		{"d 2.0 AT", types.FuelGasoline, ""},
		{"2.0d hybrid AT", types.FuelDiesel, ""},
		{"Evolution 2.0 MT", types.FuelElectric, ""},
		{"1.5 Hybrid CVT", types.FuelHybrid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := ParseModificationName(tt.name)
			assert.Equal(t, tt.fuel, engine.FuelType)
			assert.Equal(t, tt.drive, engine.DriveType)
		})
	}
}

func TestParseModificationNameZeroPower(t *testing.T) {
	engine := ParseModificationName("1.6 MT (0 л.с.)")
	assert.Equal(t, DefaultHorsepower, engine.Horsepower)
}

func TestParseModificationNameIsCaseSensitiveForMarkers(t *testing.T) {
	engine := ParseModificationName("2.0 mt (150 л.с.) fwd")
	assert.Equal(t, types.TransmissionAutomatic, engine.Transmission)
	assert.Empty(t, engine.DriveType)
}

func TestYearParser(t *testing.T) {
	p := NewYearParser(2025)

	tests := []struct {
		text     string
		from, to int
	}{
		{"2010 - 2014", 2010, 2014},
		{"2024 - по н.в.", 2024, 2025},
		{"2018", 2018, 2025},
		{"", 2021, 2025},
		{"unknown", 2021, 2025},
		{"1999 - 2003 - 2010", 1999, 2003},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			from, to := p.Parse(tt.text)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}
