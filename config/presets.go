package config

import (
	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
)

// Preset is a named meter and step unit.
type Preset struct {
	Description   string `yaml:"description"`
	TimeSignature string `yaml:"time_signature"`
	StepUnit      string `yaml:"step_unit"`
}

// Meter resolves the preset's time signature and step unit.
func (p Preset) Meter() (meter.TimeSignature, unit.Unit, error) {
	return resolveMeter(p.TimeSignature, p.StepUnit)
}

func initializeMeterPresets() map[string]Preset {
	out := map[string]Preset{
		"common": {
			Description:   "4/4 in eighths",
			TimeSignature: "4/4",
			StepUnit:      "eighth",
		},
		"clave": {
			Description:   "4/4 in sixteenths, room for son and rumba clave",
			TimeSignature: "4/4",
			StepUnit:      "sixteenth",
		},
		"waltz": {
			Description:   "3/4 in eighths",
			TimeSignature: "3/4",
			StepUnit:      "eighth",
		},
		"jig": {
			Description:   "6/8 in sixteenths",
			TimeSignature: "6/8",
			StepUnit:      "sixteenth",
		},
		"slip-jig": {
			Description:   "9/8 in eighths",
			TimeSignature: "9/8",
			StepUnit:      "eighth",
		},
		"cut-time": {
			Description:   "2/2 in eighths",
			TimeSignature: "2/2",
			StepUnit:      "eighth",
		},
	}

	return out
}
