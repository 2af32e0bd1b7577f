package space

import (
	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/tension"
	"github.com/pkg/errors"
)

// ComputeMTV returns the metrical tension vector of p: one value per step in [0, 1], where 0 is
// the metrically strongest position and 1 the weakest. profile is the salience profile of p's
// meter and step unit and r its range.
func ComputeMTV(p *rhythm.Pattern, profile []int, r meter.SalienceRange) ([]float64, error) {
	if len(profile) != p.Steps() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "profile has %d steps, pattern has %d", len(profile), p.Steps())
	}

	events, err := p.MusicalEvents(false, false)
	if err != nil {
		return nil, err
	}

	out := make([]float64, p.Steps())
	computeMTV(events, profile, r, out)
	return out, nil
}

// computeMTV writes one tension value per step to out. Every step of an event gets the tension
// of the salience that governs the event: its own start, or for a tied note the start of the
// note it sustains.
func computeMTV(events []rhythm.MusicalEvent, profile []int, r meter.SalienceRange, out []float64) {
	weight := tension.ToUnitClamp(float64(r.Min), float64(r.Max))

	for i, e := range events {
		pos := e.Position
		if e.Type == rhythm.TiedNote {
			if i > 0 {
				pos = events[i-1].Position
			} else {
				pos = events[len(events)-1].Position
			}
		}

		t := 0.0
		if r.Max > r.Min {
			t = 1 - weight(float64(profile[pos]))
		}

		for step := e.Position; step < e.Position+e.Duration; step++ {
			out[step] = t
		}
	}
}
