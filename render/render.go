package render

import (
	"fmt"
	"strings"

	"github.com/Tomasito665/mtv-rhythm-generator/rhythm"
	"github.com/Tomasito665/mtv-rhythm-generator/tension"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const beatSeparator = "|"

var (
	// tension 0 and tension 1
	calmColor  = colorful.Color{R: 0.18, G: 0.53, B: 0.67}
	tenseColor = colorful.Color{R: 0.91, G: 0.28, B: 0.33}

	bars = []rune("▁▂▃▄▅▆▇█")

	onsetStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	restStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	labelStyle     = lipgloss.NewStyle().Width(10)
)

// TensionColor blends from a calm blue at tension 0 to a tense red at tension 1.
func TensionColor(v float64) colorful.Color {
	return calmColor.BlendLab(tenseColor, tension.Clamp(v, 0, 1)).Clamped()
}

// Pattern renders a pattern in x/- notation with a bar between beats.
func Pattern(p *rhythm.Pattern) string {
	stepsPerBeat := p.TimeSignature().StepsPerBeat(p.StepUnit())
	s := p.String()

	var sb strings.Builder
	for i, r := range s {
		if i > 0 && stepsPerBeat > 0 && i%stepsPerBeat == 0 {
			sb.WriteString(separatorStyle.Render(beatSeparator))
		}
		if r == 'x' {
			sb.WriteString(onsetStyle.Render(string(r)))
		} else {
			sb.WriteString(restStyle.Render(string(r)))
		}
	}
	return sb.String()
}

// TensionBars renders one coloured block per step, taller for more tension.
func TensionBars(curve []float64) string {
	var sb strings.Builder
	for _, v := range curve {
		v = tension.Clamp(v, 0, 1)
		bar := bars[int(v*float64(len(bars)-1)+0.5)]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(TensionColor(v).Hex()))
		sb.WriteString(style.Render(string(bar)))
	}
	return sb.String()
}

// Curve prints tension values with two decimals.
func Curve(curve []float64) string {
	parts := make([]string, len(curve))
	for i, v := range curve {
		parts[i] = fmt.Sprintf("%.2f", v)
	}
	return strings.Join(parts, " ")
}

// Events lists musical events, e.g. "note@0x2 rest@2x2".
func Events(events []rhythm.MusicalEvent) string {
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Summary renders a labelled block with a pattern, its events and its tension vector.
func Summary(label string, p *rhythm.Pattern, mtv []float64) string {
	events, err := p.MusicalEvents(true, true)
	eventLine := Events(events)
	if err != nil {
		eventLine = err.Error()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(label)+Pattern(p)+fmt.Sprintf("  #%d", p.ID()),
		labelStyle.Render("")+TensionBars(mtv),
		labelStyle.Render("")+Curve(mtv),
		labelStyle.Render("")+eventLine,
	)
}
