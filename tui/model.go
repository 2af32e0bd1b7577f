package tui

import (
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 40

type model struct {
	title    string
	spinner  spinner.Model
	progress progress.Model
	percent  float64
	done     bool
	quitting bool
	space    *space.Space
	err      error
}

func newModel(title string) model {
	s := spinner.New()
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressWidth),
		progress.WithoutPercentage(),
	)

	return model{
		title:    title,
		spinner:  s,
		progress: p,
	}
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	appStyle     = lipgloss.NewStyle().Margin(1, 2, 0, 2)
)
