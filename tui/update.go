package tui

import (
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// progressMsg carries the fraction of the space filled so far.
type progressMsg float64

// fillDoneMsg is sent once the space is ready or waiting for it failed.
type fillDoneMsg struct {
	space *space.Space
	err   error
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case progressMsg:
		if float64(msg) > m.percent {
			m.percent = float64(msg)
		}
		return m, nil
	case fillDoneMsg:
		m.done = true
		m.space = msg.space
		m.err = msg.err
		if msg.err == nil {
			m.percent = 1
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
