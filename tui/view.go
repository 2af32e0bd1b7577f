package tui

import (
	"fmt"
)

func (m model) View() string {
	var s string

	switch {
	case m.err != nil:
		s += errorStyle.Render(fmt.Sprintf("Fill failed: %v", m.err)) + "\n"
	case m.done:
		s += fmt.Sprintf("%s ready: %d patterns, %d dimensions\n", m.title, m.space.PatternCount(), m.space.Dimensions())
	default:
		s += fmt.Sprintf("%s Filling %s\n", m.spinner.View(), m.title)
	}

	s += m.progress.ViewAs(m.percent)
	s += fmt.Sprintf(" %3.0f%%\n", m.percent*100)

	if !m.done {
		s += helpStyle.Render("Press q to abort")
	}
	if m.quitting || m.done {
		s += "\n"
	}
	return appStyle.Render(s)
}
