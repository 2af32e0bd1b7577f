package tui

import (
	"context"
	"fmt"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/session"
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// ErrAborted is returned when the user quits before the space is ready.
var ErrAborted = errors.New("tui: fill aborted")

// RunFill starts a fill for ts at stepUnit on s and shows its progress until the space is ready.
func RunFill(ctx context.Context, s session.Manager, ts meter.TimeSignature, stepUnit unit.Unit) (*space.Space, error) {
	p := tea.NewProgram(newModel(fmt.Sprintf("%s in %s", ts, stepUnit.Name())))

	if _, err := s.Reset(ts, stepUnit, func(done float64) {
		p.Send(progressMsg(done))
	}); err != nil {
		return nil, err
	}

	go func() {
		sp, err := s.Wait(ctx)
		p.Send(fillDoneMsg{space: sp, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, errors.Wrap(err, "running progress view")
	}

	m := final.(model)
	if m.err != nil {
		return nil, m.err
	}
	if !m.done {
		return nil, ErrAborted
	}
	return m.space, nil
}
