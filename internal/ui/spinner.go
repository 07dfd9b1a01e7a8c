package ui

// spinner.go provides a blocking spinner for one-off API calls made
// between screens (form submissions, uploads).

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type actionDoneMsg struct {
	err error
}

type blockingSpinnerModel struct {
	spinner spinner.Model
	title   string
	action  func(ctx context.Context) error
	ctx     context.Context
	cancel  context.CancelFunc
	done    bool
	err     error
}

// RunWithSpinner runs action while showing a spinner and returns its error.
// ctrl+c cancels the context passed to action.
//
//	var rec models.Record
//	err := RunWithSpinner("Creating merchant...", func(ctx context.Context) error {
//	    var err error
//	    rec, err = client.CreateMerchant(ctx, in)
//	    return err
//	})
func RunWithSpinner(title string, action func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := blockingSpinnerModel{
		spinner: NewAppSpinner(),
		title:   title,
		action:  action,
		ctx:     ctx,
		cancel:  cancel,
	}

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("spinner program error: %w", err)
	}
	return finalModel.(blockingSpinnerModel).err
}

func (m blockingSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runAction())
}

func (m blockingSpinnerModel) runAction() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.action(m.ctx)}
	}
}

func (m blockingSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m blockingSpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), RenderNormal(m.title))
}
