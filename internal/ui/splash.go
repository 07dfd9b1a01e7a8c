package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const splashDuration = 2 * time.Second

// SplashModel shows the product name until a key is pressed or the timeout
// fires.
type SplashModel struct {
	layout  Layout
	version string
	backend string
	done    bool
}

type splashTimeoutMsg struct{}

func (m SplashModel) Init() tea.Cmd {
	return tea.Batch(StandardInit(), tea.Tick(splashDuration, func(time.Time) tea.Msg {
		return splashTimeoutMsg{}
	}))
}

func (m SplashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg, splashTimeoutMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SplashModel) View() string {
	if m.done {
		return ""
	}

	height := max(m.layout.ViewportHeight-4, 10)
	lines := []string{
		TitleStyle.Render("LOAN MANAGEMENT"),
		AccentStyle.Render("Back Office Console"),
		"",
		DimStyle.Render(m.backend),
	}
	if m.version != "" {
		lines = append(lines, DimStyle.Render(m.version))
	}
	body := lipgloss.Place(m.layout.InnerWidth, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))

	return "\n" + BorderStyle.Width(m.layout.InnerWidth).Height(height).Render(body)
}

// ShowSplash displays the splash screen briefly.
func ShowSplash(version, backend string) {
	p := tea.NewProgram(SplashModel{layout: DefaultLayout(), version: version, backend: backend}, tea.WithAltScreen())
	_, _ = p.Run()

	// Clear screen before continuing
	fmt.Print("\033[2J\033[H")
}
