package ui

// selectors.go provides a generic single-column selector, used to pick
// the merchant a store belongs to.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectorConfig defines configuration for a selector.
type SelectorConfig struct {
	Title    string
	Subtitle string
	HelpText string
	Items    []string // display labels
	Values   []string // optional values, parallel to Items
}

// SelectorModel is a single-column table selector.
type SelectorModel struct {
	table    table.Model
	config   SelectorConfig
	layout   Layout
	selected int // -1 when cancelled
	quitting bool
}

// NewSelectorModel creates a selector with the given configuration.
func NewSelectorModel(cfg SelectorConfig) SelectorModel {
	layout := DefaultLayout()

	rows := make([]table.Row, len(cfg.Items))
	for i, item := range cfg.Items {
		rows[i] = table.Row{item}
	}
	columns := CalculateColumns(SingleColumnSpec(cfg.Title), layout.TableWidth)

	if cfg.HelpText == "" {
		cfg.HelpText = "↑/↓: navigate | Enter: select | Esc: cancel"
	}

	return SelectorModel{
		table:    InitTable(columns, rows, layout),
		config:   cfg,
		layout:   layout,
		selected: -1,
	}
}

func (m SelectorModel) Init() tea.Cmd {
	return StandardInit()
}

func (m SelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		m.table.SetColumns(CalculateColumns(SingleColumnSpec(m.config.Title), m.layout.TableWidth))
		m.table.SetHeight(m.layout.TableHeight)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.selected = -1
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.config.Items) > 0 {
				m.selected = m.table.Cursor()
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SelectorModel) View() string {
	if m.quitting {
		return ""
	}
	var content strings.Builder
	content.WriteString(ViewHeaderWithSubtitle(m.config.Title, m.config.Subtitle, m.layout.InnerWidth))
	content.WriteString(RenderTableWithSelection(m.table, m.layout))
	return TwoBoxView(content.String(), m.config.HelpText, m.layout)
}

// Selected returns the index of the selected item, or -1 if cancelled.
func (m SelectorModel) Selected() int {
	return m.selected
}

// SelectedValue returns the value of the selected item, falling back to its
// label, or "" when cancelled.
func (m SelectorModel) SelectedValue() string {
	if m.selected < 0 || m.selected >= len(m.config.Items) {
		return ""
	}
	if len(m.config.Values) > m.selected {
		return m.config.Values[m.selected]
	}
	return m.config.Items[m.selected]
}

// RunSelectorWithValue runs a selector and returns the selected value, or
// "" if the user cancelled.
func RunSelectorWithValue(cfg SelectorConfig) (string, error) {
	p := tea.NewProgram(NewSelectorModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("selector error: %w", err)
	}
	return finalModel.(SelectorModel).SelectedValue(), nil
}
