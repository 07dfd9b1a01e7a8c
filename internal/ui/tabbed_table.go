package ui

// tabbed_table.go provides a multi-page tabbed table viewer, used by the
// record and loan detail screens.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// TabbedTablePage defines a single page/tab of data.
type TabbedTablePage struct {
	Name     string
	Columns  []ColumnSpec
	Rows     []table.Row
	ReadOnly bool   // Enter does nothing, scrolling only
	HelpText string // overrides the default help text
}

// TabbedTableConfig defines a tabbed table.
type TabbedTableConfig struct {
	Title    string
	Subtitle string
	Pages    []TabbedTablePage
	HelpText string
}

// TabbedTableResult is the outcome after the viewer exits.
type TabbedTableResult struct {
	SelectedPage int
	SelectedRow  int // -1 if cancelled or read-only page
	Cancelled    bool
}

// TabbedTableModel is a multi-page table viewer.
type TabbedTableModel struct {
	config      TabbedTableConfig
	tables      []table.Model
	currentPage int
	layout      Layout
	result      TabbedTableResult
	quitting    bool
}

// NewTabbedTableModel creates a tabbed table viewer.
func NewTabbedTableModel(cfg TabbedTableConfig) TabbedTableModel {
	layout := DefaultLayout()

	if len(cfg.Pages) == 0 {
		cfg.Pages = []TabbedTablePage{{
			Name:     "Empty",
			Columns:  SingleColumnSpec("No Data"),
			Rows:     []table.Row{{"Nothing to show"}},
			ReadOnly: true,
		}}
	}
	if cfg.HelpText == "" {
		cfg.HelpText = "↑/↓: navigate | Enter: select | q/Esc: back"
		if len(cfg.Pages) > 1 {
			cfg.HelpText = "↑/↓: navigate | Tab/←/→: switch page | Enter: select | q/Esc: back"
		}
	}

	tables := make([]table.Model, len(cfg.Pages))
	for i, page := range cfg.Pages {
		t := table.New(
			table.WithColumns(CalculateColumns(page.Columns, layout.TableWidth)),
			table.WithRows(page.Rows),
			table.WithFocused(i == 0),
			table.WithHeight(layout.TabbedTableHeight()),
		)
		ApplyTableStyles(&t)
		t.GotoTop()
		tables[i] = t
	}

	return TabbedTableModel{
		config: cfg,
		tables: tables,
		layout: layout,
		result: TabbedTableResult{SelectedPage: -1, SelectedRow: -1},
	}
}

func (m TabbedTableModel) Init() tea.Cmd {
	return StandardInit()
}

func (m TabbedTableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = NewLayout(msg.Width, msg.Height)
		for i, page := range m.config.Pages {
			m.tables[i].SetColumns(CalculateColumns(page.Columns, m.layout.TableWidth))
			m.tables[i].SetHeight(m.layout.TabbedTableHeight())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m TabbedTableModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.config.Pages)
	t := &m.tables[m.currentPage]

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.result.Cancelled = true
		m.quitting = true
		return m, tea.Quit

	case "tab", "right", "l":
		m.switchPage((m.currentPage + 1) % n)

	case "shift+tab", "left", "h":
		m.switchPage((m.currentPage + n - 1) % n)

	case "enter":
		page := m.config.Pages[m.currentPage]
		if !page.ReadOnly && t.Cursor() < len(page.Rows) {
			m.result.SelectedPage = m.currentPage
			m.result.SelectedRow = t.Cursor()
			m.quitting = true
			return m, tea.Quit
		}

	case "up", "k":
		t.MoveUp(1)
	case "down", "j":
		t.MoveDown(1)
	case "home", "g":
		t.GotoTop()
	case "end", "G":
		t.GotoBottom()
	case "pgup", "ctrl+u":
		t.MoveUp(t.Height() / 2)
	case "pgdown", "ctrl+d":
		t.MoveDown(t.Height() / 2)
	}
	return m, nil
}

func (m *TabbedTableModel) switchPage(page int) {
	if page == m.currentPage {
		return
	}
	m.tables[m.currentPage].Blur()
	m.currentPage = page
	m.tables[m.currentPage].Focus()
	m.tables[m.currentPage].GotoTop()
}

func (m TabbedTableModel) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder
	content.WriteString(RenderTitle(m.config.Title))
	content.WriteString("\n")
	if len(m.config.Pages) > 1 {
		content.WriteString(m.renderTabIndicator())
		content.WriteString("\n")
	}
	content.WriteString(FullWidthDivider(m.layout.InnerWidth))
	content.WriteString("\n\n")
	if m.config.Subtitle != "" {
		content.WriteString(RenderDim(m.config.Subtitle))
		content.WriteString("\n\n")
	}
	content.WriteString(RenderTableWithSelection(m.tables[m.currentPage], m.layout))

	help := m.config.Pages[m.currentPage].HelpText
	if help == "" {
		help = m.config.HelpText
	}
	return TwoBoxView(content.String(), help, m.layout)
}

func (m TabbedTableModel) renderTabIndicator() string {
	parts := make([]string, len(m.config.Pages))
	for i, page := range m.config.Pages {
		if i == m.currentPage {
			parts[i] = RenderTabActive(page.Name)
		} else {
			parts[i] = RenderTabInactive(page.Name)
		}
	}
	return strings.Join(parts, " ") + "  " + RenderDim("(Tab/←/→)")
}

// Result returns the selection result after the viewer exits.
func (m TabbedTableModel) Result() TabbedTableResult {
	return m.result
}

// CurrentPage returns the index of the visible tab.
func (m TabbedTableModel) CurrentPage() int {
	return m.currentPage
}

// RunTabbedTable runs a tabbed table and returns the result.
func RunTabbedTable(cfg TabbedTableConfig) (TabbedTableResult, error) {
	p := tea.NewProgram(NewTabbedTableModel(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return TabbedTableResult{Cancelled: true}, fmt.Errorf("tabbed table error: %w", err)
	}
	return finalModel.(TabbedTableModel).Result(), nil
}

// =============================================================================
// Builder
// =============================================================================

// TabbedTableBuilder provides a fluent API for building TabbedTableConfig.
type TabbedTableBuilder struct {
	config TabbedTableConfig
}

// NewTabbedTable starts building a tabbed table.
func NewTabbedTable(title string) *TabbedTableBuilder {
	return &TabbedTableBuilder{config: TabbedTableConfig{Title: title}}
}

// WithSubtitle sets the subtitle.
func (b *TabbedTableBuilder) WithSubtitle(subtitle string) *TabbedTableBuilder {
	b.config.Subtitle = subtitle
	return b
}

// WithHelpText sets the default help text.
func (b *TabbedTableBuilder) WithHelpText(helpText string) *TabbedTableBuilder {
	b.config.HelpText = helpText
	return b
}

// AddReadOnlyPage adds a page that only scrolls.
func (b *TabbedTableBuilder) AddReadOnlyPage(name string, columns []ColumnSpec, rows []table.Row) *TabbedTableBuilder {
	b.config.Pages = append(b.config.Pages, TabbedTablePage{Name: name, Columns: columns, Rows: rows, ReadOnly: true})
	return b
}

// Build returns the completed configuration.
func (b *TabbedTableBuilder) Build() TabbedTableConfig {
	return b.config
}

// Run builds and runs the tabbed table.
func (b *TabbedTableBuilder) Run() (TabbedTableResult, error) {
	return RunTabbedTable(b.Build())
}
