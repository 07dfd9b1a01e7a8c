package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
)

// HomeAction is the menu choice made on the home screen.
type HomeAction int

const (
	HomeQuit HomeAction = iota
	HomeOpenEntity
	HomeSettings
	HomeLogout
)

// HomeResult is returned by RunHome.
type HomeResult struct {
	Action HomeAction
	Entity models.Entity // for HomeOpenEntity
}

type menuItem struct {
	label  string
	action HomeAction
	entity models.Entity
}

func homeMenu() []menuItem {
	items := make([]menuItem, 0, len(models.AllEntities)+3)
	for _, e := range models.AllEntities {
		items = append(items, menuItem{label: models.SchemaFor(e).Title, action: HomeOpenEntity, entity: e})
	}
	return append(items,
		menuItem{label: "Settings", action: HomeSettings},
		menuItem{label: "Logout", action: HomeLogout},
		menuItem{label: "Quit", action: HomeQuit},
	)
}

type dashboardLoadedMsg struct {
	stats DashboardStats
	err   error
}

// HomeModel is the landing screen: the menu on the left and the dashboard
// counts on the right.
type HomeModel struct {
	PageState

	items    []menuItem
	cursor   int
	state    session.State
	load     func(ctx context.Context) (DashboardStats, error)
	stats    DashboardStats
	loading  bool
	err      error
	spinner  spinner.Model
	progress progress.Model
	result   HomeResult
}

// NewHomeModel creates the home screen. load may be nil to skip the
// dashboard.
func NewHomeModel(state session.State, load func(ctx context.Context) (DashboardStats, error), cursor int) HomeModel {
	items := homeMenu()
	return HomeModel{
		PageState: NewPageState(DefaultLayout()),
		items:     items,
		cursor:    clamp(cursor, 0, len(items)-1),
		state:     state,
		load:      load,
		loading:   load != nil,
		spinner:   NewAppSpinner(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		result:    HomeResult{Action: HomeQuit},
	}
}

func (m HomeModel) Init() tea.Cmd {
	if !m.loading {
		return StandardInit()
	}
	load := m.load
	return tea.Batch(StandardInit(), m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		stats, err := load(ctx)
		return dashboardLoadedMsg{stats: stats, err: err}
	})
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.UpdateLayout(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardLoadedMsg:
		m.loading = false
		m.stats, m.err = msg.stats, msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.result = HomeResult{Action: HomeQuit}
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			item := m.items[m.cursor]
			m.result = HomeResult{Action: item.action, Entity: item.entity}
			m.Quitting = true
			return m, tea.Quit
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.items) - 1
		default:
			m.cursor = HandleNavigationKeys(msg.String(), m.cursor, len(m.items))
		}
	}
	return m, nil
}

func (m HomeModel) View() string {
	if m.Quitting {
		return ""
	}

	var menu strings.Builder
	for i, item := range m.items {
		menu.WriteString(RenderListItem(item.label, i == m.cursor, 22))
		menu.WriteString("\n")
	}

	menuBox := lipgloss.NewStyle().Width(26).Render(menu.String())
	panel := lipgloss.NewStyle().Width(max(m.Layout.InnerWidth-30, 40)).Render(m.renderDashboard())

	user := m.state.Email
	if user == "" {
		user = m.state.PhoneHint
	}
	subtitle := fmt.Sprintf("Signed in as %s (%s)", user, m.state.UserType)

	content := NewPageView(m.Layout).
		Title("Back Office").
		Subtitle(subtitle).
		Divider().
		Spacing(1).
		CustomContent(lipgloss.JoinHorizontal(lipgloss.Top, menuBox, panel)).
		BuildContent()
	return TwoBoxView(content, "↑/↓: navigate | Enter: open | q: quit", m.Layout)
}

func (m HomeModel) renderDashboard() string {
	var b strings.Builder
	b.WriteString(AccentStyle.Render("Dashboard"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " " + DimStyle.Render("Loading counts..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(RenderError("Dashboard unavailable: " + m.err.Error()))
		return b.String()
	}

	rows := []struct {
		label string
		n     int
	}{
		{"Loans", m.stats.Loans},
		{"  Personal", m.stats.PersonalLoans},
		{"  Business", m.stats.BusinessLoans},
		{"Merchants", m.stats.Merchants},
		{"Stores", m.stats.Stores},
		{"Customers", m.stats.Customers},
		{"Pending orders", m.stats.PendingOrders},
	}
	for _, r := range rows {
		b.WriteString(DimStyle.Width(18).Render(r.label) + StatsStyle.Render(Count(r.n)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("Orders completed") + "\n")
	b.WriteString(m.progress.ViewAs(m.stats.CompletedRatio()))
	return b.String()
}

// Result returns the menu choice.
func (m HomeModel) Result() HomeResult {
	return m.result
}

// RunHome shows the home screen with the cursor on the given item.
func RunHome(state session.State, load func(ctx context.Context) (DashboardStats, error), cursor int) (HomeResult, int, error) {
	p := tea.NewProgram(NewHomeModel(state, load, cursor), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return HomeResult{Action: HomeQuit}, cursor, fmt.Errorf("home screen error: %w", err)
	}
	m := finalModel.(HomeModel)
	return m.Result(), m.cursor, nil
}
