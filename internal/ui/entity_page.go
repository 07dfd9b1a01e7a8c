package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

// EntityAction is what the user asked for when an entity page exits.
type EntityAction int

const (
	ActionBack EntityAction = iota
	ActionQuit
	ActionReload
	ActionDetail
	ActionCreate
	ActionEdit
	ActionUpload
	ActionComplete
	ActionExport
	ActionPhoneLookup
)

// EntityPageResult is returned by RunEntityPage.
type EntityPageResult struct {
	Action EntityAction
	Record models.Record // the row under the cursor for Detail, Edit and Complete
	Phone  string        // the number to look up for PhoneLookup, empty clears it
	Err    error         // set when loading failed with an auth error
}

// SnapshotStore keeps the last good list of an entity. *db.DB satisfies it.
type SnapshotStore interface {
	SaveSnapshot(entity models.Entity, records []models.Record) error
	LoadSnapshot(entity models.Entity) ([]models.Record, time.Time, bool, error)
}

// EntityPageConfig configures an entity list page.
type EntityPageConfig struct {
	Entity    models.Entity
	Table     *rtable.Table
	Columns   []rtable.Column
	Load      func(ctx context.Context) ([]models.Record, error)
	Reload    bool // fetch the baseline on start
	Snapshots SnapshotStore
	Logger    *log.Logger
	Status    string

	// MatchField and MatchValues add a `t` key cycling an equality filter
	// on one field, starting from "All".
	MatchField  string
	MatchValues []string

	// PhoneLookup adds a `p` key that asks the backend for the rows of one
	// phone number. Phone is the lookup the baseline was loaded with.
	PhoneLookup bool
	Phone       string

	CanCreate   bool
	CanEdit     bool
	CanUpload   bool
	CanComplete bool
}

var phoneQueryPattern = regexp.MustCompile(`^\d{4,10}$`)

type entityViewMode int

const (
	entityViewTable  entityViewMode = iota
	entityViewSearch                // editing the search term
	entityViewDates                 // editing the date range
	entityViewPhone                 // editing the phone lookup
)

// Messages
type entityLoadedMsg struct {
	records    []models.Record
	err        error
	snapshotAt time.Time // non-zero when records came from the local snapshot
}

type entityFetchMsg struct {
	res rtable.FetchResult
}

// EntityPageModel is the list page shared by every entity: a FilteredTable
// rendered through bubbles/table with search, date range, sort and paging.
type EntityPageModel struct {
	PageState

	cfg      EntityPageConfig
	schema   models.Schema
	rt       *rtable.Table
	specs    []ColumnSpec
	table    table.Model
	input    textinput.Model
	spinner  spinner.Model
	elapsed  stopwatch.Model
	logger   *log.Logger
	viewMode entityViewMode

	ctx       context.Context
	cancel    context.CancelFunc
	loading   bool // baseline load in flight
	pending   *rtable.Request
	sortKeys  []string
	sortIdx   int
	pickerGen int
	dateText  string
	err       error
	result    EntityPageResult
}

// NewEntityPage creates the page model. A refetch that was still loading
// when the page last exited is issued again.
func NewEntityPage(cfg EntityPageConfig) EntityPageModel {
	layout := DefaultLayout()
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ti := textinput.New()
	ti.CharLimit = 100
	ti.TextStyle = NormalStyle
	ti.PromptStyle = NormalStyle
	ti.Width = layout.InnerWidth - 20

	specs := SpecsFor(cfg.Columns)
	t := InitTable(CalculateColumns(specs, layout.TableWidth), nil, layout)

	ctx, cancel := context.WithCancel(context.Background())
	m := EntityPageModel{
		PageState: NewPageState(layout),
		cfg:       cfg,
		schema:    models.SchemaFor(cfg.Entity),
		rt:        cfg.Table,
		specs:     specs,
		table:     t,
		input:     ti,
		spinner:   NewAppSpinner(),
		elapsed:   stopwatch.NewWithInterval(100 * time.Millisecond),
		logger:    logger.WithPrefix(string(cfg.Entity)),
		ctx:       ctx,
		cancel:    cancel,
		loading:   cfg.Reload,
		sortKeys:  sortKeys(cfg.Columns),
		sortIdx:   -1,
		pickerGen: cfg.Table.DatePickerGeneration(),
		dateText:  cfg.Table.DateRange().String(),
	}
	if key, _ := m.rt.Sort(); key != "" {
		for i, k := range m.sortKeys {
			if k == key {
				m.sortIdx = i
			}
		}
	}
	if cfg.Status != "" {
		m.SetStatus(cfg.Status, 5*time.Second)
	}
	if !m.loading && m.rt.Loading() {
		m.pending = m.rt.SetDateRange(m.rt.DateRange())
	}
	m.refreshTable()
	return m
}

// sortKeys returns the distinct column keys in column order.
func sortKeys(cols []rtable.Column) []string {
	var keys []string
	seen := map[string]bool{}
	for _, c := range cols {
		if c.Key == "" || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		keys = append(keys, c.Key)
	}
	return keys
}

// Init implements tea.Model
func (m EntityPageModel) Init() tea.Cmd {
	cmds := []tea.Cmd{StandardInit(), m.spinner.Tick}
	if m.loading {
		cmds = append(cmds, m.loadCmd(), m.elapsed.Init())
	}
	if m.pending != nil {
		cmds = append(cmds, fetchCmd(m.pending), m.elapsed.Init())
	}
	return tea.Batch(cmds...)
}

// loadCmd fetches the baseline. When the backend fails, the last saved
// snapshot is served instead.
func (m EntityPageModel) loadCmd() tea.Cmd {
	ctx, load, store, e, logger := m.ctx, m.cfg.Load, m.cfg.Snapshots, m.cfg.Entity, m.logger
	return func() tea.Msg {
		records, err := load(ctx)
		if err == nil {
			if store != nil {
				if serr := store.SaveSnapshot(e, records); serr != nil {
					logger.Warn("failed to save snapshot", "err", serr)
				}
			}
			return entityLoadedMsg{records: records}
		}
		if errors.Is(err, api.ErrUnauthorized) || store == nil {
			return entityLoadedMsg{err: err}
		}
		snap, savedAt, ok, serr := store.LoadSnapshot(e)
		if serr != nil || !ok {
			return entityLoadedMsg{err: err}
		}
		logger.Warn("backend unavailable, showing snapshot", "err", err, "saved", savedAt)
		return entityLoadedMsg{records: snap, err: err, snapshotAt: savedAt}
	}
}

func fetchCmd(req *rtable.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return entityFetchMsg{res: req.Run()}
	}
}

// Update implements tea.Model
func (m EntityPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.ClearExpiredStatus()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.table.SetColumns(CalculateColumns(m.specs, m.Layout.TableWidth))
			m.table.SetHeight(m.Layout.TableHeight)
			m.input.Width = m.Layout.InnerWidth - 20
			m.refreshTable()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stopwatch.TickMsg, stopwatch.StartStopMsg, stopwatch.ResetMsg:
		var cmd tea.Cmd
		m.elapsed, cmd = m.elapsed.Update(msg)
		return m, cmd

	case entityLoadedMsg:
		m.loading = false
		switch {
		case errors.Is(msg.err, api.ErrUnauthorized):
			m.result = EntityPageResult{Action: ActionBack, Err: msg.err}
			m.Quitting = true
			return m, tea.Quit
		case msg.err != nil && msg.snapshotAt.IsZero():
			m.err = msg.err
			m.logger.Error("failed to load records", "err", msg.err)
		case msg.err != nil:
			m.SetStatus(fmt.Sprintf("Backend unavailable (%s). Showing data saved %s.",
				api.Message(msg.err), msg.snapshotAt.Local().Format("02-01-2006 15:04")), 0)
			m.rt.Initialize(msg.records)
			m.dateText = ""
		default:
			m.err = nil
			if req := m.reinitialize(msg.records); req != nil {
				m.refreshTable()
				return m, fetchCmd(req)
			}
		}
		m.refreshTable()
		return m, m.elapsed.Stop()

	case entityFetchMsg:
		if !m.rt.ApplyFetchResult(msg.res) {
			return m, nil
		}
		if m.rt.State() == rtable.StateErrorFallback {
			m.SetStatus("Date filtered fetch failed, filtering loaded rows instead", 5*time.Second)
		}
		m.refreshTable()
		return m, m.elapsed.Stop()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m EntityPageModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.exit(ActionQuit, nil)
	}
	switch m.viewMode {
	case entityViewSearch:
		return m.handleSearchKeys(msg)
	case entityViewDates:
		return m.handleDateKeys(msg)
	case entityViewPhone:
		return m.handlePhoneKeys(msg)
	default:
		return m.handleTableKeys(msg)
	}
}

func (m EntityPageModel) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m.exit(ActionBack, nil)

	case "up", "k":
		m.table.MoveUp(1)
	case "down", "j":
		m.table.MoveDown(1)

	case "right", "l":
		if m.rt.NextPage() {
			m.refreshTable()
		}
	case "left", "h":
		if m.rt.PrevPage() {
			m.refreshTable()
		}
	case "]":
		m.rt.CyclePageSize(1)
		m.refreshTable()
	case "[":
		m.rt.CyclePageSize(-1)
		m.refreshTable()

	case "/":
		m.viewMode = entityViewSearch
		m.input.Placeholder = "Search " + strings.Join(m.schema.SearchFields, ", ") + "..."
		m.input.SetValue(m.rt.SearchTerm())
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink

	case "d":
		m.viewMode = entityViewDates
		m.input.Placeholder = "DD-MM-YYYY to DD-MM-YYYY"
		m.input.SetValue(m.dateText)
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink

	case "p":
		if !m.cfg.PhoneLookup {
			return m, nil
		}
		m.viewMode = entityViewPhone
		m.input.Placeholder = "Phone number, empty shows all"
		m.input.SetValue(m.cfg.Phone)
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink

	case "x":
		m.rt.ClearDateFilter()
		m.refreshTable()
		m.SetStatus("Date filter cleared", 3*time.Second)
		return m, m.elapsed.Stop()

	case "t":
		if m.cfg.MatchField == "" || len(m.cfg.MatchValues) == 0 {
			return m, nil
		}
		m.rt.SetMatch(m.nextMatch())
		m.refreshTable()
		m.SetStatus("Showing "+m.matchLabel(), 3*time.Second)

	case "s":
		if len(m.sortKeys) == 0 {
			return m, nil
		}
		m.sortIdx = (m.sortIdx + 1) % len(m.sortKeys)
		_, dir := m.rt.Sort()
		m.rt.SetSort(m.sortKeys[m.sortIdx], dir)
		m.refreshTable()
	case "S":
		key, dir := m.rt.Sort()
		if key == "" {
			return m, nil
		}
		m.rt.SetSort(key, dir.Toggle())
		m.refreshTable()

	case "r":
		if m.cfg.Load != nil {
			return m.exit(ActionReload, nil)
		}

	case "enter":
		if r, ok := m.cursorRecord(); ok {
			return m.exit(ActionDetail, r)
		}
	case "n":
		if m.cfg.CanCreate {
			return m.exit(ActionCreate, nil)
		}
	case "E":
		if r, ok := m.cursorRecord(); ok && m.cfg.CanEdit {
			return m.exit(ActionEdit, r)
		}
	case "u":
		if m.cfg.CanUpload {
			return m.exit(ActionUpload, nil)
		}
	case "c":
		if r, ok := m.cursorRecord(); ok && m.cfg.CanComplete {
			return m.exit(ActionComplete, r)
		}
	case "e":
		if len(m.rt.Filtered()) == 0 {
			m.SetStatus("Nothing to export", 3*time.Second)
			return m, nil
		}
		return m.exit(ActionExport, nil)
	}
	return m, nil
}

func (m EntityPageModel) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.rt.SetSearchTerm(sanitizeInput(m.input.Value()))
		m.viewMode = entityViewTable
		m.input.Blur()
		m.refreshTable()
		return m, nil
	case "esc":
		m.viewMode = entityViewTable
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m EntityPageModel) handleDateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(sanitizeInput(m.input.Value()))
		m.viewMode = entityViewTable
		m.input.Blur()
		if text == "" {
			m.rt.ClearDateFilter()
			m.refreshTable()
			return m, m.elapsed.Stop()
		}
		r, err := rtable.ParseDateRange(text)
		if err != nil {
			m.SetStatus(err.Error(), 5*time.Second)
			return m, nil
		}
		req := m.rt.SetDateRange(r)
		m.dateText = text
		m.refreshTable()
		if req == nil {
			return m, nil
		}
		return m, tea.Batch(fetchCmd(req), m.elapsed.Reset(), m.elapsed.Start())
	case "esc":
		m.viewMode = entityViewTable
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m EntityPageModel) handlePhoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		phone := strings.TrimSpace(sanitizeInput(m.input.Value()))
		m.viewMode = entityViewTable
		m.input.Blur()
		if phone != "" && !phoneQueryPattern.MatchString(phone) {
			m.SetStatus("Phone lookup takes 4 to 10 digits", 5*time.Second)
			return m, nil
		}
		if phone == m.cfg.Phone {
			return m, nil
		}
		m.result.Phone = phone
		return m.exit(ActionPhoneLookup, nil)
	case "esc":
		m.viewMode = entityViewTable
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// reinitialize replaces the baseline and puts back the search term and
// date range that were active before the reload.
func (m *EntityPageModel) reinitialize(records []models.Record) *rtable.Request {
	search, dates, match := m.rt.SearchTerm(), m.rt.DateRange(), m.rt.Match()
	m.rt.Initialize(records)
	if search != "" {
		m.rt.SetSearchTerm(search)
	}
	if !match.IsZero() {
		m.rt.SetMatch(match)
	}
	if dates.IsZero() {
		m.dateText = ""
		return nil
	}
	return m.rt.SetDateRange(dates)
}

// nextMatch steps All -> each match value -> All.
func (m EntityPageModel) nextMatch() rtable.Match {
	cur := m.rt.Match()
	i := -1
	if !cur.IsZero() {
		for j, v := range m.cfg.MatchValues {
			if strings.EqualFold(v, cur.Value) {
				i = j
			}
		}
	}
	if i+1 >= len(m.cfg.MatchValues) {
		return rtable.Match{}
	}
	return rtable.Match{Field: m.cfg.MatchField, Value: m.cfg.MatchValues[i+1]}
}

func (m EntityPageModel) matchLabel() string {
	if match := m.rt.Match(); !match.IsZero() {
		return match.Value
	}
	return "All"
}

// exit ends the page and abandons a baseline load still in flight. The
// table stays usable so the caller can relaunch the page on it.
func (m EntityPageModel) exit(action EntityAction, r models.Record) (tea.Model, tea.Cmd) {
	m.cancel()
	m.result = EntityPageResult{Action: action, Record: r, Phone: m.result.Phone}
	m.Quitting = true
	return m, tea.Quit
}

func (m EntityPageModel) cursorRecord() (models.Record, bool) {
	page := m.rt.PageRecords()
	i := m.table.Cursor()
	if i < 0 || i >= len(page) {
		return nil, false
	}
	return page[i], true
}

func (m *EntityPageModel) refreshTable() {
	if gen := m.rt.DatePickerGeneration(); gen != m.pickerGen {
		m.pickerGen = gen
		m.dateText = ""
	}
	cursor := m.table.Cursor()
	widths := CalculateColumns(m.specs, m.Layout.TableWidth)
	rows := TableRows(m.cfg.Columns, widths, m.rt.PageRecords())
	m.table.SetRows(rows)
	switch {
	case len(rows) == 0:
		m.table.SetCursor(0)
	case cursor >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	case cursor < 0:
		m.table.SetCursor(0)
	}
}

// queryInfo describes the active filters, sort and page.
func (m EntityPageModel) queryInfo() string {
	parts := []string{pageLabel(m.rt.CurrentPage(), m.rt.TotalPages()), fmt.Sprintf("Size %d", m.rt.PageSize())}
	if s := m.rt.SearchTerm(); s != "" {
		parts = append(parts, fmt.Sprintf("Search '%s'", s))
	}
	if r := m.rt.DateRange(); !r.IsZero() {
		parts = append(parts, "Dates "+r.String())
	}
	if m.cfg.MatchField != "" {
		parts = append(parts, "Type "+m.matchLabel())
	}
	if m.cfg.Phone != "" {
		parts = append(parts, "Phone "+m.cfg.Phone)
	}
	if key, dir := m.rt.Sort(); key != "" {
		parts = append(parts, fmt.Sprintf("Sort %s %s", key, dir))
	}
	return " " + strings.Join(parts, "  |  ")
}

func (m EntityPageModel) helpText() string {
	help := "↑/↓: move | ←/→: page | [/]: size | /: search | d: dates | x: clear dates | s/S: sort | Enter: view | e: export"
	var extra []string
	if m.cfg.MatchField != "" {
		extra = append(extra, "t: type")
	}
	if m.cfg.PhoneLookup {
		extra = append(extra, "p: phone")
	}
	if m.cfg.CanCreate {
		extra = append(extra, "n: new")
	}
	if m.cfg.CanEdit {
		extra = append(extra, "E: edit")
	}
	if m.cfg.CanUpload {
		extra = append(extra, "u: upload CSV")
	}
	if m.cfg.CanComplete {
		extra = append(extra, "c: complete")
	}
	extra = append(extra, "r: reload", "Esc: back")
	help += " | " + strings.Join(extra, " | ")
	switch m.viewMode {
	case entityViewSearch:
		help = "Enter: apply search (empty clears) | Esc: cancel"
	case entityViewDates:
		help = "Enter: apply range, a single date or empty to clear | Esc: cancel"
	case entityViewPhone:
		help = "Enter: look up number (empty shows all) | Esc: cancel"
	}
	return help
}

// View implements tea.Model
func (m EntityPageModel) View() string {
	if m.Quitting {
		return ""
	}

	b := NewPageView(m.Layout).Title(m.schema.Title).Divider()

	if m.loading {
		b.CustomContent(fmt.Sprintf(" %s %s", m.spinner.View(),
			AccentStyle.Render(fmt.Sprintf("Loading %s...", strings.ToLower(m.schema.Title)))))
		b.Spacing(1)
		b.CustomContent(DimStyle.Render(" Elapsed: ") + NormalStyle.Render(m.elapsed.View()))
		return b.Help(m.helpText()).Build()
	}

	b.QueryInfo(m.queryInfo())
	b.Table(m.table)
	b.Spacing(1)

	summary := " " + m.rt.Summary()
	if m.rt.Loading() {
		summary += fmt.Sprintf("  %s fetching %s (%s)", m.spinner.View(), m.rt.DateRange(), m.elapsed.View())
	}
	b.DimText(summary)

	switch m.viewMode {
	case entityViewSearch:
		b.Spacing(1)
		b.CustomContent(AccentStyle.Render(" Search: ") + m.input.View())
	case entityViewDates:
		b.Spacing(1)
		b.CustomContent(AccentStyle.Render(" Dates: ") + m.input.View())
	case entityViewPhone:
		b.Spacing(1)
		b.CustomContent(AccentStyle.Render(" Phone: ") + m.input.View())
	}

	b.Status(m.StatusMsg)
	b.Error(m.err)
	return b.Help(m.helpText()).Build()
}

// Result returns the action chosen when the page exited.
func (m EntityPageModel) Result() EntityPageResult {
	return m.result
}

// RunEntityPage runs an entity list page until the user picks an action.
func RunEntityPage(cfg EntityPageConfig) (EntityPageResult, error) {
	p := tea.NewProgram(NewEntityPage(cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return EntityPageResult{Action: ActionBack}, fmt.Errorf("entity page error: %w", err)
	}
	m, ok := finalModel.(EntityPageModel)
	if !ok {
		return EntityPageResult{Action: ActionBack}, nil
	}
	return m.Result(), nil
}
