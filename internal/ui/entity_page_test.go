package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

var pageCols = []rtable.Column{
	{Key: "_id", Label: "ID"},
	{Key: "Name", Label: "Name", Weight: 1},
	{Key: "Name", Label: "Name again"},
	{Key: "createdAt", Label: "Created"},
}

func pageRecords(n int) []models.Record {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	out := make([]models.Record, n)
	for i := range n {
		out[i] = models.Record{
			"_id":       fmt.Sprintf("r%03d", i),
			"Name":      fmt.Sprintf("Store-%03d", i),
			"createdAt": base.AddDate(0, 0, i).Format(time.RFC3339),
		}
	}
	return out
}

func newTestPage(t *testing.T, n int, mutate func(*EntityPageConfig)) EntityPageModel {
	t.Helper()
	rt := rtable.New(rtable.Config{
		SearchFields: []string{"_id", "Name"},
		DateFields:   []string{"createdAt"},
		PageSizes:    []int{10, 20},
	})
	t.Cleanup(rt.Close)
	rt.Initialize(pageRecords(n))

	cfg := EntityPageConfig{
		Entity:  models.EntityStore,
		Table:   rt,
		Columns: pageCols,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEntityPage(cfg)
}

func press(m EntityPageModel, keys ...tea.KeyMsg) (EntityPageModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(EntityPageModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
)

func TestSortKeysDeduplicates(t *testing.T) {
	got := strings.Join(sortKeys(pageCols), ",")
	if got != "_id,Name,createdAt" {
		t.Errorf("sortKeys = %s", got)
	}
}

func TestEntityPagePaging(t *testing.T) {
	m := newTestPage(t, 25, nil)

	m, _ = press(m, keyRight)
	if m.rt.CurrentPage() != 2 {
		t.Fatalf("page after right = %d, want 2", m.rt.CurrentPage())
	}
	if r, _ := m.cursorRecord(); r["_id"] != "r010" {
		t.Errorf("first row on page 2 = %v, want r010", r["_id"])
	}

	m, _ = press(m, keyRight, keyRight)
	if m.rt.CurrentPage() != 3 {
		t.Errorf("paging past the end moved to %d", m.rt.CurrentPage())
	}

	m, _ = press(m, keyLeft)
	if m.rt.CurrentPage() != 2 {
		t.Errorf("page after left = %d, want 2", m.rt.CurrentPage())
	}

	m, _ = press(m, runes("]"))
	if m.rt.PageSize() != 20 {
		t.Errorf("page size after ] = %d, want 20", m.rt.PageSize())
	}
	if m.rt.CurrentPage() != 1 {
		t.Errorf("page size change should reset to page 1, got %d", m.rt.CurrentPage())
	}
}

func TestEntityPageSearch(t *testing.T) {
	m := newTestPage(t, 25, nil)

	m, _ = press(m, runes("/"))
	if m.viewMode != entityViewSearch {
		t.Fatal("/ should open the search input")
	}
	m, _ = press(m, runes("store-01"), keyEnter)

	if m.viewMode != entityViewTable {
		t.Error("enter should return to the table")
	}
	if m.rt.SearchTerm() != "store-01" {
		t.Errorf("search term = %q", m.rt.SearchTerm())
	}
	if n := len(m.rt.Filtered()); n != 10 {
		t.Errorf("filtered = %d, want 10", n)
	}
	if !strings.Contains(m.queryInfo(), "Search 'store-01'") {
		t.Errorf("query info = %q", m.queryInfo())
	}
}

func TestEntityPageSearchEscKeepsTerm(t *testing.T) {
	m := newTestPage(t, 25, nil)
	m, _ = press(m, runes("/"), runes("zzz"), keyEsc)
	if m.rt.SearchTerm() != "" {
		t.Errorf("esc should not apply the search, got %q", m.rt.SearchTerm())
	}
}

func TestEntityPageDateRange(t *testing.T) {
	m := newTestPage(t, 25, nil)

	m, cmd := press(m, runes("d"), runes("05-01-2025 to 09-01-2025"), keyEnter)
	if cmd != nil {
		t.Error("local date filtering should not start a fetch")
	}
	if n := len(m.rt.Filtered()); n != 5 {
		t.Errorf("filtered = %d, want 5", n)
	}
	if m.dateText != "05-01-2025 to 09-01-2025" {
		t.Errorf("dateText = %q", m.dateText)
	}

	m, _ = press(m, runes("x"))
	if !m.rt.DateRange().IsZero() {
		t.Error("x should clear the date range")
	}
	if m.dateText != "" {
		t.Errorf("date input should be reset, got %q", m.dateText)
	}
	if n := len(m.rt.Filtered()); n != 25 {
		t.Errorf("filtered after clear = %d, want 25", n)
	}
}

func TestEntityPageBadDate(t *testing.T) {
	m := newTestPage(t, 5, nil)
	m, _ = press(m, runes("d"), runes("2025-01-05"), keyEnter)
	if !m.rt.DateRange().IsZero() {
		t.Error("invalid input should not set a range")
	}
	if !strings.Contains(m.StatusMsg, "DD-MM-YYYY") {
		t.Errorf("status = %q", m.StatusMsg)
	}
}

func TestEntityPageSortKeys(t *testing.T) {
	m := newTestPage(t, 5, nil)

	m, _ = press(m, runes("s"), runes("s"))
	if key, dir := m.rt.Sort(); key != "Name" || dir != rtable.Ascending {
		t.Errorf("sort = %s %s, want Name asc", key, dir)
	}
	m, _ = press(m, runes("S"))
	if _, dir := m.rt.Sort(); dir != rtable.Descending {
		t.Errorf("S should toggle direction, got %s", dir)
	}
	if r, _ := m.cursorRecord(); r["_id"] != "r004" {
		t.Errorf("first row after descending sort = %v", r["_id"])
	}
}

func TestEntityPageActions(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		caps   func(*EntityPageConfig)
		want   EntityAction
		record bool
		quits  bool
	}{
		{"esc goes back", keyEsc, nil, ActionBack, false, true},
		{"enter opens detail", keyEnter, nil, ActionDetail, true, true},
		{"e exports", runes("e"), nil, ActionExport, false, true},
		{"n without create is ignored", runes("n"), nil, ActionBack, false, false},
		{"n creates", runes("n"), func(c *EntityPageConfig) { c.CanCreate = true }, ActionCreate, false, true},
		{"E edits the row", runes("E"), func(c *EntityPageConfig) { c.CanEdit = true }, ActionEdit, true, true},
		{"u uploads", runes("u"), func(c *EntityPageConfig) { c.CanUpload = true }, ActionUpload, false, true},
		{"c completes the row", runes("c"), func(c *EntityPageConfig) { c.CanComplete = true }, ActionComplete, true, true},
		{"r reloads", runes("r"), func(c *EntityPageConfig) {
			c.Load = func(context.Context) ([]models.Record, error) { return nil, nil }
		}, ActionReload, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestPage(t, 3, tt.caps)
			m, _ = press(m, tt.key)
			if m.Quitting != tt.quits {
				t.Fatalf("Quitting = %v, want %v", m.Quitting, tt.quits)
			}
			if !tt.quits {
				return
			}
			res := m.Result()
			if res.Action != tt.want {
				t.Errorf("action = %d, want %d", res.Action, tt.want)
			}
			if tt.record && res.Record["_id"] != "r000" {
				t.Errorf("record = %v, want r000", res.Record)
			}
			if !tt.record && res.Record != nil {
				t.Errorf("unexpected record %v", res.Record)
			}
		})
	}
}

func TestEntityPageNothingToExport(t *testing.T) {
	m := newTestPage(t, 0, nil)
	m, _ = press(m, runes("e"))
	if m.Quitting {
		t.Fatal("export with no rows should not leave the page")
	}
	if m.StatusMsg != "Nothing to export" {
		t.Errorf("status = %q", m.StatusMsg)
	}
}

func TestEntityPageReloadKeepsFilters(t *testing.T) {
	m := newTestPage(t, 25, nil)
	m, _ = press(m, runes("/"), runes("store-00"), keyEnter)

	next, _ := m.Update(entityLoadedMsg{records: pageRecords(30)})
	m = next.(EntityPageModel)

	if m.rt.SearchTerm() != "store-00" {
		t.Errorf("search term lost on reload: %q", m.rt.SearchTerm())
	}
	if n := len(m.rt.Baseline()); n != 30 {
		t.Errorf("baseline = %d, want 30", n)
	}
	if n := len(m.rt.Filtered()); n != 10 {
		t.Errorf("filtered = %d, want 10", n)
	}
}

// typedRecords tags every third record as a business loan.
func typedRecords(n int) []models.Record {
	records := pageRecords(n)
	for i, r := range records {
		r["loanType"] = "Personal Loan"
		if i%3 == 0 {
			r["loanType"] = "Business Loan"
		}
	}
	return records
}

func TestEntityPageLoanTypeCycle(t *testing.T) {
	m := newTestPage(t, 0, func(c *EntityPageConfig) {
		c.MatchField = "loanType"
		c.MatchValues = []string{"Personal Loan", "Business Loan"}
	})
	m.rt.Initialize(typedRecords(9))
	m.refreshTable()

	tests := []struct {
		label string
		want  int
	}{
		{"Personal Loan", 6},
		{"Business Loan", 3},
		{"All", 9},
	}
	for _, tt := range tests {
		m, _ = press(m, runes("t"))
		if got := m.matchLabel(); got != tt.label {
			t.Fatalf("type = %q, want %q", got, tt.label)
		}
		if n := len(m.rt.Filtered()); n != tt.want {
			t.Errorf("%s: %d rows, want %d", tt.label, n, tt.want)
		}
		if !strings.Contains(m.queryInfo(), "Type "+tt.label) {
			t.Errorf("query info %q does not show the type", m.queryInfo())
		}
	}
}

func TestEntityPageLoanTypeSurvivesReload(t *testing.T) {
	m := newTestPage(t, 0, func(c *EntityPageConfig) {
		c.MatchField = "loanType"
		c.MatchValues = []string{"Personal Loan", "Business Loan"}
	})
	m.rt.Initialize(typedRecords(9))
	m, _ = press(m, runes("t"), runes("t"))

	next, _ := m.Update(entityLoadedMsg{records: typedRecords(12)})
	m = next.(EntityPageModel)
	if m.matchLabel() != "Business Loan" {
		t.Errorf("type lost on reload: %q", m.matchLabel())
	}
	if n := len(m.rt.Filtered()); n != 4 {
		t.Errorf("filtered = %d, want 4", n)
	}
}

func TestEntityPageTypeKeyWithoutMatch(t *testing.T) {
	m := newTestPage(t, 5, nil)
	m, _ = press(m, runes("t"))
	if !m.rt.Match().IsZero() {
		t.Error("t should do nothing on pages without a type filter")
	}
	if strings.Contains(m.helpText(), "t: type") {
		t.Error("help should not offer t")
	}
}

func TestEntityPagePhoneLookup(t *testing.T) {
	withLookup := func(c *EntityPageConfig) { c.PhoneLookup = true }
	tests := []struct {
		name      string
		cfg       func(*EntityPageConfig)
		typed     string
		wantQuit  bool
		wantPhone string
	}{
		{"number is looked up", withLookup, "9123400001", true, "9123400001"},
		{"partial number", withLookup, "0001", true, "0001"},
		{"letters rejected", withLookup, "91a34", false, ""},
		{"too short", withLookup, "912", false, ""},
		{"empty with no lookup stays", withLookup, "", false, ""},
		{"empty clears a lookup", func(c *EntityPageConfig) { c.PhoneLookup, c.Phone = true, "9123400001" }, "", true, ""},
		{"disabled", nil, "9123400001", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestPage(t, 3, tt.cfg)
			m, _ = press(m, runes("p"))
			m.input.SetValue(tt.typed)
			m, _ = press(m, keyEnter)
			if m.Quitting != tt.wantQuit {
				t.Fatalf("Quitting = %v, want %v", m.Quitting, tt.wantQuit)
			}
			if !tt.wantQuit {
				return
			}
			res := m.Result()
			if res.Action != ActionPhoneLookup || res.Phone != tt.wantPhone {
				t.Errorf("result = %+v, want lookup of %q", res, tt.wantPhone)
			}
		})
	}
}

func TestEntityPageUnauthorized(t *testing.T) {
	m := newTestPage(t, 3, nil)
	next, cmd := m.Update(entityLoadedMsg{err: fmt.Errorf("list: %w", api.ErrUnauthorized)})
	m = next.(EntityPageModel)
	if cmd == nil || !m.Quitting {
		t.Fatal("unauthorized load should quit the page")
	}
	if !errors.Is(m.Result().Err, api.ErrUnauthorized) {
		t.Errorf("Err = %v", m.Result().Err)
	}
}

func TestEntityPageLoadError(t *testing.T) {
	m := newTestPage(t, 3, nil)
	next, _ := m.Update(entityLoadedMsg{err: errors.New("boom")})
	m = next.(EntityPageModel)
	if m.Quitting {
		t.Fatal("a load error should stay on the page")
	}
	if m.err == nil {
		t.Error("error should be shown")
	}
	if n := len(m.rt.Baseline()); n != 3 {
		t.Errorf("baseline should be kept, got %d", n)
	}
}

type fakeSnapshots struct {
	saved   map[models.Entity][]models.Record
	savedAt time.Time
}

func (f *fakeSnapshots) SaveSnapshot(e models.Entity, records []models.Record) error {
	if f.saved == nil {
		f.saved = map[models.Entity][]models.Record{}
	}
	f.saved[e] = records
	return nil
}

func (f *fakeSnapshots) LoadSnapshot(e models.Entity) ([]models.Record, time.Time, bool, error) {
	r, ok := f.saved[e]
	return r, f.savedAt, ok, nil
}

func TestEntityPageLoadSavesSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{}
	m := newTestPage(t, 0, func(c *EntityPageConfig) {
		c.Reload = true
		c.Snapshots = snaps
		c.Load = func(context.Context) ([]models.Record, error) { return pageRecords(4), nil }
	})

	msg := m.loadCmd()().(entityLoadedMsg)
	if msg.err != nil || len(msg.records) != 4 {
		t.Fatalf("load msg = %+v", msg)
	}
	if len(snaps.saved[models.EntityStore]) != 4 {
		t.Error("successful load should save a snapshot")
	}
}

func TestEntityPageSnapshotFallback(t *testing.T) {
	savedAt := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	snaps := &fakeSnapshots{savedAt: savedAt}
	snaps.SaveSnapshot(models.EntityStore, pageRecords(7))

	m := newTestPage(t, 0, func(c *EntityPageConfig) {
		c.Reload = true
		c.Snapshots = snaps
		c.Load = func(context.Context) ([]models.Record, error) { return nil, errors.New("connection refused") }
	})

	msg := m.loadCmd()().(entityLoadedMsg)
	if !msg.snapshotAt.Equal(savedAt) {
		t.Fatalf("snapshotAt = %v", msg.snapshotAt)
	}

	next, _ := m.Update(msg)
	m = next.(EntityPageModel)
	if n := len(m.rt.Baseline()); n != 7 {
		t.Errorf("baseline from snapshot = %d, want 7", n)
	}
	if !strings.Contains(m.StatusMsg, "Backend unavailable") {
		t.Errorf("status = %q", m.StatusMsg)
	}
	if m.err != nil {
		t.Errorf("snapshot fallback should not show an error, got %v", m.err)
	}
}

func TestEntityPageUnauthorizedSkipsSnapshot(t *testing.T) {
	snaps := &fakeSnapshots{}
	snaps.SaveSnapshot(models.EntityStore, pageRecords(2))
	m := newTestPage(t, 0, func(c *EntityPageConfig) {
		c.Reload = true
		c.Snapshots = snaps
		c.Load = func(context.Context) ([]models.Record, error) { return nil, api.ErrUnauthorized }
	})
	msg := m.loadCmd()().(entityLoadedMsg)
	if !msg.snapshotAt.IsZero() || msg.records != nil {
		t.Errorf("unauthorized load should not use the snapshot: %+v", msg)
	}
}

func TestEntityPageView(t *testing.T) {
	m := newTestPage(t, 12, nil)
	view := m.View()
	for _, want := range []string{"Stores", "Showing 1 to 10 of 12 entries", "Page 1/2"} {
		if !strings.Contains(stripEscapeCodes(view), want) {
			t.Errorf("view missing %q", want)
		}
	}
}
