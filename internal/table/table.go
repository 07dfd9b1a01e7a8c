// Package table implements the filtered, sortable, paginated record view
// used by every list page of the console.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// DefaultPageSizes is the page size allow-list used when none is configured.
var DefaultPageSizes = []int{50}

// ErrPageSizeNotAllowed is returned by SetPageSize for sizes outside the
// configured allow-list.
var ErrPageSizeNotAllowed = errors.New("page size not allowed")

// State is the state of the optional remote refetch.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateErrorFallback
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateErrorFallback:
		return "error-fallback"
	default:
		return "idle"
	}
}

// Fetcher loads records for an inclusive calendar date range. from and to
// are local YYYY-MM-DD dates.
type Fetcher func(ctx context.Context, from, to, mode string) ([]models.Record, error)

// Config configures a Table.
type Config struct {
	SearchFields []string // empty searches every field
	DateFields   []string // first parseable field is the record timestamp
	PageSizes    []int
	PageSize     int // initial size, defaults to the first allowed size
	SortKey      string
	SortDir      Direction
	Flattener    *models.Flattener
	Fetcher      Fetcher // nil keeps date filtering local
	Mode         string  // passed to the fetcher, defaults to "created"
	Logger       *log.Logger
}

// ViewState is a snapshot of the derived view.
type ViewState struct {
	CurrentPage int
	PageSize    int
	SortKey     string
	SortDir     Direction
	SearchTerm  string
	DateRange   DateRange
	Match       Match
	Filtered    []models.Record
	Page        []models.Record
}

// Table owns a baseline record collection and derives the visible view.
// It is not safe for concurrent use; all calls come from one goroutine.
type Table struct {
	cfg    Config
	logger *log.Logger

	baseline []models.Record
	source   []models.Record // baseline or the last remote result
	filtered []models.Record

	page      int
	pageSize  int
	sortKey   string
	sortDir   Direction
	search    string
	dateRange DateRange
	match     Match

	state     State
	seq       uint64
	cancel    context.CancelFunc
	ctx       context.Context
	closeCtx  context.CancelFunc
	closed    bool
	pickerGen int
}

// New creates an empty table.
func New(cfg Config) *Table {
	cfg.PageSizes = slices.DeleteFunc(slices.Clone(cfg.PageSizes), func(n int) bool { return n < 1 })
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = DefaultPageSizes
	}
	if cfg.PageSize == 0 || !slices.Contains(cfg.PageSizes, cfg.PageSize) {
		cfg.PageSize = cfg.PageSizes[0]
	}
	if cfg.Mode == "" {
		cfg.Mode = "created"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Table{
		cfg:      cfg,
		logger:   logger.WithPrefix("table"),
		page:     1,
		pageSize: cfg.PageSize,
		sortKey:  cfg.SortKey,
		sortDir:  cfg.SortDir,
		ctx:      ctx,
		closeCtx: cancel,
	}
	t.recompute()
	return t
}

// Initialize sets the baseline collection and drops all filter state.
func (t *Table) Initialize(records []models.Record) {
	t.invalidate()
	t.baseline = t.normalize(records)
	t.source = t.baseline
	t.search = ""
	t.dateRange = DateRange{}
	t.match = Match{}
	t.state = StateIdle
	t.page = 1
	t.recompute()
}

// SetSearchTerm filters the current source locally and resets the page.
func (t *Table) SetSearchTerm(term string) {
	t.search = strings.TrimSpace(term)
	t.page = 1
	t.recompute()
}

// SetMatch keeps only records whose field equals the match value and
// resets the page. The zero Match clears it.
func (t *Table) SetMatch(m Match) {
	t.match = m
	t.page = 1
	t.recompute()
}

// SetDateRange applies a date constraint; the zero range clears it. When a
// fetcher is configured a non-nil Request is returned and the table stays
// loading until the matching result is applied. The local filter is
// applied immediately either way.
func (t *Table) SetDateRange(r DateRange) *Request {
	if r.IsZero() {
		t.clearRange()
		return nil
	}

	t.invalidate()
	t.dateRange = r
	t.source = t.baseline
	t.page = 1
	t.recompute()

	if t.cfg.Fetcher == nil || t.closed {
		t.state = StateIdle
		return nil
	}

	t.seq++
	ctx, cancel := context.WithCancel(t.ctx)
	t.cancel = cancel
	t.state = StateLoading
	from, to := t.dateRange.Calendar()
	return &Request{
		Seq:   t.seq,
		From:  from,
		To:    to,
		Mode:  t.cfg.Mode,
		Range: t.dateRange,
		ctx:   ctx,
		fetch: t.cfg.Fetcher,
	}
}

// ClearDateFilter removes the date constraint and asks the date widget to
// re-render empty.
func (t *Table) ClearDateFilter() {
	t.clearRange()
	t.pickerGen++
}

func (t *Table) clearRange() {
	t.invalidate()
	t.dateRange = DateRange{}
	t.source = t.baseline
	t.state = StateIdle
	t.page = 1
	t.recompute()
}

// ApplyFetchResult applies the outcome of a Request. Results that are not
// for the latest request, or that arrive after Close, are ignored and false
// is returned.
func (t *Table) ApplyFetchResult(res FetchResult) bool {
	if t.closed || res.Seq != t.seq || t.state != StateLoading {
		return false
	}
	t.cancel = nil

	if res.Err != nil {
		t.logger.Warn("date filtered fetch failed, filtering locally",
			"range", t.dateRange.String(), "err", res.Err)
		t.source = t.baseline
		t.state = StateErrorFallback
	} else {
		t.source = t.normalize(res.Records)
		t.state = StateIdle
		t.logger.Debug("date filtered fetch applied", "range", t.dateRange.String(), "records", len(t.source))
	}
	t.page = 1
	t.recompute()
	return true
}

// SetSort sorts the filtered set by key. The current page is kept.
func (t *Table) SetSort(key string, dir Direction) {
	t.sortKey = key
	t.sortDir = dir
	t.recompute()
}

// SetPage moves to page n. Out-of-range pages are ignored.
func (t *Table) SetPage(n int) bool {
	if n < 1 || n > t.TotalPages() {
		return false
	}
	t.page = n
	return true
}

// NextPage advances one page if possible.
func (t *Table) NextPage() bool { return t.SetPage(t.page + 1) }

// PrevPage goes back one page if possible.
func (t *Table) PrevPage() bool { return t.SetPage(t.page - 1) }

// SetPageSize changes the page size and resets to the first page.
func (t *Table) SetPageSize(n int) error {
	if !slices.Contains(t.cfg.PageSizes, n) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrPageSizeNotAllowed, n, t.cfg.PageSizes)
	}
	t.pageSize = n
	t.page = 1
	return nil
}

// CyclePageSize steps through the allow-list by delta positions.
func (t *Table) CyclePageSize(delta int) {
	sizes := t.cfg.PageSizes
	i := slices.Index(sizes, t.pageSize)
	i = (i + delta + len(sizes)) % len(sizes)
	_ = t.SetPageSize(sizes[i])
}

// Close abandons any in-flight fetch. Later results are ignored.
func (t *Table) Close() {
	t.invalidate()
	t.closed = true
	t.closeCtx()
	if t.state == StateLoading {
		t.state = StateIdle
	}
}

// invalidate cancels the in-flight request so its result is dropped.
func (t *Table) invalidate() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
}

func (t *Table) normalize(records []models.Record) []models.Record {
	if t.cfg.Flattener != nil {
		return t.cfg.Flattener.FlattenAll(records)
	}
	out := make([]models.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func (t *Table) recompute() {
	filtered := make([]models.Record, 0, len(t.source))
	for _, r := range t.source {
		if t.matchesSearch(r) && t.matchesRange(r) && t.match.matches(r) {
			filtered = append(filtered, r)
		}
	}
	sortRecords(filtered, t.sortKey, t.sortDir)
	t.filtered = filtered
	if t.page > t.TotalPages() {
		t.page = t.TotalPages()
	}
}

// Accessors

// State returns the refetch state.
func (t *Table) State() State { return t.state }

// Loading reports whether a remote fetch is in flight.
func (t *Table) Loading() bool { return t.state == StateLoading }

// CurrentPage returns the 1-based page number.
func (t *Table) CurrentPage() int { return t.page }

// PageSize returns the page size.
func (t *Table) PageSize() int { return t.pageSize }

// PageSizes returns the allow-list.
func (t *Table) PageSizes() []int { return slices.Clone(t.cfg.PageSizes) }

// SearchTerm returns the active search term.
func (t *Table) SearchTerm() string { return t.search }

// Match returns the active field match.
func (t *Table) Match() Match { return t.match }

// DateRange returns the active date range.
func (t *Table) DateRange() DateRange { return t.dateRange }

// Sort returns the sort key and direction.
func (t *Table) Sort() (string, Direction) { return t.sortKey, t.sortDir }

// DatePickerGeneration changes every time the date filter is cleared.
func (t *Table) DatePickerGeneration() int { return t.pickerGen }

// Baseline returns the baseline collection.
func (t *Table) Baseline() []models.Record { return slices.Clone(t.baseline) }

// Filtered returns the filtered, sorted records.
func (t *Table) Filtered() []models.Record { return slices.Clone(t.filtered) }

// TotalPages returns the page count, at least 1.
func (t *Table) TotalPages() int {
	if len(t.filtered) == 0 {
		return 1
	}
	return (len(t.filtered) + t.pageSize - 1) / t.pageSize
}

// PageRecords returns the records of the current page.
func (t *Table) PageRecords() []models.Record {
	start, end := t.bounds()
	return slices.Clone(t.filtered[start:end])
}

func (t *Table) bounds() (int, int) {
	start := (t.page - 1) * t.pageSize
	if start > len(t.filtered) {
		start = len(t.filtered)
	}
	end := min(start+t.pageSize, len(t.filtered))
	return start, end
}

// Summary returns the pagination summary line.
func (t *Table) Summary() string {
	start, end := t.bounds()
	from := start + 1
	if end == 0 {
		from = 0
	}
	return fmt.Sprintf("Showing %d to %d of %d entries", from, end, len(t.filtered))
}

// View returns a snapshot of the view state.
func (t *Table) View() ViewState {
	return ViewState{
		CurrentPage: t.page,
		PageSize:    t.pageSize,
		SortKey:     t.sortKey,
		SortDir:     t.sortDir,
		SearchTerm:  t.search,
		DateRange:   t.dateRange,
		Match:       t.match,
		Filtered:    t.Filtered(),
		Page:        t.PageRecords(),
	}
}
