package table

import (
	"strings"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Match is an exact, case-insensitive equality filter on one field, such
// as loanType = "Personal Loan".
type Match struct {
	Field string
	Value string
}

// IsZero reports whether the match is unset.
func (m Match) IsZero() bool { return m.Field == "" || m.Value == "" }

func (m Match) matches(r models.Record) bool {
	if m.IsZero() {
		return true
	}
	return strings.EqualFold(r.Text(m.Field), m.Value)
}

func (t *Table) matchesSearch(r models.Record) bool {
	if t.search == "" {
		return true
	}
	needle := strings.ToLower(t.search)

	if len(t.cfg.SearchFields) == 0 {
		for k := range r {
			if containsFold(r, k, needle) {
				return true
			}
		}
		return false
	}
	for _, f := range t.cfg.SearchFields {
		if containsFold(r, f, needle) {
			return true
		}
	}
	return false
}

func containsFold(r models.Record, field, needle string) bool {
	v, ok := r.Get(field)
	if !ok {
		return false
	}
	switch v.(type) {
	case map[string]any, []any, models.Record:
		return false
	}
	return strings.Contains(strings.ToLower(models.ValueText(v)), needle)
}

// matchesRange excludes records without a timestamp while a range is set.
func (t *Table) matchesRange(r models.Record) bool {
	if t.dateRange.IsZero() {
		return true
	}
	ts, ok := r.FirstTime(t.cfg.DateFields...)
	if !ok {
		return false
	}
	return t.dateRange.Contains(ts)
}
