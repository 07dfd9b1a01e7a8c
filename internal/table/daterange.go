package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// DateRange is an inclusive pair of instants. The zero value means no
// date constraint.
type DateRange struct {
	From time.Time
	To   time.Time
	set  bool
}

// NewDateRange builds a range from two bounds in either order.
func NewDateRange(a, b time.Time) DateRange {
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{From: a, To: b, set: true}
}

// IsZero reports whether the range applies no constraint.
func (r DateRange) IsZero() bool {
	return !r.set
}

// Contains reports whether t lies within [From, To].
func (r DateRange) Contains(t time.Time) bool {
	if !r.set {
		return true
	}
	return !t.Before(r.From) && !t.After(r.To)
}

// Calendar returns the bounds as local YYYY-MM-DD strings.
func (r DateRange) Calendar() (from, to string) {
	return models.FormatCalendarDate(r.From), models.FormatCalendarDate(r.To)
}

func (r DateRange) String() string {
	if !r.set {
		return ""
	}
	return models.FormatDDMMYYYY(r.From) + " to " + models.FormatDDMMYYYY(r.To)
}

// ParseDateRange parses "DD-MM-YYYY to DD-MM-YYYY" (or a single date) in
// local time. The upper bound is moved to the last nanosecond of its day so
// the whole day is included.
func ParseDateRange(input string) (DateRange, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return DateRange{}, nil
	}

	parts := strings.Split(input, " to ")
	if len(parts) > 2 {
		return DateRange{}, fmt.Errorf("invalid date range %q", input)
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	var bounds [2]time.Time
	for i, p := range parts {
		t, err := time.ParseInLocation("02-01-2006", strings.TrimSpace(p), time.Local)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid date %q, expected DD-MM-YYYY", strings.TrimSpace(p))
		}
		bounds[i] = t
	}

	r := NewDateRange(bounds[0], bounds[1])
	r.To = endOfDay(r.To)
	return r, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
