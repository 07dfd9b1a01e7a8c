package table

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// sortRecords stable-sorts records in place by key. Records without the
// key go last in either direction.
func sortRecords(records []models.Record, key string, dir Direction) {
	if key == "" {
		return
	}
	slices.SortStableFunc(records, func(a, b models.Record) int {
		_, okA := a.Get(key)
		_, okB := b.Get(key)
		if okA != okB {
			if okA {
				return -1
			}
			return 1
		}
		c := compareValues(a, b, key)
		if dir == Descending {
			return -c
		}
		return c
	})
}

// compareValues is a three-way comparison of field key. Absent values
// order after present ones. Numbers compare numerically, date-time
// strings chronologically, booleans false before true and everything else
// lexically.
func compareValues(a, b models.Record, key string) int {
	va, okA := a.Get(key)
	vb, okB := b.Get(key)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}

	if na, ok := a.Number(key); ok && isNumeric(va) {
		if nb, ok := b.Number(key); ok && isNumeric(vb) {
			return cmp.Compare(na, nb)
		}
	}
	if ta, ok := a.Time(key); ok {
		if tb, ok := b.Time(key); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := va.(bool); ok {
		if bb, ok := vb.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(models.ValueText(va), models.ValueText(vb))
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, int, int64:
		return true
	}
	return false
}
