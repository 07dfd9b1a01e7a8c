package table

import "github.com/kodstechnologies/lm-backoffice/internal/models"

// Column describes one rendered column.
type Column struct {
	Key      string
	Label    string
	Render   func(models.Record) string // optional
	Fallback string                     // shown for absent values, "-" when empty
	MinWidth int
	Weight   int // share of spare width, 0 keeps MinWidth
}

// Cell renders the column for r. Date-time strings are shown as DD-MM-YYYY.
func (c Column) Cell(r models.Record) string {
	fallback := c.Fallback
	if fallback == "" {
		fallback = "-"
	}
	if c.Render != nil {
		if s := c.Render(r); s != "" {
			return s
		}
		return fallback
	}
	v, _ := r.Get(c.Key)
	return models.DisplayValue(v, fallback)
}

// Labels returns the column headers.
func Labels(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

// Rows renders records as string rows.
func Rows(cols []Column, records []models.Record) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Cell(r)
		}
		rows[i] = row
	}
	return rows
}
