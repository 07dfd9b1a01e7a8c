package ui

import (
	"testing"

	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantWidth     int
		wantHeight    int
	}{
		{"unknown size uses defaults", 0, 0, DefaultWidth, DefaultHeight},
		{"narrow terminal is clamped up", 60, 40, MinViewportWidth, 40},
		{"wide terminal is clamped down", 300, 40, MaxViewportWidth, 40},
		{"short terminal keeps minimum height", 120, 5, 120, MinViewportHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(tt.width, tt.height)
			if l.ViewportWidth != tt.wantWidth {
				t.Errorf("ViewportWidth = %d, want %d", l.ViewportWidth, tt.wantWidth)
			}
			if l.ViewportHeight != tt.wantHeight {
				t.Errorf("ViewportHeight = %d, want %d", l.ViewportHeight, tt.wantHeight)
			}
			if l.InnerWidth != l.ViewportWidth-2 {
				t.Errorf("InnerWidth = %d, want %d", l.InnerWidth, l.ViewportWidth-2)
			}
			if l.TableHeight < MinTableHeight {
				t.Errorf("TableHeight = %d, below minimum", l.TableHeight)
			}
		})
	}
}

func TestCalculateColumns(t *testing.T) {
	specs := []ColumnSpec{
		{Title: "ID", FixedWidth: 10},
		{Title: "Name", FlexRatio: 3},
		{Title: "City", FlexRatio: 1, MinWidth: 30},
	}
	cols := CalculateColumns(specs, 100)

	if len(cols) != 3 {
		t.Fatalf("got %d columns, want 3", len(cols))
	}
	if cols[0].Width != 10 {
		t.Errorf("fixed column width = %d, want 10", cols[0].Width)
	}
	// 100 - 10 fixed - 6 padding = 84 split 3:1
	if cols[1].Width != 63 {
		t.Errorf("flex column width = %d, want 63", cols[1].Width)
	}
	if cols[2].Width != 30 {
		t.Errorf("minimum width not applied: %d", cols[2].Width)
	}
	if cols[1].Title != "Name" {
		t.Errorf("title = %q", cols[1].Title)
	}
}

func TestSpecsFor(t *testing.T) {
	specs := SpecsFor([]rtable.Column{
		{Key: "_id", Label: "ID"},
		{Key: "Name", Label: "Store Name", Weight: 2, MinWidth: 12},
	})
	if specs[0].FixedWidth != 8 {
		t.Errorf("unweighted column should be fixed at 8, got %+v", specs[0])
	}
	if specs[1].FlexRatio != 2 || specs[1].MinWidth != 12 || specs[1].FixedWidth != 0 {
		t.Errorf("weighted column spec = %+v", specs[1])
	}
}

func TestCount(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Errorf("Count = %q", got)
	}
}
