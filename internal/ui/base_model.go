package ui

// base_model.go provides common helpers for Bubble Tea models.

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// InitTable creates and configures a table with proper styling and dimensions.
// Use this instead of calling table.New() directly.
//
// Example:
//
//	columns := CalculateColumns(specs, layout.TableWidth)
//	m.table = InitTable(columns, rows, layout)
func InitTable(columns []table.Column, rows []table.Row, layout Layout) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(layout.TableHeight),
	)
	ApplyTableStyles(&t)
	t.GotoTop()
	return t
}

// StandardInit asks the runtime for the window size.
func StandardInit() tea.Cmd {
	return tea.WindowSize()
}

// HandleNavigationKeys handles up/down/j/k and returns the new cursor,
// clamped to [0, maxItems).
func HandleNavigationKeys(key string, cursor, maxItems int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			return cursor - 1
		}
	case "down", "j":
		if cursor < maxItems-1 {
			return cursor + 1
		}
	}
	return cursor
}
