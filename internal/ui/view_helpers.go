package ui

// view_helpers.go provides common View() rendering helpers.

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
)

// =============================================================================
// Table Rendering with Full-Width Selection
// =============================================================================

// RenderTableWithSelection renders a bubbles table with a full-width
// selection highlight.
//
// bubbles/table View() output is the header on line 0 followed by the
// visible data rows; a divider is added after the header here.
func RenderTableWithSelection(t table.Model, layout Layout) string {
	lines := strings.Split(t.View(), "\n")
	result := make([]string, 0, len(lines)+1)

	cursor := t.Cursor()
	height := t.Height()
	totalRows := len(t.Rows())

	// match the bubbles viewport: it scrolls once the cursor passes the bottom
	start := 0
	if totalRows > height {
		if cursor >= height {
			start = cursor - height + 1
		}
		start = min(start, totalRows-height)
	}
	visibleCursor := cursor - start

	for i, line := range lines {
		if i == 0 {
			result = append(result, NormalStyle.Render(line))
			result = append(result, FullWidthDivider(layout.InnerWidth))
			continue
		}

		if totalRows > 0 && i-1 == visibleCursor {
			// strip first so embedded resets don't cut the background
			clean := stripEscapeCodes(line)
			if w := StringWidth(clean); w < layout.InnerWidth {
				clean += strings.Repeat(" ", layout.InnerWidth-w)
			} else if w > layout.InnerWidth {
				clean = truncateToWidth(clean, layout.InnerWidth)
			}
			result = append(result, SelectedStyle.Render(clean))
			continue
		}
		result = append(result, NormalStyle.Render(line))
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// View Header - Title + Divider Pattern
// =============================================================================

// ViewHeaderWithSubtitle renders title + subtitle + divider + spacing.
func ViewHeaderWithSubtitle(title, subtitle string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	if subtitle != "" {
		b.WriteString(RenderDim(subtitle))
		b.WriteString("\n")
	}
	b.WriteString(FullWidthDivider(innerWidth))
	b.WriteString("\n\n")
	return b.String()
}

// =============================================================================
// Text Centering
// =============================================================================

// CenterTextPadded centers text and pads to full width.
func CenterTextPadded(text string, width int) string {
	textW := StringWidth(text)
	if textW >= width {
		return text
	}
	left := (width - textW) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-textW-left)
}

// TwoBoxView constructs the standard two-box layout:
//
//	┌────────────────────────┐
//	│ Main content           │  <- red border
//	└────────────────────────┘
//	┌────────────────────────┐
//	│   Centered help text   │  <- white border, 1 row
//	└────────────────────────┘
func TwoBoxView(content, helpText string, layout Layout) string {
	return BuildTwoBoxView(content, helpText, layout)
}

// FullWidthDivider returns a horizontal divider spanning the inner width.
func FullWidthDivider(innerWidth int) string {
	return strings.Repeat("─", innerWidth)
}

// RenderListItem renders a bulleted item with optional selection highlight.
func RenderListItem(text string, selected bool, width int) string {
	if selected {
		return RenderSelectedWidth("> "+text, width)
	}
	return NormalStyle.Width(width).Render("  " + text)
}
