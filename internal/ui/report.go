package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

// CLI report styles, used outside of the full-screen programs.
var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorText).
				MarginBottom(1)

	reportHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	reportBorderStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)

	reportSummaryStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim).
				Italic(true)
)

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(ErrorStyle.Render("Error: " + message))
}

// PrintInfo prints a dim informational line
func PrintInfo(message string) {
	fmt.Println(DimStyle.Render(message))
}

// PrintRecordTable writes a bordered plain-text table of records.
//
// This is a non-interactive report: the structure is built with string
// formatting and lipgloss only colours it. Interactive pages use
// bubbles/table.
func PrintRecordTable(w io.Writer, title string, cols []rtable.Column, records []models.Record, summary string) {
	fmt.Fprintln(w, reportTitleStyle.Render(title))
	if len(records) == 0 {
		fmt.Fprintln(w, reportSummaryStyle.Render("No data"))
		return
	}

	rows := rtable.Rows(cols, records)
	labels := rtable.Labels(cols)
	widths := make([]int, len(cols))
	for i, l := range labels {
		widths[i] = StringWidth(l)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = min(max(widths[i], StringWidth(cell)), 32)
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			c = Truncate(c, widths[i])
			parts[i] = c + strings.Repeat(" ", widths[i]-StringWidth(c))
		}
		return "│ " + strings.Join(parts, " │ ") + " │"
	}

	total := 1
	for _, w := range widths {
		total += w + 3
	}
	sep := strings.Repeat("─", total-2)

	fmt.Fprintln(w, reportBorderStyle.Render("┌"+sep+"┐"))
	fmt.Fprintln(w, reportHeaderStyle.Render(format(labels)))
	fmt.Fprintln(w, reportBorderStyle.Render("├"+sep+"┤"))
	for _, row := range rows {
		fmt.Fprintln(w, NormalStyle.Render(format(row)))
	}
	fmt.Fprintln(w, reportBorderStyle.Render("└"+sep+"┘"))
	if summary != "" {
		fmt.Fprintln(w, reportSummaryStyle.Render(summary))
	}
}
