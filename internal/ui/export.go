package ui

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

// ExportFile writes records to filename in the given format (FormatCSV or
// FormatMarkdown).
func ExportFile(filename, format, title string, cols []rtable.Column, records []models.Record) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := ExportRecords(f, format, title, cols, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// ExportRecords writes records as CSV or as a Markdown document.
func ExportRecords(w io.Writer, format, title string, cols []rtable.Column, records []models.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, cols, records)
	case FormatMarkdown:
		_, err := io.WriteString(w, GenerateMarkdown(title, cols, records, time.Now()))
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteCSV writes a header row of column labels followed by one row per
// record, using the rendered cell text.
func WriteCSV(w io.Writer, cols []rtable.Column, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rtable.Labels(cols)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rtable.Rows(cols, records)); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// GenerateMarkdown renders records as a Markdown table document.
func GenerateMarkdown(title string, cols []rtable.Column, records []models.Record, generated time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Total Records:** %d\n\n", len(records))

	if len(records) == 0 {
		sb.WriteString("No data\n")
		return sb.String()
	}

	labels := rtable.Labels(cols)
	sb.WriteString("| " + strings.Join(labels, " | ") + " |\n")
	seps := make([]string, len(labels))
	for i, l := range labels {
		seps[i] = strings.Repeat("-", max(len(l), 3))
	}
	sb.WriteString("|" + strings.Join(seps, "|") + "|\n")

	for _, row := range rtable.Rows(cols, records) {
		for i, cell := range row {
			row[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return sb.String()
}

// DefaultExportName suggests a file base name for an entity export.
func DefaultExportName(e models.Entity, now time.Time) string {
	return fmt.Sprintf("%s-%s", e, now.Format("20060102-150405"))
}
