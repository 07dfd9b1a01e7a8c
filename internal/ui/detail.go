package ui

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// RecordDetail builds the detail view of a record: its plain fields on the
// first tab and one tab per nested object.
func RecordDetail(e models.Entity, r models.Record) TabbedTableConfig {
	return recordPages(e, r).
		WithHelpText("Tab/←/→: switch page | ↑/↓: scroll | q/Esc: back").
		Build()
}

func recordPages(e models.Entity, r models.Record) *TabbedTableBuilder {
	schema := models.SchemaFor(e)
	b := NewTabbedTable(fmt.Sprintf("%s: %s", schema.Title, r.ID(schema.IDField, "_id", "id"))).
		AddReadOnlyPage("Fields", FieldColumns(), FieldRows(r))

	var nested []string
	for k, v := range r {
		if _, ok := v.(map[string]any); ok {
			nested = append(nested, k)
		}
	}
	slices.Sort(nested)
	for _, k := range nested {
		sub, _ := r.Map(k)
		b.AddReadOnlyPage(k, FieldColumns(), FieldRows(sub))
	}
	return b
}

// MerchantDetail is the merchant record followed by a tab listing its
// stores.
func MerchantDetail(r models.Record, stores []models.Record) TabbedTableConfig {
	storeCols := EntityColumns(models.EntityStore)
	specs := SpecsFor(storeCols)
	widths := CalculateColumns(specs, DefaultLayout().TableWidth)

	return recordPages(models.EntityMerchant, r).
		WithSubtitle(fmt.Sprintf("%s  |  %s stores", r.Text("Name"), Count(len(stores)))).
		AddReadOnlyPage(fmt.Sprintf("Stores (%d)", len(stores)), specs, TableRows(storeCols, widths, stores)).
		WithHelpText("Tab/←/→: switch page | ↑/↓: scroll | q/Esc: back").
		Build()
}

// LoanDetail builds the loan view: applicant fields, lender offers and the
// offer summary.
func LoanDetail(row models.Record, offers []models.Record, summary models.LoanSummary) TabbedTableConfig {
	offerCols := EntityColumns(models.EntityOffer)
	specs := SpecsFor(offerCols)
	widths := CalculateColumns(specs, DefaultLayout().TableWidth)

	subtitle := fmt.Sprintf("%s  |  %s  |  %s",
		row.Text("mobileNumber"),
		models.DisplayValue(row["loanType"], "N/A"),
		applicantName(row))

	return NewTabbedTable("Loan "+row.Text("leadId")).
		WithSubtitle(subtitle).
		WithHelpText("Tab/←/→: switch page | ↑/↓: scroll | q/Esc: back").
		AddReadOnlyPage("Applicant", FieldColumns(), FieldRows(row)).
		AddReadOnlyPage("Offers", specs, TableRows(offerCols, widths, offers)).
		AddReadOnlyPage("Summary", FieldColumns(), SummaryRows(summary)).
		Build()
}

// SummaryRows renders an offer summary. Figures the backend left out show
// as "-".
func SummaryRows(s models.LoanSummary) []table.Row {
	total := "-"
	if s.OffersTotal != nil {
		total = Count(*s.OffersTotal)
	}
	amount := "-"
	if s.MaxLoanAmount != nil {
		amount = Amount(models.Record{"v": *s.MaxLoanAmount}, "v")
	}
	return []table.Row{
		{"Offers", total},
		{"Max loan amount", amount},
		{"Min MPR %", percent(s.MinMPR)},
		{"Max MPR %", percent(s.MaxMPR)},
	}
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
