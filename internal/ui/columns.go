package ui

// columns.go maps record columns onto bubbles/table column widths and holds
// the column set of every entity page.

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

// =============================================================================
// Column specs
// =============================================================================

// ColumnSpec defines a table column with flexible or fixed width.
type ColumnSpec struct {
	Title      string
	MinWidth   int // 0 = no minimum
	FixedWidth int // if > 0, use this exact width (ignores FlexRatio)
	FlexRatio  int // relative share of the remaining width
}

// CalculateColumns computes column widths from specs. Flexible columns split
// the space left after fixed columns by ratio, respecting minimums.
//
//	columns := CalculateColumns([]ColumnSpec{
//	    {Title: "Name", FlexRatio: 30, MinWidth: 20},
//	    {Title: "Phone", FixedWidth: 12},
//	}, layout.TableWidth)
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	totalWidth = max(totalWidth, 50)

	fixedTotal, flexTotal := 0, 0
	for _, s := range specs {
		if s.FixedWidth > 0 {
			fixedTotal += s.FixedWidth
		} else {
			flexTotal += s.FlexRatio
		}
	}
	// bubbles pads each cell with one space on both sides
	remaining := max(totalWidth-fixedTotal-2*len(specs), 0)

	columns := make([]table.Column, len(specs))
	for i, s := range specs {
		width := s.FixedWidth
		if width == 0 && flexTotal > 0 {
			width = remaining * s.FlexRatio / flexTotal
		}
		if s.MinWidth > 0 && width < s.MinWidth {
			width = s.MinWidth
		}
		columns[i] = table.Column{Title: s.Title, Width: width}
	}
	return columns
}

// SpecsFor derives width specs from record columns. Weighted columns flex,
// the rest keep their minimum width.
func SpecsFor(cols []rtable.Column) []ColumnSpec {
	specs := make([]ColumnSpec, len(cols))
	for i, c := range cols {
		minW := c.MinWidth
		if minW == 0 {
			minW = max(len(c.Label), 8)
		}
		if c.Weight > 0 {
			specs[i] = ColumnSpec{Title: c.Label, MinWidth: minW, FlexRatio: c.Weight}
		} else {
			specs[i] = ColumnSpec{Title: c.Label, FixedWidth: minW}
		}
	}
	return specs
}

// SingleColumnSpec returns a column spec for single-column selectors.
func SingleColumnSpec(title string) []ColumnSpec {
	return []ColumnSpec{{Title: title, FlexRatio: 100}}
}

// TableRows renders records as bubbles rows, truncating cells to the
// computed column widths.
func TableRows(cols []rtable.Column, widths []table.Column, records []models.Record) []table.Row {
	cells := rtable.Rows(cols, records)
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		for j := range row {
			if j < len(widths) {
				row[j] = Truncate(row[j], widths[j].Width)
			}
		}
		rows[i] = row
	}
	return rows
}

// =============================================================================
// Cell renderers
// =============================================================================

// Amount renders a rupee amount with thousands separators.
func Amount(r models.Record, key string) string {
	n, ok := r.Number(key)
	if !ok {
		return ""
	}
	return "₹" + humanize.Commaf(n)
}

func amountColumn(key, label string) rtable.Column {
	return rtable.Column{
		Key: key, Label: label, MinWidth: 14,
		Render: func(r models.Record) string { return Amount(r, key) },
	}
}

func activeColumn() rtable.Column {
	return rtable.Column{
		Key: "IsActive", Label: "Active", MinWidth: 7,
		Render: func(r models.Record) string {
			if _, ok := r.Get("IsActive"); !ok {
				return ""
			}
			if r.Bool("IsActive") {
				return "yes"
			}
			return "no"
		},
	}
}

func domainColumn(field string) rtable.Column {
	return rtable.Column{
		Key: field, Label: "Domain", MinWidth: 14, Weight: 10,
		Render: func(r models.Record) string { return models.EmailDomain(r, field) },
	}
}

func updatedAgoColumn() rtable.Column {
	return rtable.Column{
		Key: "updatedAt", Label: "Updated", MinWidth: 14,
		Render: func(r models.Record) string {
			t, ok := r.Time("updatedAt")
			if !ok {
				return ""
			}
			return humanize.Time(t)
		},
	}
}

func createdColumn() rtable.Column {
	return rtable.Column{Key: "createdAt", Label: "Created", MinWidth: 11}
}

func applicantName(r models.Record) string {
	return strings.TrimSpace(r.Text("firstName") + " " + r.Text("lastName"))
}

// =============================================================================
// Entity column sets
// =============================================================================

// EntityColumns returns the list columns of an entity page.
func EntityColumns(e models.Entity) []rtable.Column {
	switch e {
	case models.EntityLoan:
		return []rtable.Column{
			{Key: "serialNo", Label: "#", MinWidth: 4},
			{Key: "leadId", Label: "Lead ID", MinWidth: 10},
			{Key: "mobileNumber", Label: "Mobile", MinWidth: 11},
			{Key: "firstName", Label: "Applicant", MinWidth: 14, Weight: 20, Render: applicantName},
			{Key: "loanType", Label: "Type", MinWidth: 13, Fallback: "N/A"},
			{Key: "lenderName", Label: "Lender", MinWidth: 12, Weight: 15},
			{Key: "loginCount", Label: "Logins", MinWidth: 6},
			createdColumn(),
		}
	case models.EntityMerchant:
		return []rtable.Column{
			{Key: "MerchantId", Label: "Merchant ID", MinWidth: 11},
			{Key: "Name", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "Phone", Label: "Phone", MinWidth: 11},
			{Key: "Email", Label: "Email", MinWidth: 16, Weight: 20},
			domainColumn("Email"),
			{Key: "State", Label: "State", MinWidth: 11},
			createdColumn(),
		}
	case models.EntityStore:
		return []rtable.Column{
			{Key: "StoreCode", Label: "Code", MinWidth: 9},
			{Key: "Name", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "MerchantId", Label: "Merchant", MinWidth: 12, Weight: 10},
			{Key: "Phone", Label: "Phone", MinWidth: 11},
			{Key: "State", Label: "State", MinWidth: 11},
			activeColumn(),
			createdColumn(),
		}
	case models.EntityStoreGroup:
		return []rtable.Column{
			{Key: "GroupId", Label: "Group ID", MinWidth: 9},
			{Key: "Name", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "Phone", Label: "Phone", MinWidth: 11},
			{Key: "Email", Label: "Email", MinWidth: 16, Weight: 20},
			activeColumn(),
			createdColumn(),
		}
	case models.EntityAffiliate:
		return []rtable.Column{
			{Key: "AffiliateId", Label: "Affiliate ID", MinWidth: 12},
			{Key: "Name", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "Phone", Label: "Phone", MinWidth: 11},
			{Key: "Email", Label: "Email", MinWidth: 16, Weight: 20},
			domainColumn("Email"),
			activeColumn(),
			createdColumn(),
		}
	case models.EntityAccount:
		return []rtable.Column{
			{Key: "AccountId", Label: "Account ID", MinWidth: 10},
			{Key: "AccountName", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "AccountNumber", Label: "Number", MinWidth: 14},
			{Key: "IFSCCode", Label: "IFSC", MinWidth: 12},
			activeColumn(),
			createdColumn(),
		}
	case models.EntityOrder:
		return []rtable.Column{
			{Key: "orderId", Label: "Order ID", MinWidth: 10},
			{Key: "mobileNumber", Label: "Mobile", MinWidth: 11},
			{Key: "storeId", Label: "Store", MinWidth: 10, Weight: 10},
			amountColumn("amount", "Amount"),
			{Key: "status", Label: "Status", MinWidth: 10},
			createdColumn(),
			updatedAgoColumn(),
		}
	case models.EntityCustomer:
		return []rtable.Column{
			{Key: "name", Label: "Name", MinWidth: 14, Weight: 20},
			{Key: "mobileNumber", Label: "Mobile", MinWidth: 11},
			{Key: "email", Label: "Email", MinWidth: 16, Weight: 20},
			{Key: "pincode", Label: "Pincode", MinWidth: 8},
			createdColumn(),
		}
	case models.EntityOffer:
		return []rtable.Column{
			{Key: "lenderName", Label: "Lender", MinWidth: 14, Weight: 20},
			amountColumn("loanAmount", "Loan Amount"),
			{Key: "mpr", Label: "MPR %", MinWidth: 7},
			{Key: "tenure", Label: "Tenure (months)", MinWidth: 15},
			createdColumn(),
		}
	}
	return []rtable.Column{
		{Key: "_id", Label: "ID", MinWidth: 12, Weight: 10},
		createdColumn(),
	}
}

// FieldRows lists every field of a record as label/value rows, sorted by
// field name, for detail views.
func FieldRows(r models.Record) []table.Row {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		v := r[k]
		switch v.(type) {
		case map[string]any, []any:
			// nested payloads are shown on their own tab
			continue
		}
		rows = append(rows, table.Row{k, models.DisplayValue(v, "-")})
	}
	return rows
}

// FieldColumns are the columns of FieldRows.
func FieldColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "Field", FlexRatio: 30, MinWidth: 16},
		{Title: "Value", FlexRatio: 70, MinWidth: 30},
	}
}

// Count renders a count with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

func pageLabel(page, total int) string {
	return fmt.Sprintf("Page %d/%d", page, total)
}
