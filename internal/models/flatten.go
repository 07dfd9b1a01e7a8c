package models

import "strconv"

// Variant names one mutually exclusive nested payload of a record and the
// discriminator value stamped when it is present.
type Variant struct {
	Key   string // field holding the nested object, e.g. "personalLoan"
	Label string // discriminator value, e.g. "Personal Loan"
}

// Flattener lifts a variant payload to the top level of a record so one
// column configuration can render heterogeneous rows.
type Flattener struct {
	Variants      []Variant
	Discriminator string // field receiving the variant label
	NoneLabel     string // label when no variant payload is present
	SerialField   string // optional 1-based row number field
}

// LoanFlattener handles rows carrying a personalLoan or businessLoan payload.
func LoanFlattener() Flattener {
	return Flattener{
		Variants: []Variant{
			{Key: "personalLoan", Label: "Personal Loan"},
			{Key: "businessLoan", Label: "Business Loan"},
		},
		Discriminator: "loanType",
		NoneLabel:     "N/A",
		SerialField:   "serialNo",
	}
}

// Flatten returns a copy of r with the first present variant merged in.
// Fields of the variant overwrite same-named top-level fields. A record
// without a variant keeps an existing discriminator value.
func (f Flattener) Flatten(r Record, index int) Record {
	out := r.Clone()
	label := f.NoneLabel
	for _, v := range f.Variants {
		payload, ok := r.Map(v.Key)
		if !ok {
			continue
		}
		for k, val := range payload {
			out[k] = val
		}
		label = v.Label
		break
	}
	// rows expanded upstream already carry their label
	if f.Discriminator != "" && (label != f.NoneLabel || out.Text(f.Discriminator) == "") {
		out[f.Discriminator] = label
	}
	if f.SerialField != "" {
		out[f.SerialField] = float64(index + 1)
	}
	return out
}

// FlattenAll flattens every record, numbering rows in order.
func (f Flattener) FlattenAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = f.Flatten(r, i)
	}
	return out
}

// LoanVariantRefs are the variant keys of the all-details endpoint.
var LoanVariantRefs = []Variant{
	{Key: "personalLoanRef", Label: "Personal Loan"},
	{Key: "businessLoanRef", Label: "Business Loan"},
}

// ExpandLoanDetails turns all-details rows into one row per loan payload.
// A lead with both payloads produces two rows; duplicate lead/type pairs
// keep the first occurrence. Nested counters are lifted to plain columns.
func ExpandLoanDetails(items []Record) []Record {
	seen := make(map[string]bool)
	var out []Record
	for _, item := range items {
		leadID := item.Text("leadId")
		loginCount := 0.0
		if ref, ok := item.Map("loginCountRef"); ok {
			loginCount, _ = ref.Number("count")
		}
		lender := ""
		if ref, ok := item.Map("appliedCustomerRef"); ok {
			lender = ref.Text("lenderName")
		}

		for _, v := range LoanVariantRefs {
			payload, ok := item.Map(v.Key)
			if !ok {
				continue
			}
			key := leadID + "-" + v.Label
			if seen[key] {
				continue
			}
			seen[key] = true

			row := Record{}
			for k, val := range payload {
				row[k] = val
			}
			row["id"] = leadID + "-" + variantSuffix(v.Key)
			row["leadId"] = item["leadId"]
			row["loanType"] = v.Label
			row["loginCount"] = loginCount
			row["lenderName"] = lender
			row["createdAt"] = item["createdAt"]
			row["updatedAt"] = item["updatedAt"]
			out = append(out, row)
		}
	}
	for i := range out {
		out[i]["serialNo"] = float64(i + 1)
	}
	return out
}

// MergeSummary copies offer summary figures into a loan row.
func MergeSummary(row Record, summary LoanSummary) Record {
	out := row.Clone()
	if summary.OffersTotal != nil {
		out["offersTotal"] = float64(*summary.OffersTotal)
	}
	if summary.MaxLoanAmount != nil {
		out["maxLoanAmount"] = *summary.MaxLoanAmount
	}
	if summary.MinMPR != nil {
		out["minMPR"] = *summary.MinMPR
	}
	if summary.MaxMPR != nil {
		out["maxMPR"] = *summary.MaxMPR
	}
	return out
}

func variantSuffix(key string) string {
	switch key {
	case "personalLoanRef":
		return "personal"
	case "businessLoanRef":
		return "business"
	}
	return strconv.Quote(key)
}
