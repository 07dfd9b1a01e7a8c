package models

import (
	"errors"
	"testing"
	"time"
)

// TestFlattenVariant verifies a variant payload is merged and tagged
func TestFlattenVariant(t *testing.T) {
	f := LoanFlattener()
	row := Record{
		"id":     "L1",
		"leadId": "LEAD-1",
		"personalLoan": map[string]any{
			"employerName":  "Acme",
			"monthlyIncome": 52000.0,
		},
	}

	got := f.Flatten(row, 0)

	if got["loanType"] != "Personal Loan" {
		t.Errorf("loanType = %v, want %q", got["loanType"], "Personal Loan")
	}
	if got["employerName"] != "Acme" {
		t.Errorf("employerName = %v, want Acme", got["employerName"])
	}
	if got["monthlyIncome"] != 52000.0 {
		t.Errorf("monthlyIncome = %v, want 52000", got["monthlyIncome"])
	}
	if got["serialNo"] != 1.0 {
		t.Errorf("serialNo = %v, want 1", got["serialNo"])
	}
	if _, ok := row["loanType"]; ok {
		t.Error("Flatten mutated the input record")
	}
}

func TestFlattenNoVariant(t *testing.T) {
	got := LoanFlattener().Flatten(Record{"id": "L2"}, 4)
	if got["loanType"] != "N/A" {
		t.Errorf("loanType = %v, want N/A", got["loanType"])
	}
	if got["serialNo"] != 5.0 {
		t.Errorf("serialNo = %v, want 5", got["serialNo"])
	}
}

func TestFlattenBusinessVariant(t *testing.T) {
	got := LoanFlattener().Flatten(Record{
		"id":           "L3",
		"businessLoan": map[string]any{"businessRegistrationType": "LLP"},
	}, 0)
	if got["loanType"] != "Business Loan" {
		t.Errorf("loanType = %v, want Business Loan", got["loanType"])
	}
	if got["businessRegistrationType"] != "LLP" {
		t.Errorf("businessRegistrationType = %v, want LLP", got["businessRegistrationType"])
	}
}

func TestExpandLoanDetails(t *testing.T) {
	items := []Record{
		{
			"leadId":             "LEAD-1",
			"createdAt":          "2025-03-01T10:00:00Z",
			"personalLoanRef":    map[string]any{"firstName": "Asha", "mobileNumber": "9876543210"},
			"businessLoanRef":    map[string]any{"firstName": "Asha", "businessRegistrationType": "Proprietorship"},
			"loginCountRef":      map[string]any{"count": 3.0},
			"appliedCustomerRef": map[string]any{"lenderName": "FastCredit"},
		},
		{
			"leadId":          "LEAD-1",
			"personalLoanRef": map[string]any{"firstName": "Duplicate"},
		},
		{"leadId": "LEAD-2"},
	}

	rows := ExpandLoanDetails(items)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0]["id"] != "LEAD-1-personal" || rows[1]["id"] != "LEAD-1-business" {
		t.Errorf("ids = %v, %v", rows[0]["id"], rows[1]["id"])
	}
	if rows[0]["firstName"] != "Asha" {
		t.Errorf("first row firstName = %v, want Asha (duplicate must be dropped)", rows[0]["firstName"])
	}
	if rows[0]["loginCount"] != 3.0 || rows[0]["lenderName"] != "FastCredit" {
		t.Errorf("nested refs not lifted: %v", rows[0])
	}
	if rows[1]["serialNo"] != 2.0 {
		t.Errorf("serialNo = %v, want 2", rows[1]["serialNo"])
	}
}

func TestMergeSummary(t *testing.T) {
	total := 4
	max := 250000.0
	got := MergeSummary(Record{"id": "x"}, LoanSummary{OffersTotal: &total, MaxLoanAmount: &max})
	if got["offersTotal"] != 4.0 || got["maxLoanAmount"] != 250000.0 {
		t.Errorf("MergeSummary() = %v", got)
	}
	if _, ok := got["minMPR"]; ok {
		t.Error("absent summary fields must not be set")
	}
}

func TestDisplayValue(t *testing.T) {
	local := time.Date(2025, 1, 9, 15, 30, 0, 0, time.Local)
	tests := []struct {
		name     string
		in       any
		fallback string
		want     string
	}{
		{"iso date-time", local.Format(time.RFC3339), "-", "09-01-2025"},
		{"plain date is not reformatted", "2025-01-09", "-", "2025-01-09"},
		{"nil uses fallback", nil, "N/A", "N/A"},
		{"empty string uses fallback", "", "-", "-"},
		{"integer float", 42.0, "-", "42"},
		{"bool", true, "-", "true"},
		{"garbage after T", "2025-01-09Tnope", "-", "2025-01-09Tnope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayValue(tt.in, tt.fallback); got != tt.want {
				t.Errorf("DisplayValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeZones(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"zone-less date-time is local", "2025-03-10T00:30:00", time.Date(2025, 3, 10, 0, 30, 0, 0, time.Local)},
		{"space separated is local", "2025-03-10 23:45:00", time.Date(2025, 3, 10, 23, 45, 0, 0, time.Local)},
		{"plain date is local midnight", "2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"explicit zone is kept", "2025-03-10T00:30:00Z", time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.in)
			if !ok {
				t.Fatalf("ParseTime(%q) failed", tt.in)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.want.Location() == time.Local && got.Local().Day() != 10 {
				t.Errorf("ParseTime(%q) landed on day %d", tt.in, got.Local().Day())
			}
		})
	}
}

func TestFormatCalendarDate(t *testing.T) {
	d := time.Date(2024, 3, 7, 23, 59, 0, 0, time.Local)
	if got := FormatCalendarDate(d); got != "2024-03-07" {
		t.Errorf("FormatCalendarDate() = %q, want 2024-03-07", got)
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"_id":       "abc",
		"amount":    "1200.5",
		"IsActive":  "true",
		"createdAt": "2025-02-01T00:00:00.000Z",
		"nested":    map[string]any{"k": "v"},
		"nothing":   nil,
	}
	if r.ID() != "abc" {
		t.Errorf("ID() = %q", r.ID())
	}
	if n, ok := r.Number("amount"); !ok || n != 1200.5 {
		t.Errorf("Number() = %v, %v", n, ok)
	}
	if !r.Bool("IsActive") {
		t.Error("Bool() = false, want true")
	}
	if _, ok := r.Time("createdAt"); !ok {
		t.Error("Time() failed on millisecond timestamp")
	}
	if m, ok := r.Map("nested"); !ok || m.Text("k") != "v" {
		t.Error("Map() failed")
	}
	if r.Optional("nothing").Present() {
		t.Error("Optional() of nil must be absent")
	}
	if got := r.Optional("nothing").Display("N/A"); got != "N/A" {
		t.Errorf("Display() = %q, want N/A", got)
	}
}

func TestSchemaValidate(t *testing.T) {
	s := SchemaFor(EntityMerchant)
	valid, errs := s.Partition([]Record{
		{"_id": "m1", "Name": "Acme"},
		{"Name": "No ID"},
		{"_id": "m3", "Name": 12.0},
	})
	if len(valid) != 1 {
		t.Fatalf("len(valid) = %d, want 1", len(valid))
	}
	if len(errs) != 2 {
		t.Fatalf("len(errs) = %d, want 2", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("error %v is not ErrInvalidRecord", err)
		}
	}
}

func TestExtractRootDomain(t *testing.T) {
	tests := []struct {
		input    string
		wantRoot string
		wantErr  bool
	}{
		{"owner@shop.example.co.in", "example.co.in", false},
		{"https://pay.merchant.com/checkout", "merchant.com", false},
		{"merchant.com", "merchant.com", false},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExtractRootDomain(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExtractRootDomain(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.wantRoot {
				t.Errorf("ExtractRootDomain(%q) = %q, want %q", tt.input, got, tt.wantRoot)
			}
		})
	}
}

func TestInputValidation(t *testing.T) {
	ok := MerchantInput{Name: "Acme", Phone: "9876543210", Email: "a@acme.in", GSTIN: "29ABCDE1234F1Z5"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid merchant rejected: %v", err)
	}
	bad := MerchantInput{Phone: "12345", Email: "nope"}
	if err := bad.Validate(); err == nil {
		t.Error("invalid merchant accepted")
	}
	acct := AccountInput{AccountName: "Ops", AccountNumber: "001", IFSCCode: "hdfc0001234"}
	if err := acct.Validate(); err != nil {
		t.Errorf("valid account rejected: %v", err)
	}
	if err := ValidateOTP("12a456"); err == nil {
		t.Error("non-numeric OTP accepted")
	}
}

func TestFlattenKeepsExpandedLabel(t *testing.T) {
	got := LoanFlattener().Flatten(Record{"leadId": "L9", "loanType": "Business Loan"}, 0)
	if got["loanType"] != "Business Loan" {
		t.Errorf("loanType = %v, want Business Loan", got["loanType"])
	}
}
