package ui

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/devbackend"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

func TestEntityCaps(t *testing.T) {
	tests := []struct {
		e                              models.Entity
		create, edit, upload, complete bool
	}{
		{models.EntityLoan, false, false, false, false},
		{models.EntityMerchant, true, false, false, false},
		{models.EntityStore, true, true, true, false},
		{models.EntityStoreGroup, true, true, false, false},
		{models.EntityAffiliate, true, true, false, false},
		{models.EntityAccount, true, true, false, false},
		{models.EntityOrder, false, false, false, true},
		{models.EntityCustomer, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.e), func(t *testing.T) {
			c, e, u, done := entityCaps(tt.e)
			if c != tt.create || e != tt.edit || u != tt.upload || done != tt.complete {
				t.Errorf("entityCaps = %v %v %v %v", c, e, u, done)
			}
		})
	}
}

func TestEntityMatch(t *testing.T) {
	field, values := entityMatch(models.EntityLoan)
	if field != "loanType" || len(values) != 2 || values[0] != "Personal Loan" || values[1] != "Business Loan" {
		t.Errorf("loans: %q %v", field, values)
	}
	if field, values := entityMatch(models.EntityStore); field != "" || values != nil {
		t.Errorf("stores should have no type filter: %q %v", field, values)
	}
}

func TestValidateCSVPath(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "stores.csv")
	if err := os.WriteFile(good, []byte("Name\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"existing csv", good, false},
		{"empty", "  ", true},
		{"wrong extension", filepath.Join(dir, "stores.txt"), true},
		{"missing file", filepath.Join(dir, "missing.csv"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateCSVPath(tt.path); (err != nil) != tt.wantErr {
				t.Errorf("validateCSVPath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestNewEntityTableLoansRefetch(t *testing.T) {
	backend := devbackend.New()
	ts := httptest.NewServer(backend.Router())
	defer ts.Close()
	token, err := backend.IssueToken("9876543210")
	if err != nil {
		t.Fatal(err)
	}

	app := &App{
		Client:    api.NewClient(ts.URL, api.WithStaticToken(token), api.WithRateLimit(0, 0)),
		PageSizes: []int{10, 25},
	}
	rt := app.NewEntityTable(models.EntityLoan)
	defer rt.Close()

	loans, err := app.Client.List(context.Background(), models.EntityLoan)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	rt.Initialize(loans)
	if rt.PageSize() != 10 {
		t.Errorf("page size = %d, want 10", rt.PageSize())
	}

	now := time.Now()
	req := rt.SetDateRange(rtable.NewDateRange(now.AddDate(-1, 0, 0), now))
	if req == nil {
		t.Fatal("loans should refetch from the backend on a date range")
	}
	if !rt.Loading() {
		t.Error("table should be loading while the fetch runs")
	}
	res := req.Run()
	if res.Err != nil {
		t.Fatalf("fetch: %v", res.Err)
	}
	if !rt.ApplyFetchResult(res) {
		t.Error("the current fetch result should be applied")
	}
	if rt.Loading() {
		t.Error("table should be idle after the result")
	}
}

func TestNewEntityTableLocalDates(t *testing.T) {
	app := &App{Client: api.NewClient("http://127.0.0.1:0")}
	rt := app.NewEntityTable(models.EntityStore)
	defer rt.Close()

	now := time.Now()
	if req := rt.SetDateRange(rtable.NewDateRange(now.AddDate(0, -1, 0), now)); req != nil {
		t.Error("stores filter dates locally and should not refetch")
	}
}

func TestStoreAttachments(t *testing.T) {
	files := storeAttachments([]string{"", " shop.jpg ", "cheque.png", "extra.pdf"})
	want := []api.Attachment{
		{Field: "shopPhoto", Path: "shop.jpg"},
		{Field: "chequePhoto", Path: "cheque.png"},
	}
	if len(files) != len(want) {
		t.Fatalf("got %d attachments, want %d: %+v", len(files), len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("attachment %d = %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestMerchantDetailListsStores(t *testing.T) {
	ts := httptest.NewServer(devbackend.New().Router())
	defer ts.Close()
	app := &App{Client: api.NewClient(ts.URL, api.WithRateLimit(0, 0))}

	merchant := models.Record{"_id": "merchant-01", "Name": "Acme"}
	cfg, err := app.merchantDetail(context.Background(), merchant)
	if err != nil {
		t.Fatalf("merchantDetail: %v", err)
	}
	want := devbackend.FixtureStores / devbackend.FixtureMerchants
	last := cfg.Pages[len(cfg.Pages)-1]
	if last.Name != fmt.Sprintf("Stores (%d)", want) {
		t.Errorf("last tab = %q", last.Name)
	}
	if len(last.Rows) != want {
		t.Errorf("stores tab has %d rows, want %d", len(last.Rows), want)
	}
	if cfg.Pages[0].Name != "Fields" {
		t.Errorf("first tab = %q, want Fields", cfg.Pages[0].Name)
	}

	if _, err := app.merchantDetail(context.Background(), models.Record{"Name": "no id"}); err == nil {
		t.Error("a merchant without an id should fail")
	}
}

func TestPhoneLookup(t *testing.T) {
	ts := httptest.NewServer(devbackend.New().Router())
	defer ts.Close()
	app := &App{Client: api.NewClient(ts.URL, api.WithRateLimit(0, 0))}

	tests := []struct {
		e     models.Entity
		phone string
	}{
		{models.EntityOrder, "9123400001"},
		{models.EntityCustomer, "9123400001"},
	}
	for _, tt := range tests {
		t.Run(string(tt.e), func(t *testing.T) {
			lookup := app.phoneLookup(tt.e)
			if lookup == nil {
				t.Fatal("expected a phone lookup")
			}
			records, err := lookup(context.Background(), tt.phone)
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if len(records) == 0 {
				t.Fatal("no records for a fixture number")
			}
			for _, r := range records {
				if r.Text("mobileNumber") != tt.phone {
					t.Errorf("record %v does not belong to %s", r, tt.phone)
				}
			}
		})
	}

	if app.phoneLookup(models.EntityStore) != nil {
		t.Error("stores have no phone lookup")
	}
}
