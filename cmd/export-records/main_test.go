package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
	"github.com/kodstechnologies/lm-backoffice/internal/ui"
)

// loanBackend serves one March lead from all-details and fails every
// date filtered request.
func loanBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/all-details", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"leadId":"L1","createdAt":"2025-03-10T12:00:00Z","personalLoanRef":{"mobileNumber":"9876543210"}}]}`))
	})
	mux.HandleFunc("/get-filtered-data", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestPopulateFallsBackWhenFetchFails(t *testing.T) {
	ts := loanBackend(t)
	client := api.NewClient(ts.URL, api.WithRateLimit(0, 0))
	app := &ui.App{Client: client}
	rt := app.NewEntityTable(models.EntityLoan)
	defer rt.Close()

	dates, err := rtable.ParseDateRange("01-03-2025 to 31-03-2025")
	if err != nil {
		t.Fatal(err)
	}
	if err := populate(context.Background(), client, rt, models.EntityLoan, dates); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if rt.Loading() {
		t.Error("table still loading after the fetch finished")
	}
	if rt.State() != rtable.StateErrorFallback {
		t.Errorf("State() = %v, want error-fallback", rt.State())
	}
	got := rt.Filtered()
	if len(got) != 1 || got[0].Text("leadId") != "L1" {
		t.Errorf("Filtered() = %v, want the March lead", got)
	}
}

func TestPopulateOutsideRangeIsEmpty(t *testing.T) {
	ts := loanBackend(t)
	client := api.NewClient(ts.URL, api.WithRateLimit(0, 0))
	app := &ui.App{Client: client}
	rt := app.NewEntityTable(models.EntityLoan)
	defer rt.Close()

	dates, err := rtable.ParseDateRange("01-04-2025 to 30-04-2025")
	if err != nil {
		t.Fatal(err)
	}
	if err := populate(context.Background(), client, rt, models.EntityLoan, dates); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if n := len(rt.Filtered()); n != 0 {
		t.Errorf("Filtered() has %d rows, want 0", n)
	}
}

func TestParseEntity(t *testing.T) {
	tests := []struct {
		in   string
		want models.Entity
		ok   bool
	}{
		{"loans", models.EntityLoan, true},
		{"STORES", models.EntityStore, true},
		{"widgets", "", false},
	}
	for _, tt := range tests {
		got, ok := parseEntity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseEntity(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
