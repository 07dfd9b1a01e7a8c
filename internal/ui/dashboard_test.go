package ui

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/devbackend"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
)

func TestCountDistinct(t *testing.T) {
	records := []models.Record{
		{"leadId": "L1"}, {"leadId": "L1"}, {"leadId": "L2"}, {"leadId": ""}, {},
	}
	if got := CountDistinct(records, "leadId"); got != 2 {
		t.Errorf("CountDistinct = %d, want 2", got)
	}
}

func TestCompletedRatio(t *testing.T) {
	tests := []struct {
		stats DashboardStats
		want  float64
	}{
		{DashboardStats{}, 0},
		{DashboardStats{Orders: 4, CompletedOrders: 1}, 0.25},
		{DashboardStats{Orders: 2, CompletedOrders: 2}, 1},
	}
	for _, tt := range tests {
		if got := tt.stats.CompletedRatio(); got != tt.want {
			t.Errorf("CompletedRatio(%+v) = %v, want %v", tt.stats, got, tt.want)
		}
	}
}

func TestLoadDashboard(t *testing.T) {
	backend := devbackend.New()
	ts := httptest.NewServer(backend.Router())
	defer ts.Close()

	token, err := backend.IssueToken("9876543210")
	if err != nil {
		t.Fatal(err)
	}
	client := api.NewClient(ts.URL, api.WithStaticToken(token), api.WithRateLimit(0, 0))

	stats, err := LoadDashboard(context.Background(), client)
	if err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	if stats.Loans == 0 || stats.Merchants == 0 || stats.Stores == 0 {
		t.Errorf("expected fixture counts, got %+v", stats)
	}
	if stats.PendingOrders+stats.CompletedOrders != stats.Orders {
		t.Errorf("order split does not add up: %+v", stats)
	}

	rows, err := client.GetLoans(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if stats.PersonalLoans == 0 || stats.BusinessLoans == 0 {
		t.Errorf("expected both loan types, got %+v", stats)
	}
	if stats.PersonalLoans+stats.BusinessLoans != len(rows) {
		t.Errorf("loan type split %d+%d, want %d rows", stats.PersonalLoans, stats.BusinessLoans, len(rows))
	}
}

func TestLoadDashboardUnauthorized(t *testing.T) {
	ts := httptest.NewServer(devbackend.New().Router())
	defer ts.Close()

	client := api.NewClient(ts.URL, api.WithRateLimit(0, 0))
	_, err := LoadDashboard(context.Background(), client)
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestHomeMenuSelectsEntity(t *testing.T) {
	m := NewHomeModel(session.State{Email: "admin@lm.local"}, nil, 0)

	next, _ := m.Update(runes("j"))
	next, cmd := next.Update(keyEnter)
	m = next.(HomeModel)

	if cmd == nil || !m.Quitting {
		t.Fatal("enter should leave the home screen")
	}
	res := m.Result()
	if res.Action != HomeOpenEntity || res.Entity != models.AllEntities[1] {
		t.Errorf("result = %+v", res)
	}
}

func TestHomeMenuTrailingItems(t *testing.T) {
	items := homeMenu()
	n := len(items)
	if items[n-3].action != HomeSettings || items[n-2].action != HomeLogout || items[n-1].action != HomeQuit {
		t.Errorf("menu should end with Settings, Logout, Quit: %+v", items[n-3:])
	}

	m := NewHomeModel(session.State{}, nil, 99)
	if m.cursor != n-1 {
		t.Errorf("cursor should be clamped to %d, got %d", n-1, m.cursor)
	}
	next, _ := m.Update(keyEnter)
	if got := next.(HomeModel).Result().Action; got != HomeQuit {
		t.Errorf("last item action = %d, want HomeQuit", got)
	}
}

func TestHomeDashboardLoaded(t *testing.T) {
	load := func(context.Context) (DashboardStats, error) { return DashboardStats{}, nil }
	m := NewHomeModel(session.State{}, load, 0)
	if !m.loading {
		t.Fatal("home should start loading the dashboard")
	}
	next, _ := m.Update(dashboardLoadedMsg{stats: DashboardStats{Loans: 1234, Orders: 4, CompletedOrders: 3}})
	m = next.(HomeModel)
	if m.loading {
		t.Error("loading should stop")
	}
	if view := stripEscapeCodes(m.View()); !strings.Contains(view, "1,234") {
		t.Errorf("dashboard should show the loan count:\n%s", view)
	}
}
