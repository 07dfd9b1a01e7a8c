package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kodstechnologies/lm-backoffice/internal/db"
)

var now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return tok
}

func TestAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		auth  bool
		token func(*testing.T) string
		want  bool
	}{
		{"valid token", true, func(t *testing.T) string { return signed(t, now.Add(time.Hour)) }, true},
		{"expired token", true, func(t *testing.T) string { return signed(t, now.Add(-time.Minute)) }, false},
		{"opaque token", true, func(*testing.T) string { return "opaque-session-token" }, true},
		{"no token", true, func(*testing.T) string { return "" }, false},
		{"not marked signed in", false, func(t *testing.T) string { return signed(t, now.Add(time.Hour)) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(WithClock(func() time.Time { return now }))
			if err != nil {
				t.Fatal(err)
			}
			s.Dispatch(SetToken{Token: tt.token(t)})
			s.Dispatch(SetUser{UserType: "admin", Auth: tt.auth})

			if got := s.Authenticated(); got != tt.want {
				t.Errorf("Authenticated() = %v, want %v", got, tt.want)
			}
			if err := s.RequireAuth(); (err == nil) != tt.want {
				t.Errorf("RequireAuth() = %v", err)
			}
			if !tt.want && !errors.Is(s.RequireAuth(), ErrUnauthorized) {
				t.Error("RequireAuth() is not ErrUnauthorized")
			}
		})
	}
}

func TestDispatchNotifiesSubscribers(t *testing.T) {
	s, _ := NewStore()
	var titles []string
	unsubscribe := s.Subscribe(func(st State) { titles = append(titles, st.PageTitle) })

	s.Dispatch(SetPageTitle{Title: "Merchants"})
	s.Dispatch(SetPageTitle{Title: "Stores"})
	unsubscribe()
	s.Dispatch(SetPageTitle{Title: "Orders"})

	if len(titles) != 2 || titles[1] != "Stores" {
		t.Errorf("subscriber saw %v", titles)
	}
	if s.State().PageTitle != "Orders" {
		t.Errorf("PageTitle = %q", s.State().PageTitle)
	}
}

func TestToggleTheme(t *testing.T) {
	s, _ := NewStore()
	if s.State().Theme != ThemeDark {
		t.Fatalf("default theme = %q", s.State().Theme)
	}
	s.Dispatch(ToggleTheme{})
	if s.State().Theme != ThemeLight {
		t.Errorf("theme after toggle = %q", s.State().Theme)
	}
	s.Dispatch(ToggleTheme{})
	if s.State().Theme != ThemeDark {
		t.Errorf("theme after second toggle = %q", s.State().Theme)
	}
}

func TestSessionPersistsAcrossStores(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	token := signed(t, now.Add(24*time.Hour))
	first, err := NewStore(WithPersister(database, "prod"))
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Dispatch(SetToken{Token: token}); err != nil {
		t.Fatalf("Dispatch(SetToken) error = %v", err)
	}
	if err := first.Dispatch(SetUser{UserType: "admin", Auth: true, Email: "ops@example.in"}); err != nil {
		t.Fatalf("Dispatch(SetUser) error = %v", err)
	}

	second, err := NewStore(WithPersister(database, "prod"), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	st := second.State()
	if st.Token != token || st.Email != "ops@example.in" || !second.Authenticated() {
		t.Errorf("restored state = %+v", st)
	}

	if err := second.Dispatch(ResetUser{}); err != nil {
		t.Fatalf("Dispatch(ResetUser) error = %v", err)
	}
	if _, ok, _ := database.LoadSession("prod"); ok {
		t.Error("session row survived ResetUser")
	}
	if second.Token() != "" {
		t.Error("token survived ResetUser")
	}
}

type failingPersister struct{}

func (failingPersister) SaveSession(string, db.SessionRow) error { return errors.New("disk full") }
func (failingPersister) LoadSession(string) (db.SessionRow, bool, error) {
	return db.SessionRow{}, false, nil
}
func (failingPersister) ClearSession(string) error { return nil }

func TestDispatchReportsPersistFailure(t *testing.T) {
	s, _ := NewStore(WithPersister(failingPersister{}, ""))
	if err := s.Dispatch(SetToken{Token: "abc"}); err == nil {
		t.Error("Dispatch() error = nil, want persist failure")
	}
	if s.Token() != "abc" {
		t.Error("in-memory state not updated when persistence fails")
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := now.Add(90 * time.Minute).Truncate(time.Second)
	got, ok := TokenExpiry(signed(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry() = %v, %v, want %v", got, ok, exp)
	}
	if _, ok := TokenExpiry("not.a.jwt"); ok {
		t.Error("TokenExpiry() accepted garbage")
	}
}
