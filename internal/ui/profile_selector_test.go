package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/db"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

func TestProfileName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"staging", "staging", false},
		{"  prod_2 ", "prod_2", false},
		{"local.db", "local", false},
		{"../etc/evil", "evil", false},
		{"", "", true},
		{"has space", "", true},
		{"semi;colon", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ProfileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProfileName(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProfileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfileSelectorOpen(t *testing.T) {
	m := NewProfileSelectorModel("/data", []string{"prod.db", "staging.db"})
	next, _ := m.Update(runes("j"))
	next, _ = next.Update(keyEnter)

	res := next.(ProfileSelectorModel).Result()
	if res.Action != ProfileOpen || res.Path != filepath.Join("/data", "staging.db") {
		t.Errorf("result = %+v", res)
	}
}

func TestProfileSelectorCreate(t *testing.T) {
	m := NewProfileSelectorModel("/data", []string{"prod.db"})

	// move to "Create New Profile"
	next, _ := m.Update(runes("j"))
	next, _ = next.Update(keyEnter)
	m = next.(ProfileSelectorModel)
	if !m.createMode {
		t.Fatal("expected create mode")
	}

	next, _ = m.Update(runes("bad name"))
	next, _ = next.Update(keyEnter)
	m = next.(ProfileSelectorModel)
	if m.err == nil || m.Quitting {
		t.Fatal("an invalid name should be rejected")
	}

	m.input.SetValue("uat")
	next, _ = m.Update(keyEnter)
	res := next.(ProfileSelectorModel).Result()
	if res.Action != ProfileCreate || res.Path != filepath.Join("/data", "uat.db") {
		t.Errorf("result = %+v", res)
	}
}

func TestProfileSelectorExit(t *testing.T) {
	m := NewProfileSelectorModel(".", nil)
	next, _ := m.Update(runes("q"))
	if res := next.(ProfileSelectorModel).Result(); res.Action != ProfileExit {
		t.Errorf("q should exit, got %+v", res)
	}
}

func TestAuditView(t *testing.T) {
	entries := []db.AuditEntry{{
		Action:    "create",
		Entity:    models.EntityMerchant,
		RecordID:  "m1",
		Detail:    "Acme",
		RequestID: "req-1",
		CreatedAt: time.Date(2025, 5, 4, 3, 2, 0, 0, time.Local),
	}}
	cfg := AuditView(entries)
	if cfg.Title != "Audit Log" {
		t.Errorf("title = %q", cfg.Title)
	}
	if len(cfg.Pages) != 1 || len(cfg.Pages[0].Rows) != 1 {
		t.Fatalf("pages = %+v", cfg.Pages)
	}
	row := cfg.Pages[0].Rows[0]
	if row[0] != "04-05-2025 03:02" || row[2] != "merchants" || row[5] != "req-1" {
		t.Errorf("row = %v", row)
	}
}

func TestPrintRecordTable(t *testing.T) {
	var sb strings.Builder
	PrintRecordTable(&sb, "Stores", exportCols, exportRecords, "Showing 1 to 2 of 2 entries")
	out := stripEscapeCodes(sb.String())
	for _, want := range []string{"Stores", "ID", "Main Street, Pune", "N/A", "Showing 1 to 2 of 2 entries"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
