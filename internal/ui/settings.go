package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/huh"

	"github.com/kodstechnologies/lm-backoffice/internal/db"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
)

const (
	settingTheme     = "theme"
	settingAudit     = "audit"
	settingSnapshots = "snapshots"
	settingClear     = "clear"
	settingBack      = "back"
)

// RunSettings shows the settings menu until the user goes back.
func (a *App) RunSettings() error {
	for {
		choice := settingBack
		st := a.Session.State()
		opts := []huh.Option[string]{
			huh.NewOption(fmt.Sprintf("Theme: %s (toggle)", st.Theme), settingTheme),
		}
		if a.DB != nil {
			opts = append(opts,
				huh.NewOption("Audit log", settingAudit),
				huh.NewOption("Offline snapshots", settingSnapshots),
				huh.NewOption("Clear offline snapshots", settingClear),
			)
		}
		opts = append(opts, huh.NewOption("Back", settingBack))

		err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Settings").Options(opts...).Value(&choice),
		)))
		if errors.Is(err, ErrCancelled) || choice == settingBack {
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case settingTheme:
			if err := a.Session.Dispatch(session.ToggleTheme{}); err != nil {
				return err
			}
		case settingAudit:
			entries, err := a.DB.ListAudit("", 200)
			if err != nil {
				return err
			}
			if _, err := RunTabbedTable(AuditView(entries)); err != nil {
				return err
			}
		case settingSnapshots:
			infos, err := a.DB.ListSnapshots()
			if err != nil {
				return err
			}
			if _, err := RunTabbedTable(SnapshotView(infos)); err != nil {
				return err
			}
		case settingClear:
			ok, err := Confirm("Clear offline snapshots?", "Pages will show nothing while the backend is down until they load again.")
			if err != nil {
				return err
			}
			if ok {
				if err := a.DB.ClearSnapshots(); err != nil {
					return err
				}
			}
		}
	}
}

// AuditView lists audit entries, newest first.
func AuditView(entries []db.AuditEntry) TabbedTableConfig {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			e.CreatedAt.Local().Format("02-01-2006 15:04"),
			e.Action,
			string(e.Entity),
			e.RecordID,
			e.Detail,
			e.RequestID,
		}
	}
	specs := []ColumnSpec{
		{Title: "When", FixedWidth: 16},
		{Title: "Action", FixedWidth: 8},
		{Title: "Entity", FixedWidth: 12},
		{Title: "Record", FixedWidth: 24},
		{Title: "Detail", MinWidth: 12, FlexRatio: 1},
		{Title: "Request", FixedWidth: 36},
	}
	return NewTabbedTable("Audit Log").
		WithSubtitle(fmt.Sprintf("%s entries", Count(len(entries)))).
		AddReadOnlyPage("Entries", specs, rows).
		Build()
}

// SnapshotView lists the cached entity lists.
func SnapshotView(infos []db.SnapshotInfo) TabbedTableConfig {
	rows := make([]table.Row, len(infos))
	for i, s := range infos {
		rows[i] = table.Row{string(s.Entity), Count(s.Count), s.SavedAt.Local().Format("02-01-2006 15:04")}
	}
	specs := []ColumnSpec{
		{Title: "Entity", MinWidth: 14, FlexRatio: 1},
		{Title: "Records", FixedWidth: 10},
		{Title: "Saved", FixedWidth: 16},
	}
	return NewTabbedTable("Offline Snapshots").
		AddReadOnlyPage("Snapshots", specs, rows).
		Build()
}
