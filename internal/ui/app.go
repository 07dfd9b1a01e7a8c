package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/db"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	"github.com/kodstechnologies/lm-backoffice/internal/session"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
)

// ErrQuit is returned when the user quits from inside a page.
var ErrQuit = errors.New("quit")

// App bundles what the console pages need.
type App struct {
	Client    *api.Client
	DB        *db.DB // optional, enables snapshots and the audit log
	Session   *session.Store
	Logger    *log.Logger
	PageSizes []int
	Now       func() time.Time
}

func (a *App) logger() *log.Logger {
	if a.Logger == nil {
		return log.New(io.Discard)
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// NewEntityTable builds the FilteredTable for an entity page. Loans are
// flattened per loan type and refetched from the backend when a date range
// is set.
func (a *App) NewEntityTable(e models.Entity) *rtable.Table {
	schema := models.SchemaFor(e)
	cfg := rtable.Config{
		SearchFields: schema.SearchFields,
		DateFields:   schema.DateFields,
		PageSizes:    a.PageSizes,
		Logger:       a.logger(),
	}
	if e == models.EntityLoan {
		f := models.LoanFlattener()
		cfg.Flattener = &f
		cfg.Fetcher = a.Client.FetchFilteredLoanData
	}
	return rtable.New(cfg)
}

// entityCaps reports which actions an entity page offers.
func entityCaps(e models.Entity) (create, edit, upload, complete bool) {
	switch e {
	case models.EntityMerchant:
		return true, false, false, false
	case models.EntityStore:
		return true, true, true, false
	case models.EntityStoreGroup, models.EntityAffiliate, models.EntityAccount:
		return true, true, false, false
	case models.EntityOrder:
		return false, false, false, true
	}
	return false, false, false, false
}

// entityMatch returns the field the page can cycle an equality filter on.
func entityMatch(e models.Entity) (string, []string) {
	if e == models.EntityLoan {
		labels := make([]string, len(models.LoanVariantRefs))
		for i, v := range models.LoanVariantRefs {
			labels[i] = v.Label
		}
		return "loanType", labels
	}
	return "", nil
}

// phoneLookup returns the backend search by phone number of an entity, or
// nil when it has none.
func (a *App) phoneLookup(e models.Entity) func(ctx context.Context, phone string) ([]models.Record, error) {
	switch e {
	case models.EntityOrder:
		return a.Client.SearchOrdersByPhone
	case models.EntityCustomer:
		return a.Client.SearchCustomersByPhone
	}
	return nil
}

// RunEntityBrowser runs an entity page and carries out the actions chosen on
// it until the user goes back. Filters survive across actions because the
// same table is handed to every relaunch.
func (a *App) RunEntityBrowser(e models.Entity) error {
	rt := a.NewEntityTable(e)
	defer rt.Close()

	if err := a.Session.Dispatch(session.SetPageTitle{Title: models.SchemaFor(e).Title}); err != nil {
		a.logger().Warn("failed to set page title", "err", err)
	}

	cols := EntityColumns(e)
	create, edit, upload, complete := entityCaps(e)
	matchField, matchValues := entityMatch(e)
	var snapshots SnapshotStore
	if a.DB != nil {
		snapshots = a.DB
	}

	lookup := a.phoneLookup(e)
	phone := ""
	load := func(ctx context.Context) ([]models.Record, error) {
		if phone != "" {
			return lookup(ctx, phone)
		}
		return a.Client.List(ctx, e)
	}

	reload, status := true, ""
	for {
		// a phone lookup is not the entity's full list
		snaps := snapshots
		if phone != "" {
			snaps = nil
		}
		res, err := RunEntityPage(EntityPageConfig{
			Entity:      e,
			Table:       rt,
			Columns:     cols,
			Load:        load,
			Reload:      reload,
			Snapshots:   snaps,
			Logger:      a.Logger,
			Status:      status,
			MatchField:  matchField,
			MatchValues: matchValues,
			PhoneLookup: lookup != nil,
			Phone:       phone,
			CanCreate:   create,
			CanEdit:     edit,
			CanUpload:   upload,
			CanComplete: complete,
		})
		if err != nil {
			return err
		}
		if res.Err != nil {
			return a.sessionError(res.Err)
		}

		reload, status = false, ""
		var changed bool
		switch res.Action {
		case ActionBack:
			return nil
		case ActionQuit:
			return ErrQuit
		case ActionReload:
			reload = true
			continue
		case ActionDetail:
			err = a.showDetail(e, res.Record)
		case ActionExport:
			status, err = a.export(e, cols, rt.Filtered())
		case ActionCreate:
			status, err = a.create(e)
			changed = err == nil
		case ActionEdit:
			status, err = a.edit(e, res.Record)
			changed = err == nil
		case ActionUpload:
			status, err = a.uploadStores()
			changed = err == nil
		case ActionComplete:
			status, changed, err = a.completeOrder(res.Record)
		case ActionPhoneLookup:
			phone, changed = res.Phone, true
		}

		switch {
		case errors.Is(err, ErrCancelled):
			status = "Cancelled"
		case errors.Is(err, api.ErrUnauthorized):
			return a.sessionError(err)
		case err != nil:
			a.logger().Error("action failed", "entity", e, "err", err)
			status = "Error: " + api.Message(err)
		}
		reload = changed
	}
}

// sessionError signs the user out after the backend rejected the token.
func (a *App) sessionError(err error) error {
	a.logger().Warn("session rejected by backend", "err", err)
	if derr := a.Session.Dispatch(session.ResetUser{}); derr != nil {
		a.logger().Error("failed to reset session", "err", derr)
	}
	return fmt.Errorf("%w: %w", session.ErrUnauthorized, err)
}

// mutate runs a backend write under a spinner and records it in the audit
// log under the same request ID the backend sees.
func (a *App) mutate(title, action string, e models.Entity, id string, fn func(ctx context.Context) (models.Record, error)) (models.Record, error) {
	requestID := uuid.NewString()
	var rec models.Record
	err := RunWithSpinner(title, func(ctx context.Context) error {
		var err error
		rec, err = fn(api.WithRequestID(ctx, requestID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = rec.ID(models.SchemaFor(e).IDField, "_id", "id")
	}
	a.audit(db.AuditEntry{Action: action, Entity: e, RecordID: id, RequestID: requestID})
	return rec, nil
}

func (a *App) audit(entry db.AuditEntry) {
	if a.DB == nil {
		return
	}
	if err := a.DB.RecordAudit(entry); err != nil {
		a.logger().Warn("failed to record audit entry", "action", entry.Action, "err", err)
	}
}

// =============================================================================
// Actions
// =============================================================================

func (a *App) showDetail(e models.Entity, r models.Record) error {
	switch e {
	case models.EntityLoan:
	case models.EntityMerchant:
		return a.showMerchant(r)
	default:
		_, err := RunTabbedTable(RecordDetail(e, r))
		return err
	}

	leadID := r.Text("leadId")
	var (
		offers  []models.Record
		summary models.LoanSummary
	)
	err := RunWithSpinner("Loading offers for "+leadID+"...", func(ctx context.Context) error {
		var err error
		if offers, err = a.Client.GetAllOffers(ctx, leadID); err != nil {
			return err
		}
		summary, err = a.Client.GetSummary(ctx, leadID)
		return err
	})
	if err != nil {
		return err
	}
	_, err = RunTabbedTable(LoanDetail(models.MergeSummary(r, summary), offers, summary))
	return err
}

func (a *App) showMerchant(r models.Record) error {
	var cfg TabbedTableConfig
	err := RunWithSpinner("Loading stores for "+r.Text("Name")+"...", func(ctx context.Context) error {
		var err error
		cfg, err = a.merchantDetail(ctx, r)
		return err
	})
	if err != nil {
		return err
	}
	_, err = RunTabbedTable(cfg)
	return err
}

// merchantDetail loads the stores of a merchant for its detail view.
func (a *App) merchantDetail(ctx context.Context, r models.Record) (TabbedTableConfig, error) {
	id := r.ID(models.SchemaFor(models.EntityMerchant).IDField, "_id", "id")
	if id == "" {
		return TabbedTableConfig{}, fmt.Errorf("selected merchant has no id")
	}
	stores, err := a.Client.FetchStoresByMerchantID(ctx, id)
	if err != nil {
		return TabbedTableConfig{}, err
	}
	return MerchantDetail(r, stores), nil
}

func (a *App) export(e models.Entity, cols []rtable.Column, records []models.Record) (string, error) {
	format, filename, err := PromptExport(DefaultExportName(e, a.now()))
	if err != nil {
		return "", err
	}
	title := fmt.Sprintf("%s export", models.SchemaFor(e).Title)
	if err := ExportFile(filename, format, title, cols, records); err != nil {
		return "", err
	}
	a.audit(db.AuditEntry{Action: "export", Entity: e, Detail: filename})
	return fmt.Sprintf("Exported %s records to %s", Count(len(records)), filename), nil
}

func (a *App) create(e models.Entity) (string, error) {
	var (
		rec models.Record
		err error
	)
	switch e {
	case models.EntityMerchant:
		var in models.MerchantInput
		if err = PromptMerchant(&in); err != nil {
			return "", err
		}
		rec, err = a.mutate("Creating merchant...", "create", e, "", func(ctx context.Context) (models.Record, error) {
			return a.Client.CreateMerchant(ctx, in)
		})

	case models.EntityStore:
		merchantID, err := a.chooseMerchant("Create store for which merchant?")
		if err != nil {
			return "", err
		}
		refs, err := a.storeRefs()
		if err != nil {
			return "", err
		}
		in := models.StoreInput{IsActive: true}
		if err = PromptStore(&in, refs, false); err != nil {
			return "", err
		}
		files, err := PromptStoreDocuments()
		if err != nil {
			return "", err
		}
		rec, err = a.mutate("Creating store...", "create", e, "", func(ctx context.Context) (models.Record, error) {
			return a.Client.CreateStoreByMerchantID(ctx, merchantID, in, files...)
		})
		if err != nil {
			return "", err
		}

	case models.EntityStoreGroup:
		in := models.StoreGroupInput{IsActive: true}
		if err = PromptStoreGroup(&in, false); err != nil {
			return "", err
		}
		rec, err = a.mutate("Creating store group...", "create", e, "", func(ctx context.Context) (models.Record, error) {
			return a.Client.CreateStoreGroup(ctx, in)
		})

	case models.EntityAffiliate:
		in := models.AffiliateInput{IsActive: true}
		if err = PromptAffiliate(&in, false); err != nil {
			return "", err
		}
		rec, err = a.mutate("Creating affiliate...", "create", e, "", func(ctx context.Context) (models.Record, error) {
			return a.Client.CreateAffiliate(ctx, in)
		})

	case models.EntityAccount:
		in := models.AccountInput{IsActive: true}
		if err = PromptAccount(&in, false); err != nil {
			return "", err
		}
		rec, err = a.mutate("Creating account...", "create", e, "", func(ctx context.Context) (models.Record, error) {
			return a.Client.CreateAccount(ctx, in)
		})

	default:
		return "", fmt.Errorf("%s cannot be created here", e)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created %s", describe(e, rec)), nil
}

func (a *App) edit(e models.Entity, row models.Record) (string, error) {
	schema := models.SchemaFor(e)
	id := row.ID(schema.IDField, "_id", "id")
	if id == "" {
		return "", fmt.Errorf("selected %s has no id", e)
	}

	// Edit the backend's current copy rather than the possibly stale row.
	var current models.Record
	err := RunWithSpinner("Loading...", func(ctx context.Context) error {
		var err error
		current, err = a.Client.Get(ctx, e, id)
		return err
	})
	if err != nil {
		return "", err
	}

	var rec models.Record
	switch e {
	case models.EntityStore:
		refs, err := a.storeRefs()
		if err != nil {
			return "", err
		}
		in := models.StoreInputFromRecord(current)
		if err := PromptStore(&in, refs, true); err != nil {
			return "", err
		}
		files, err := PromptStoreDocuments()
		if err != nil {
			return "", err
		}
		rec, err = a.mutate("Saving store...", "update", e, id, func(ctx context.Context) (models.Record, error) {
			return a.Client.UpdateStoreByID(ctx, id, in, files...)
		})
		if err != nil {
			return "", err
		}

	case models.EntityStoreGroup:
		in := models.StoreGroupInputFromRecord(current)
		if err := PromptStoreGroup(&in, true); err != nil {
			return "", err
		}
		rec, err = a.mutate("Saving store group...", "update", e, id, func(ctx context.Context) (models.Record, error) {
			return a.Client.UpdateStoreGroup(ctx, id, in)
		})

	case models.EntityAffiliate:
		in := models.AffiliateInputFromRecord(current)
		if err := PromptAffiliate(&in, true); err != nil {
			return "", err
		}
		rec, err = a.mutate("Saving affiliate...", "update", e, id, func(ctx context.Context) (models.Record, error) {
			return a.Client.UpdateAffiliate(ctx, id, in)
		})

	case models.EntityAccount:
		in := models.AccountInputFromRecord(current)
		if err := PromptAccount(&in, true); err != nil {
			return "", err
		}
		rec, err = a.mutate("Saving account...", "update", e, id, func(ctx context.Context) (models.Record, error) {
			return a.Client.UpdateAccount(ctx, id, in)
		})

	default:
		return "", fmt.Errorf("%s cannot be edited here", e)
	}
	if err != nil {
		return "", err
	}
	if rec == nil {
		rec = current
	}
	return fmt.Sprintf("Saved %s", describe(e, rec)), nil
}

// uploadStores bulk-creates stores for a merchant from a CSV file.
func (a *App) uploadStores() (string, error) {
	merchantID, err := a.chooseMerchant("Upload stores for which merchant?")
	if err != nil {
		return "", err
	}
	path, cancelled, err := RunInput(InputConfig{
		Title:       "Upload Stores",
		Subtitle:    "Path to a CSV file with one store per row",
		Placeholder: "stores.csv",
		HelpText:    "Enter: upload | Esc: cancel",
		Validator:   validateCSVPath,
	})
	if err != nil {
		return "", err
	}
	if cancelled {
		return "", ErrCancelled
	}
	path = strings.TrimSpace(path)

	_, err = a.mutate("Uploading "+filepath.Base(path)+"...", "upload", models.EntityStore, merchantID,
		func(ctx context.Context) (models.Record, error) {
			return a.Client.UploadStores(ctx, merchantID, path)
		})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Uploaded %s", filepath.Base(path)), nil
}

func validateCSVPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("path is required")
	}
	if !strings.EqualFold(filepath.Ext(s), ".csv") {
		return fmt.Errorf("file must be a .csv")
	}
	return validateFilePath(s)
}

func (a *App) completeOrder(row models.Record) (string, bool, error) {
	id := row.ID("_id", "id")
	orderID := models.DisplayValue(row["orderId"], id)
	if strings.EqualFold(row.Text("status"), "completed") {
		return fmt.Sprintf("Order %s is already completed", orderID), false, nil
	}
	ok, err := Confirm("Complete order "+orderID+"?",
		fmt.Sprintf("Amount %s for %s", Amount(row, "amount"), models.DisplayValue(row["mobileNumber"], "-")))
	if err != nil || !ok {
		return "", false, err
	}
	_, err = a.mutate("Completing order...", "complete", models.EntityOrder, id, func(ctx context.Context) (models.Record, error) {
		return a.Client.CompleteOrder(ctx, id)
	})
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Order %s completed", orderID), true, nil
}

// chooseMerchant lets the user pick a merchant and returns its ID.
func (a *App) chooseMerchant(title string) (string, error) {
	var merchants []models.Record
	err := RunWithSpinner("Loading merchants...", func(ctx context.Context) error {
		var err error
		merchants, err = a.Client.FetchAllMerchants(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(merchants) == 0 {
		return "", fmt.Errorf("no merchants yet, create one first")
	}

	items := make([]string, 0, len(merchants))
	values := make([]string, 0, len(merchants))
	for _, m := range merchants {
		id := m.ID("_id", "id")
		if id == "" {
			continue
		}
		items = append(items, fmt.Sprintf("%s  (%s)", models.DisplayValue(m["Name"], id), models.DisplayValue(m["Phone"], "-")))
		values = append(values, id)
	}
	id, err := RunSelectorWithValue(SelectorConfig{
		Title:    title,
		HelpText: "↑/↓: navigate | Enter: select | Esc: cancel",
		Items:    items,
		Values:   values,
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrCancelled
	}
	return id, nil
}

// storeRefs loads the group, affiliate and account choices of the store
// form.
func (a *App) storeRefs() (StoreRefs, error) {
	var groups, affiliates, accounts []models.Record
	err := RunWithSpinner("Loading store options...", func(ctx context.Context) error {
		var err error
		if groups, err = a.Client.FetchAllDataStores(ctx); err != nil {
			return err
		}
		if affiliates, err = a.Client.FetchAllAffiliates(ctx); err != nil {
			return err
		}
		accounts, err = a.Client.FetchAllAccounts(ctx)
		return err
	})
	if err != nil {
		return StoreRefs{}, err
	}
	return StoreRefs{
		Groups:     RecordOptions(groups, "Name"),
		Affiliates: RecordOptions(affiliates, "Name"),
		Accounts:   RecordOptions(accounts, "AccountName"),
	}, nil
}

// describe names a record in status messages.
func describe(e models.Entity, r models.Record) string {
	for _, k := range []string{"Name", "AccountName", "orderId"} {
		if s := r.Text(k); s != "" {
			return fmt.Sprintf("%s %q", strings.TrimSuffix(strings.ToLower(models.SchemaFor(e).Title), "s"), s)
		}
	}
	return strings.ToLower(models.SchemaFor(e).Title)
}
