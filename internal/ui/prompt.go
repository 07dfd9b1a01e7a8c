package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// ErrCancelled is returned when the user aborts a form.
var ErrCancelled = errors.New("cancelled")

// sanitizeInput removes null bytes and other control characters
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

func runForm(form *huh.Form) error {
	err := form.WithTheme(NewAppTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	if err != nil {
		return fmt.Errorf("form failed: %w", err)
	}
	return nil
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// optionalField skips validation of empty values
func optionalField(validate func(string) error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return validate(s)
	}
}

func upper(validate func(string) error) func(string) error {
	return func(s string) error { return validate(strings.ToUpper(strings.TrimSpace(s))) }
}

func textInput(title string, value *string, validate func(string) error) *huh.Input {
	in := huh.NewInput().Title(title).Value(value)
	if validate != nil {
		in = in.Validate(validate)
	}
	return in
}

// PromptMerchant fills in a new merchant.
func PromptMerchant(in *models.MerchantInput) error {
	err := runForm(huh.NewForm(
		huh.NewGroup(
			textInput("Name", &in.Name, requiredField("name")),
			textInput("Address", &in.Address, nil),
			textInput("Phone", &in.Phone, models.ValidatePhone),
			textInput("Email", &in.Email, models.ValidateEmail),
		).Title("Create Merchant"),
		huh.NewGroup(
			textInput("State", &in.State, nil),
			textInput("GSTIN", &in.GSTIN, upper(models.ValidateGSTIN)).
				Description("15 character GST number"),
		),
	))
	if err != nil {
		return err
	}
	in.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	return in.Validate()
}

// StoreRefs are the choices offered by the store form.
type StoreRefs struct {
	Groups     []huh.Option[string]
	Affiliates []huh.Option[string]
	Accounts   []huh.Option[string]
}

// RecordOptions builds select options from records, labelled by labelKey
// and valued by their ID. A leading "none" option is included.
func RecordOptions(records []models.Record, labelKey string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, r := range records {
		id := r.ID("_id", "id")
		if id == "" {
			continue
		}
		label := r.Text(labelKey)
		if label == "" {
			label = id
		}
		opts = append(opts, huh.NewOption(label, id))
	}
	return opts
}

func selectRef(title string, value *string, opts []huh.Option[string]) huh.Field {
	if len(opts) <= 1 {
		return textInput(title, value, nil)
	}
	return huh.NewSelect[string]().Title(title).Options(opts...).Value(value)
}

// PromptStore fills in or edits a store.
func PromptStore(in *models.StoreInput, refs StoreRefs, editing bool) error {
	title := "Create Store"
	if editing {
		title = "Edit Store"
	}
	err := runForm(huh.NewForm(
		huh.NewGroup(
			textInput("Name", &in.Name, requiredField("name")),
			textInput("Address", &in.Address, requiredField("address")),
			textInput("Phone", &in.Phone, models.ValidatePhone),
			textInput("Email", &in.Email, optionalField(models.ValidateEmail)),
			textInput("State", &in.State, nil),
			textInput("Pin code", &in.PinCode, optionalField(models.ValidatePinCode)),
		).Title(title),
		huh.NewGroup(
			textInput("GSTIN", &in.GSTIN, upper(models.ValidateGSTIN)),
			selectRef("Store group", &in.GroupID, refs.Groups),
			selectRef("Affiliate", &in.AffiliateID, refs.Affiliates),
			selectRef("Settlement account", &in.AccountID, refs.Accounts),
		).Title("Links"),
		huh.NewGroup(
			textInput("Bank account number", &in.AccountNumber, nil),
			textInput("IFSC", &in.IFSCCode, optionalField(upper(models.ValidateIFSC))),
			huh.NewConfirm().Title("Active").Value(&in.IsActive),
		).Title("Bank"),
	))
	if err != nil {
		return err
	}
	in.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	in.IFSCCode = strings.ToUpper(strings.TrimSpace(in.IFSCCode))
	return in.Validate()
}

var documentLabels = map[string]string{
	"gstCertificate": "GST certificate",
	"shopPhoto":      "Shop photo",
	"chequePhoto":    "Cancelled cheque",
}

// PromptStoreDocuments asks for the document files sent with a store form.
// Every file is optional.
func PromptStoreDocuments() ([]api.Attachment, error) {
	paths := make([]string, len(api.StoreDocumentFields))
	fields := make([]huh.Field, len(api.StoreDocumentFields))
	for i, f := range api.StoreDocumentFields {
		fields[i] = textInput(documentLabels[f], &paths[i], optionalField(validateFilePath)).
			Placeholder("path to file, empty to skip")
	}
	if err := runForm(huh.NewForm(huh.NewGroup(fields...).Title("Documents"))); err != nil {
		return nil, err
	}
	return storeAttachments(paths), nil
}

// storeAttachments pairs the entered paths with the document fields,
// skipping empty ones.
func storeAttachments(paths []string) []api.Attachment {
	var files []api.Attachment
	for i, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || i >= len(api.StoreDocumentFields) {
			continue
		}
		files = append(files, api.Attachment{Field: api.StoreDocumentFields[i], Path: p})
	}
	return files
}

func validateFilePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}

// PromptStoreGroup fills in or edits a store group.
func PromptStoreGroup(in *models.StoreGroupInput, editing bool) error {
	title := "Create Store Group"
	if editing {
		title = "Edit Store Group"
	}
	err := runForm(huh.NewForm(
		huh.NewGroup(
			textInput("Name", &in.Name, requiredField("name")),
			textInput("Phone", &in.Phone, models.ValidatePhone),
			textInput("Email", &in.Email, models.ValidateEmail),
			huh.NewText().Title("Description").Value(&in.Description),
			huh.NewConfirm().Title("Active").Value(&in.IsActive),
		).Title(title),
	))
	if err != nil {
		return err
	}
	return in.Validate()
}

// PromptAffiliate fills in or edits an affiliate.
func PromptAffiliate(in *models.AffiliateInput, editing bool) error {
	title := "Create Affiliate"
	if editing {
		title = "Edit Affiliate"
	}
	err := runForm(huh.NewForm(
		huh.NewGroup(
			textInput("Name", &in.Name, requiredField("name")),
			textInput("Phone", &in.Phone, models.ValidatePhone),
			textInput("Email", &in.Email, models.ValidateEmail),
			huh.NewConfirm().Title("Active").Value(&in.IsActive),
		).Title(title),
	))
	if err != nil {
		return err
	}
	return in.Validate()
}

// PromptAccount fills in or edits a settlement account.
func PromptAccount(in *models.AccountInput, editing bool) error {
	title := "Create Account"
	if editing {
		title = "Edit Account"
	}
	err := runForm(huh.NewForm(
		huh.NewGroup(
			textInput("Account name", &in.AccountName, requiredField("account name")),
			textInput("Account number", &in.AccountNumber, requiredField("account number")),
			textInput("IFSC", &in.IFSCCode, upper(models.ValidateIFSC)),
			huh.NewText().Title("Description").Value(&in.Description),
			huh.NewConfirm().Title("Active").Value(&in.IsActive),
		).Title(title),
	))
	if err != nil {
		return err
	}
	in.IFSCCode = strings.ToUpper(strings.TrimSpace(in.IFSCCode))
	return in.Validate()
}

// Confirm asks a yes/no question.
func Confirm(title, description string) (bool, error) {
	var ok bool
	err := runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	))
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	return ok, err
}

// Export formats.
const (
	FormatMarkdown = "md"
	FormatCSV      = "csv"
)

// PromptExport asks for an export format and filename. The extension is
// added when missing.
func PromptExport(defaultBase string) (format, filename string, err error) {
	format = FormatCSV
	err = runForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export format").
				Options(
					huh.NewOption("CSV", FormatCSV),
					huh.NewOption("Markdown", FormatMarkdown),
				).
				Value(&format),
			huh.NewInput().
				Title("Export filename").
				Description("Leave empty for the suggested name").
				Placeholder(defaultBase).
				Value(&filename),
		),
	))
	if err != nil {
		return "", "", err
	}
	return format, exportFilename(filename, defaultBase, format), nil
}

func exportFilename(name, defaultBase, format string) string {
	name = strings.TrimSpace(sanitizeInput(name))
	if name == "" {
		name = defaultBase
	}
	if !strings.EqualFold(filepath.Ext(name), "."+format) {
		name += "." + format
	}
	return name
}
