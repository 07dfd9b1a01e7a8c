package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Entity names a kind of backend record.
type Entity string

const (
	EntityLoan       Entity = "loans"
	EntityMerchant   Entity = "merchants"
	EntityStore      Entity = "stores"
	EntityStoreGroup Entity = "store-groups"
	EntityAffiliate  Entity = "affiliates"
	EntityAccount    Entity = "accounts"
	EntityOrder      Entity = "orders"
	EntityCustomer   Entity = "customers"
	EntityOffer      Entity = "offers"
)

// AllEntities lists entities in menu order.
var AllEntities = []Entity{
	EntityLoan, EntityMerchant, EntityStore, EntityStoreGroup,
	EntityAffiliate, EntityAccount, EntityOrder, EntityCustomer,
}

// Kind is the expected JSON kind of a field.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// Field is a required field of a schema.
type Field struct {
	Name string
	Kind Kind
}

// Schema describes an entity's records for validation at the API boundary
// and for table configuration.
type Schema struct {
	Entity       Entity
	Title        string
	IDField      string
	Required     []Field
	SearchFields []string
	DateFields   []string // first parseable field is the timestamp
}

// ErrInvalidRecord is returned for records that fail schema validation.
var ErrInvalidRecord = errors.New("invalid record")

// Validate checks r against the schema.
func (s Schema) Validate(r Record) error {
	if r.ID(s.IDField) == "" {
		return fmt.Errorf("%w: %s record missing %s", ErrInvalidRecord, s.Entity, s.IDField)
	}
	for _, f := range s.Required {
		v, ok := r.Get(f.Name)
		if !ok {
			return fmt.Errorf("%w: %s record %s missing %s", ErrInvalidRecord, s.Entity, r.ID(s.IDField), f.Name)
		}
		if !kindMatches(v, f.Kind) {
			return fmt.Errorf("%w: %s record %s field %s has unexpected type %T", ErrInvalidRecord, s.Entity, r.ID(s.IDField), f.Name, v)
		}
	}
	return nil
}

// Partition splits records into valid ones and validation errors.
func (s Schema) Partition(records []Record) ([]Record, []error) {
	valid := make([]Record, 0, len(records))
	var errs []error
	for _, r := range records {
		if err := s.Validate(r); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, r)
	}
	return valid, errs
}

func kindMatches(v any, k Kind) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}

// Schemas holds the schema of every entity.
var Schemas = map[Entity]Schema{
	EntityLoan: {
		Entity:       EntityLoan,
		Title:        "Loans",
		IDField:      "leadId",
		SearchFields: []string{"leadId", "mobileNumber"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityMerchant: {
		Entity:       EntityMerchant,
		Title:        "Merchants",
		IDField:      "_id",
		Required:     []Field{{Name: "Name", Kind: KindString}},
		SearchFields: []string{"Name", "Phone", "Email", "GSTIN"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityStore: {
		Entity:       EntityStore,
		Title:        "Stores",
		IDField:      "_id",
		SearchFields: []string{"StoreCode", "Name", "Phone", "storeName"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityStoreGroup: {
		Entity:       EntityStoreGroup,
		Title:        "Store Groups",
		IDField:      "_id",
		SearchFields: []string{"GroupId", "Name", "Phone"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityAffiliate: {
		Entity:       EntityAffiliate,
		Title:        "Affiliates",
		IDField:      "_id",
		Required:     []Field{{Name: "Name", Kind: KindString}},
		SearchFields: []string{"AffiliateId", "Name", "Phone", "Email"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityAccount: {
		Entity:       EntityAccount,
		Title:        "Accounts",
		IDField:      "_id",
		Required:     []Field{{Name: "AccountName", Kind: KindString}},
		SearchFields: []string{"AccountId", "AccountName", "AccountNumber"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityOrder: {
		Entity:       EntityOrder,
		Title:        "Orders",
		IDField:      "_id",
		SearchFields: []string{"orderId", "mobileNumber", "phoneNumber"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityCustomer: {
		Entity:       EntityCustomer,
		Title:        "Customers",
		IDField:      "_id",
		Required:     []Field{{Name: "mobileNumber", Kind: KindString}},
		SearchFields: []string{"mobileNumber"},
		DateFields:   []string{"createdAt", "updatedAt"},
	},
	EntityOffer: {
		Entity:       EntityOffer,
		Title:        "Offers",
		IDField:      "_id",
		SearchFields: []string{"lenderName"},
		DateFields:   []string{"createdAt"},
	},
}

// SchemaFor returns the schema of e.
func SchemaFor(e Entity) Schema {
	if s, ok := Schemas[e]; ok {
		return s
	}
	return Schema{Entity: e, Title: string(e), IDField: "_id"}
}

// LoanSummary is the offers summary of one lead.
type LoanSummary struct {
	OffersTotal   *int     `json:"offersTotal"`
	MaxLoanAmount *float64 `json:"maxLoanAmount"`
	MinMPR        *float64 `json:"minMPR"`
	MaxMPR        *float64 `json:"maxMPR"`
}

// EmailVerifyResult is the first step of the OTP login.
type EmailVerifyResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	PhoneNumber string `json:"phoneNumber"`
	PhoneHint   string `json:"phoneHint"`
	Email       string `json:"email"`
}

// OTPResult is the response of OTP verification and resend.
type OTPResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

var (
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	ifscPattern  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	pinPattern   = regexp.MustCompile(`^\d{6}$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
)

// ValidatePhone checks a 10 digit Indian mobile number.
func ValidatePhone(s string) error {
	if !phonePattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("phone must be a 10 digit mobile number")
	}
	return nil
}

// ValidateEmail checks an email address shape.
func ValidateEmail(s string) error {
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateGSTIN checks a 15 character GSTIN. Empty is allowed.
func ValidateGSTIN(s string) error {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s != "" && !gstinPattern.MatchString(s) {
		return fmt.Errorf("invalid GSTIN")
	}
	return nil
}

// ValidateIFSC checks an IFSC bank code.
func ValidateIFSC(s string) error {
	if !ifscPattern.MatchString(strings.ToUpper(strings.TrimSpace(s))) {
		return fmt.Errorf("invalid IFSC code")
	}
	return nil
}

// ValidatePinCode checks a 6 digit postal code.
func ValidatePinCode(s string) error {
	if !pinPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("pin code must be 6 digits")
	}
	return nil
}

// ValidateOTP checks a 6 digit one-time password.
func ValidateOTP(s string) error {
	if !otpPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("OTP must be 6 digits")
	}
	return nil
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
