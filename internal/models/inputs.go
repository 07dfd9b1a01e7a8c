package models

import "errors"

// MerchantInput is the create-merchant payload.
type MerchantInput struct {
	Name    string `json:"Name"`
	Address string `json:"Address"`
	Phone   string `json:"Phone"`
	Email   string `json:"Email"`
	State   string `json:"State"`
	GSTIN   string `json:"GSTIN"`
}

// Validate checks the merchant payload.
func (in MerchantInput) Validate() error {
	return errors.Join(
		required("Name", in.Name),
		ValidatePhone(in.Phone),
		ValidateEmail(in.Email),
		ValidateGSTIN(in.GSTIN),
	)
}

// StoreInput is the create/update store payload.
type StoreInput struct {
	Name          string `json:"Name"`
	Address       string `json:"Address"`
	Phone         string `json:"Phone"`
	Email         string `json:"Email"`
	State         string `json:"State"`
	GSTIN         string `json:"GSTIN"`
	GroupID       string `json:"GroupId"`
	AffiliateID   string `json:"AffiliateId"`
	AccountID     string `json:"AccountId"`
	IsActive      bool   `json:"IsActive"`
	PinCode       string `json:"pinCode"`
	IFSCCode      string `json:"ifscCode"`
	AccountNumber string `json:"accountNumber"`
}

// Validate checks the store payload.
func (in StoreInput) Validate() error {
	errs := []error{
		required("Name", in.Name),
		required("Address", in.Address),
		ValidatePhone(in.Phone),
		ValidateGSTIN(in.GSTIN),
	}
	if in.Email != "" {
		errs = append(errs, ValidateEmail(in.Email))
	}
	if in.PinCode != "" {
		errs = append(errs, ValidatePinCode(in.PinCode))
	}
	if in.IFSCCode != "" {
		errs = append(errs, ValidateIFSC(in.IFSCCode))
	}
	return errors.Join(errs...)
}

// StoreInputFromRecord pre-fills an edit form from a store record.
func StoreInputFromRecord(r Record) StoreInput {
	return StoreInput{
		Name:          r.Text("Name"),
		Address:       r.Text("Address"),
		Phone:         r.Text("Phone"),
		Email:         r.Text("Email"),
		State:         r.Text("State"),
		GSTIN:         r.Text("GSTIN"),
		GroupID:       r.Text("GroupId"),
		AffiliateID:   r.Text("AffiliateId"),
		AccountID:     r.Text("AccountId"),
		IsActive:      r.Bool("IsActive"),
		PinCode:       r.Text("pinCode"),
		IFSCCode:      r.Text("ifscCode"),
		AccountNumber: r.Text("accountNumber"),
	}
}

// StoreGroupInput is the create/update store group payload.
type StoreGroupInput struct {
	Name        string `json:"Name"`
	Phone       string `json:"Phone"`
	Email       string `json:"Email"`
	Description string `json:"Description"`
	IsActive    bool   `json:"IsActive"`
}

// Validate checks the store group payload.
func (in StoreGroupInput) Validate() error {
	return errors.Join(
		required("Name", in.Name),
		ValidatePhone(in.Phone),
		ValidateEmail(in.Email),
	)
}

// StoreGroupInputFromRecord pre-fills an edit form.
func StoreGroupInputFromRecord(r Record) StoreGroupInput {
	return StoreGroupInput{
		Name:        r.Text("Name"),
		Phone:       r.Text("Phone"),
		Email:       r.Text("Email"),
		Description: r.Text("Description"),
		IsActive:    r.Bool("IsActive"),
	}
}

// AffiliateInput is the create/update affiliate payload.
type AffiliateInput struct {
	Name     string `json:"Name"`
	Phone    string `json:"Phone"`
	Email    string `json:"Email"`
	IsActive bool   `json:"IsActive"`
}

// Validate checks the affiliate payload.
func (in AffiliateInput) Validate() error {
	return errors.Join(
		required("Name", in.Name),
		ValidatePhone(in.Phone),
		ValidateEmail(in.Email),
	)
}

// AffiliateInputFromRecord pre-fills an edit form.
func AffiliateInputFromRecord(r Record) AffiliateInput {
	return AffiliateInput{
		Name:     r.Text("Name"),
		Phone:    r.Text("Phone"),
		Email:    r.Text("Email"),
		IsActive: r.Bool("IsActive"),
	}
}

// AccountInput is the create/update account payload.
type AccountInput struct {
	AccountName   string `json:"AccountName"`
	AccountNumber string `json:"AccountNumber"`
	IFSCCode      string `json:"IFSCCode"`
	Description   string `json:"Description"`
	IsActive      bool   `json:"IsActive"`
}

// Validate checks the account payload.
func (in AccountInput) Validate() error {
	return errors.Join(
		required("AccountName", in.AccountName),
		required("AccountNumber", in.AccountNumber),
		ValidateIFSC(in.IFSCCode),
	)
}

// AccountInputFromRecord pre-fills an edit form.
func AccountInputFromRecord(r Record) AccountInput {
	return AccountInput{
		AccountName:   r.Text("AccountName"),
		AccountNumber: r.Text("AccountNumber"),
		IFSCCode:      r.Text("IFSCCode"),
		Description:   r.Text("Description"),
		IsActive:      r.Bool("IsActive"),
	}
}
