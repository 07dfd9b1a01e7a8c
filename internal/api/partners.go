package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Store groups, affiliates and accounts share the same create / list /
// get / update shape.

// CreateStoreGroup creates a store group.
func (c *Client) CreateStoreGroup(ctx context.Context, in models.StoreGroupInput) (models.Record, error) {
	return c.create(ctx, "/create-store", in.Validate, in)
}

// FetchAllDataStores lists every store group.
func (c *Client) FetchAllDataStores(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityStoreGroup, "/all-datatstores", nil)
}

// GetDataStoreByID fetches one store group.
func (c *Client) GetDataStoreByID(ctx context.Context, id string) (models.Record, error) {
	return c.byID(ctx, models.EntityStoreGroup, "/get-data-store-by-id", id)
}

// UpdateStoreGroup updates a store group.
func (c *Client) UpdateStoreGroup(ctx context.Context, id string, in models.StoreGroupInput) (models.Record, error) {
	return c.update(ctx, models.EntityStoreGroup, "/edit-store-groups/", id, in.Validate, in)
}

// CreateAffiliate creates an affiliate.
func (c *Client) CreateAffiliate(ctx context.Context, in models.AffiliateInput) (models.Record, error) {
	return c.create(ctx, "/create-affiliate", in.Validate, in)
}

// FetchAllAffiliates lists every affiliate.
func (c *Client) FetchAllAffiliates(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityAffiliate, "/all-affiliates", nil)
}

// GetAffiliateByID fetches one affiliate.
func (c *Client) GetAffiliateByID(ctx context.Context, id string) (models.Record, error) {
	return c.byID(ctx, models.EntityAffiliate, "/get-affiliate-by-id", id)
}

// UpdateAffiliate updates an affiliate.
func (c *Client) UpdateAffiliate(ctx context.Context, id string, in models.AffiliateInput) (models.Record, error) {
	return c.update(ctx, models.EntityAffiliate, "/edit-affiliates/", id, in.Validate, in)
}

// CreateAccount creates a settlement account.
func (c *Client) CreateAccount(ctx context.Context, in models.AccountInput) (models.Record, error) {
	return c.create(ctx, "/create-account", in.Validate, in)
}

// FetchAllAccounts lists every account.
func (c *Client) FetchAllAccounts(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityAccount, "/all-accounts", nil)
}

// GetAccountByID fetches one account.
func (c *Client) GetAccountByID(ctx context.Context, id string) (models.Record, error) {
	return c.byID(ctx, models.EntityAccount, "/get-account-by-id", id)
}

// UpdateAccount updates an account.
func (c *Client) UpdateAccount(ctx context.Context, id string, in models.AccountInput) (models.Record, error) {
	return c.update(ctx, models.EntityAccount, "/edit-accounts/", id, in.Validate, in)
}

func (c *Client) create(ctx context.Context, path string, validate func() error, payload any) (models.Record, error) {
	if err := validate(); err != nil {
		return nil, err
	}
	body, err := c.sendJSON(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

func (c *Client) update(ctx context.Context, entity models.Entity, prefix, id string, validate func() error, payload any) (models.Record, error) {
	if err := validate(); err != nil {
		return nil, err
	}
	body, err := c.sendJSON(ctx, http.MethodPut, prefix+url.PathEscape(id), payload)
	if err != nil {
		return nil, err
	}
	c.invalidate(entity, id)
	return decodeOne(body)
}
