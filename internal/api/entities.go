package api

import (
	"context"
	"fmt"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// List fetches the baseline collection of an entity page.
func (c *Client) List(ctx context.Context, e models.Entity) ([]models.Record, error) {
	switch e {
	case models.EntityLoan:
		return c.GetLoans(ctx, "")
	case models.EntityMerchant:
		return c.FetchAllMerchants(ctx)
	case models.EntityStore:
		return c.FetchAllStores(ctx)
	case models.EntityStoreGroup:
		return c.FetchAllDataStores(ctx)
	case models.EntityAffiliate:
		return c.FetchAllAffiliates(ctx)
	case models.EntityAccount:
		return c.FetchAllAccounts(ctx)
	case models.EntityOrder:
		return c.GetAllOrders(ctx)
	case models.EntityCustomer:
		return c.GetAllCustomers(ctx)
	}
	return nil, fmt.Errorf("no list endpoint for %s", e)
}

// Get fetches one record of an entity by ID.
func (c *Client) Get(ctx context.Context, e models.Entity, id string) (models.Record, error) {
	switch e {
	case models.EntityStore:
		return c.FetchStoreByID(ctx, id)
	case models.EntityStoreGroup:
		return c.GetDataStoreByID(ctx, id)
	case models.EntityAffiliate:
		return c.GetAffiliateByID(ctx, id)
	case models.EntityAccount:
		return c.GetAccountByID(ctx, id)
	}
	return nil, fmt.Errorf("no lookup endpoint for %s", e)
}
