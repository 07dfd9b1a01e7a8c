package api

import (
	"context"
	"net/http"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// CreateMerchant creates a merchant (chain store owner).
func (c *Client) CreateMerchant(ctx context.Context, in models.MerchantInput) (models.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, err := c.sendJSON(ctx, http.MethodPost, "/create-merchant", in)
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// FetchAllMerchants lists every merchant.
func (c *Client) FetchAllMerchants(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityMerchant, "/get-all-merchants", nil)
}
