package api

import (
	"context"
	"net/url"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// GetAllDetails fetches every lead with its loan payload references.
func (c *Client) GetAllDetails(ctx context.Context, search string) ([]models.Record, error) {
	return c.list(ctx, models.EntityLoan, "/all-details", url.Values{"search": {search}})
}

// GetLoans fetches the lead details and expands them into one row per
// personal or business payload.
func (c *Client) GetLoans(ctx context.Context, search string) ([]models.Record, error) {
	items, err := c.GetAllDetails(ctx, search)
	if err != nil {
		return nil, err
	}
	return models.ExpandLoanDetails(items), nil
}

// GetAllOffers fetches the lender offers of a lead.
func (c *Client) GetAllOffers(ctx context.Context, leadID string) ([]models.Record, error) {
	body, err := c.get(ctx, "/all-offers/"+url.PathEscape(leadID), nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetSummary fetches the offer summary of a lead.
func (c *Client) GetSummary(ctx context.Context, leadID string) (models.LoanSummary, error) {
	var summary models.LoanSummary
	body, err := c.get(ctx, "/get-summary/"+url.PathEscape(leadID), nil)
	if err != nil {
		return summary, err
	}
	err = decodeInto(body, &summary)
	return summary, err
}

// FetchFilteredLoanData fetches loans whose from/to calendar dates
// (YYYY-MM-DD, inclusive) match on the given date type. An empty type
// means "created". The signature matches table.Fetcher.
func (c *Client) FetchFilteredLoanData(ctx context.Context, from, to, dateType string) ([]models.Record, error) {
	if dateType == "" {
		dateType = "created"
	}
	return c.list(ctx, models.EntityLoan, "/get-filtered-data", url.Values{
		"from": {from},
		"to":   {to},
		"type": {dateType},
	})
}

// FetchFilteredLoansByType fetches loans of one type: personal or business.
func (c *Client) FetchFilteredLoansByType(ctx context.Context, loanType string) ([]models.Record, error) {
	if loanType != "personal" && loanType != "business" {
		return nil, ErrInvalidLoanType
	}
	return c.list(ctx, models.EntityLoan, "/get-filtered-loans", url.Values{"loanType": {loanType}})
}
