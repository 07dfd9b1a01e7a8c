package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// DashboardStats are the headline counts of the home screen.
type DashboardStats struct {
	Loans           int // distinct lead IDs
	PersonalLoans   int
	BusinessLoans   int
	Merchants       int
	Stores          int
	Customers       int
	Orders          int
	PendingOrders   int
	CompletedOrders int
}

// CompletedRatio is the share of orders already completed.
func (s DashboardStats) CompletedRatio() float64 {
	if s.Orders == 0 {
		return 0
	}
	return float64(s.CompletedOrders) / float64(s.Orders)
}

// LoadDashboard fetches the lists behind the dashboard counts.
func LoadDashboard(ctx context.Context, client *api.Client) (DashboardStats, error) {
	var s DashboardStats

	loans, err := client.GetLoans(ctx, "")
	if err != nil {
		return s, fmt.Errorf("failed to load loans: %w", err)
	}
	s.Loans = CountDistinct(loans, "leadId")

	byType := []struct {
		loanType string
		dst      *int
	}{
		{"personal", &s.PersonalLoans},
		{"business", &s.BusinessLoans},
	}
	for _, c := range byType {
		records, err := client.FetchFilteredLoansByType(ctx, c.loanType)
		if err != nil {
			return s, fmt.Errorf("failed to load %s loans: %w", c.loanType, err)
		}
		*c.dst = len(records)
	}

	counts := []struct {
		entity models.Entity
		dst    *int
	}{
		{models.EntityMerchant, &s.Merchants},
		{models.EntityStore, &s.Stores},
		{models.EntityCustomer, &s.Customers},
	}
	for _, c := range counts {
		records, err := client.List(ctx, c.entity)
		if err != nil {
			return s, fmt.Errorf("failed to load %s: %w", c.entity, err)
		}
		*c.dst = len(records)
	}

	orders, err := client.GetAllOrders(ctx)
	if err != nil {
		return s, fmt.Errorf("failed to load orders: %w", err)
	}
	s.Orders = len(orders)
	for _, o := range orders {
		if strings.EqualFold(o.Text("status"), "completed") {
			s.CompletedOrders++
		} else {
			s.PendingOrders++
		}
	}
	return s, nil
}

// CountDistinct counts the distinct non-empty values of key.
func CountDistinct(records []models.Record, key string) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if v := r.Text(key); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
