package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// OrderStatusCompleted is the status set by CompleteOrder.
const OrderStatusCompleted = "Completed"

// GetAllOrders lists every order.
func (c *Client) GetAllOrders(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityOrder, "/all-orders", nil)
}

// SearchOrdersByPhone lists the orders placed from a phone number.
func (c *Client) SearchOrdersByPhone(ctx context.Context, phone string) ([]models.Record, error) {
	return c.list(ctx, models.EntityOrder, "/search-orders-by-phone-number", url.Values{"number": {phone}})
}

// CompleteOrder marks an order as completed.
func (c *Client) CompleteOrder(ctx context.Context, orderID string) (models.Record, error) {
	body, err := c.sendJSON(ctx, http.MethodPut, "/update-order-by-id/"+url.PathEscape(orderID),
		map[string]string{"status": OrderStatusCompleted})
	if err != nil {
		return nil, err
	}
	return decodeOne(body)
}

// GetAllCustomers lists every customer.
func (c *Client) GetAllCustomers(ctx context.Context) ([]models.Record, error) {
	return c.list(ctx, models.EntityCustomer, "/all-customers", nil)
}

// SearchCustomersByPhone finds customers by mobile number.
func (c *Client) SearchCustomersByPhone(ctx context.Context, phone string) ([]models.Record, error) {
	return c.list(ctx, models.EntityCustomer, "/search-customers-by-phone", url.Values{"mobileNumber": {phone}})
}
