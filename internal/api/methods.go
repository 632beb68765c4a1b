package api

import (
	"context"
	"fmt"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// CreatePaymentMethodRequest stores a mobile-money number for later use.
type CreatePaymentMethodRequest struct {
	Method domain.PaymentMethod `json:"payment_method"`
	Phone  string               `json:"payment_phone"`
}

// ListPaymentMethods fetches the caller's saved payment methods.
func (c *Client) ListPaymentMethods(ctx context.Context) ([]domain.SavedPaymentMethod, error) {
	var out []domain.SavedPaymentMethod
	if err := c.get(ctx, "payment-methods/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePaymentMethod saves a new payment method.
func (c *Client) CreatePaymentMethod(ctx context.Context, req CreatePaymentMethodRequest) (*domain.SavedPaymentMethod, error) {
	var out domain.SavedPaymentMethod
	if err := c.post(ctx, "payment-methods/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePaymentMethod removes a saved payment method.
func (c *Client) DeletePaymentMethod(ctx context.Context, id string) error {
	return c.delete(ctx, fmt.Sprintf("payment-methods/%s/", id))
}

// SetDefaultPaymentMethod marks one saved method as the default.
func (c *Client) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	return c.post(ctx, fmt.Sprintf("payment-methods/%s/set-default/", id), nil, nil)
}
