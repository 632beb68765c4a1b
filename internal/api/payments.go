package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// InitiatePaymentRequest is the body for POST /payments/initiate/.
type InitiatePaymentRequest struct {
	OccupationRequestID string               `json:"occupation_request_id"`
	PaymentMethod       domain.PaymentMethod `json:"payment_method"`
	PaymentPhone        string               `json:"payment_phone"`
	SavePaymentMethod   bool                 `json:"save_payment_method"`
}

// InitiatePaymentResponse is the provider handoff returned by initiate.
type InitiatePaymentResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	PaymentID     string `json:"payment_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	USSDCode      string `json:"ussd_code,omitempty"`
}

// VerifyPaymentResponse is one poll result from POST /payments/{id}/verify/.
type VerifyPaymentResponse struct {
	Success        bool                 `json:"success"`
	Status         domain.PaymentStatus `json:"status,omitempty"`
	ProviderStatus string               `json:"provider_status,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// InitiatePayment starts a mobile-money payment for an occupation request.
// The request carries an Idempotency-Key so a retried submit cannot double-charge.
func (c *Client) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	var out InitiatePaymentResponse
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, "POST", "payments/initiate/", nil, req, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment asks the server to reconcile the payment with the provider.
func (c *Client) VerifyPayment(ctx context.Context, paymentID string) (*VerifyPaymentResponse, error) {
	var out VerifyPaymentResponse
	if err := c.post(ctx, fmt.Sprintf("payments/%s/verify/", paymentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPayment abandons a pending payment.
func (c *Client) CancelPayment(ctx context.Context, paymentID string) error {
	return c.post(ctx, fmt.Sprintf("payments/%s/cancel/", paymentID), nil, nil)
}

// GetPayment fetches one payment snapshot, including its escrow when captured.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.get(ctx, fmt.Sprintf("payments/%s/", paymentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPayments fetches the caller's payments.
func (c *Client) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	if err := c.get(ctx, "payments/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
