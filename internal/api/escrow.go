package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// RefundRequestResponse acknowledges a refund request; the escrow itself is
// refetched by the caller, never mutated locally.
type RefundRequestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// GetEscrow fetches the holding record for a captured payment.
func (c *Client) GetEscrow(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	var out domain.Escrow
	if err := c.get(ctx, fmt.Sprintf("escrow/%s/", escrowID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestRefund asks for the held funds back, with a mandatory reason.
func (c *Client) RequestRefund(ctx context.Context, escrowID, reason string) (*RefundRequestResponse, error) {
	var out RefundRequestResponse
	body := map[string]string{"reason": reason}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, "POST", fmt.Sprintf("escrow/%s/request-refund/", escrowID), nil, body, headers, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReleaseEscrow asks the server to release held funds to the owner.
func (c *Client) ReleaseEscrow(ctx context.Context, escrowID string) error {
	return c.post(ctx, fmt.Sprintf("escrow/%s/release/", escrowID), nil, nil)
}
