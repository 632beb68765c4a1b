package api

import (
	"context"
	"fmt"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// CreateDisputeRequest opens a dispute against a payment in HOLDING.
type CreateDisputeRequest struct {
	PaymentID string `json:"payment"`
	Reason    string `json:"reason"`
}

// ResolveDisputeRequest is the administrator's verdict.
type ResolveDisputeRequest struct {
	Resolution domain.DisputeResolution `json:"resolution"`
	Notes      string                   `json:"notes,omitempty"`
}

// CreateDispute raises a dispute.
func (c *Client) CreateDispute(ctx context.Context, req CreateDisputeRequest) (*domain.Dispute, error) {
	var out domain.Dispute
	if err := c.post(ctx, "disputes/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDisputes fetches disputes visible to the caller.
func (c *Client) ListDisputes(ctx context.Context) ([]domain.Dispute, error) {
	var out []domain.Dispute
	if err := c.get(ctx, "disputes/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveDispute records an administrator's resolution.
func (c *Client) ResolveDispute(ctx context.Context, disputeID string, req ResolveDisputeRequest) (*domain.Dispute, error) {
	var out domain.Dispute
	if err := c.post(ctx, fmt.Sprintf("disputes/%s/resolve/", disputeID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
