package api

import (
	"context"
	"fmt"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

// ListTransactions fetches the caller's ledger lines.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	if err := c.get(ctx, "transactions/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction fetches one ledger line.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := c.get(ctx, fmt.Sprintf("transactions/%s/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOccupationRequests fetches the caller's occupation requests.
func (c *Client) ListOccupationRequests(ctx context.Context) ([]domain.OccupationRequest, error) {
	var out []domain.OccupationRequest
	if err := c.get(ctx, "occupation-requests/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccupationRequest fetches one occupation request.
func (c *Client) GetOccupationRequest(ctx context.Context, id string) (*domain.OccupationRequest, error) {
	var out domain.OccupationRequest
	if err := c.get(ctx, fmt.Sprintf("occupation-requests/%s/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
