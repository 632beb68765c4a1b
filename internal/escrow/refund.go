package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirayehq/kiraye-cli/internal/api"
)

var (
	// ErrEmptyReason blocks a refund request before any network call.
	ErrEmptyReason = errors.New("escrow: refund reason must not be empty")
	// ErrRefundRejected wraps a server-side refusal; the server's message
	// is attached for display.
	ErrRefundRejected = errors.New("escrow: refund request rejected")
)

// RefundAPI is the slice of the gateway client the requester needs.
type RefundAPI interface {
	RequestRefund(ctx context.Context, escrowID, reason string) (*api.RefundRequestResponse, error)
}

// Requester submits refund requests. The escrow snapshot is never mutated
// locally; on success the onUpdate callback fires so the caller refetches
// the authoritative state.
type Requester struct {
	client RefundAPI
	logger *slog.Logger
}

// NewRequester builds a refund requester.
func NewRequester(client RefundAPI, logger *slog.Logger) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Requester{client: client, logger: logger}
}

// Request validates the reason and submits the refund request.
func (r *Requester) Request(ctx context.Context, escrowID, reason string, onUpdate func()) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}

	resp, err := r.client.RequestRefund(ctx, escrowID, reason)
	if err != nil {
		r.logger.Error("refund request failed", "escrow_id", escrowID, "error", err)
		return fmt.Errorf("request refund: %w", err)
	}
	if !resp.Success {
		r.logger.Warn("refund request rejected", "escrow_id", escrowID, "message", resp.Message)
		if resp.Message == "" {
			return ErrRefundRejected
		}
		return fmt.Errorf("%w: %s", ErrRefundRejected, resp.Message)
	}

	r.logger.Info("refund requested", "escrow_id", escrowID)
	if onUpdate != nil {
		onUpdate()
	}
	return nil
}
