package domain

import "time"

// EscrowStatus only ever moves HOLDING -> RELEASED or HOLDING -> REFUNDED.
type EscrowStatus string

const (
	EscrowHolding  EscrowStatus = "HOLDING"
	EscrowReleased EscrowStatus = "RELEASED"
	EscrowRefunded EscrowStatus = "REFUNDED"
)

// Escrow mirrors the server's holding record for a captured payment.
// One-to-one with a Payment once funds are captured.
type Escrow struct {
	ID                   string       `json:"id"`
	PaymentID            string       `json:"payment_id"`
	Status               EscrowStatus `json:"status"`
	HeldAmount           int64        `json:"held_amount"`
	HeldAt               time.Time    `json:"held_at"`
	ReleaseScheduledDate *time.Time   `json:"release_scheduled_date,omitempty"`
	ReleasedAt           *time.Time   `json:"released_at,omitempty"`
	RefundReason         *string      `json:"refund_reason,omitempty"`
}

// Terminal reports whether the escrow reached RELEASED or REFUNDED.
func (s EscrowStatus) Terminal() bool {
	return s == EscrowReleased || s == EscrowRefunded
}
