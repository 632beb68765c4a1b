package domain

import "time"

// DisputeStatus represents the lifecycle of a dispute record.
type DisputeStatus string

const (
	DisputeOpen          DisputeStatus = "OPEN"
	DisputeInvestigating DisputeStatus = "INVESTIGATING"
	DisputeResolved      DisputeStatus = "RESOLVED"
	DisputeClosed        DisputeStatus = "CLOSED"
)

// DisputeResolution is the administrator's verdict; it drives the escrow's
// terminal transition server-side.
type DisputeResolution string

const (
	ResolutionRefundFull    DisputeResolution = "REFUND_FULL"
	ResolutionRefundPartial DisputeResolution = "REFUND_PARTIAL"
	ResolutionNoRefund      DisputeResolution = "NO_REFUND"
)

// Dispute is raised by a party against a payment whose funds are in HOLDING.
type Dispute struct {
	ID         string             `json:"id"`
	PaymentID  string             `json:"payment"`
	RaisedBy   string             `json:"raised_by"`
	Reason     string             `json:"reason"`
	Status     DisputeStatus      `json:"status"`
	Resolution *DisputeResolution `json:"resolution,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	ResolvedAt *time.Time         `json:"resolved_at,omitempty"`
}
