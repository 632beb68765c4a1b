package domain

import "time"

// OccupationStatus tracks a tenant's request to occupy a property.
type OccupationStatus string

const (
	OccupationPending   OccupationStatus = "PENDING"
	OccupationValidated OccupationStatus = "VALIDATED"
	OccupationCancelled OccupationStatus = "CANCELLED"
	OccupationCompleted OccupationStatus = "COMPLETED"
)

// OccupationPaymentStatus is the coarse paid/unpaid flag on a request.
type OccupationPaymentStatus string

const (
	OccupationUnpaid OccupationPaymentStatus = "UNPAID"
	OccupationPaid   OccupationPaymentStatus = "PAID"
)

// OccupationRequest is a tenant's formal request to occupy a property,
// distinct from the payment that settles it. All transitions are
// server-driven; the client only reads and asks.
type OccupationRequest struct {
	ID            string                  `json:"id"`
	PropertyID    string                  `json:"property_id"`
	PropertyTitle string                  `json:"property_title,omitempty"`
	TenantID      string                  `json:"tenant_id"`
	Status        OccupationStatus        `json:"status"`
	PaymentAmount int64                   `json:"payment_amount"`
	PaymentStatus OccupationPaymentStatus `json:"payment_status"`
	CreatedAt     time.Time               `json:"created_at"`
}
