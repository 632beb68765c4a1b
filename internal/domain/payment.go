package domain

import "time"

// PaymentStatus tracks a payment through the escrow lifecycle. Once HELD_IN_ESCROW
// the only moves left are RELEASED or REFUNDED, driven server-side.
type PaymentStatus string

const (
	PaymentPending      PaymentStatus = "PENDING"
	PaymentProcessing   PaymentStatus = "PROCESSING"
	PaymentHeldInEscrow PaymentStatus = "HELD_IN_ESCROW"
	PaymentReleased     PaymentStatus = "RELEASED"
	PaymentRefunded     PaymentStatus = "REFUNDED"
	PaymentFailed       PaymentStatus = "FAILED"
	PaymentCancelled    PaymentStatus = "CANCELLED"
)

// PaymentMethod identifies the mobile-money provider used to pay.
type PaymentMethod string

const (
	MethodOrangeMoney PaymentMethod = "ORANGE_MONEY"
	MethodMTNMoney    PaymentMethod = "MTN_MONEY"
	MethodWave        PaymentMethod = "WAVE"
)

// Payment is the client's snapshot of a server-owned payment record.
// Amounts are integer GNF; the currency has no minor subdivision in use.
type Payment struct {
	ID            string        `json:"id"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Amount        int64         `json:"amount"`
	PaymentPhone  string        `json:"payment_phone,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Escrow        *Escrow       `json:"escrow,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Terminal reports whether the status can no longer change.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentReleased, PaymentRefunded, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// Transaction is a ledger line attached to a payment, read-only on the client.
type Transaction struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPaymentMethod is a stored mobile-money number for quicker checkout.
type SavedPaymentMethod struct {
	ID        string        `json:"id"`
	Method    PaymentMethod `json:"payment_method"`
	Phone     string        `json:"payment_phone"`
	IsDefault bool          `json:"is_default"`
	CreatedAt time.Time     `json:"created_at"`
}
