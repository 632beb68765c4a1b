package domain

import "testing"

func TestPaymentStatusTerminal(t *testing.T) {
	terminal := []PaymentStatus{PaymentReleased, PaymentRefunded, PaymentFailed, PaymentCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
	live := []PaymentStatus{PaymentPending, PaymentProcessing, PaymentHeldInEscrow}
	for _, s := range live {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestEscrowStatusTerminal(t *testing.T) {
	if EscrowHolding.Terminal() {
		t.Fatal("HOLDING must not be terminal")
	}
	if !EscrowReleased.Terminal() || !EscrowRefunded.Terminal() {
		t.Fatal("RELEASED and REFUNDED must be terminal")
	}
}
