package escrow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func TestStatusBadgeMapping(t *testing.T) {
	cases := []struct {
		status domain.EscrowStatus
		label  string
	}{
		{domain.EscrowHolding, "Fonds bloqués"},
		{domain.EscrowReleased, "Fonds libérés"},
		{domain.EscrowRefunded, "Remboursé"},
	}
	for _, tc := range cases {
		badge := StatusBadge(tc.status)
		if badge.Label != tc.label {
			t.Fatalf("%s: label = %q, want %q", tc.status, badge.Label, tc.label)
		}
		if badge.Description == "" {
			t.Fatalf("%s: empty description", tc.status)
		}
	}
}

func TestStatusBadgeIsDeterministic(t *testing.T) {
	first := StatusBadge(domain.EscrowHolding)
	for i := 0; i < 5; i++ {
		if got := StatusBadge(domain.EscrowHolding); got.Label != first.Label || got.Description != first.Description {
			t.Fatalf("badge changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestStatusBadgeUnknownStatusFallsBack(t *testing.T) {
	badge := StatusBadge(domain.EscrowStatus("SOMETHING_NEW"))
	if badge.Label == "" {
		t.Fatal("unknown status must still render a badge")
	}
	if badge.Label == StatusBadge(domain.EscrowHolding).Label {
		t.Fatal("unknown status must not borrow the HOLDING badge")
	}
}

func TestCanRequestRefundOnlyWhileHolding(t *testing.T) {
	if !CanRequestRefund(domain.EscrowHolding) {
		t.Fatal("HOLDING must allow a refund request")
	}
	for _, s := range []domain.EscrowStatus{domain.EscrowReleased, domain.EscrowRefunded, "UNKNOWN"} {
		if CanRequestRefund(s) {
			t.Fatalf("%s must not allow a refund request", s)
		}
	}
}

func TestRenderShowsAmountAndSchedule(t *testing.T) {
	sched := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	out := Render(&domain.Escrow{
		ID:                   "escrow-1",
		Status:               domain.EscrowHolding,
		HeldAmount:           1500000,
		HeldAt:               time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		ReleaseScheduledDate: &sched,
	})
	if !strings.Contains(out, "1500000") {
		t.Fatalf("held amount missing from render:\n%s", out)
	}
	if !strings.Contains(out, "Fonds bloqués") {
		t.Fatalf("badge label missing from render:\n%s", out)
	}
}

type fakeRefundAPI struct {
	calls int
	resp  *api.RefundRequestResponse
	err   error
}

func (f *fakeRefundAPI) RequestRefund(ctx context.Context, escrowID, reason string) (*api.RefundRequestResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestRefundRejectsEmptyReasonWithoutCall(t *testing.T) {
	fake := &fakeRefundAPI{}
	r := NewRequester(fake, nil)

	for _, reason := range []string{"", "   ", "\t\n"} {
		err := r.Request(context.Background(), "escrow-1", reason, nil)
		if !errors.Is(err, ErrEmptyReason) {
			t.Fatalf("reason %q: err = %v, want ErrEmptyReason", reason, err)
		}
	}
	if fake.calls != 0 {
		t.Fatalf("server called %d times for empty reasons", fake.calls)
	}
}

func TestRefundSurfacesServerRejection(t *testing.T) {
	fake := &fakeRefundAPI{resp: &api.RefundRequestResponse{Success: false, Message: "Les fonds ne sont plus en séquestre"}}
	r := NewRequester(fake, nil)

	err := r.Request(context.Background(), "escrow-1", "logement insalubre", nil)
	if !errors.Is(err, ErrRefundRejected) {
		t.Fatalf("err = %v, want ErrRefundRejected", err)
	}
	if !strings.Contains(err.Error(), "Les fonds ne sont plus en séquestre") {
		t.Fatalf("server message lost: %v", err)
	}
}

func TestRefundSuccessTriggersRefetchCallback(t *testing.T) {
	fake := &fakeRefundAPI{resp: &api.RefundRequestResponse{Success: true}}
	r := NewRequester(fake, nil)

	refetched := false
	if err := r.Request(context.Background(), "escrow-1", "logement insalubre", func() { refetched = true }); err != nil {
		t.Fatalf("request: %v", err)
	}
	if !refetched {
		t.Fatal("success must trigger the refetch callback")
	}
	if fake.calls != 1 {
		t.Fatalf("server called %d times, want 1", fake.calls)
	}
}
