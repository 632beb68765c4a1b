package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
)

type fakePaymentAPI struct {
	initiateCalls int
	initiateResp  *api.InitiatePaymentResponse
	initiateErr   error
	// initiateBlock, when non-nil, holds the initiate call until closed.
	initiateBlock chan struct{}
	verifyResp    *api.VerifyPaymentResponse
}

func (f *fakePaymentAPI) InitiatePayment(ctx context.Context, req api.InitiatePaymentRequest) (*api.InitiatePaymentResponse, error) {
	f.initiateCalls++
	if f.initiateBlock != nil {
		<-f.initiateBlock
	}
	return f.initiateResp, f.initiateErr
}

func (f *fakePaymentAPI) VerifyPayment(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
	if f.verifyResp != nil {
		return f.verifyResp, nil
	}
	return &api.VerifyPaymentResponse{Status: domain.PaymentProcessing}, nil
}

func TestFlowRejectsShortPhoneWithoutNetworkCall(t *testing.T) {
	fake := &fakePaymentAPI{}
	flow := NewFlow(fake, fastConfig(3), nil)

	for _, phone := range []string{"", "12345678", "  628  ", " 62211223 "} {
		_, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, phone, false)
		if !errors.Is(err, ErrPhoneTooShort) {
			t.Fatalf("phone %q: err = %v, want ErrPhoneTooShort", phone, err)
		}
	}
	if fake.initiateCalls != 0 {
		t.Fatalf("initiate called %d times before validation passed", fake.initiateCalls)
	}
	if flow.State() != StateForm {
		t.Fatalf("state = %s, want FORM", flow.State())
	}
}

func TestFlowReturnsToFormOnBusinessRejection(t *testing.T) {
	fake := &fakePaymentAPI{
		initiateResp: &api.InitiatePaymentResponse{Success: false, Message: "Ce loyer est déjà payé"},
	}
	flow := NewFlow(fake, fastConfig(3), nil)

	_, err := flow.Submit(context.Background(), "occ-1", domain.MethodMTNMoney, "622112233", false)
	var bizErr *BusinessError
	if !errors.As(err, &bizErr) {
		t.Fatalf("err = %v, want *BusinessError", err)
	}
	if bizErr.Message != "Ce loyer est déjà payé" {
		t.Fatalf("message = %q, want the server's verbatim text", bizErr.Message)
	}
	if flow.State() != StateForm {
		t.Fatalf("state = %s, want FORM so the user can retry", flow.State())
	}
	if flow.Poller() != nil {
		t.Fatal("poller must not start on a rejected initiation")
	}

	// The same flow accepts a second submit after a rejection.
	fake.initiateResp = &api.InitiatePaymentResponse{Success: true, PaymentID: "pay-1"}
	if _, err := flow.Submit(context.Background(), "occ-1", domain.MethodMTNMoney, "622112233", false); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
	flow.Cancel()
}

func TestFlowReturnsToFormOnTransportError(t *testing.T) {
	fake := &fakePaymentAPI{initiateErr: errors.New("dial tcp: connection refused")}
	flow := NewFlow(fake, fastConfig(3), nil)

	_, err := flow.Submit(context.Background(), "occ-1", domain.MethodWave, "622112233", false)
	if err == nil {
		t.Fatal("expected an error on transport failure")
	}
	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		t.Fatal("transport errors must not masquerade as business rejections")
	}
	if flow.State() != StateForm {
		t.Fatalf("state = %s, want FORM", flow.State())
	}
}

func TestFlowStartsPollerOnSuccess(t *testing.T) {
	fake := &fakePaymentAPI{
		initiateResp: &api.InitiatePaymentResponse{
			Success:       true,
			PaymentID:     "pay-9",
			TransactionID: "txn-9",
			USSDCode:      "*144*4*6#",
		},
		verifyResp: &api.VerifyPaymentResponse{Success: true, Status: domain.PaymentHeldInEscrow},
	}
	flow := NewFlow(fake, fastConfig(5), nil)

	init, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, "622112233", true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if init.PaymentID != "pay-9" || init.USSDCode != "*144*4*6#" {
		t.Fatalf("initiation = %+v", init)
	}
	if flow.State() != StateInitiated {
		t.Fatalf("state = %s, want INITIATED", flow.State())
	}
	poller := flow.Poller()
	if poller == nil {
		t.Fatal("poller not started")
	}

	select {
	case ev := <-poller.Events():
		if ev.Type != EventSucceeded {
			t.Fatalf("first event %+v, want succeeded", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no poller event")
	}
}

func TestFlowRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	fake := &fakePaymentAPI{
		initiateResp:  &api.InitiatePaymentResponse{Success: true, PaymentID: "pay-1"},
		initiateBlock: release,
	}
	flow := NewFlow(fake, fastConfig(3), nil)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, "622112233", false)
		done <- err
	}()
	waitForState(t, flow, StateSubmitting)

	// While the first submit is in flight, a duplicate is a concurrency bug.
	if _, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, "622112233", false); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("err = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	flow.Cancel()
}

func TestFlowRejectsSubmitAfterInitiation(t *testing.T) {
	fake := &fakePaymentAPI{
		initiateResp: &api.InitiatePaymentResponse{Success: true, PaymentID: "pay-1"},
	}
	flow := NewFlow(fake, fastConfig(3), nil)
	if _, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, "622112233", false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// A flow that already handed off to the poller never resubmits; the
	// completed case reports its own sentinel, not the in-flight one.
	if _, err := flow.Submit(context.Background(), "occ-1", domain.MethodOrangeMoney, "622112233", false); !errors.Is(err, ErrAlreadyInitiated) {
		t.Fatalf("err = %v, want ErrAlreadyInitiated", err)
	}
	flow.Cancel()
}

func waitForState(t *testing.T, flow *Flow, want State) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for flow.State() != want {
		select {
		case <-deadline:
			t.Fatalf("state = %s, want %s", flow.State(), want)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
