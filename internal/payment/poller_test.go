package payment

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func fastConfig(maxAttempts int) PollerConfig {
	return PollerConfig{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

// drain collects all events until the channel closes.
func drain(t *testing.T, p *Poller) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-p.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("poller did not finish, got %d events so far", len(events))
		}
	}
}

func TestPollerStopsOnHeldInEscrow(t *testing.T) {
	var calls atomic.Int64
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		n := calls.Add(1)
		if n < 3 {
			return &api.VerifyPaymentResponse{Status: domain.PaymentProcessing, ProviderStatus: "PENDING_CONFIRMATION"}, nil
		}
		return &api.VerifyPaymentResponse{Success: true, Status: domain.PaymentHeldInEscrow, ProviderStatus: "CONFIRMED"}, nil
	}

	p := NewPoller("pay-1", verify, fastConfig(10))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := drain(t, p)

	if got := calls.Load(); got != 3 {
		t.Fatalf("verify called %d times, want exactly 3", got)
	}
	var succeeded int
	for _, ev := range events {
		if ev.Type == EventSucceeded {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Fatalf("got %d succeeded events, want 1", succeeded)
	}
	last := events[len(events)-1]
	if last.Type != EventSucceeded || last.Status != domain.PaymentHeldInEscrow {
		t.Fatalf("last event = %+v, want succeeded/HELD_IN_ESCROW", last)
	}
}

func TestPollerContinuesPastBusinessRejection(t *testing.T) {
	// success=false with a reply is not terminal: the provider just has
	// not confirmed yet.
	var calls atomic.Int64
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		if calls.Add(1) < 4 {
			return &api.VerifyPaymentResponse{Success: false, Status: domain.PaymentProcessing, Message: "pas encore"}, nil
		}
		return &api.VerifyPaymentResponse{Success: true, Status: domain.PaymentHeldInEscrow}, nil
	}

	p := NewPoller("pay-2", verify, fastConfig(10))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := drain(t, p)
	if events[len(events)-1].Type != EventSucceeded {
		t.Fatalf("expected eventual success, last event %+v", events[len(events)-1])
	}
	if calls.Load() != 4 {
		t.Fatalf("verify called %d times, want 4", calls.Load())
	}
}

func TestPollerExhaustsAttemptBudget(t *testing.T) {
	var calls atomic.Int64
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		calls.Add(1)
		return &api.VerifyPaymentResponse{Status: domain.PaymentProcessing}, nil
	}

	p := NewPoller("pay-3", verify, fastConfig(5))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := drain(t, p)

	if calls.Load() != 5 {
		t.Fatalf("verify called %d times, want 5", calls.Load())
	}
	last := events[len(events)-1]
	if last.Type != EventExhausted {
		t.Fatalf("last event %+v, want exhausted", last)
	}
	if last.Attempt != 5 {
		t.Fatalf("exhausted at attempt %d, want 5", last.Attempt)
	}
}

func TestPollerSurvivesTransportErrors(t *testing.T) {
	var calls atomic.Int64
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		n := calls.Add(1)
		if n <= 2 {
			return nil, errors.New("connection refused")
		}
		return &api.VerifyPaymentResponse{Success: true, Status: domain.PaymentHeldInEscrow}, nil
	}

	p := NewPoller("pay-4", verify, fastConfig(10))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	events := drain(t, p)

	var errEvents int
	for _, ev := range events {
		if ev.Type == EventError {
			if ev.Err == nil {
				t.Fatalf("error event without Err: %+v", ev)
			}
			errEvents++
		}
	}
	if errEvents != 2 {
		t.Fatalf("got %d error events, want 2", errEvents)
	}
	if events[len(events)-1].Type != EventSucceeded {
		t.Fatalf("expected success after transient errors, last %+v", events[len(events)-1])
	}
}

func TestPollerStartTwiceFails(t *testing.T) {
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		return &api.VerifyPaymentResponse{Status: domain.PaymentProcessing}, nil
	}
	p := NewPoller("pay-5", verify, fastConfig(3))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second start err = %v, want ErrAlreadyStarted", err)
	}
	p.Stop()
	p.Wait()
}

func TestPollerStopSuppressesLateEvents(t *testing.T) {
	verifyStarted := make(chan struct{})
	release := make(chan struct{})
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		select {
		case verifyStarted <- struct{}{}:
		default:
		}
		<-release
		return &api.VerifyPaymentResponse{Success: true, Status: domain.PaymentHeldInEscrow}, nil
	}

	p := NewPoller("pay-6", verify, fastConfig(10))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-verifyStarted
	// Stop while a verify call is in flight, then let it return. The
	// response must not surface as a success event.
	p.Stop()
	close(release)
	events := drain(t, p)
	for _, ev := range events {
		if ev.Type == EventSucceeded {
			t.Fatalf("stale success delivered after Stop: %+v", ev)
		}
	}
	p.Wait()
}

func TestPollerStopIsIdempotent(t *testing.T) {
	verify := func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error) {
		return &api.VerifyPaymentResponse{Status: domain.PaymentProcessing}, nil
	}
	p := NewPoller("pay-7", verify, fastConfig(100))
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	p.Stop()
	p.Stop()
	p.Wait()
	drain(t, p)
}
