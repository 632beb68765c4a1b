package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/observability"
)

// State is the initiation flow's position. Polling state is owned by the
// Poller once the flow reaches StateInitiated.
type State string

const (
	StateForm       State = "FORM"
	StateSubmitting State = "SUBMITTING"
	StateInitiated  State = "INITIATED"
)

// MinPhoneLength is the shortest phone number the flow will send.
const MinPhoneLength = 9

var (
	// ErrPhoneTooShort blocks initiation before any network call is made.
	ErrPhoneTooShort = errors.New("payment: phone number must be at least 9 characters")
	// ErrSubmitInFlight rejects a duplicate submit while one is running.
	ErrSubmitInFlight = errors.New("payment: a submission is already in progress")
	// ErrAlreadyInitiated rejects a submit after the flow has handed a
	// payment to the poller; a Flow drives exactly one payment.
	ErrAlreadyInitiated = errors.New("payment: this flow already initiated a payment")
)

// BusinessError carries a server-side rejection (success=false) whose
// message is shown to the user verbatim.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return "payment: request rejected"
	}
	return e.Message
}

// PaymentAPI is the slice of the gateway client the flow needs.
type PaymentAPI interface {
	InitiatePayment(ctx context.Context, req api.InitiatePaymentRequest) (*api.InitiatePaymentResponse, error)
	VerifyPayment(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error)
}

// Initiation is the provider handoff stored on entering StateInitiated.
type Initiation struct {
	PaymentID     string
	TransactionID string
	USSDCode      string
}

// Flow drives one payment from the form to a running verification poller.
//
// FORM -> SUBMITTING -> INITIATED; entering INITIATED starts the poller.
// Validation failures and server rejections return the flow to FORM.
type Flow struct {
	client  PaymentAPI
	pollCfg PollerConfig
	logger  *slog.Logger

	mu     sync.Mutex
	state  State
	result *Initiation
	poller *Poller
}

// NewFlow builds a flow in StateForm.
func NewFlow(client PaymentAPI, pollCfg PollerConfig, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{client: client, pollCfg: pollCfg, logger: logger, state: StateForm}
}

// State reports the flow's current position.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Initiation returns the provider handoff, nil before StateInitiated.
func (f *Flow) Initiation() *Initiation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Poller returns the verification poller, nil before StateInitiated.
func (f *Flow) Poller() *Poller {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.poller
}

// Submit validates the form, calls initiate, and on success enters
// StateInitiated and starts the verification poller automatically.
//
// A phone shorter than MinPhoneLength fails fast with ErrPhoneTooShort and
// no network call. A success=false reply returns a *BusinessError with the
// server's message. Transport errors are wrapped and returned as-is. In
// both failure cases the flow is back in StateForm and may be resubmitted.
func (f *Flow) Submit(ctx context.Context, occupationRequestID string, method domain.PaymentMethod, phone string, savePaymentMethod bool) (*Initiation, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < MinPhoneLength {
		observability.RecordFlowEvent("validation_rejected")
		return nil, ErrPhoneTooShort
	}

	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateInitiated:
		f.mu.Unlock()
		return nil, ErrAlreadyInitiated
	}
	f.state = StateSubmitting
	f.mu.Unlock()
	observability.RecordFlowEvent("submitting")

	ctx, span := observability.StartSpan(ctx, "payment.submit",
		attribute.String("occupation_request_id", occupationRequestID),
		attribute.String("payment_method", string(method)),
	)
	defer span.End()

	resp, err := f.client.InitiatePayment(ctx, api.InitiatePaymentRequest{
		OccupationRequestID: occupationRequestID,
		PaymentMethod:       method,
		PaymentPhone:        phone,
		SavePaymentMethod:   savePaymentMethod,
	})
	if err != nil {
		f.setState(StateForm)
		observability.RecordFlowEvent("initiate_failed")
		f.logger.Error("payment initiation failed", "occupation_request_id", occupationRequestID, "error", err)
		return nil, fmt.Errorf("initiate payment: %w", err)
	}
	if !resp.Success {
		f.setState(StateForm)
		observability.RecordFlowEvent("initiate_rejected")
		f.logger.Warn("payment initiation rejected", "occupation_request_id", occupationRequestID, "message", resp.Message)
		return nil, &BusinessError{Message: resp.Message}
	}

	initiation := &Initiation{
		PaymentID:     resp.PaymentID,
		TransactionID: resp.TransactionID,
		USSDCode:      resp.USSDCode,
	}
	poller := NewPoller(initiation.PaymentID, f.client.VerifyPayment, f.pollCfg)

	f.mu.Lock()
	f.state = StateInitiated
	f.result = initiation
	f.poller = poller
	f.mu.Unlock()
	observability.RecordFlowEvent("initiated")
	f.logger.Info("payment initiated",
		"payment_id", initiation.PaymentID,
		"transaction_id", initiation.TransactionID,
		"ussd_code", initiation.USSDCode,
	)

	if err := poller.Start(ctx); err != nil {
		return nil, err
	}
	return initiation, nil
}

// Cancel stops the poller, if any. The server-side payment is untouched;
// use the gateway client's CancelPayment for that.
func (f *Flow) Cancel() {
	f.mu.Lock()
	poller := f.poller
	f.mu.Unlock()
	if poller != nil {
		poller.Stop()
	}
	observability.RecordFlowEvent("cancelled")
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}
