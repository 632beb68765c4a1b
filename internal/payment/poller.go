package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/observability"
)

// VerifyFunc asks the server to reconcile one payment with the provider.
type VerifyFunc func(ctx context.Context, paymentID string) (*api.VerifyPaymentResponse, error)

// EventType classifies poller events.
type EventType string

const (
	// EventStatus is an informational non-terminal provider status.
	EventStatus EventType = "status"
	// EventError is a non-terminal failure; polling continues.
	EventError EventType = "error"
	// EventSucceeded means funds reached escrow. Terminal.
	EventSucceeded EventType = "succeeded"
	// EventExhausted means the attempt budget ran out. Terminal.
	EventExhausted EventType = "exhausted"
	// EventStopped means the poller was cancelled. Terminal.
	EventStopped EventType = "stopped"
)

// Event is one state change posted by the poller to its consumer.
type Event struct {
	Type           EventType
	Attempt        int
	Status         domain.PaymentStatus
	ProviderStatus string
	Message        string
	Err            error
}

// PollerConfig bounds the verification loop.
type PollerConfig struct {
	// Interval between verify calls. Defaults to 5s, the cadence the
	// payment providers expect.
	Interval time.Duration
	// MaxAttempts bounds the loop; 0 means the default of 60 attempts
	// (five minutes at the default interval).
	MaxAttempts int
	// BackoffCap limits the exponential backoff applied after transport
	// errors. 0 means 4x Interval.
	BackoffCap time.Duration
}

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxAttempts  = 60
)

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Interval <= 0 {
		c.Interval = defaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 4 * c.Interval
	}
	return c
}

// ErrAlreadyStarted is returned by Start when the poller is already running
// or has already finished. A poller instance runs at most one loop, ever.
var ErrAlreadyStarted = errors.New("payment: poller already started")

// Poller drives verify calls for one initiated payment until the funds are
// held in escrow, the attempt budget runs out, or the consumer cancels.
//
// Calls are serialized by construction: a single goroutine performs each
// verify inline, so a slow response can never overlap the next tick. Events
// emitted after Stop are dropped, which is the liveness guard against stale
// responses reaching a consumer that has navigated away.
type Poller struct {
	paymentID string
	verify    VerifyFunc
	cfg       PollerConfig

	events  chan Event
	done    chan struct{}
	started bool
	mu      sync.Mutex
	stop    sync.Once
	wg      sync.WaitGroup
}

// NewPoller builds a poller for one payment. Nothing runs until Start.
func NewPoller(paymentID string, verify VerifyFunc, cfg PollerConfig) *Poller {
	return &Poller{
		paymentID: paymentID,
		verify:    verify,
		cfg:       cfg.withDefaults(),
		events:    make(chan Event, 16),
		done:      make(chan struct{}),
	}
}

// Events is the channel the poller posts state changes on. It is closed
// when the loop finishes, whatever the reason.
func (p *Poller) Events() <-chan Event { return p.events }

// Start launches the polling loop. A second Start on the same instance
// returns ErrAlreadyStarted: at most one loop runs per poller.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)
	return nil
}

// Stop cancels future ticks. An in-flight verify call is not aborted; its
// result is dropped. Safe to call more than once and after completion.
func (p *Poller) Stop() {
	p.stop.Do(func() { close(p.done) })
}

// Wait blocks until the loop goroutine has exited.
func (p *Poller) Wait() { p.wg.Wait() }

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.events)

	delay := p.cfg.Interval
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.emit(Event{Type: EventStopped, Attempt: attempt})
			return
		case <-p.done:
			timer.Stop()
			p.emit(Event{Type: EventStopped, Attempt: attempt})
			return
		case <-timer.C:
		}

		resp, err := p.verify(ctx, p.paymentID)

		// The consumer may have cancelled while the call was in flight;
		// a stale response must not produce an event.
		select {
		case <-p.done:
			p.emit(Event{Type: EventStopped, Attempt: attempt})
			return
		default:
		}

		if err != nil {
			observability.RecordPollTick("transport_error")
			p.emit(Event{Type: EventError, Attempt: attempt, Err: err})
			delay = min(delay*2, p.cfg.BackoffCap)
			continue
		}

		// A reply from the server resets the cadence to the base interval.
		delay = p.cfg.Interval

		if resp.Success && resp.Status == domain.PaymentHeldInEscrow {
			observability.RecordPollTick("held")
			p.emit(Event{
				Type:           EventSucceeded,
				Attempt:        attempt,
				Status:         resp.Status,
				ProviderStatus: resp.ProviderStatus,
				Message:        resp.Message,
			})
			return
		}
		if !resp.Success {
			observability.RecordPollTick("rejected")
			p.emit(Event{Type: EventError, Attempt: attempt, Message: resp.Message})
			continue
		}
		observability.RecordPollTick("pending")
		p.emit(Event{
			Type:           EventStatus,
			Attempt:        attempt,
			Status:         resp.Status,
			ProviderStatus: resp.ProviderStatus,
			Message:        resp.Message,
		})
	}
	observability.RecordPollTick("exhausted")
	p.emit(Event{Type: EventExhausted, Attempt: p.cfg.MaxAttempts})
}

// emit posts an event unless the poller has been stopped; after Stop the
// channel close is the only signal the consumer still gets.
func (p *Poller) emit(e Event) {
	select {
	case <-p.done:
		return
	default:
	}
	select {
	case p.events <- e:
	case <-p.done:
	}
}
