// Package smoke drives the full rent-payment scenario against a running
// Kiraye API and reports each step, so a deployment (or the local
// simulator) can be checked end to end before pointing real users at it.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/payment"
)

// Config selects the target and the demo account used for the run.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Phone    string
	Method   domain.PaymentMethod
	// PollInterval is shortened for smoke runs; the simulator confirms
	// after a few verify calls so there is no need to wait 5s between them.
	PollInterval time.Duration
	MaxAttempts  int
	Logger       *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Username == "" {
		c.Username = "demo"
	}
	if c.Password == "" {
		c.Password = "demo1234"
	}
	if c.Phone == "" {
		c.Phone = "622112233"
	}
	if c.Method == "" {
		c.Method = domain.MethodOrangeMoney
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Step is one verified stage of the scenario.
type Step struct {
	Name string
	OK   bool
	Note string
}

// Result is the full run transcript plus the overall verdict.
type Result struct {
	Steps  []Step
	Passed bool
}

func (r *Result) add(name string, ok bool, format string, args ...any) {
	r.Steps = append(r.Steps, Step{Name: name, OK: ok, Note: fmt.Sprintf(format, args...)})
	if !ok {
		r.Passed = false
	}
}

// Run executes login, payment initiation, verification polling, refund
// request and a final escrow read against cfg.BaseURL. The run needs an
// occupation request in VALIDATED/UNPAID state; it uses the first one it
// finds, which the simulator's seed data guarantees.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	res := &Result{Passed: true}

	var token string
	client, err := api.NewClient(cfg.BaseURL, api.WithLogger(cfg.Logger),
		api.WithTokenSource(api.TokenSourceFunc(func() string { return token })))
	if err != nil {
		return nil, err
	}

	pair, err := client.ObtainToken(ctx, cfg.Username, cfg.Password)
	if err != nil {
		res.add("login", false, "login %s: %v", cfg.Username, err)
		return res, nil
	}
	token = pair.Access
	res.add("login", true, "authenticated as %s", cfg.Username)

	occ, err := payableOccupation(ctx, client)
	if err != nil {
		res.add("occupation", false, "%v", err)
		return res, nil
	}
	res.add("occupation", true, "found %s (%d GNF)", occ.ID, occ.PaymentAmount)

	flow := payment.NewFlow(client, payment.PollerConfig{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.MaxAttempts,
	}, cfg.Logger)
	init, err := flow.Submit(ctx, occ.ID, cfg.Method, cfg.Phone, false)
	if err != nil {
		res.add("initiate", false, "initiate payment: %v", err)
		return res, nil
	}
	res.add("initiate", true, "payment %s, ussd %s", init.PaymentID, init.USSDCode)

	var attempts int
	held := false
	for ev := range flow.Poller().Events() {
		switch ev.Type {
		case payment.EventSucceeded:
			attempts = ev.Attempt
			held = true
		case payment.EventExhausted:
			attempts = ev.Attempt
		}
	}
	if !held {
		res.add("verify", false, "funds never reached escrow after %d attempts", attempts)
		return res, nil
	}
	res.add("verify", true, "held in escrow after %d attempts", attempts)

	pmt, err := client.GetPayment(ctx, init.PaymentID)
	if err != nil || pmt.Escrow == nil {
		res.add("escrow", false, "payment %s has no escrow record: %v", init.PaymentID, err)
		return res, nil
	}
	res.add("escrow", true, "escrow %s holding %d GNF", pmt.Escrow.ID, pmt.Escrow.HeldAmount)

	refund, err := client.RequestRefund(ctx, pmt.Escrow.ID, "vérification de bout en bout")
	if err != nil || !refund.Success {
		msg := ""
		if refund != nil {
			msg = refund.Message
		}
		res.add("refund", false, "refund request failed: %v %s", err, msg)
		return res, nil
	}
	esc, err := client.GetEscrow(ctx, pmt.Escrow.ID)
	if err != nil || esc.Status != domain.EscrowRefunded {
		res.add("refund", false, "escrow not refunded after request: %v", err)
		return res, nil
	}
	res.add("refund", true, "escrow %s refunded", esc.ID)
	return res, nil
}

func payableOccupation(ctx context.Context, client *api.Client) (*domain.OccupationRequest, error) {
	reqs, err := client.ListOccupationRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list occupation requests: %w", err)
	}
	for i := range reqs {
		r := &reqs[i]
		if r.Status == domain.OccupationValidated && r.PaymentStatus == domain.OccupationUnpaid {
			return r, nil
		}
	}
	return nil, errors.New("no validated unpaid occupation request to pay")
}

// Report renders the transcript for terminal output.
func Report(r *Result) string {
	var b strings.Builder
	for _, s := range r.Steps {
		mark := "ok"
		if !s.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%-4s] %-10s %s\n", mark, s.Name, s.Note)
	}
	if r.Passed {
		b.WriteString("Scénario complet : succès.\n")
	} else {
		b.WriteString("Scénario complet : échec.\n")
	}
	return b.String()
}
