package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/payment"
)

func newTestModel() PayModel {
	flow := payment.NewFlow(nil, payment.PollerConfig{}, nil)
	occ := domain.OccupationRequest{ID: "occ-123", PropertyTitle: "Appartement T3, Kipé", PaymentAmount: 1500000}
	return NewPayModel(context.Background(), flow, occ)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormAcceptsOnlyDigitsForPhone(t *testing.T) {
	var model tea.Model = newTestModel()
	for _, in := range []string{"6", "2", "a", "2", "-", "1"} {
		model, _ = model.Update(keyRunes(in))
	}
	m := model.(PayModel)
	if m.phone != "6221" {
		t.Fatalf("phone = %q, want 6221", m.phone)
	}
}

func TestFormCyclesMethods(t *testing.T) {
	var model tea.Model = newTestModel()
	if idx := model.(PayModel).methodIdx; idx != 0 {
		t.Fatalf("initial method index = %d", idx)
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if idx := model.(PayModel).methodIdx; idx != 0 {
		t.Fatalf("method index after full cycle = %d, want 0", idx)
	}
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if idx := model.(PayModel).methodIdx; idx != len(methods)-1 {
		t.Fatalf("method index after left from 0 = %d, want %d", idx, len(methods)-1)
	}
}

func TestSaveToggle(t *testing.T) {
	var model tea.Model = newTestModel()
	model, _ = model.Update(keyRunes("s"))
	if !model.(PayModel).savePhone {
		t.Fatal("s did not enable save")
	}
	model, _ = model.Update(keyRunes("s"))
	if model.(PayModel).savePhone {
		t.Fatal("second s did not disable save")
	}
}

func TestSubmitErrorReturnsToForm(t *testing.T) {
	var model tea.Model = newTestModel()
	model, _ = model.Update(submitResultMsg{err: payment.ErrPhoneTooShort})
	m := model.(PayModel)
	if m.step != stepForm {
		t.Fatalf("step = %d, want form", m.step)
	}
	if !strings.Contains(m.errMsg, "9 chiffres") {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
}

func TestSubmitSuccessShowsUSSDAndPolls(t *testing.T) {
	var model tea.Model = newTestModel()
	model, cmd := model.Update(submitResultMsg{initiation: &payment.Initiation{PaymentID: "pay-1", USSDCode: "*144*4*6#"}})
	m := model.(PayModel)
	if m.step != stepPolling {
		t.Fatalf("step = %d, want polling", m.step)
	}
	if cmd == nil {
		t.Fatal("no wait-for-event command issued")
	}
	if !strings.Contains(m.View(), "*144*4*6#") {
		t.Fatalf("view does not show the USSD code:\n%s", m.View())
	}
}

func TestPollEventsDriveTheScreen(t *testing.T) {
	var model tea.Model = newTestModel()
	model, _ = model.Update(submitResultMsg{initiation: &payment.Initiation{PaymentID: "pay-1"}})

	model, cmd := model.Update(pollEventMsg(payment.Event{Type: payment.EventStatus, Attempt: 2, ProviderStatus: "PENDING_CONFIRMATION"}))
	m := model.(PayModel)
	if m.attempt != 2 || cmd == nil {
		t.Fatalf("attempt = %d, cmd = %v", m.attempt, cmd)
	}

	model, cmd = model.Update(pollEventMsg(payment.Event{Type: payment.EventSucceeded, Attempt: 3}))
	m = model.(PayModel)
	if m.step != stepDone {
		t.Fatalf("step = %d, want done", m.step)
	}
	if cmd == nil {
		t.Fatal("success must quit the program")
	}
	if !strings.Contains(m.View(), "séquestre") {
		t.Fatalf("view does not announce escrow:\n%s", m.View())
	}
}

func TestExhaustedPollEndsWithGuidance(t *testing.T) {
	var model tea.Model = newTestModel()
	model, _ = model.Update(submitResultMsg{initiation: &payment.Initiation{PaymentID: "pay-1"}})
	model, _ = model.Update(pollEventMsg(payment.Event{Type: payment.EventExhausted, Attempt: 60}))
	m := model.(PayModel)
	if m.step != stepDone {
		t.Fatalf("step = %d, want done", m.step)
	}
	if !strings.Contains(m.View(), "payments get") {
		t.Fatalf("timeout view lacks follow-up guidance:\n%s", m.View())
	}
}

func TestUserMessageMapsValidationError(t *testing.T) {
	if msg := userMessage(payment.ErrPhoneTooShort); !strings.Contains(msg, "9 chiffres") {
		t.Fatalf("msg = %q", msg)
	}
	if msg := userMessage(&payment.BusinessError{Message: "Cette demande est déjà payée"}); msg != "Cette demande est déjà payée" {
		t.Fatalf("msg = %q", msg)
	}
	if msg := userMessage(errors.New("boom")); msg != "boom" {
		t.Fatalf("msg = %q", msg)
	}
	if msg := userMessage(nil); msg != "" {
		t.Fatalf("msg = %q", msg)
	}
}
