// Package tui renders the interactive payment flow: method and phone form,
// submission, USSD handoff, and the live verification poll.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/payment"
)

type step int

const (
	stepForm step = iota
	stepSubmitting
	stepPolling
	stepDone
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	ussdStyle   = lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

var methods = []domain.PaymentMethod{
	domain.MethodOrangeMoney,
	domain.MethodMTNMoney,
	domain.MethodWave,
}

type submitResultMsg struct {
	initiation *payment.Initiation
	err        error
}

type pollEventMsg payment.Event

type pollClosedMsg struct{}

// PayModel drives one payment from the form to a terminal screen.
type PayModel struct {
	flow       *payment.Flow
	occupation domain.OccupationRequest
	ctx        context.Context

	step       step
	methodIdx  int
	phone      string
	savePhone  bool
	errMsg     string
	statusMsg  string
	attempt    int
	initiation *payment.Initiation
	outcome    string
}

// NewPayModel builds the model in the form step.
func NewPayModel(ctx context.Context, flow *payment.Flow, occupation domain.OccupationRequest) PayModel {
	return PayModel{flow: flow, occupation: occupation, ctx: ctx, step: stepForm}
}

func (m PayModel) Init() tea.Cmd { return nil }

func (m PayModel) submit() tea.Cmd {
	flow := m.flow
	ctx := m.ctx
	occID := m.occupation.ID
	method := methods[m.methodIdx]
	phone := m.phone
	save := m.savePhone
	return func() tea.Msg {
		initiation, err := flow.Submit(ctx, occID, method, phone, save)
		return submitResultMsg{initiation: initiation, err: err}
	}
}

func (m PayModel) waitForEvent() tea.Cmd {
	events := m.flow.Poller().Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return pollClosedMsg{}
		}
		return pollEventMsg(ev)
	}
}

func (m PayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitResultMsg:
		if msg.err != nil {
			m.step = stepForm
			m.errMsg = userMessage(msg.err)
			return m, nil
		}
		m.step = stepPolling
		m.errMsg = ""
		m.initiation = msg.initiation
		return m, m.waitForEvent()

	case pollEventMsg:
		ev := payment.Event(msg)
		m.attempt = ev.Attempt
		switch ev.Type {
		case payment.EventSucceeded:
			m.step = stepDone
			m.outcome = okStyle.Render("Paiement sécurisé : les fonds sont en séquestre.")
			return m, tea.Quit
		case payment.EventExhausted:
			m.step = stepDone
			m.outcome = errorStyle.Render("Vérification expirée. Consultez le paiement plus tard avec `kiraye payments get`.")
			return m, tea.Quit
		case payment.EventStopped:
			m.step = stepDone
			m.outcome = labelStyle.Render("Vérification annulée.")
			return m, tea.Quit
		case payment.EventError:
			if ev.Err != nil {
				m.statusMsg = "Erreur réseau, nouvelle tentative..."
			} else if ev.Message != "" {
				m.statusMsg = ev.Message
			}
			return m, m.waitForEvent()
		default:
			m.statusMsg = pollStatusLine(ev)
			return m, m.waitForEvent()
		}

	case pollClosedMsg:
		if m.step == stepPolling {
			m.step = stepDone
			if m.outcome == "" {
				m.outcome = labelStyle.Render("Vérification terminée.")
			}
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m PayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.flow.Cancel()
		m.step = stepDone
		m.outcome = labelStyle.Render("Annulé.")
		return m, tea.Quit
	}

	if m.step != stepForm {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyLeft:
		m.methodIdx = (m.methodIdx + len(methods) - 1) % len(methods)
	case tea.KeyRight, tea.KeyTab:
		m.methodIdx = (m.methodIdx + 1) % len(methods)
	case tea.KeyBackspace:
		if len(m.phone) > 0 {
			m.phone = m.phone[:len(m.phone)-1]
		}
	case tea.KeyEnter:
		m.step = stepSubmitting
		m.errMsg = ""
		return m, m.submit()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' && len(m.phone) < 15 {
				m.phone += string(r)
			}
			if r == 's' {
				m.savePhone = !m.savePhone
			}
		}
	}
	return m, nil
}

func (m PayModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Paiement de la demande "+m.occupation.ID) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s — %d GNF", m.occupation.PropertyTitle, m.occupation.PaymentAmount)) + "\n\n")

	switch m.step {
	case stepForm:
		b.WriteString("Moyen de paiement (←/→) : ")
		for i, method := range methods {
			name := string(method)
			if i == m.methodIdx {
				name = activeStyle.Render("[" + name + "]")
			}
			b.WriteString(name + "  ")
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Numéro de téléphone : %s_\n", m.phone))
		save := "non"
		if m.savePhone {
			save = "oui"
		}
		b.WriteString(labelStyle.Render("Enregistrer ce numéro (s) : "+save) + "\n\n")
		if m.errMsg != "" {
			b.WriteString(errorStyle.Render(m.errMsg) + "\n")
		}
		b.WriteString(labelStyle.Render("Entrée pour payer, Échap pour annuler") + "\n")

	case stepSubmitting:
		b.WriteString("Initialisation du paiement...\n")

	case stepPolling:
		if m.initiation != nil && m.initiation.USSDCode != "" {
			b.WriteString("Composez ce code pour confirmer :\n")
			b.WriteString(ussdStyle.Render(m.initiation.USSDCode) + "\n\n")
		}
		b.WriteString(fmt.Sprintf("Vérification en cours (tentative %d)...\n", m.attempt))
		if m.statusMsg != "" {
			b.WriteString(labelStyle.Render(m.statusMsg) + "\n")
		}
		b.WriteString(labelStyle.Render("Échap pour annuler") + "\n")

	case stepDone:
		b.WriteString(m.outcome + "\n")
	}
	return b.String()
}

func pollStatusLine(ev payment.Event) string {
	if ev.Message != "" {
		return ev.Message
	}
	if ev.ProviderStatus != "" {
		return fmt.Sprintf("Statut fournisseur : %s", ev.ProviderStatus)
	}
	if ev.Status != "" {
		return fmt.Sprintf("Statut : %s", ev.Status)
	}
	return ""
}

func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, payment.ErrPhoneTooShort):
		return "Le numéro de téléphone doit contenir au moins 9 chiffres."
	default:
		return err.Error()
	}
}
