package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/payment"
	"github.com/kirayehq/kiraye-cli/internal/tui"
)

func newPayCommand(a *app) *cobra.Command {
	var (
		phone  string
		method string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "pay <occupation-request-id>",
		Short: "Payer le loyer d'une demande d'occupation validée",
		Long: "Initie un paiement mobile money pour une demande d'occupation, " +
			"affiche le code USSD à composer, puis suit la confirmation du " +
			"fournisseur jusqu'à la mise en séquestre des fonds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			occ, err := a.client.GetOccupationRequest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flow := payment.NewFlow(a.client, payment.PollerConfig{
				Interval:    a.cfg.PollInterval,
				MaxAttempts: a.cfg.PollMaxAttempts,
			}, a.logger)

			if phone != "" || method != "" {
				return a.payHeadless(cmd, flow, occ.ID, phone, method, save)
			}
			model := tui.NewPayModel(cmd.Context(), flow, *occ)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "numéro mobile money (mode non interactif)")
	cmd.Flags().StringVar(&method, "method", "", "ORANGE_MONEY, MTN_MONEY ou WAVE (mode non interactif)")
	cmd.Flags().BoolVar(&save, "save", false, "enregistrer ce moyen de paiement")
	return cmd
}

// payHeadless runs the same flow as the interactive screen but prints poll
// progress line by line, for scripts and narrow terminals.
func (a *app) payHeadless(cmd *cobra.Command, flow *payment.Flow, occupationID, phone, method string, save bool) error {
	out := cmd.OutOrStdout()
	m := domain.PaymentMethod(method)
	switch m {
	case domain.MethodOrangeMoney, domain.MethodMTNMoney, domain.MethodWave:
	default:
		return fmt.Errorf("moyen de paiement inconnu %q", method)
	}
	init, err := flow.Submit(cmd.Context(), occupationID, m, phone, save)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Paiement initié (%s).\n", init.PaymentID)
	if init.USSDCode != "" {
		fmt.Fprintf(out, "Composez %s sur votre téléphone pour confirmer.\n", init.USSDCode)
	}
	return followPoll(cmd.Context(), out, flow)
}

func followPoll(ctx context.Context, out io.Writer, flow *payment.Flow) error {
	poller := flow.Poller()
	for {
		select {
		case <-ctx.Done():
			flow.Cancel()
			return ctx.Err()
		case ev, ok := <-poller.Events():
			if !ok {
				return nil
			}
			switch ev.Type {
			case payment.EventSucceeded:
				fmt.Fprintln(out, "Paiement confirmé : les fonds sont en séquestre.")
				return nil
			case payment.EventExhausted:
				return fmt.Errorf("la confirmation n'est pas arrivée à temps ; vérifiez avec `kiraye payments get`")
			case payment.EventStopped:
				return nil
			case payment.EventError:
				if ev.Err != nil {
					fmt.Fprintf(out, "Tentative %d : erreur réseau (%v), nouvel essai...\n", ev.Attempt, ev.Err)
				} else {
					fmt.Fprintf(out, "Tentative %d : %s\n", ev.Attempt, ev.Message)
				}
			default:
				fmt.Fprintf(out, "Tentative %d : %s\n", ev.Attempt, ev.ProviderStatus)
			}
		}
	}
}
