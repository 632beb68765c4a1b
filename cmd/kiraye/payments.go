package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func newPaymentsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Consulter et gérer les paiements",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lister les paiements du compte",
			RunE: func(cmd *cobra.Command, args []string) error {
				var payments []domain.Payment
				err := a.requireAuth(cmd.Context())
				if err == nil {
					payments, err = a.client.ListPayments(cmd.Context())
				}
				switch {
				case err == nil:
					// Keep a local snapshot so `payments list` still
					// shows something when the box is offline.
					_ = a.store.CachePayments(payments)
				default:
					cached, cacheErr := a.store.CachedPayments()
					if cacheErr != nil || len(cached) == 0 {
						return err
					}
					payments = cached
					fmt.Fprintln(cmd.OutOrStdout(), "Serveur injoignable, données locales :")
				}
				if len(payments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Aucun paiement.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUT\tMOYEN\tMONTANT (GNF)\tDATE")
				for _, p := range payments {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
						p.ID, p.Status, p.PaymentMethod, p.Amount,
						p.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "get <payment-id>",
			Short: "Afficher le détail d'un paiement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				p, err := a.client.GetPayment(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Paiement    : %s\n", p.ID)
				fmt.Fprintf(out, "Statut      : %s\n", p.Status)
				fmt.Fprintf(out, "Moyen       : %s (%s)\n", p.PaymentMethod, p.PaymentPhone)
				fmt.Fprintf(out, "Montant     : %d GNF\n", p.Amount)
				if p.TransactionID != "" {
					fmt.Fprintf(out, "Transaction : %s\n", p.TransactionID)
				}
				if p.Escrow != nil {
					fmt.Fprintf(out, "Séquestre   : %s (%s)\n", p.Escrow.ID, p.Escrow.Status)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "cancel <payment-id>",
			Short: "Annuler un paiement non confirmé",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				if err := a.client.CancelPayment(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Paiement annulé.")
				return nil
			},
		},
	)
	return cmd
}

func newOccupationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "occupations",
		Short: "Consulter les demandes d'occupation",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lister les demandes d'occupation du compte",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			reqs, err := a.client.ListOccupationRequests(cmd.Context())
			if err != nil {
				return err
			}
			if len(reqs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Aucune demande d'occupation.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBIEN\tSTATUT\tPAIEMENT\tLOYER (GNF)")
			for _, r := range reqs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					r.ID, r.PropertyTitle, r.Status, r.PaymentStatus, r.PaymentAmount)
			}
			return w.Flush()
		},
	})
	return cmd
}
