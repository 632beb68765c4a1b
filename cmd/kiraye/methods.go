package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func newMethodsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "Gérer les moyens de paiement enregistrés",
	}

	add := &cobra.Command{
		Use:   "add <ORANGE_MONEY|MTN_MONEY|WAVE> <phone>",
		Short: "Enregistrer un numéro mobile money",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			m, err := a.client.CreatePaymentMethod(cmd.Context(), api.CreatePaymentMethodRequest{
				Method: domain.PaymentMethod(args[0]),
				Phone:  args[1],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moyen de paiement %s enregistré.\n", m.ID)
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lister les moyens de paiement enregistrés",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				methods, err := a.client.ListPaymentMethods(cmd.Context())
				if err != nil {
					return err
				}
				if len(methods) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Aucun moyen de paiement enregistré.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tMOYEN\tNUMÉRO\tDÉFAUT")
				for _, m := range methods {
					def := ""
					if m.IsDefault {
						def = "oui"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Method, m.Phone, def)
				}
				return w.Flush()
			},
		},
		add,
		&cobra.Command{
			Use:   "rm <method-id>",
			Short: "Supprimer un moyen de paiement",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				if err := a.client.DeletePaymentMethod(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Moyen de paiement supprimé.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "default <method-id>",
			Short: "Définir le moyen de paiement par défaut",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				if err := a.client.SetDefaultPaymentMethod(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Moyen de paiement par défaut mis à jour.")
				return nil
			},
		},
	)
	return cmd
}
