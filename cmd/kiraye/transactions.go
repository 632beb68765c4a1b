package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTransactionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Consulter l'historique des transactions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lister les transactions du compte",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				txs, err := a.client.ListTransactions(cmd.Context())
				if err != nil {
					return err
				}
				if len(txs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Aucune transaction.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tMONTANT (GNF)\tPAIEMENT\tDATE")
				for _, t := range txs {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
						t.ID, t.Type, t.Amount, t.PaymentID,
						t.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "get <transaction-id>",
			Short: "Afficher le détail d'une transaction",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				t, err := a.client.GetTransaction(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Transaction : %s\n", t.ID)
				fmt.Fprintf(out, "Type        : %s\n", t.Type)
				fmt.Fprintf(out, "Montant     : %d GNF\n", t.Amount)
				fmt.Fprintf(out, "Paiement    : %s\n", t.PaymentID)
				if t.Reference != "" {
					fmt.Fprintf(out, "Référence   : %s\n", t.Reference)
				}
				return nil
			},
		},
	)
	return cmd
}
