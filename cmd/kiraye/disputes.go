package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func newDisputesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disputes",
		Short: "Litiges sur des paiements en séquestre",
	}

	open := &cobra.Command{
		Use:   "open <payment-id>",
		Short: "Ouvrir un litige sur un paiement en séquestre",
		Args:  cobra.ExactArgs(1),
	}
	var reason string
	open.Flags().StringVar(&reason, "reason", "", "motif du litige")
	open.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireAuth(cmd.Context()); err != nil {
			return err
		}
		if reason == "" {
			var err error
			reason, err = promptLine("Motif du litige: ")
			if err != nil {
				return err
			}
		}
		d, err := a.client.CreateDispute(cmd.Context(), api.CreateDisputeRequest{
			PaymentID: args[0],
			Reason:    reason,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Litige %s ouvert. Les fonds restent bloqués jusqu'à résolution.\n", d.ID)
		return nil
	}

	resolve := &cobra.Command{
		Use:   "resolve <dispute-id> <REFUND_FULL|REFUND_PARTIAL|NO_REFUND>",
		Short: "Trancher un litige (personnel)",
		Args:  cobra.ExactArgs(2),
	}
	var notes string
	resolve.Flags().StringVar(&notes, "notes", "", "notes de résolution")
	resolve.RunE = func(cmd *cobra.Command, args []string) error {
		if err := a.requireStaff(cmd); err != nil {
			return err
		}
		d, err := a.client.ResolveDispute(cmd.Context(), args[0], api.ResolveDisputeRequest{
			Resolution: domain.DisputeResolution(args[1]),
			Notes:      notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Litige %s résolu (%s).\n", d.ID, args[1])
		return nil
	}

	cmd.AddCommand(
		open,
		&cobra.Command{
			Use:   "list",
			Short: "Lister les litiges visibles par le compte",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				disputes, err := a.client.ListDisputes(cmd.Context())
				if err != nil {
					return err
				}
				if len(disputes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Aucun litige.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tPAIEMENT\tSTATUT\tRÉSOLUTION\tMOTIF")
				for _, d := range disputes {
					res := ""
					if d.Resolution != nil {
						res = string(*d.Resolution)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.PaymentID, d.Status, res, d.Reason)
				}
				return w.Flush()
			},
		},
		resolve,
	)
	return cmd
}
