package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/escrow"
)

func newEscrowCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Suivre les fonds en séquestre",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status <escrow-id>",
			Short: "Afficher l'état d'un séquestre",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireAuth(cmd.Context()); err != nil {
					return err
				}
				e, err := a.client.GetEscrow(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), escrow.Render(e))
				if escrow.CanRequestRefund(e.Status) {
					fmt.Fprintln(cmd.OutOrStdout(), "Un remboursement peut être demandé avec `kiraye escrow refund`.")
				}
				return nil
			},
		},
		newEscrowRefundCommand(a),
		&cobra.Command{
			Use:   "release <escrow-id>",
			Short: "Libérer les fonds vers le propriétaire (personnel)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireStaff(cmd); err != nil {
					return err
				}
				if err := a.client.ReleaseEscrow(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Fonds libérés.")
				return nil
			},
		},
	)
	return cmd
}

func newEscrowRefundCommand(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "refund <escrow-id>",
		Short: "Demander le remboursement de fonds en séquestre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if reason == "" {
				var err error
				reason, err = promptLine("Motif du remboursement: ")
				if err != nil {
					return err
				}
			}
			requester := escrow.NewRequester(a.client, a.logger)
			err := requester.Request(cmd.Context(), args[0], reason, func() {
				// Refetch so the user sees the server's view, not a guess.
				if e, ferr := a.client.GetEscrow(cmd.Context(), args[0]); ferr == nil {
					fmt.Fprintln(cmd.OutOrStdout(), escrow.Render(e))
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Demande de remboursement enregistrée.")
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "motif du remboursement")
	return cmd
}
