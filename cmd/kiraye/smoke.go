package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/smoke"
)

func newSmokeCommand(a *app) *cobra.Command {
	var (
		baseURL  string
		username string
		password string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Dérouler le scénario de paiement complet contre un serveur",
		Long: "Connexion, initiation d'un paiement, suivi de la confirmation, " +
			"demande de remboursement : chaque étape est vérifiée et rapportée. " +
			"Prévu pour le simulateur local ou un environnement de recette.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				baseURL = a.cfg.BaseURL
			}
			res, err := smoke.Run(cmd.Context(), smoke.Config{
				BaseURL:      baseURL,
				Username:     username,
				Password:     password,
				PollInterval: interval,
				Logger:       a.logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), smoke.Report(res))
			if !res.Passed {
				return fmt.Errorf("le scénario a échoué")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "URL de l'API à tester (défaut: config base_url)")
	cmd.Flags().StringVar(&username, "username", "demo", "compte de test")
	cmd.Flags().StringVar(&password, "password", "demo1234", "mot de passe du compte de test")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "intervalle entre vérifications")
	return cmd
}
