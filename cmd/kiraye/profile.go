package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/store"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Mettre à jour le profil du compte",
	}

	var firstName, lastName, phone string
	update := &cobra.Command{
		Use:   "update",
		Short: "Modifier le nom ou le téléphone du compte",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			var req api.ProfileUpdate
			if cmd.Flags().Changed("first-name") {
				req.FirstName = &firstName
			}
			if cmd.Flags().Changed("last-name") {
				req.LastName = &lastName
			}
			if cmd.Flags().Changed("phone") {
				req.Phone = &phone
			}
			if req.FirstName == nil && req.LastName == nil && req.Phone == nil {
				return errors.New("aucun champ à modifier : utilisez --first-name, --last-name ou --phone")
			}
			user, err := a.client.UpdateProfile(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profil mis à jour : %s %s (%s)\n",
				user.FirstName, user.LastName, user.Phone)
			return nil
		},
	}
	update.Flags().StringVar(&firstName, "first-name", "", "prénom")
	update.Flags().StringVar(&lastName, "last-name", "", "nom")
	update.Flags().StringVar(&phone, "phone", "", "numéro de téléphone")
	cmd.AddCommand(update)
	return cmd
}

// newLocationCommand manages the last-known geolocation kept on this
// machine. The server never sees it; property searches read it back as
// the default point of reference.
func newLocationCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Gérer la position enregistrée localement",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <latitude> <longitude>",
			Short: "Enregistrer la position actuelle",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				lat, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("latitude invalide : %q", args[0])
				}
				lon, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("longitude invalide : %q", args[1])
				}
				loc := domain.Location{Latitude: lat, Longitude: lon, SavedAt: time.Now()}
				if err := a.store.SaveLocation(loc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Position enregistrée : %.4f, %.4f\n", lat, lon)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Afficher la dernière position enregistrée",
			RunE: func(cmd *cobra.Command, args []string) error {
				loc, err := a.store.LoadLocation()
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						fmt.Fprintln(cmd.OutOrStdout(), "Aucune position enregistrée.")
						return nil
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Position : %.4f, %.4f (enregistrée le %s)\n",
					loc.Latitude, loc.Longitude, loc.SavedAt.Format("2006-01-02 15:04"))
				return nil
			},
		},
	)
	return cmd
}
