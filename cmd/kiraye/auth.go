package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/session"
)

func newLoginCommand(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Se connecter au compte Kiraye",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				username, err = promptLine("Nom d'utilisateur: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = promptPassword("Mot de passe: ")
				if err != nil {
					return err
				}
			}
			user, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
					return fmt.Errorf("identifiants invalides")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connecté en tant que %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "nom d'utilisateur")
	cmd.Flags().StringVarP(&password, "password", "p", "", "mot de passe (préférer l'invite interactive)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Se déconnecter et effacer les identifiants stockés",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté.")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Afficher le profil de la session courante",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			u := a.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Utilisateur : %s\n", u.Username)
			if u.Email != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Email       : %s\n", u.Email)
			}
			if u.Phone != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Téléphone   : %s\n", u.Phone)
			}
			if u.IsStaff {
				fmt.Fprintln(cmd.OutOrStdout(), "Rôle        : staff")
			}
			return nil
		},
	}
}

func newRegisterCommand(a *app) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Créer un compte Kiraye",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Username == "" {
				req.Username, err = promptLine("Nom d'utilisateur: ")
				if err != nil {
					return err
				}
			}
			if req.Password == "" {
				req.Password, err = promptPassword("Mot de passe: ")
				if err != nil {
					return err
				}
			}
			user, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compte créé pour %s. Lancez `kiraye login`.\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "nom d'utilisateur")
	cmd.Flags().StringVar(&req.Password, "password", "", "mot de passe")
	cmd.Flags().StringVar(&req.Email, "email", "", "adresse email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "numéro de téléphone")
	return cmd
}

// requireStaff layers the staff guard over requireAuth for moderation commands.
func (a *app) requireStaff(cmd *cobra.Command) error {
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}
	res := a.session.Guard(cmd.CommandPath(), true)
	if res.Decision == session.Denied {
		return fmt.Errorf("cette commande est réservée au personnel Kiraye")
	}
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
