package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/devserver"
)

func newDevServerCommand(a *app) *cobra.Command {
	var (
		addr        string
		redisAddr   string
		verifyAfter int
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Lancer le simulateur local de l'API Kiraye",
		Long: "Démarre un serveur HTTP qui simule la place de marché : comptes " +
			"demo/demo1234 et admin/admin1234, une demande d'occupation pré-chargée, " +
			"et un fournisseur mobile money qui confirme après quelques vérifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.DevServerAddr
			}
			if redisAddr == "" {
				redisAddr = a.cfg.DevRedisAddr
			}
			if verifyAfter <= 0 {
				verifyAfter = a.cfg.DevVerifyAfter
			}

			var st devserver.Store
			if redisAddr != "" {
				client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddr}})
				defer client.Close()
				if err := client.Ping(cmd.Context()).Err(); err != nil {
					return fmt.Errorf("redis injoignable sur %s: %w", redisAddr, err)
				}
				st = devserver.NewRedisStore(client, "")
			}

			srv := devserver.NewServer(devserver.Options{
				Addr:        addr,
				VerifyAfter: verifyAfter,
				Store:       st,
				Logger:      a.logger,
			})
			if err := srv.SeedDemoData(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Simulateur Kiraye sur %s (comptes demo/demo1234, admin/admin1234)\n", addr)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "adresse d'écoute (défaut: config devserver_addr)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "adresse redis pour un état partagé (défaut: mémoire)")
	cmd.Flags().IntVar(&verifyAfter, "verify-after", 0, "nombre de vérifications avant confirmation du fournisseur")
	return cmd
}
