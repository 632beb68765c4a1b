// Command kiraye is the terminal client for the Kiraye rental marketplace:
// authentication, escrow-backed rent payments, refunds and disputes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/config"
	"github.com/kirayehq/kiraye-cli/internal/observability"
	"github.com/kirayehq/kiraye-cli/internal/session"
	"github.com/kirayehq/kiraye-cli/internal/store"
)

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	otel    *observability.Runtime
	store   *store.Store
	client  *api.Client
	session *session.Manager
}

// init loads config and wires the client stack. Called lazily so commands
// that only print help never touch the filesystem.
func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rt, err := observability.InitRuntime(ctx, observability.Settings{
		Enabled:     cfg.MetricsEnabled,
		Endpoint:    cfg.MetricsEndpoint,
		Insecure:    cfg.MetricsInsecure,
		ServiceName: "kiraye-cli",
		Environment: cfg.Environment,
	}, a.logger)
	if err != nil {
		return err
	}
	a.otel = rt
	if rt.Handler != nil {
		a.logger = slog.New(rt.Handler)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	a.store = st

	// The session manager needs the client for profile fetches and the
	// client needs the manager as token source; build the client first
	// with an indirect source so neither owns the other.
	var mgr *session.Manager
	client, err := api.NewClient(cfg.BaseURL,
		api.WithLogger(a.logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithTokenSource(api.TokenSourceFunc(func() string {
			if mgr == nil {
				return ""
			}
			return mgr.AccessToken()
		})),
	)
	if err != nil {
		return err
	}
	mgr = session.NewManager(client, st, a.logger)
	a.client = client
	a.session = mgr
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = a.otel.Shutdown(shutdownCtx)
}

// requireAuth restores the session from the stored token pair.
func (a *app) requireAuth(ctx context.Context) error {
	if err := a.session.Restore(ctx); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return errors.New("vous n'êtes pas connecté : lancez `kiraye login`")
		}
		return err
	}
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "kiraye",
		Short:         "Client du marché locatif Kiraye",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newRegisterCommand(a),
		newProfileCommand(a),
		newLocationCommand(a),
		newPayCommand(a),
		newPaymentsCommand(a),
		newEscrowCommand(a),
		newTransactionsCommand(a),
		newMethodsCommand(a),
		newDisputesCommand(a),
		newOccupationsCommand(a),
		newDevServerCommand(a),
		newSmokeCommand(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}
