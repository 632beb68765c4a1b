// Package devserver is a local stand-in for the marketplace API, close
// enough to the production contract to develop and test the client against:
// token issuance, occupation requests, the payment/escrow lifecycle,
// payment methods, transactions and disputes.
package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/security"
)

type demoUser struct {
	domain.User
	password string
}

// Options configures the simulator.
type Options struct {
	Addr string
	// VerifyAfter is how many verify calls a payment needs before the
	// simulated provider confirms and funds reach escrow.
	VerifyAfter int
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Store       Store
	Logger      *slog.Logger
}

// Server simulates the marketplace API.
type Server struct {
	store       Store
	jwt         *security.JWTManager
	verifyAfter int
	addr        string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	logger      *slog.Logger

	// usersMu guards users; handlers run concurrently.
	usersMu sync.RWMutex
	users   map[string]demoUser

	handler http.Handler
}

// NewServer builds the simulator with two demo accounts: demo/demo1234
// (tenant) and admin/admin1234 (staff).
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.VerifyAfter <= 0 {
		opts.VerifyAfter = 3
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		store:       opts.Store,
		jwt:         security.NewJWTManager("kiraye-devserver", "kiraye-cli", "dev-access-secret-0123456789abcdef", "dev-refresh-secret-0123456789abcdef"),
		verifyAfter: opts.VerifyAfter,
		addr:        opts.Addr,
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		logger:      opts.Logger,
		users: map[string]demoUser{
			"demo": {
				User: domain.User{
					ID: "user-demo", Username: "demo", Email: "demo@kiraye.test",
					FirstName: "Demo", LastName: "Locataire", KYCStatus: "VERIFIED",
					CreatedAt: time.Now().UTC(),
				},
				password: "demo1234",
			},
			"admin": {
				User: domain.User{
					ID: "user-admin", Username: "admin", Email: "admin@kiraye.test",
					IsStaff: true, KYCStatus: "VERIFIED", CreatedAt: time.Now().UTC(),
				},
				password: "admin1234",
			},
		},
	}
	s.handler = otelhttp.NewHandler(s.routes(), "http.server")
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.handler }

// SeedDemoData inserts a pending occupation request so a fresh simulator
// has something to pay for.
func (s *Server) SeedDemoData(ctx context.Context) error {
	return s.store.PutOccupation(ctx, domain.OccupationRequest{
		ID:            "occ-123",
		PropertyID:    "prop-9",
		PropertyTitle: "Appartement T3, Kipé",
		TenantID:      "user-demo",
		Status:        domain.OccupationValidated,
		PaymentAmount: 1500000,
		PaymentStatus: domain.OccupationUnpaid,
		CreatedAt:     time.Now().UTC(),
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.handler}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("devserver listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/", s.handleObtainToken)
		r.Post("/auth/register/", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/auth/profile/", s.handleProfile)
			r.Patch("/auth/profile/", s.handleUpdateProfile)

			r.Get("/occupation-requests/", s.handleListOccupations)
			r.Get("/occupation-requests/{id}/", s.handleGetOccupation)

			r.Post("/payments/initiate/", s.handleInitiatePayment)
			r.Post("/payments/{id}/verify/", s.handleVerifyPayment)
			r.Post("/payments/{id}/cancel/", s.handleCancelPayment)
			r.Get("/payments/{id}/", s.handleGetPayment)
			r.Get("/payments/", s.handleListPayments)

			r.Get("/escrow/{id}/", s.handleGetEscrow)
			r.Post("/escrow/{id}/request-refund/", s.handleRequestRefund)
			r.Post("/escrow/{id}/release/", s.handleReleaseEscrow)

			r.Get("/transactions/", s.handleListTransactions)
			r.Get("/transactions/{id}/", s.handleGetTransaction)

			r.Get("/payment-methods/", s.handleListMethods)
			r.Post("/payment-methods/", s.handleCreateMethod)
			r.Delete("/payment-methods/{id}/", s.handleDeleteMethod)
			r.Post("/payment-methods/{id}/set-default/", s.handleSetDefaultMethod)

			r.Post("/disputes/", s.handleCreateDispute)
			r.Get("/disputes/", s.handleListDisputes)
			r.Post("/disputes/{id}/resolve/", s.handleResolveDispute)
		})
	})
	return r
}

func ussdCodeFor(method domain.PaymentMethod) string {
	switch method {
	case domain.MethodOrangeMoney:
		return "*144*4*6#"
	case domain.MethodMTNMoney:
		return "*440*1#"
	case domain.MethodWave:
		return "*700#"
	}
	return ""
}

func newID(kind string) string {
	return kind + "-" + uuid.NewString()
}
