package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kirayehq/kiraye-cli/internal/api"
	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/observability"
)

// State is the session machine's position. All transitions go through the
// Manager; other components only dispatch intents and read derived state.
type State string

const (
	StateAnonymous      State = "ANONYMOUS"
	StateAuthenticating State = "AUTHENTICATING"
	StateAuthenticated  State = "AUTHENTICATED"
	StateExpired        State = "EXPIRED"
)

// ErrNotAuthenticated is returned when an authenticated session is required.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// CredentialStore persists the token pair between runs.
type CredentialStore interface {
	SaveTokens(access, refresh string) error
	LoadTokens() (access, refresh string, err error)
	ClearTokens() error
}

// AuthAPI is the slice of the gateway client the manager needs.
type AuthAPI interface {
	ObtainToken(ctx context.Context, username, password string) (*api.TokenPair, error)
	Profile(ctx context.Context) (*domain.User, error)
}

// Manager owns the session state machine.
//
// Expiry is checked locally against the token's exp claim, without a server
// round trip and without verifying the signature; the server remains the
// authority on validity and rejects tampered tokens on use. There is no
// silent refresh: an expired token always means logout.
type Manager struct {
	apiClient AuthAPI
	store     CredentialStore
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   State
	access  string
	refresh string
	user    *domain.User
}

// NewManager builds a manager in StateAnonymous.
func NewManager(apiClient AuthAPI, store CredentialStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
		now:       time.Now,
		state:     StateAnonymous,
	}
}

// State reports the machine's position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns the profile, non-nil only while authenticated with an
// unexpired token.
func (m *Manager) User() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// AccessToken implements the gateway client's token source. It returns ""
// once the token has expired, so no request ever carries a stale bearer.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.access == "" || tokenExpired(m.access, m.now()) {
		return ""
	}
	return m.access
}

// Login exchanges credentials for a token pair, persists it, and fetches
// the profile. Any failure leaves the machine in StateAnonymous.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.User, error) {
	m.transition(StateAuthenticating)

	pair, err := m.apiClient.ObtainToken(ctx, username, password)
	if err != nil {
		m.clear(StateAnonymous)
		return nil, fmt.Errorf("obtain token: %w", err)
	}

	m.mu.Lock()
	m.access = pair.Access
	m.refresh = pair.Refresh
	m.mu.Unlock()

	user, err := m.apiClient.Profile(ctx)
	if err != nil {
		m.clear(StateAnonymous)
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if err := m.store.SaveTokens(pair.Access, pair.Refresh); err != nil {
		m.logger.Warn("persist credentials failed", "error", err)
	}

	m.mu.Lock()
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()
	observability.RecordSessionTransition(string(StateAuthenticating), string(StateAuthenticated))
	m.logger.Info("logged in", "username", user.Username)
	return user, nil
}

// Restore rebuilds the session from stored credentials.
//
// An expired token clears storage and lands in StateExpired without any
// server call. A live token is confirmed by a profile fetch; any profile
// failure, a 401 included, takes the same logout path.
func (m *Manager) Restore(ctx context.Context) error {
	access, refresh, err := m.store.LoadTokens()
	if err != nil || access == "" {
		m.clear(StateAnonymous)
		return ErrNotAuthenticated
	}

	if tokenExpired(access, m.now()) {
		if err := m.store.ClearTokens(); err != nil {
			m.logger.Warn("clear credentials failed", "error", err)
		}
		m.clear(StateExpired)
		m.logger.Info("stored token expired, logged out")
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	m.access = access
	m.refresh = refresh
	m.mu.Unlock()

	user, err := m.apiClient.Profile(ctx)
	if err != nil {
		if clearErr := m.store.ClearTokens(); clearErr != nil {
			m.logger.Warn("clear credentials failed", "error", clearErr)
		}
		m.clear(StateExpired)
		m.logger.Warn("profile fetch failed, logged out", "error", err)
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	m.user = user
	m.state = StateAuthenticated
	m.mu.Unlock()
	observability.RecordSessionTransition(string(StateAnonymous), string(StateAuthenticated))
	return nil
}

// Logout clears credentials locally. No server call is made.
func (m *Manager) Logout() {
	if err := m.store.ClearTokens(); err != nil {
		m.logger.Warn("clear credentials failed", "error", err)
	}
	m.clear(StateAnonymous)
	m.logger.Info("logged out")
}

func (m *Manager) transition(to State) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.mu.Unlock()
	observability.RecordSessionTransition(string(from), string(to))
}

func (m *Manager) clear(to State) {
	m.mu.Lock()
	from := m.state
	m.access = ""
	m.refresh = ""
	m.user = nil
	m.state = to
	m.mu.Unlock()
	observability.RecordSessionTransition(string(from), string(to))
}

// tokenExpired reads the exp claim without verifying the signature. A token
// that cannot be parsed or carries no exp is treated as expired.
func tokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !exp.After(now)
}
