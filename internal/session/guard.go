package session

// Decision is a guard verdict for a protected view.
type Decision int

const (
	// Allow renders the view.
	Allow Decision = iota
	// RedirectLogin sends the user to the login view; ReturnTo preserves
	// where they were headed.
	RedirectLogin
	// Denied renders an access-denied view without redirecting.
	Denied
)

// GuardResult is the verdict plus the originating target for post-login return.
type GuardResult struct {
	Decision Decision
	ReturnTo string
}

// Guard gates a protected view. Staff-only views additionally require the
// fetched profile's is_staff flag; a non-staff user is denied in place
// rather than bounced to login.
func (m *Manager) Guard(target string, staffOnly bool) GuardResult {
	m.mu.Lock()
	state := m.state
	user := m.user
	m.mu.Unlock()

	if state != StateAuthenticated || user == nil {
		return GuardResult{Decision: RedirectLogin, ReturnTo: target}
	}
	if staffOnly && !user.IsStaff {
		return GuardResult{Decision: Denied, ReturnTo: target}
	}
	return GuardResult{Decision: Allow, ReturnTo: target}
}
