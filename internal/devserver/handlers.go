package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirayehq/kiraye-cli/internal/domain"
	"github.com/kirayehq/kiraye-cli/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "claims"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
			return
		}
		claims, err := s.jwt.ParseAccessToken(strings.TrimSpace(auth[7:]))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return c, ok
}

func (s *Server) handleObtainToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	s.usersMu.RLock()
	user, ok := s.users[body.Username]
	s.usersMu.RUnlock()
	if !ok || user.password != body.Password {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "username or password incorrect")
		return
	}
	access, err := s.jwt.SignAccessToken(user.ID, user.Username, user.IsStaff, s.accessTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "sign access token")
		return
	}
	refresh, err := s.jwt.SignRefreshToken(user.ID, s.refreshTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "sign refresh token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "username and password are required")
		return
	}
	user := domain.User{
		ID:        newID("user"),
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		KYCStatus: "PENDING",
		CreatedAt: time.Now().UTC(),
	}
	// Existence check and insert stay under one lock so two racing
	// registrations of the same username cannot both succeed.
	s.usersMu.Lock()
	if _, exists := s.users[body.Username]; exists {
		s.usersMu.Unlock()
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", "username already taken")
		return
	}
	s.users[body.Username] = demoUser{User: user, password: body.Password}
	s.usersMu.Unlock()
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) currentUser(r *http.Request) (*demoUser, bool) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		return nil, false
	}
	s.usersMu.RLock()
	user, ok := s.users[claims.Username]
	s.usersMu.RUnlock()
	if !ok {
		return nil, false
	}
	return &user, true
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, user.User)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
		return
	}
	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if body.FirstName != nil {
		user.FirstName = *body.FirstName
	}
	if body.LastName != nil {
		user.LastName = *body.LastName
	}
	if body.Phone != nil {
		user.Phone = *body.Phone
	}
	s.usersMu.Lock()
	s.users[user.Username] = *user
	s.usersMu.Unlock()
	writeJSON(w, http.StatusOK, user.User)
}

func (s *Server) handleListOccupations(w http.ResponseWriter, r *http.Request) {
	occupations, err := s.store.ListOccupations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, occupations)
}

func (s *Server) handleGetOccupation(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOccupation(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "occupation request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, o)
}
