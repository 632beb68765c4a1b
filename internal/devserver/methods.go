package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.store.ListMethods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (s *Server) handleCreateMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method domain.PaymentMethod `json:"payment_method"`
		Phone  string               `json:"payment_phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if ussdCodeFor(body.Method) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "unknown payment method")
		return
	}
	if len(strings.TrimSpace(body.Phone)) < 9 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "phone number too short")
		return
	}
	m := domain.SavedPaymentMethod{
		ID:        newID("pm"),
		Method:    body.Method,
		Phone:     body.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.PutMethod(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleDeleteMethod(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteMethod(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "payment method not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDefaultMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	methods, err := s.store.ListMethods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	for _, m := range methods {
		if m.ID != id {
			continue
		}
		m.IsDefault = true
		if err := s.store.PutMethod(r.Context(), m); err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, m)
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "payment method not found")
}
