package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OccupationRequestID string               `json:"occupation_request_id"`
		PaymentMethod       domain.PaymentMethod `json:"payment_method"`
		PaymentPhone        string               `json:"payment_phone"`
		SavePaymentMethod   bool                 `json:"save_payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	reject := func(message string) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": message})
	}
	if len(strings.TrimSpace(body.PaymentPhone)) < 9 {
		reject("Numéro de téléphone invalide")
		return
	}
	if ussdCodeFor(body.PaymentMethod) == "" {
		reject("Moyen de paiement non supporté")
		return
	}

	occupation, err := s.store.GetOccupation(r.Context(), body.OccupationRequestID)
	if err == ErrNotFound {
		reject("Demande d'occupation introuvable")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if occupation.PaymentStatus == domain.OccupationPaid {
		reject("Cette demande est déjà payée")
		return
	}
	if occupation.Status == domain.OccupationCancelled {
		reject("Cette demande a été annulée")
		return
	}

	now := time.Now().UTC()
	rec := PaymentRecord{
		Payment: domain.Payment{
			ID:            newID("pay"),
			Status:        domain.PaymentPending,
			PaymentMethod: body.PaymentMethod,
			Amount:        occupation.PaymentAmount,
			PaymentPhone:  body.PaymentPhone,
			TransactionID: newID("TX"),
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		OccupationRequestID: occupation.ID,
	}
	if err := s.store.PutPayment(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if body.SavePaymentMethod {
		_ = s.store.PutMethod(r.Context(), domain.SavedPaymentMethod{
			ID:        newID("pm"),
			Method:    body.PaymentMethod,
			Phone:     body.PaymentPhone,
			CreatedAt: now,
		})
	}

	s.logger.Info("payment initiated", "payment_id", rec.Payment.ID, "occupation_request_id", occupation.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"payment_id":     rec.Payment.ID,
		"transaction_id": rec.Payment.TransactionID,
		"ussd_code":      ussdCodeFor(body.PaymentMethod),
	})
}

// handleVerifyPayment advances the simulated provider: the payment shows
// PROCESSING until the configured number of verify calls, then the funds
// are captured into a new HOLDING escrow.
func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	switch rec.Payment.Status {
	case domain.PaymentHeldInEscrow:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": rec.Payment.Status})
		return
	case domain.PaymentCancelled, domain.PaymentFailed, domain.PaymentReleased, domain.PaymentRefunded:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"status":  rec.Payment.Status,
			"message": "Le paiement n'est plus en cours",
		})
		return
	}

	now := time.Now().UTC()
	rec.VerifyCount++
	rec.Payment.UpdatedAt = now

	if rec.VerifyCount < s.verifyAfter {
		rec.Payment.Status = domain.PaymentProcessing
		if err := s.store.PutPayment(r.Context(), *rec); err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"status":          domain.PaymentProcessing,
			"provider_status": "PENDING_CONFIRMATION",
			"message":         "En attente de confirmation du fournisseur",
		})
		return
	}

	scheduled := now.Add(7 * 24 * time.Hour)
	escrowRec := domain.Escrow{
		ID:                   newID("esc"),
		PaymentID:            rec.Payment.ID,
		Status:               domain.EscrowHolding,
		HeldAmount:           rec.Payment.Amount,
		HeldAt:               now,
		ReleaseScheduledDate: &scheduled,
	}
	rec.Payment.Status = domain.PaymentHeldInEscrow
	rec.Payment.Escrow = &escrowRec
	if err := s.store.PutEscrow(r.Context(), escrowRec); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if err := s.store.PutPayment(r.Context(), *rec); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if occupation, err := s.store.GetOccupation(r.Context(), rec.OccupationRequestID); err == nil {
		occupation.PaymentStatus = domain.OccupationPaid
		_ = s.store.PutOccupation(r.Context(), *occupation)
	}
	_ = s.store.PutTransaction(r.Context(), domain.Transaction{
		ID:        newID("txn"),
		PaymentID: rec.Payment.ID,
		Type:      "ESCROW_HOLD",
		Amount:    rec.Payment.Amount,
		Reference: rec.Payment.TransactionID,
		CreatedAt: now,
	})

	s.logger.Info("payment held in escrow", "payment_id", rec.Payment.ID, "escrow_id", escrowRec.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"status":          domain.PaymentHeldInEscrow,
		"provider_status": "CONFIRMED",
	})
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if rec.Payment.Status != domain.PaymentPending && rec.Payment.Status != domain.PaymentProcessing {
		writeError(w, http.StatusConflict, "INVALID_STATE", "only a pending payment can be cancelled")
		return
	}
	rec.Payment.Status = domain.PaymentCancelled
	rec.Payment.UpdatedAt = time.Now().UTC()
	if err := s.store.PutPayment(r.Context(), *rec); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec.Payment)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec.Payment)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListPayments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	payments := make([]domain.Payment, 0, len(recs))
	for _, rec := range recs {
		payments = append(payments, rec.Payment)
	}
	writeJSON(w, http.StatusOK, payments)
}
