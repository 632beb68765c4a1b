package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func (s *Server) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetEscrow(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "escrow not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleRequestRefund resolves the refund immediately; the production API
// queues a review, but the client contract only needs success/message.
func (s *Server) handleRequestRefund(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Le motif du remboursement est obligatoire"})
		return
	}

	e, err := s.store.GetEscrow(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "escrow not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if e.Status != domain.EscrowHolding {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Les fonds ne sont plus en séquestre"})
		return
	}

	if err := s.settleEscrow(r.Context(), e, domain.EscrowRefunded, &reason); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Remboursement effectué"})
}

func (s *Server) handleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetEscrow(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "escrow not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if e.Status != domain.EscrowHolding {
		writeError(w, http.StatusConflict, "INVALID_STATE", "escrow is not holding funds")
		return
	}
	if err := s.settleEscrow(r.Context(), e, domain.EscrowReleased, nil); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	e, _ = s.store.GetEscrow(r.Context(), e.ID)
	writeJSON(w, http.StatusOK, e)
}

// settleEscrow performs the one legal terminal transition,
// HOLDING -> RELEASED or HOLDING -> REFUNDED, and propagates it to the
// payment and the ledger.
func (s *Server) settleEscrow(ctx context.Context, e *domain.Escrow, to domain.EscrowStatus, refundReason *string) error {
	now := time.Now().UTC()
	e.Status = to
	e.ReleasedAt = &now
	e.RefundReason = refundReason
	if err := s.store.PutEscrow(ctx, *e); err != nil {
		return err
	}

	rec, err := s.store.GetPayment(ctx, e.PaymentID)
	if err != nil {
		return err
	}
	txnType := "ESCROW_RELEASE"
	rec.Payment.Status = domain.PaymentReleased
	if to == domain.EscrowRefunded {
		txnType = "ESCROW_REFUND"
		rec.Payment.Status = domain.PaymentRefunded
	}
	rec.Payment.Escrow = e
	rec.Payment.UpdatedAt = now
	if err := s.store.PutPayment(ctx, *rec); err != nil {
		return err
	}
	return s.store.PutTransaction(ctx, domain.Transaction{
		ID:        newID("txn"),
		PaymentID: rec.Payment.ID,
		Type:      txnType,
		Amount:    e.HeldAmount,
		Reference: rec.Payment.TransactionID,
		CreatedAt: now,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}
