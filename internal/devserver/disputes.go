package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kirayehq/kiraye-cli/internal/domain"
)

func (s *Server) handleCreateDispute(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var body struct {
		PaymentID string `json:"payment"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "reason is required")
		return
	}
	rec, err := s.store.GetPayment(r.Context(), body.PaymentID)
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if rec.Payment.Status != domain.PaymentHeldInEscrow {
		writeError(w, http.StatusConflict, "INVALID_STATE", "disputes require funds held in escrow")
		return
	}

	d := domain.Dispute{
		ID:        newID("dsp"),
		PaymentID: rec.Payment.ID,
		RaisedBy:  claims.Subject,
		Reason:    body.Reason,
		Status:    domain.DisputeOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.PutDispute(r.Context(), d); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDisputes(w http.ResponseWriter, r *http.Request) {
	disputes, err := s.store.ListDisputes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, disputes)
}

// handleResolveDispute is staff-only. The resolution drives the escrow's
// terminal transition: any refund verdict refunds the tenant, NO_REFUND
// releases the funds to the owner.
func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	if claims == nil || !claims.IsStaff {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "staff only")
		return
	}
	var body struct {
		Resolution domain.DisputeResolution `json:"resolution"`
		Notes      string                   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	switch body.Resolution {
	case domain.ResolutionRefundFull, domain.ResolutionRefundPartial, domain.ResolutionNoRefund:
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION", "unknown resolution")
		return
	}

	d, err := s.store.GetDispute(r.Context(), chi.URLParam(r, "id"))
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "dispute not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if d.Status == domain.DisputeResolved || d.Status == domain.DisputeClosed {
		writeError(w, http.StatusConflict, "INVALID_STATE", "dispute already resolved")
		return
	}

	rec, err := s.store.GetPayment(r.Context(), d.PaymentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if rec.Payment.Escrow != nil {
		e, err := s.store.GetEscrow(r.Context(), rec.Payment.Escrow.ID)
		if err == nil && e.Status == domain.EscrowHolding {
			target := domain.EscrowReleased
			var reason *string
			if body.Resolution != domain.ResolutionNoRefund {
				target = domain.EscrowRefunded
				reason = &d.Reason
			}
			if err := s.settleEscrow(r.Context(), e, target, reason); err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
				return
			}
		}
	}

	now := time.Now().UTC()
	d.Status = domain.DisputeResolved
	d.Resolution = &body.Resolution
	d.Notes = body.Notes
	d.ResolvedAt = &now
	if err := s.store.PutDispute(r.Context(), *d); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}
