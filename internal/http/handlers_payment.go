package http

import (
	"context"
	"net/http"

	"iuran/internal/core"
)

type recordPaymentRequest struct {
	ResidentID         string `json:"resident_id"`
	ContributionTypeID string `json:"contribution_type_id"`
	Amount             string `json:"amount"`
	PaidAt             string `json:"paid_at"`
	Month              int    `json:"month"`
	Year               int    `json:"year"`
	Note               string `json:"note"`
	ProofRef           string `json:"proof_ref"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	pay := core.DuesPayment{
		ResidentID:         req.ResidentID,
		ContributionTypeID: req.ContributionTypeID,
		Month:              req.Month,
		Year:               req.Year,
		Note:               req.Note,
		ProofRef:           req.ProofRef,
	}

	ve := core.NewValidationError()
	if req.PaidAt != "" {
		paidAt, err := parseDate(req.PaidAt)
		if err != nil {
			ve.Add("paid_at", "must be YYYY-MM-DD")
		} else {
			pay.PaidAt = paidAt
		}
	}
	if req.Amount != "" {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			ve.Add("amount", "must be a positive decimal")
		} else {
			pay.Amount = amount
		}
	}
	if err := ve.OrNil(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	created, err := s.payments.Record(ctx, pay)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, toPaymentDTO(created))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := core.VerificationStatus(r.URL.Query().Get("status"))

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	payments, err := s.payments.List(ctx, p, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPaymentListDTO(payments))
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	verified, err := s.payments.Verify(ctx, r.PathValue("id"), sess.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Verified payments change income, so the period's cached reads are no
	// longer accurate.
	s.invalidateReadCaches(core.Period{Month: verified.Month, Year: verified.Year})
	writeData(w, http.StatusOK, toPaymentDTO(verified))
}
