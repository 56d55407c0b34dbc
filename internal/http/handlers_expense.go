package http

import (
	"context"
	"net/http"

	"iuran/internal/core"
)

type submitExpenseRequest struct {
	Date                string `json:"date"`
	Category            string `json:"category"`
	ContributionTypeTag string `json:"contribution_type_tag"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Amount              string `json:"amount"`
	ProofRef            string `json:"proof_ref"`
}

func (s *Server) handleSubmitExpense(w http.ResponseWriter, r *http.Request) {
	var req submitExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	draft := core.ExpenseDraft{
		Category:            req.Category,
		ContributionTypeTag: req.ContributionTypeTag,
		Title:               req.Title,
		Description:         req.Description,
		ProofRef:            req.ProofRef,
	}

	// Date and amount parse failures fold into the draft validation so the
	// client gets every field problem in one response.
	ve := core.NewValidationError()
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			ve.Add("date", "must be YYYY-MM-DD")
		} else {
			draft.Date = date
		}
	}
	if req.Amount != "" {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			ve.Add("amount", "must be a positive decimal")
		} else {
			draft.Amount = amount
		}
	}
	if err := ve.OrNil(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	sess, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	created, err := s.expenses.Submit(ctx, draft, sess.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReadCaches(core.NewPeriod(created.Date))
	writeData(w, http.StatusCreated, toExpenseDTO(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := core.ApprovalStatus(r.URL.Query().Get("status"))

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	expenses, err := s.expenses.List(ctx, p, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toExpenseListDTO(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	expense, err := s.expenses.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toExpenseDTO(expense))
}

type decisionRequest struct {
	Decision string `json:"decision"` // "approved" or "rejected"
}

func (s *Server) handleDecideExpense(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "malformed JSON body")
		return
	}

	sess, _ := sessionFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), handlerBudget)
	defer cancel()

	decided, err := s.expenses.Decide(ctx, r.PathValue("id"), core.ApprovalStatus(req.Decision), sess.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReadCaches(core.NewPeriod(decided.Date))
	writeData(w, http.StatusOK, toExpenseDTO(decided))
}
