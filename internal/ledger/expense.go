package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"iuran/internal/amqp"
	"iuran/internal/core"
)

// ExpenseService runs the approval workflow for cash outflows. The
// balance-sufficiency guard lives inside the store transaction
// (CreateExpenseChecked / DecideExpense) so two concurrent submissions
// cannot both pass a stale snapshot check.
type ExpenseService struct {
	store      ExpenseStore
	amqpClient *amqp.Client
}

func NewExpenseService(store ExpenseStore, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Submit validates the draft and inserts it as a pending expense. Field
// problems surface as *core.ValidationError; an amount exceeding the
// period balance surfaces as core.ErrInsufficientBalance, and nothing is
// written in either case.
func (s *ExpenseService) Submit(ctx context.Context, draft core.ExpenseDraft, submitterID string) (core.Expense, error) {
	if err := draft.Validate(); err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		Date:                draft.Date,
		Category:            draft.Category,
		ContributionTypeTag: draft.ContributionTypeTag,
		Title:               draft.Title,
		Description:         draft.Description,
		Amount:              draft.Amount,
		Status:              core.ApprovalPending,
		ProofRef:            draft.ProofRef,
		SubmittedBy:         submitterID,
	}

	created, err := s.store.CreateExpenseChecked(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense submitted",
		"id", created.ID,
		"title", created.Title,
		"amount_cents", created.Amount.Cents,
		"submitted_by", submitterID)

	p := core.NewPeriod(created.Date)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseSubmitted, created.ID, p.Month, p.Year))

	return created, nil
}

// Decide transitions a pending expense to approved or rejected. The
// transition is one-way: deciding a terminal expense fails with
// core.ErrInvalidTransition and leaves it untouched.
func (s *ExpenseService) Decide(ctx context.Context, id string, decision core.ApprovalStatus, deciderID string) (core.Expense, error) {
	if decision != core.ApprovalApproved && decision != core.ApprovalRejected {
		return core.Expense{}, fmt.Errorf("decision %q: %w", decision, core.ErrInvalidTransition)
	}

	decided, err := s.store.DecideExpense(ctx, id, decision, deciderID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("decide expense %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Expense decided",
		"id", decided.ID,
		"decision", decided.Status,
		"decided_by", deciderID)

	p := core.NewPeriod(decided.Date)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseDecided, decided.ID, p.Month, p.Year))

	return decided, nil
}

// Get returns one expense by ID.
func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// List returns the period's expenses, optionally narrowed by status.
func (s *ExpenseService) List(ctx context.Context, p core.Period, status core.ApprovalStatus) ([]core.Expense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, p, status)
}

// publish is best effort: the ledger row is already committed, so event
// failures are logged and swallowed.
func (s *ExpenseService) publish(ctx context.Context, evt *amqp.LedgerEvent) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "kind", evt.Kind)
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", evt.Kind, "entity_id", evt.EntityID, "error", err)
	}
}
