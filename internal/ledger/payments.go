package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"iuran/internal/amqp"
	"iuran/internal/core"
)

// PaymentService records dues payments and runs their verification step.
// Payments enter as pending and only count toward income once verified.
type PaymentService struct {
	store      PaymentStore
	amqpClient *amqp.Client
}

func NewPaymentService(store PaymentStore, amqpClient *amqp.Client) *PaymentService {
	return &PaymentService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Record validates and stores a new pending payment.
func (s *PaymentService) Record(ctx context.Context, pay core.DuesPayment) (core.DuesPayment, error) {
	pay.Status = core.VerificationPending
	pay.VerifiedBy = ""
	if err := pay.Validate(); err != nil {
		return core.DuesPayment{}, err
	}

	created, err := s.store.CreatePayment(ctx, pay)
	if err != nil {
		return core.DuesPayment{}, fmt.Errorf("create payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"id", created.ID,
		"resident_id", created.ResidentID,
		"contribution_type_id", created.ContributionTypeID,
		"amount_cents", created.Amount.Cents,
		"month", created.Month,
		"year", created.Year)

	return created, nil
}

// Verify confirms a pending payment. Verification is one-way; verifying a
// payment that is already verified fails with core.ErrInvalidTransition.
func (s *PaymentService) Verify(ctx context.Context, id, verifierID string) (core.DuesPayment, error) {
	verified, err := s.store.VerifyPayment(ctx, id, verifierID)
	if err != nil {
		return core.DuesPayment{}, fmt.Errorf("verify payment %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Payment verified",
		"id", verified.ID,
		"resident_id", verified.ResidentID,
		"verified_by", verifierID)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventPaymentVerified, verified.ID, verified.Month, verified.Year))

	return verified, nil
}

// List returns the period's payments, optionally narrowed by status.
func (s *PaymentService) List(ctx context.Context, p core.Period, status core.VerificationStatus) ([]core.DuesPayment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, p, status)
}

func (s *PaymentService) publish(ctx context.Context, evt *amqp.LedgerEvent) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "kind", evt.Kind)
		return
	}
	if err := s.amqpClient.PublishLedgerEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", evt.Kind, "entity_id", evt.EntityID, "error", err)
	}
}
