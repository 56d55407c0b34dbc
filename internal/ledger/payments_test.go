package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"iuran/internal/core"
)

func TestPaymentRecord(t *testing.T) {
	store, _, b, keamanan, _ := seedStore(t)
	svc := NewPaymentService(store, nil)

	pay, err := svc.Record(context.Background(), core.DuesPayment{
		ResidentID:         b.ID,
		ContributionTypeID: keamanan.ID,
		Amount:             core.Money{Cents: 5_000_000},
		PaidAt:             time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		Month:              5,
		Year:               2024,
		Status:             core.VerificationVerified, // must be ignored
		VerifiedBy:         "spoofed",                 // must be ignored
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if pay.Status != core.VerificationPending {
		t.Fatalf("Status = %s, want pending (caller cannot pre-verify)", pay.Status)
	}
	if pay.VerifiedBy != "" {
		t.Fatalf("VerifiedBy = %q, want empty", pay.VerifiedBy)
	}
}

func TestPaymentRecordValidation(t *testing.T) {
	store, a, _, sampah, _ := seedStore(t)
	svc := NewPaymentService(store, nil)

	base := core.DuesPayment{
		ResidentID:         a.ID,
		ContributionTypeID: sampah.ID,
		Amount:             core.Money{Cents: 2_500_000},
		PaidAt:             time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		Month:              5,
		Year:               2024,
	}

	cases := []struct {
		name   string
		mutate func(*core.DuesPayment)
	}{
		{"missing resident", func(p *core.DuesPayment) { p.ResidentID = "" }},
		{"missing type", func(p *core.DuesPayment) { p.ContributionTypeID = "" }},
		{"zero amount", func(p *core.DuesPayment) { p.Amount = core.Money{} }},
		{"bad month", func(p *core.DuesPayment) { p.Month = 13 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pay := base
			tc.mutate(&pay)
			if _, err := svc.Record(context.Background(), pay); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestPaymentVerify(t *testing.T) {
	store, _, b, keamanan, _ := seedStore(t)
	svc := NewPaymentService(store, nil)
	ctx := context.Background()

	pay, err := svc.Record(ctx, core.DuesPayment{
		ResidentID:         b.ID,
		ContributionTypeID: keamanan.ID,
		Amount:             core.Money{Cents: 5_000_000},
		PaidAt:             time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
		Month:              5,
		Year:               2024,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	verified, err := svc.Verify(ctx, pay.ID, "admin1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Status != core.VerificationVerified || verified.VerifiedBy != "admin1" {
		t.Fatalf("unexpected verified row: %+v", verified)
	}

	// Verification is one-way.
	if _, err := svc.Verify(ctx, pay.ID, "admin2"); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// Verified payment now counts toward income.
	stats, err := newStatsService(store).ComputeStats(ctx, core.Period{Month: 5, Year: 2024}, "")
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if stats.TotalIncome.Cents != 7_500_000 {
		t.Fatalf("TotalIncome = %d, want 7500000", stats.TotalIncome.Cents)
	}
	if stats.PaymentRatePercent != 100 {
		t.Fatalf("PaymentRatePercent = %d, want 100", stats.PaymentRatePercent)
	}
}

func TestPaymentVerifyUnknown(t *testing.T) {
	store, _, _, _, _ := seedStore(t)
	svc := NewPaymentService(store, nil)

	if _, err := svc.Verify(context.Background(), "no-such-id", "admin1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
