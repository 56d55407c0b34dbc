package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"iuran/internal/core"
	"iuran/internal/memory"
)

func newMatrixService(store *memory.Store) *MatrixService {
	return NewMatrixService(store, store, store)
}

func TestBuildMatrix(t *testing.T) {
	store, a, b, sampah, keamanan := seedStore(t)
	svc := newMatrixService(store)
	p := core.Period{Month: 5, Year: 2024}

	t.Run("resident complete", func(t *testing.T) {
		rows, err := svc.BuildMatrix(context.Background(), p, "")
		if err != nil {
			t.Fatalf("BuildMatrix: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("len(rows) = %d, want 2", len(rows))
		}
		// Ordered by house block: A-01 before B-02.
		if rows[0].Resident.ID != a.ID || rows[1].Resident.ID != b.ID {
			t.Fatalf("unexpected order: %s, %s", rows[0].Resident.HouseBlock, rows[1].Resident.HouseBlock)
		}
		if !rows[0].HasPaid {
			t.Errorf("resident A should be paid")
		}
		if len(rows[0].TypesPaid) != 1 || rows[0].TypesPaid[0] != sampah.Name {
			t.Errorf("TypesPaid = %v, want [%s]", rows[0].TypesPaid, sampah.Name)
		}
		if rows[0].TotalPaid.Cents != 2_500_000 {
			t.Errorf("TotalPaid = %d, want 2500000", rows[0].TotalPaid.Cents)
		}
		if rows[1].HasPaid || len(rows[1].TypesPaid) != 0 || rows[1].TotalPaid.Cents != 0 {
			t.Errorf("resident B should have an empty unpaid row, got %+v", rows[1])
		}
	})

	t.Run("filter before grouping", func(t *testing.T) {
		rows, err := svc.BuildMatrix(context.Background(), p, keamanan.ID)
		if err != nil {
			t.Fatalf("BuildMatrix: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("len(rows) = %d, want 2 (filter never drops residents)", len(rows))
		}
		for _, row := range rows {
			if row.HasPaid {
				t.Errorf("resident %s paid under the wrong type filter", row.Resident.Name)
			}
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		if _, err := svc.BuildMatrix(context.Background(), core.Period{Month: 13, Year: 2024}, ""); !errors.Is(err, core.ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod, got %v", err)
		}
	})
}

func TestBuildMatrixDedupesTypes(t *testing.T) {
	store, a, _, sampah, _ := seedStore(t)
	ctx := context.Background()

	// Second verified payment for the same type: one entry in TypesPaid,
	// amounts summed.
	pay, err := store.CreatePayment(ctx, core.DuesPayment{
		ResidentID:         a.ID,
		ContributionTypeID: sampah.ID,
		Amount:             core.Money{Cents: 500_000},
		PaidAt:             time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		Month:              5, Year: 2024,
		Status: core.VerificationPending,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := store.VerifyPayment(ctx, pay.ID, "admin1"); err != nil {
		t.Fatalf("verify payment: %v", err)
	}

	rows, err := newMatrixService(store).BuildMatrix(ctx, core.Period{Month: 5, Year: 2024}, "")
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if len(rows[0].TypesPaid) != 1 {
		t.Fatalf("TypesPaid = %v, want single deduped entry", rows[0].TypesPaid)
	}
	if rows[0].TotalPaid.Cents != 3_000_000 {
		t.Fatalf("TotalPaid = %d, want 3000000", rows[0].TotalPaid.Cents)
	}
}

func TestBuildMatrixExcludesInactiveResidents(t *testing.T) {
	store, _, b, _, _ := seedStore(t)
	ctx := context.Background()

	if err := store.DeactivateResident(ctx, b.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := newMatrixService(store).BuildMatrix(ctx, core.Period{Month: 5, Year: 2024}, "")
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 after deactivation", len(rows))
	}
	if rows[0].Resident.ID == b.ID {
		t.Fatalf("inactive resident still present")
	}
}

func TestBuildMatrixStoreFailure(t *testing.T) {
	store, _, _, _, _ := seedStore(t)
	store.FailWith(core.ErrStoreUnavailable)

	if _, err := newMatrixService(store).BuildMatrix(context.Background(), core.Period{Month: 5, Year: 2024}, ""); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
