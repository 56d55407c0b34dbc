package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"iuran/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "iuran.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestResidentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateResident(ctx, core.Resident{HouseBlock: "A-01", Name: "Andi"})
	if err != nil {
		t.Fatalf("CreateResident: %v", err)
	}
	if created.ID == "" || !created.Active {
		t.Fatalf("unexpected created resident: %+v", created)
	}

	active, err := repo.ListResidents(ctx, true)
	if err != nil {
		t.Fatalf("ListResidents: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("len(active) = %d, want 1", len(active))
	}

	if err := repo.DeactivateResident(ctx, created.ID); err != nil {
		t.Fatalf("DeactivateResident: %v", err)
	}
	active, err = repo.ListResidents(ctx, true)
	if err != nil {
		t.Fatalf("ListResidents: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated resident still listed as active")
	}
	all, err := repo.ListResidents(ctx, false)
	if err != nil {
		t.Fatalf("ListResidents: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("resident physically removed")
	}

	if err := repo.DeactivateResident(ctx, "no-such-id"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res, err := repo.CreateResident(ctx, core.Resident{HouseBlock: "A-01", Name: "Andi"})
	if err != nil {
		t.Fatalf("CreateResident: %v", err)
	}
	typ, err := repo.CreateContributionType(ctx, core.ContributionType{Name: "Iuran Sampah", Nominal: core.Money{Cents: 2_500_000}})
	if err != nil {
		t.Fatalf("CreateContributionType: %v", err)
	}

	pay, err := repo.CreatePayment(ctx, core.DuesPayment{
		ResidentID:         res.ID,
		ContributionTypeID: typ.ID,
		Amount:             core.Money{Cents: 2_500_000},
		PaidAt:             time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Month:              5,
		Year:               2024,
		Status:             core.VerificationPending,
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	verified, err := repo.ListPayments(ctx, core.Period{Month: 5, Year: 2024}, core.VerificationVerified)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(verified) != 0 {
		t.Fatalf("pending payment listed as verified")
	}

	got, err := repo.VerifyPayment(ctx, pay.ID, "admin1")
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if got.Status != core.VerificationVerified || got.VerifiedBy != "admin1" {
		t.Fatalf("unexpected verified payment: %+v", got)
	}

	if _, err := repo.VerifyPayment(ctx, pay.ID, "admin2"); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("re-verify: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := repo.VerifyPayment(ctx, "no-such-id", "admin1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	verified, err = repo.ListPayments(ctx, core.Period{Month: 5, Year: 2024}, core.VerificationVerified)
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(verified) != 1 {
		t.Fatalf("len(verified) = %d, want 1", len(verified))
	}
}

func TestExpenseBalanceGuard(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res, err := repo.CreateResident(ctx, core.Resident{HouseBlock: "A-01", Name: "Andi"})
	if err != nil {
		t.Fatalf("CreateResident: %v", err)
	}
	typ, err := repo.CreateContributionType(ctx, core.ContributionType{Name: "Iuran Sampah", Nominal: core.Money{Cents: 2_500_000}})
	if err != nil {
		t.Fatalf("CreateContributionType: %v", err)
	}
	pay, err := repo.CreatePayment(ctx, core.DuesPayment{
		ResidentID:         res.ID,
		ContributionTypeID: typ.ID,
		Amount:             core.Money{Cents: 2_500_000},
		PaidAt:             time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		Month:              5,
		Year:               2024,
		Status:             core.VerificationPending,
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if _, err := repo.VerifyPayment(ctx, pay.ID, "admin1"); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}

	base := core.Expense{
		Date:        time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		Category:    "Kebersihan",
		Title:       "Sewa gerobak",
		Description: "Sewa gerobak sampah",
		SubmittedBy: "pengurus1",
	}

	over := base
	over.Amount = core.Money{Cents: 2_500_001}
	if _, err := repo.CreateExpenseChecked(ctx, over); !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	rows, err := repo.ListExpenses(ctx, core.Period{Month: 5, Year: 2024}, "")
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("guard failure still wrote the expense")
	}

	ok := base
	ok.Amount = core.Money{Cents: 1_000_000}
	exp, err := repo.CreateExpenseChecked(ctx, ok)
	if err != nil {
		t.Fatalf("CreateExpenseChecked: %v", err)
	}
	if exp.Status != core.ApprovalPending {
		t.Fatalf("Status = %s, want pending", exp.Status)
	}

	decided, err := repo.DecideExpense(ctx, exp.ID, core.ApprovalApproved, "admin1")
	if err != nil {
		t.Fatalf("DecideExpense: %v", err)
	}
	if decided.Status != core.ApprovalApproved || decided.DecidedAt == nil {
		t.Fatalf("unexpected decided expense: %+v", decided)
	}

	if _, err := repo.DecideExpense(ctx, exp.ID, core.ApprovalRejected, "admin1"); !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("re-decide: expected ErrInvalidTransition, got %v", err)
	}

	// Second expense now only has 1.500.000 to draw from.
	second := base
	second.Amount = core.Money{Cents: 2_000_000}
	if _, err := repo.CreateExpenseChecked(ctx, second); !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance after approval, got %v", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetSettings(ctx, map[string]string{"community_name": "RT 05 Griya Asri"}, "admin1"); err != nil {
		t.Fatalf("SetSettings: %v", err)
	}
	got, err := repo.GetSetting(ctx, "community_name")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got.Value != "RT 05 Griya Asri" || got.UpdatedBy != "admin1" {
		t.Fatalf("unexpected setting: %+v", got)
	}

	if _, err := repo.GetSetting(ctx, "no-such-key"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Seed migration settings are visible alongside.
	all, err := repo.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) < 3 {
		t.Fatalf("len(settings) = %d, want seeded keys present", len(all))
	}
}

func TestSnapshotUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := core.StatSnapshot{
		Period:         core.Period{Month: 5, Year: 2024},
		TotalResidents: 10,
		TotalIncome:    core.Money{Cents: 25_000_000},
		Balance:        core.Money{Cents: 25_000_000},
		PaidCount:      10,
		ComputedAt:     time.Now().UTC(),
	}
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertSnapshot: %v", err)
	}

	// Same key twice must update, not conflict.
	snap.PaidCount = 9
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertSnapshot (update): %v", err)
	}
}

func TestUserRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, core.User{Username: "bendahara", PasswordHash: "x", Role: core.RolePengurus})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	got, err := repo.GetUserByUsername(ctx, "bendahara")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != created.ID || got.Role != core.RolePengurus {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetUserByUsername(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
