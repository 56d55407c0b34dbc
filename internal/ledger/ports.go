// Package ledger implements the reconciliation core of the community dues
// system: period statistics, the per-resident payment-status matrix, and
// the expense approval workflow. Services are read-only except for the
// expense and payment write paths, which go through the store ports below.
package ledger

import (
	"context"

	"iuran/internal/core"
)

// Ports to the ledger store. The SQLite repository implements all of them;
// the memory store mirrors it for tests and the memory backend.
type (
	ResidentStore interface {
		// ListResidents returns residents, optionally only active ones.
		ListResidents(ctx context.Context, onlyActive bool) ([]core.Resident, error)
		CreateResident(ctx context.Context, r core.Resident) (core.Resident, error)
		// DeactivateResident flips the active flag; residents are never
		// physically removed because payments reference them.
		DeactivateResident(ctx context.Context, id string) error
	}

	ContributionTypeStore interface {
		ListContributionTypes(ctx context.Context, onlyActive bool) ([]core.ContributionType, error)
		GetContributionType(ctx context.Context, id string) (core.ContributionType, error)
		CreateContributionType(ctx context.Context, t core.ContributionType) (core.ContributionType, error)
		DeactivateContributionType(ctx context.Context, id string) error
	}

	PaymentStore interface {
		// ListPayments returns payments for the period; status "" means all.
		ListPayments(ctx context.Context, p core.Period, status core.VerificationStatus) ([]core.DuesPayment, error)
		CreatePayment(ctx context.Context, pay core.DuesPayment) (core.DuesPayment, error)
		// VerifyPayment transitions pending -> verified, recording the
		// verifier. Verifying a non-pending payment fails with
		// core.ErrInvalidTransition.
		VerifyPayment(ctx context.Context, id, verifierID string) (core.DuesPayment, error)
	}

	ExpenseStore interface {
		// ListExpenses returns expenses whose date falls in the period;
		// status "" means all.
		ListExpenses(ctx context.Context, p core.Period, status core.ApprovalStatus) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		// CreateExpenseChecked inserts the expense and performs the
		// balance-sufficiency check against the expense's period inside a
		// single transaction, returning core.ErrInsufficientBalance when
		// amount exceeds verified income minus approved outflow.
		CreateExpenseChecked(ctx context.Context, e core.Expense) (core.Expense, error)
		// DecideExpense transitions pending -> approved|rejected and stamps
		// the decider. Terminal expenses fail with core.ErrInvalidTransition.
		// Approval re-checks the period balance in the same transaction.
		DecideExpense(ctx context.Context, id string, decision core.ApprovalStatus, deciderID string) (core.Expense, error)
	}

	CategoryStore interface {
		ListExpenseCategories(ctx context.Context, onlyActive bool) ([]core.ExpenseCategory, error)
		CreateExpenseCategory(ctx context.Context, c core.ExpenseCategory) (core.ExpenseCategory, error)
		DeactivateExpenseCategory(ctx context.Context, id string) error
	}

	SettingsStore interface {
		// GetSetting returns core.ErrNotFound for unknown keys.
		GetSetting(ctx context.Context, key string) (core.Setting, error)
		ListSettings(ctx context.Context) ([]core.Setting, error)
		// SetSettings upserts entries as one batch, recording the editor
		// and timestamp per key.
		SetSettings(ctx context.Context, entries map[string]string, editorID string) error
	}

	SnapshotStore interface {
		UpsertSnapshot(ctx context.Context, snap core.StatSnapshot) error
	}

	UserStore interface {
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// Store is the full ledger store contract.
	Store interface {
		ResidentStore
		ContributionTypeStore
		PaymentStore
		ExpenseStore
		CategoryStore
		SettingsStore
		SnapshotStore
		UserStore
	}
)
