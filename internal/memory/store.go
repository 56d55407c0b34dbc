// Package memory provides an in-memory ledger store. It backs the
// "memory" data backend and doubles as the store fake in service and
// handler tests. Semantics mirror the SQLite repository, including the
// transactional balance guard (the mutex stands in for the transaction).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"iuran/internal/core"
)

type Store struct {
	mu         sync.Mutex
	err        error
	residents  []core.Resident
	types      []core.ContributionType
	payments   []core.DuesPayment
	expenses   []core.Expense
	categories []core.ExpenseCategory
	settings   map[string]core.Setting
	snapshots  map[string]core.StatSnapshot
	users      map[string]core.User
	now        func() time.Time
}

func New() *Store {
	return &Store{
		settings:  make(map[string]core.Setting),
		snapshots: make(map[string]core.StatSnapshot),
		users:     make(map[string]core.User),
		now:       time.Now,
	}
}

// FailWith makes every subsequent call return err; FailWith(nil) clears
// it. Used by tests to simulate an unreachable store.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetNow overrides the clock. Test hook.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// ---- residents ----

func (s *Store) ListResidents(_ context.Context, onlyActive bool) ([]core.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.Resident, 0, len(s.residents))
	for _, r := range s.residents {
		if onlyActive && !r.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) CreateResident(_ context.Context, r core.Resident) (core.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.Resident{}, s.err
	}
	r.ID = uuid.NewString()
	r.Active = true
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt
	s.residents = append(s.residents, r)
	return r, nil
}

func (s *Store) DeactivateResident(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.residents {
		if s.residents[i].ID == id {
			s.residents[i].Active = false
			s.residents[i].UpdatedAt = s.now()
			return nil
		}
	}
	return core.ErrNotFound
}

// ---- contribution types ----

func (s *Store) ListContributionTypes(_ context.Context, onlyActive bool) ([]core.ContributionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.ContributionType, 0, len(s.types))
	for _, t := range s.types {
		if onlyActive && !t.Active {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) GetContributionType(_ context.Context, id string) (core.ContributionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.ContributionType{}, s.err
	}
	for _, t := range s.types {
		if t.ID == id {
			return t, nil
		}
	}
	return core.ContributionType{}, core.ErrNotFound
}

func (s *Store) CreateContributionType(_ context.Context, t core.ContributionType) (core.ContributionType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.ContributionType{}, s.err
	}
	t.ID = uuid.NewString()
	t.Active = true
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	s.types = append(s.types, t)
	return t, nil
}

func (s *Store) DeactivateContributionType(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.types {
		if s.types[i].ID == id {
			s.types[i].Active = false
			s.types[i].UpdatedAt = s.now()
			return nil
		}
	}
	return core.ErrNotFound
}

// ---- payments ----

func (s *Store) ListPayments(_ context.Context, p core.Period, status core.VerificationStatus) ([]core.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []core.DuesPayment{}
	for _, pay := range s.payments {
		if pay.Month != p.Month || pay.Year != p.Year {
			continue
		}
		if status != "" && pay.Status != status {
			continue
		}
		out = append(out, pay)
	}
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, pay core.DuesPayment) (core.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.DuesPayment{}, s.err
	}
	pay.ID = uuid.NewString()
	pay.CreatedAt = s.now()
	s.payments = append(s.payments, pay)
	return pay, nil
}

func (s *Store) VerifyPayment(_ context.Context, id, verifierID string) (core.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.DuesPayment{}, s.err
	}
	for i := range s.payments {
		if s.payments[i].ID != id {
			continue
		}
		if s.payments[i].Status != core.VerificationPending {
			return core.DuesPayment{}, core.ErrInvalidTransition
		}
		s.payments[i].Status = core.VerificationVerified
		s.payments[i].VerifiedBy = verifierID
		return s.payments[i], nil
	}
	return core.DuesPayment{}, core.ErrNotFound
}

// ---- expenses ----

func (s *Store) ListExpenses(_ context.Context, p core.Period, status core.ApprovalStatus) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []core.Expense{}
	for _, e := range s.expenses {
		if !p.Contains(e.Date) {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.Expense{}, s.err
	}
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) CreateExpenseChecked(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.Expense{}, s.err
	}
	p := core.NewPeriod(e.Date)
	if e.Amount.Cents > s.periodBalanceLocked(p) {
		return core.Expense{}, core.ErrInsufficientBalance
	}
	e.ID = uuid.NewString()
	e.Status = core.ApprovalPending
	e.CreatedAt = s.now()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) DecideExpense(_ context.Context, id string, decision core.ApprovalStatus, deciderID string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.Expense{}, s.err
	}
	for i := range s.expenses {
		if s.expenses[i].ID != id {
			continue
		}
		if s.expenses[i].Status.Terminal() {
			return core.Expense{}, core.ErrInvalidTransition
		}
		if decision == core.ApprovalApproved {
			p := core.NewPeriod(s.expenses[i].Date)
			if s.expenses[i].Amount.Cents > s.periodBalanceLocked(p) {
				return core.Expense{}, core.ErrInsufficientBalance
			}
		}
		now := s.now()
		s.expenses[i].Status = decision
		s.expenses[i].DecidedBy = deciderID
		s.expenses[i].DecidedAt = &now
		return s.expenses[i], nil
	}
	return core.Expense{}, core.ErrNotFound
}

// periodBalanceLocked computes verified income minus approved outflow for
// the period. Callers hold s.mu.
func (s *Store) periodBalanceLocked(p core.Period) int64 {
	var income, outflow int64
	for _, pay := range s.payments {
		if pay.Month == p.Month && pay.Year == p.Year && pay.Status == core.VerificationVerified {
			income += pay.Amount.Cents
		}
	}
	for _, e := range s.expenses {
		if p.Contains(e.Date) && e.Status == core.ApprovalApproved {
			outflow += e.Amount.Cents
		}
	}
	return income - outflow
}

// ---- expense categories ----

func (s *Store) ListExpenseCategories(_ context.Context, onlyActive bool) ([]core.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.ExpenseCategory, 0, len(s.categories))
	for _, c := range s.categories {
		if onlyActive && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CreateExpenseCategory(_ context.Context, c core.ExpenseCategory) (core.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.ExpenseCategory{}, s.err
	}
	c.ID = uuid.NewString()
	c.Active = true
	c.CreatedAt = s.now()
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) DeactivateExpenseCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Active = false
			return nil
		}
	}
	return core.ErrNotFound
}

// ---- settings ----

func (s *Store) GetSetting(_ context.Context, key string) (core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.Setting{}, s.err
	}
	if st, ok := s.settings[key]; ok {
		return st, nil
	}
	return core.Setting{}, core.ErrNotFound
}

func (s *Store) ListSettings(_ context.Context) ([]core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.Setting, 0, len(s.settings))
	for _, st := range s.settings {
		out = append(out, st)
	}
	return out, nil
}

func (s *Store) SetSettings(_ context.Context, entries map[string]string, editorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	now := s.now()
	for k, v := range entries {
		s.settings[k] = core.Setting{Key: k, Value: v, UpdatedBy: editorID, UpdatedAt: now}
	}
	return nil
}

// ---- snapshots ----

func (s *Store) UpsertSnapshot(_ context.Context, snap core.StatSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	key := fmt.Sprintf("%d-%d-%s", snap.Period.Year, snap.Period.Month, snap.ContributionTypeID)
	s.snapshots[key] = snap
	return nil
}

// Snapshot returns the stored snapshot for a period, if any. Test hook.
func (s *Store) Snapshot(p core.Period, typeID string) (core.StatSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[fmt.Sprintf("%d-%d-%s", p.Year, p.Month, typeID)]
	return snap, ok
}

// ---- users ----

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.User{}, s.err
	}
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return core.User{}, s.err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now()
	s.users[u.Username] = u
	return u, nil
}
