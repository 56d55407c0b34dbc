package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"iuran/internal/core"
)

// StatsService is the aggregation engine: it reduces raw payment and
// expense rows into the period summary shown on the dashboard.
type StatsService struct {
	residents ResidentStore
	payments  PaymentStore
	expenses  ExpenseStore
	types     ContributionTypeStore
}

func NewStatsService(residents ResidentStore, payments PaymentStore, expenses ExpenseStore, types ContributionTypeStore) *StatsService {
	return &StatsService{
		residents: residents,
		payments:  payments,
		expenses:  expenses,
		types:     types,
	}
}

// ComputeStats aggregates the period. typeID optionally narrows income to
// one contribution type and outflow to expenses tagged with that type's
// name. TotalResidents is filter-independent. On any store failure no
// partial result is returned.
func (s *StatsService) ComputeStats(ctx context.Context, p core.Period, typeID string) (core.Stats, error) {
	if err := p.Validate(); err != nil {
		return core.Stats{}, err
	}

	var (
		residents []core.Resident
		payments  []core.DuesPayment
		expenses  []core.Expense
		typeName  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		residents, err = s.residents.ListResidents(gctx, true)
		if err != nil {
			return fmt.Errorf("list residents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListPayments(gctx, p, core.VerificationVerified)
		if err != nil {
			return fmt.Errorf("list verified payments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(gctx, p, core.ApprovalApproved)
		if err != nil {
			return fmt.Errorf("list approved expenses: %w", err)
		}
		return nil
	})
	if typeID != "" {
		g.Go(func() error {
			t, err := s.types.GetContributionType(gctx, typeID)
			if err != nil {
				return fmt.Errorf("get contribution type %s: %w", typeID, err)
			}
			typeName = t.Name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Stats{}, err
	}

	stats := reduceStats(p, typeID, typeName, residents, payments, expenses)

	slog.DebugContext(ctx, "Computed period stats",
		"month", p.Month,
		"year", p.Year,
		"type_id", typeID,
		"income_cents", stats.TotalIncome.Cents,
		"outflow_cents", stats.TotalOutflow.Cents,
		"paid_count", stats.PaidCount)

	return stats, nil
}

// reduceStats is the pure reduction over raw rows. Income sums every
// verified payment in-period (type-filtered); the paid set counts only
// active residents; outflow matches expense tags against the type name.
func reduceStats(p core.Period, typeID, typeName string, residents []core.Resident, payments []core.DuesPayment, expenses []core.Expense) core.Stats {
	activeIDs := make(map[string]struct{}, len(residents))
	for _, r := range residents {
		activeIDs[r.ID] = struct{}{}
	}

	var income int64
	paid := make(map[string]struct{})
	for _, pay := range payments {
		if typeID != "" && pay.ContributionTypeID != typeID {
			continue
		}
		income += pay.Amount.Cents
		if _, ok := activeIDs[pay.ResidentID]; ok {
			paid[pay.ResidentID] = struct{}{}
		}
	}

	var outflow int64
	for _, e := range expenses {
		if typeID != "" && e.ContributionTypeTag != typeName {
			continue
		}
		outflow += e.Amount.Cents
	}

	total := len(residents)
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(len(paid)) / float64(total) * 100))
	}

	return core.Stats{
		Period:             p,
		TotalResidents:     total,
		TotalIncome:        core.Money{Cents: income},
		TotalOutflow:       core.Money{Cents: outflow},
		Balance:            core.Money{Cents: income - outflow},
		PaidCount:          len(paid),
		UnpaidCount:        total - len(paid),
		PaymentRatePercent: rate,
	}
}

// Snapshot recomputes the unfiltered stats for a period and returns them
// as a snapshot row for the worker to persist.
func (s *StatsService) Snapshot(ctx context.Context, p core.Period) (core.StatSnapshot, error) {
	stats, err := s.ComputeStats(ctx, p, "")
	if err != nil {
		return core.StatSnapshot{}, err
	}
	return core.StatSnapshot{
		Period:         stats.Period,
		TotalResidents: stats.TotalResidents,
		TotalIncome:    stats.TotalIncome,
		TotalOutflow:   stats.TotalOutflow,
		Balance:        stats.Balance,
		PaidCount:      stats.PaidCount,
	}, nil
}
