package ledger

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"iuran/internal/core"
)

// MatrixService builds the per-resident payment-status matrix for a
// period. The matrix is resident-complete: every active resident gets a
// row, paid or not.
type MatrixService struct {
	residents ResidentStore
	payments  PaymentStore
	types     ContributionTypeStore
}

func NewMatrixService(residents ResidentStore, payments PaymentStore, types ContributionTypeStore) *MatrixService {
	return &MatrixService{
		residents: residents,
		payments:  payments,
		types:     types,
	}
}

// BuildMatrix returns one row per active resident for the period. The
// optional type filter is applied to the payment set before grouping, so a
// resident whose only payments are for other types comes out unpaid. Rows
// are ordered by house block, then name.
func (s *MatrixService) BuildMatrix(ctx context.Context, p core.Period, typeID string) ([]core.MatrixRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		residents []core.Resident
		payments  []core.DuesPayment
		types     []core.ContributionType
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
		types, err = s.types.ListContributionTypes(gctx, false)
		if err != nil {
			return fmt.Errorf("list contribution types: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	typeNames := make(map[string]string, len(types))
	for _, t := range types {
		typeNames[t.ID] = t.Name
	}

	// Filter before grouping.
	byResident := make(map[string][]core.DuesPayment)
	for _, pay := range payments {
		if typeID != "" && pay.ContributionTypeID != typeID {
			continue
		}
		byResident[pay.ResidentID] = append(byResident[pay.ResidentID], pay)
	}

	rows := make([]core.MatrixRow, 0, len(residents))
	for _, r := range residents {
		group := byResident[r.ID]

		var total int64
		seen := make(map[string]struct{})
		typesPaid := []string{}
		for _, pay := range group {
			total += pay.Amount.Cents
			name, ok := typeNames[pay.ContributionTypeID]
			if !ok {
				name = pay.ContributionTypeID
			}
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				typesPaid = append(typesPaid, name)
			}
		}
		sort.Strings(typesPaid)

		rows = append(rows, core.MatrixRow{
			Resident:  r,
			HasPaid:   len(group) > 0,
			TypesPaid: typesPaid,
			TotalPaid: core.Money{Cents: total},
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Resident.HouseBlock != rows[j].Resident.HouseBlock {
			return rows[i].Resident.HouseBlock < rows[j].Resident.HouseBlock
		}
		return rows[i].Resident.Name < rows[j].Resident.Name
	})

	return rows, nil
}
