package core

import "time"

// Stats is the period summary shown on the dashboard. Balance is scoped to
// the requested period (income minus outflow for that month), not a running
// total across history.
type Stats struct {
	Period             Period
	TotalResidents     int
	TotalIncome        Money
	TotalOutflow       Money
	Balance            Money
	PaidCount          int
	UnpaidCount        int
	PaymentRatePercent int
}

// MatrixRow is one resident's payment status for a period. The matrix is
// resident-complete: residents with no payments appear with HasPaid false.
type MatrixRow struct {
	Resident  Resident
	HasPaid   bool
	TypesPaid []string
	TotalPaid Money
}

// StatSnapshot is a precomputed Stats row maintained by the snapshot
// worker from the ledger event stream.
type StatSnapshot struct {
	Period             Period
	ContributionTypeID string // empty for the unfiltered snapshot
	TotalResidents     int
	TotalIncome        Money
	TotalOutflow       Money
	Balance            Money
	PaidCount          int
	ComputedAt         time.Time
}
