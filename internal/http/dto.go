package http

import (
	"time"

	"iuran/internal/core"
)

// Wire representations. Amounts go out as integer cents plus the rupiah
// rendering so clients never re-implement the formatting.

type moneyDTO struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func toMoneyDTO(m core.Money) moneyDTO {
	return moneyDTO{Cents: m.Cents, Formatted: m.String()}
}

type statsDTO struct {
	Month              int      `json:"month"`
	Year               int      `json:"year"`
	TotalResidents     int      `json:"total_residents"`
	TotalIncome        moneyDTO `json:"total_income"`
	TotalOutflow       moneyDTO `json:"total_outflow"`
	Balance            moneyDTO `json:"balance"`
	PaidCount          int      `json:"paid_count"`
	UnpaidCount        int      `json:"unpaid_count"`
	PaymentRatePercent int      `json:"payment_rate_percent"`
}

func toStatsDTO(s core.Stats) statsDTO {
	return statsDTO{
		Month:              s.Period.Month,
		Year:               s.Period.Year,
		TotalResidents:     s.TotalResidents,
		TotalIncome:        toMoneyDTO(s.TotalIncome),
		TotalOutflow:       toMoneyDTO(s.TotalOutflow),
		Balance:            toMoneyDTO(s.Balance),
		PaidCount:          s.PaidCount,
		UnpaidCount:        s.UnpaidCount,
		PaymentRatePercent: s.PaymentRatePercent,
	}
}

type matrixRowDTO struct {
	ResidentID string   `json:"resident_id"`
	HouseBlock string   `json:"house_block"`
	Name       string   `json:"name"`
	HasPaid    bool     `json:"has_paid"`
	TypesPaid  []string `json:"types_paid"`
	TotalPaid  moneyDTO `json:"total_paid"`
}

func toMatrixDTO(rows []core.MatrixRow) []matrixRowDTO {
	out := make([]matrixRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, matrixRowDTO{
			ResidentID: row.Resident.ID,
			HouseBlock: row.Resident.HouseBlock,
			Name:       row.Resident.Name,
			HasPaid:    row.HasPaid,
			TypesPaid:  row.TypesPaid,
			TotalPaid:  toMoneyDTO(row.TotalPaid),
		})
	}
	return out
}

type expenseDTO struct {
	ID                  string     `json:"id"`
	Date                string     `json:"date"`
	Category            string     `json:"category"`
	ContributionTypeTag string     `json:"contribution_type_tag"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Amount              moneyDTO   `json:"amount"`
	Status              string     `json:"status"`
	ProofRef            string     `json:"proof_ref,omitempty"`
	SubmittedBy         string     `json:"submitted_by"`
	DecidedBy           string     `json:"decided_by,omitempty"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:                  e.ID,
		Date:                e.Date.Format("2006-01-02"),
		Category:            e.Category,
		ContributionTypeTag: e.ContributionTypeTag,
		Title:               e.Title,
		Description:         e.Description,
		Amount:              toMoneyDTO(e.Amount),
		Status:              string(e.Status),
		ProofRef:            e.ProofRef,
		SubmittedBy:         e.SubmittedBy,
		DecidedBy:           e.DecidedBy,
		DecidedAt:           e.DecidedAt,
		CreatedAt:           e.CreatedAt,
	}
}

func toExpenseListDTO(expenses []core.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	return out
}

type paymentDTO struct {
	ID                 string    `json:"id"`
	ResidentID         string    `json:"resident_id"`
	ContributionTypeID string    `json:"contribution_type_id"`
	Amount             moneyDTO  `json:"amount"`
	PaidAt             string    `json:"paid_at"`
	Month              int       `json:"month"`
	Year               int       `json:"year"`
	Status             string    `json:"status"`
	Note               string    `json:"note,omitempty"`
	ProofRef           string    `json:"proof_ref,omitempty"`
	VerifiedBy         string    `json:"verified_by,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func toPaymentDTO(p core.DuesPayment) paymentDTO {
	return paymentDTO{
		ID:                 p.ID,
		ResidentID:         p.ResidentID,
		ContributionTypeID: p.ContributionTypeID,
		Amount:             toMoneyDTO(p.Amount),
		PaidAt:             p.PaidAt.Format("2006-01-02"),
		Month:              p.Month,
		Year:               p.Year,
		Status:             string(p.Status),
		Note:               p.Note,
		ProofRef:           p.ProofRef,
		VerifiedBy:         p.VerifiedBy,
		CreatedAt:          p.CreatedAt,
	}
}

func toPaymentListDTO(payments []core.DuesPayment) []paymentDTO {
	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	return out
}

type residentDTO struct {
	ID         string    `json:"id"`
	HouseBlock string    `json:"house_block"`
	Name       string    `json:"name"`
	SpouseName string    `json:"spouse_name,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResidentDTO(r core.Resident) residentDTO {
	return residentDTO{
		ID:         r.ID,
		HouseBlock: r.HouseBlock,
		Name:       r.Name,
		SpouseName: r.SpouseName,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
	}
}

type contributionTypeDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Nominal moneyDTO `json:"nominal"`
	Active  bool     `json:"active"`
}

func toContributionTypeDTO(t core.ContributionType) contributionTypeDTO {
	return contributionTypeDTO{
		ID:      t.ID,
		Name:    t.Name,
		Nominal: toMoneyDTO(t.Nominal),
		Active:  t.Active,
	}
}

type categoryDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type settingDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sessionDTO struct {
	Token        string   `json:"token"`
	Username     string   `json:"username"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}
