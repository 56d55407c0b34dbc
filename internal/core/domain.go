package core

import (
	"strings"
	"time"
)

// Verification states for dues payments. A payment counts toward income
// only once an administrator has verified it.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// Approval states for expenses. Pending is the only non-terminal state.
const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type (
	VerificationStatus string
	ApprovalStatus     string

	// Period scopes ledger queries to one billing month.
	Period struct {
		Month int // 1-12
		Year  int
	}

	// Resident is a household in the community. Residents are soft
	// deleted (Active flipped) because historical payments reference them.
	Resident struct {
		ID         string
		HouseBlock string
		Name       string
		SpouseName string
		Active     bool
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// ContributionType is a named, priced category of recurring dues,
	// e.g. "Iuran Sampah". Never physically deleted once referenced.
	ContributionType struct {
		ID        string
		Name      string
		Nominal   Money
		Active    bool
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// DuesPayment records one resident paying one contribution type for
	// one period. (resident, type, month, year) is NOT unique: corrections
	// land as additional rows and aggregation sums them.
	DuesPayment struct {
		ID                 string
		ResidentID         string
		ContributionTypeID string
		Amount             Money
		PaidAt             time.Time
		Month              int
		Year               int
		Status             VerificationStatus
		Note               string
		ProofRef           string
		VerifiedBy         string
		CreatedAt          time.Time
	}

	// Expense is a cash outflow subject to the approval workflow.
	// ContributionTypeTag names the income stream it draws against; it is
	// used for filtering only, not for balance separation.
	Expense struct {
		ID                  string
		Date                time.Time
		Category            string
		ContributionTypeTag string
		Title               string
		Description         string
		Amount              Money
		Status              ApprovalStatus
		ProofRef            string
		SubmittedBy         string
		DecidedBy           string
		DecidedAt           *time.Time
		CreatedAt           time.Time
	}

	// ExpenseDraft is the operator input for a new expense.
	ExpenseDraft struct {
		Date                time.Time
		Category            string
		ContributionTypeTag string
		Title               string
		Description         string
		Amount              Money
		ProofRef            string
	}

	// ExpenseCategory classifies expenses. Deactivation hides it from
	// future selection without invalidating existing expenses.
	ExpenseCategory struct {
		ID        string
		Name      string
		Active    bool
		CreatedAt time.Time
	}

	// Setting is an arbitrary key/value pair consumed by presentation for
	// labels. The ledger math never reads settings.
	Setting struct {
		Key       string
		Value     string
		UpdatedBy string
		UpdatedAt time.Time
	}

	// User is an operator account. Its role resolves to a capability set
	// once per session.
	User struct {
		ID           string
		Username     string
		PasswordHash string
		Role         Role
		CreatedAt    time.Time
	}
)

// NewPeriod builds the period containing t.
func NewPeriod(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Validate rejects malformed periods before any store call is issued.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Year < 1 {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

const minTextLen = 5

// Validate checks the draft fields the operator must fill in. All field
// problems are collected into a single ValidationError so the caller can
// surface them together.
func (d ExpenseDraft) Validate() error {
	ve := NewValidationError()
	if len(strings.TrimSpace(d.Title)) < minTextLen {
		ve.Add("title", "must be at least 5 characters")
	}
	if len(strings.TrimSpace(d.Description)) < minTextLen {
		ve.Add("description", "must be at least 5 characters")
	}
	if d.Amount.Cents <= 0 {
		ve.Add("amount", "must be positive")
	}
	if strings.TrimSpace(d.Category) == "" {
		ve.Add("category", "is required")
	}
	if strings.TrimSpace(d.ContributionTypeTag) == "" {
		ve.Add("contribution_type_tag", "is required")
	}
	if d.Date.IsZero() {
		ve.Add("date", "is required")
	}
	return ve.OrNil()
}

// Validate checks a payment before it is recorded.
func (p DuesPayment) Validate() error {
	ve := NewValidationError()
	if strings.TrimSpace(p.ResidentID) == "" {
		ve.Add("resident_id", "is required")
	}
	if strings.TrimSpace(p.ContributionTypeID) == "" {
		ve.Add("contribution_type_id", "is required")
	}
	if p.Amount.Cents <= 0 {
		ve.Add("amount", "must be positive")
	}
	if p.PaidAt.IsZero() {
		ve.Add("paid_at", "is required")
	}
	if err := (Period{Month: p.Month, Year: p.Year}).Validate(); err != nil {
		ve.Add("period", "month must be 1-12 and year positive")
	}
	return ve.OrNil()
}

// Terminal reports whether the approval status admits no further
// transitions.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}
