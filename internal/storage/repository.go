// Package storage provides the SQLite repository behind the ledger store
// ports. All balance-guarded writes run inside transactions so concurrent
// submissions cannot both pass a stale balance check.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"iuran/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between the pool and in-flight transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// storeErr maps driver failures onto the ledger error taxonomy: missing
// rows become core.ErrNotFound, everything else is tagged
// core.ErrStoreUnavailable so callers can degrade instead of crashing.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(core.ErrStoreUnavailable, err))
}

// ---- residents ----

func (r *SQLiteRepository) ListResidents(ctx context.Context, onlyActive bool) ([]core.Resident, error) {
	query := `SELECT id, house_block, name, spouse_name, active, created_at, updated_at
	          FROM residents`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY house_block, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list residents", err)
	}
	defer rows.Close()

	out := []core.Resident{}
	for rows.Next() {
		var res core.Resident
		if err := rows.Scan(&res.ID, &res.HouseBlock, &res.Name, &res.SpouseName, &res.Active, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, storeErr("scan resident", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate residents", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateResident(ctx context.Context, res core.Resident) (core.Resident, error) {
	res.ID = uuid.NewString()
	res.Active = true
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO residents (id, house_block, name, spouse_name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		res.ID, res.HouseBlock, res.Name, res.SpouseName, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return core.Resident{}, storeErr("create resident", err)
	}

	slog.InfoContext(ctx, "Resident created",
		"id", res.ID,
		"house_block", res.HouseBlock,
		"name", res.Name)

	return res, nil
}

func (r *SQLiteRepository) DeactivateResident(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE residents SET active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return storeErr("deactivate resident", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr("deactivate resident", err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate resident %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ---- contribution types ----

func (r *SQLiteRepository) ListContributionTypes(ctx context.Context, onlyActive bool) ([]core.ContributionType, error) {
	query := `SELECT id, name, nominal_cents, active, created_at, updated_at
	          FROM contribution_types`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list contribution types", err)
	}
	defer rows.Close()

	out := []core.ContributionType{}
	for rows.Next() {
		var t core.ContributionType
		if err := rows.Scan(&t.ID, &t.Name, &t.Nominal.Cents, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storeErr("scan contribution type", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate contribution types", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetContributionType(ctx context.Context, id string) (core.ContributionType, error) {
	var t core.ContributionType
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, nominal_cents, active, created_at, updated_at
		 FROM contribution_types WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Nominal.Cents, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.ContributionType{}, storeErr("get contribution type", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateContributionType(ctx context.Context, t core.ContributionType) (core.ContributionType, error) {
	t.ID = uuid.NewString()
	t.Active = true
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contribution_types (id, name, nominal_cents, active, created_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)`,
		t.ID, t.Name, t.Nominal.Cents, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.ContributionType{}, storeErr("create contribution type", err)
	}

	slog.InfoContext(ctx, "Contribution type created",
		"id", t.ID,
		"name", t.Name,
		"nominal_cents", t.Nominal.Cents)

	return t, nil
}

func (r *SQLiteRepository) DeactivateContributionType(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contribution_types SET active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return storeErr("deactivate contribution type", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr("deactivate contribution type", err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate contribution type %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ---- payments ----

func (r *SQLiteRepository) ListPayments(ctx context.Context, p core.Period, status core.VerificationStatus) ([]core.DuesPayment, error) {
	query := `SELECT id, resident_id, contribution_type_id, amount_cents, paid_at, month, year,
	                 status, note, proof_ref, verified_by, created_at
	          FROM dues_payments WHERE month = ? AND year = ?`
	args := []any{p.Month, p.Year}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY paid_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	defer rows.Close()

	out := []core.DuesPayment{}
	for rows.Next() {
		var pay core.DuesPayment
		if err := rows.Scan(&pay.ID, &pay.ResidentID, &pay.ContributionTypeID, &pay.Amount.Cents,
			&pay.PaidAt, &pay.Month, &pay.Year, &pay.Status, &pay.Note, &pay.ProofRef,
			&pay.VerifiedBy, &pay.CreatedAt); err != nil {
			return nil, storeErr("scan payment", err)
		}
		out = append(out, pay)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate payments", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, pay core.DuesPayment) (core.DuesPayment, error) {
	pay.ID = uuid.NewString()
	pay.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dues_payments (id, resident_id, contribution_type_id, amount_cents, paid_at,
		                            month, year, status, note, proof_ref, verified_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pay.ID, pay.ResidentID, pay.ContributionTypeID, pay.Amount.Cents, pay.PaidAt,
		pay.Month, pay.Year, string(pay.Status), pay.Note, pay.ProofRef, pay.VerifiedBy, pay.CreatedAt)
	if err != nil {
		return core.DuesPayment{}, storeErr("create payment", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", pay.ID,
		"resident_id", pay.ResidentID,
		"amount_cents", pay.Amount.Cents,
		"month", pay.Month,
		"year", pay.Year)

	return pay, nil
}

func (r *SQLiteRepository) VerifyPayment(ctx context.Context, id, verifierID string) (core.DuesPayment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.DuesPayment{}, storeErr("begin verify payment", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM dues_payments WHERE id = ?`, id).Scan(&status); err != nil {
		return core.DuesPayment{}, storeErr("get payment status", err)
	}
	if core.VerificationStatus(status) != core.VerificationPending {
		return core.DuesPayment{}, fmt.Errorf("verify payment %s: %w", id, core.ErrInvalidTransition)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE dues_payments SET status = ?, verified_by = ? WHERE id = ?`,
		string(core.VerificationVerified), verifierID, id); err != nil {
		return core.DuesPayment{}, storeErr("verify payment", err)
	}

	pay, err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT id, resident_id, contribution_type_id, amount_cents, paid_at, month, year,
		        status, note, proof_ref, verified_by, created_at
		 FROM dues_payments WHERE id = ?`, id))
	if err != nil {
		return core.DuesPayment{}, storeErr("reload payment", err)
	}

	if err := tx.Commit(); err != nil {
		return core.DuesPayment{}, storeErr("commit verify payment", err)
	}

	slog.InfoContext(ctx, "Payment verified",
		"id", pay.ID,
		"verified_by", verifierID)

	return pay, nil
}

func scanPayment(row *sql.Row) (core.DuesPayment, error) {
	var pay core.DuesPayment
	err := row.Scan(&pay.ID, &pay.ResidentID, &pay.ContributionTypeID, &pay.Amount.Cents,
		&pay.PaidAt, &pay.Month, &pay.Year, &pay.Status, &pay.Note, &pay.ProofRef,
		&pay.VerifiedBy, &pay.CreatedAt)
	return pay, err
}

// ---- expenses ----

func (r *SQLiteRepository) ListExpenses(ctx context.Context, p core.Period, status core.ApprovalStatus) ([]core.Expense, error) {
	query := `SELECT id, expense_date, category, contribution_type_tag, title, description,
	                 amount_cents, status, proof_ref, submitted_by, decided_by, decided_at, created_at
	          FROM expenses WHERE month = ? AND year = ?`
	args := []any{p.Month, p.Year}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY expense_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list expenses", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		var e core.Expense
		var decidedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.ContributionTypeTag, &e.Title,
			&e.Description, &e.Amount.Cents, &e.Status, &e.ProofRef, &e.SubmittedBy,
			&e.DecidedBy, &decidedAt, &e.CreatedAt); err != nil {
			return nil, storeErr("scan expense", err)
		}
		if decidedAt.Valid {
			e.DecidedAt = &decidedAt.Time
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate expenses", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT id, expense_date, category, contribution_type_tag, title, description,
		        amount_cents, status, proof_ref, submitted_by, decided_by, decided_at, created_at
		 FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, storeErr("get expense", err)
	}
	return e, nil
}

func scanExpense(row *sql.Row) (core.Expense, error) {
	var e core.Expense
	var decidedAt sql.NullTime
	err := row.Scan(&e.ID, &e.Date, &e.Category, &e.ContributionTypeTag, &e.Title,
		&e.Description, &e.Amount.Cents, &e.Status, &e.ProofRef, &e.SubmittedBy,
		&e.DecidedBy, &decidedAt, &e.CreatedAt)
	if decidedAt.Valid {
		e.DecidedAt = &decidedAt.Time
	}
	return e, err
}

// periodBalanceTx computes verified income minus approved outflow for the
// period within the caller's transaction.
func periodBalanceTx(ctx context.Context, tx *sql.Tx, p core.Period) (int64, error) {
	var income, outflow int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM dues_payments
		 WHERE month = ? AND year = ? AND status = ?`,
		p.Month, p.Year, string(core.VerificationVerified)).Scan(&income); err != nil {
		return 0, fmt.Errorf("sum income: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
		 WHERE month = ? AND year = ? AND status = ?`,
		p.Month, p.Year, string(core.ApprovalApproved)).Scan(&outflow); err != nil {
		return 0, fmt.Errorf("sum outflow: %w", err)
	}
	return income - outflow, nil
}

func (r *SQLiteRepository) CreateExpenseChecked(ctx context.Context, e core.Expense) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, storeErr("begin create expense", err)
	}
	defer tx.Rollback()

	p := core.NewPeriod(e.Date)
	balance, err := periodBalanceTx(ctx, tx, p)
	if err != nil {
		return core.Expense{}, storeErr("check balance", err)
	}
	if e.Amount.Cents > balance {
		return core.Expense{}, fmt.Errorf("create expense: amount %d exceeds period balance %d: %w",
			e.Amount.Cents, balance, core.ErrInsufficientBalance)
	}

	e.ID = uuid.NewString()
	e.Status = core.ApprovalPending
	e.CreatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, expense_date, month, year, category, contribution_type_tag,
		                       title, description, amount_cents, status, proof_ref, submitted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, p.Month, p.Year, e.Category, e.ContributionTypeTag,
		e.Title, e.Description, e.Amount.Cents, string(e.Status), e.ProofRef, e.SubmittedBy, e.CreatedAt); err != nil {
		return core.Expense{}, storeErr("create expense", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, storeErr("commit create expense", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"title", e.Title,
		"amount_cents", e.Amount.Cents,
		"month", p.Month,
		"year", p.Year)

	return e, nil
}

func (r *SQLiteRepository) DecideExpense(ctx context.Context, id string, decision core.ApprovalStatus, deciderID string) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, storeErr("begin decide expense", err)
	}
	defer tx.Rollback()

	current, err := scanExpense(tx.QueryRowContext(ctx,
		`SELECT id, expense_date, category, contribution_type_tag, title, description,
		        amount_cents, status, proof_ref, submitted_by, decided_by, decided_at, created_at
		 FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, storeErr("get expense", err)
	}
	if current.Status.Terminal() {
		return core.Expense{}, fmt.Errorf("decide expense %s: already %s: %w",
			id, current.Status, core.ErrInvalidTransition)
	}

	if decision == core.ApprovalApproved {
		p := core.NewPeriod(current.Date)
		balance, err := periodBalanceTx(ctx, tx, p)
		if err != nil {
			return core.Expense{}, storeErr("check balance", err)
		}
		if current.Amount.Cents > balance {
			return core.Expense{}, fmt.Errorf("decide expense %s: amount %d exceeds period balance %d: %w",
				id, current.Amount.Cents, balance, core.ErrInsufficientBalance)
		}
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET status = ?, decided_by = ?, decided_at = ? WHERE id = ?`,
		string(decision), deciderID, now, id); err != nil {
		return core.Expense{}, storeErr("decide expense", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, storeErr("commit decide expense", err)
	}

	current.Status = decision
	current.DecidedBy = deciderID
	current.DecidedAt = &now

	slog.InfoContext(ctx, "Expense decided",
		"id", id,
		"decision", string(decision),
		"decided_by", deciderID)

	return current, nil
}

// ---- expense categories ----

func (r *SQLiteRepository) ListExpenseCategories(ctx context.Context, onlyActive bool) ([]core.ExpenseCategory, error) {
	query := `SELECT id, name, active, created_at FROM expense_categories`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list expense categories", err)
	}
	defer rows.Close()

	out := []core.ExpenseCategory{}
	for rows.Next() {
		var c core.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, storeErr("scan expense category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate expense categories", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateExpenseCategory(ctx context.Context, c core.ExpenseCategory) (core.ExpenseCategory, error) {
	c.ID = uuid.NewString()
	c.Active = true
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expense_categories (id, name, active, created_at) VALUES (?, ?, 1, ?)`,
		c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return core.ExpenseCategory{}, storeErr("create expense category", err)
	}

	slog.InfoContext(ctx, "Expense category created", "id", c.ID, "name", c.Name)

	return c, nil
}

func (r *SQLiteRepository) DeactivateExpenseCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expense_categories SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return storeErr("deactivate expense category", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storeErr("deactivate expense category", err)
	}
	if n == 0 {
		return fmt.Errorf("deactivate expense category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ---- settings ----

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (core.Setting, error) {
	var s core.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_by, updated_at FROM settings WHERE key = ?`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		return core.Setting{}, storeErr("get setting", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]core.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_by, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, storeErr("list settings", err)
	}
	defer rows.Close()

	out := []core.Setting{}
	for rows.Next() {
		var s core.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, storeErr("scan setting", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate settings", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SetSettings(ctx context.Context, entries map[string]string, editorID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin set settings", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for k, v := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_by, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value,
			                                 updated_by = excluded.updated_by,
			                                 updated_at = excluded.updated_at`,
			k, v, editorID, now); err != nil {
			return storeErr("set setting "+k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit set settings", err)
	}

	slog.InfoContext(ctx, "Settings updated", "keys", len(entries), "updated_by", editorID)

	return nil
}

// ---- snapshots ----

func (r *SQLiteRepository) UpsertSnapshot(ctx context.Context, snap core.StatSnapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stat_snapshots (year, month, contribution_type_id, total_residents,
		                             total_income_cents, total_outflow_cents, balance_cents,
		                             paid_count, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (year, month, contribution_type_id) DO UPDATE SET
		     total_residents = excluded.total_residents,
		     total_income_cents = excluded.total_income_cents,
		     total_outflow_cents = excluded.total_outflow_cents,
		     balance_cents = excluded.balance_cents,
		     paid_count = excluded.paid_count,
		     computed_at = excluded.computed_at`,
		snap.Period.Year, snap.Period.Month, snap.ContributionTypeID, snap.TotalResidents,
		snap.TotalIncome.Cents, snap.TotalOutflow.Cents, snap.Balance.Cents,
		snap.PaidCount, snap.ComputedAt)
	if err != nil {
		return storeErr("upsert snapshot", err)
	}
	return nil
}

// ---- users ----

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`,
		username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return core.User{}, storeErr("get user", err)
	}
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		return core.User{}, storeErr("create user", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "username", u.Username, "role", string(u.Role))

	return u, nil
}
