// Package storage is the durable ledger store: a single sqlite database
// holding expenses, incomes and shared goals. It carries no business
// logic; validation and classification happen before rows arrive here.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moodledger/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs the embedded migrations. The returned handle lives for the whole
// process; there is only ever one writer.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping checks the database connection, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertExpense writes a categorized transaction and returns it with the
// assigned ID.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (date, description, amount_cents, category, mood) VALUES (?, ?, ?, ?, ?)`,
		tx.Date.String(), tx.Description, tx.Amount.Cents, tx.Category, string(tx.Mood))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("expense id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", tx.ID,
		"date", tx.Date.String(),
		"category", tx.Category,
		"mood", string(tx.Mood),
		"amount_cents", tx.Amount.Cents)
	return tx, nil
}

// DeleteExpense removes an expense by ID. Deleting an unknown ID is a
// no-op; the read side always works from a fresh query.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

// ListExpenses returns all expenses, most recent date first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, amount_cents, category, mood FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx    core.Transaction
			date  string
			cents int64
			mood  string
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &cents, &tx.Category, &mood); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("expense %d has malformed date %q", tx.ID, date)
		}
		tx.Date = d
		tx.Amount = core.Money{Cents: cents}
		tx.Mood = core.Mood(mood)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// CountExpensesOn counts expenses recorded on a single calendar date.
func (r *SQLiteRepository) CountExpensesOn(ctx context.Context, date core.Date) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE date = ?`, date.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expenses on %s: %w", date, err)
	}
	return n, nil
}

// SumExpenses totals all expense amounts. An empty table sums to zero.
func (r *SQLiteRepository) SumExpenses(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// SumExpensesByMood groups expense totals by mood. Moods without expenses
// are absent from the map.
func (r *SQLiteRepository) SumExpensesByMood(ctx context.Context) (map[core.Mood]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mood, SUM(amount_cents) FROM expenses GROUP BY mood`)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by mood: %w", err)
	}
	defer rows.Close()

	sums := make(map[core.Mood]core.Money)
	for rows.Next() {
		var (
			mood  string
			cents int64
		)
		if err := rows.Scan(&mood, &cents); err != nil {
			return nil, fmt.Errorf("scan mood sum: %w", err)
		}
		sums[core.Mood(mood)] = core.Money{Cents: cents}
	}
	return sums, rows.Err()
}

// SumExpensesByDateMood groups expense totals by (date, mood), date
// ascending. Zero-filling of absent moods is the analytics engine's job.
func (r *SQLiteRepository) SumExpensesByDateMood(ctx context.Context) ([]core.DateMoodTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, mood, SUM(amount_cents) FROM expenses GROUP BY date, mood ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by date and mood: %w", err)
	}
	defer rows.Close()

	var out []core.DateMoodTotal
	for rows.Next() {
		var (
			date  string
			mood  string
			cents int64
		)
		if err := rows.Scan(&date, &mood, &cents); err != nil {
			return nil, fmt.Errorf("scan date mood sum: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("malformed date %q in expenses", date)
		}
		out = append(out, core.DateMoodTotal{Date: d, Mood: core.Mood(mood), Total: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}

// InsertIncome writes an income record and returns it with the assigned ID.
func (r *SQLiteRepository) InsertIncome(ctx context.Context, rec core.IncomeRecord) (core.IncomeRecord, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (date, source, amount_cents) VALUES (?, ?, ?)`,
		rec.Date.String(), rec.Source, rec.Amount.Cents)
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("income id: %w", err)
	}
	rec.ID = id

	slog.InfoContext(ctx, "Income saved",
		"id", rec.ID,
		"date", rec.Date.String(),
		"source", rec.Source,
		"amount_cents", rec.Amount.Cents)
	return rec, nil
}

// DeleteIncome removes an income record by ID; unknown IDs are a no-op.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return nil
}

// ListIncomes returns all income records, most recent date first.
func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.IncomeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, source, amount_cents FROM incomes ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeRecord
	for rows.Next() {
		var (
			rec   core.IncomeRecord
			date  string
			cents int64
		)
		if err := rows.Scan(&rec.ID, &date, &rec.Source, &cents); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("income %d has malformed date %q", rec.ID, date)
		}
		rec.Date = d
		rec.Amount = core.Money{Cents: cents}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SumIncomes totals all income amounts. An empty table sums to zero.
func (r *SQLiteRepository) SumIncomes(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM incomes`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// InsertGoal appends a shared-goal row. No uniqueness is enforced on the
// name; saving the same name twice yields two rows.
func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.SharedGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shared_goals (name, target_cents, saved_cents) VALUES (?, ?, ?)`,
		g.Name, g.Target.Cents, g.Saved.Cents)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// DeleteGoalsByName removes every row whose name matches exactly.
func (r *SQLiteRepository) DeleteGoalsByName(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shared_goals WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete goals named %q: %w", name, err)
	}
	return nil
}

// ListGoals returns all shared-goal rows in insertion order.
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.SharedGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, target_cents, saved_cents FROM shared_goals`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SharedGoal
	for rows.Next() {
		var (
			g      core.SharedGoal
			target int64
			saved  int64
		)
		if err := rows.Scan(&g.Name, &target, &saved); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Target = core.Money{Cents: target}
		g.Saved = core.Money{Cents: saved}
		out = append(out, g)
	}
	return out, rows.Err()
}
