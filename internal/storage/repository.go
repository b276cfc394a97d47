// Package storage persists categories, transactions and budgets in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kakeibo/internal/core"

	_ "modernc.org/sqlite"
)

// Dates are persisted as RFC 3339 UTC strings; lexicographic order matches
// chronological order, so range queries compare text directly.
const dateFormat = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
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

// isUniqueViolation detects unique-index violations from the sqlite driver.
// The pre-check in the service gives the friendly error; this closes the
// race window between check and insert.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- categories ---

// ListCategories returns every category ordered by type, then name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, color, created_at FROM categories ORDER BY type ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, created_at FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, created_at FROM categories WHERE name = ?`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Color, c.CreatedAt.UTC().Format(dateFormat))
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", c.Name, core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name, "type", c.Type)
	return nil
}

// DeleteCategory removes the category; dependent transactions and budgets go
// with it through the ON DELETE CASCADE foreign keys.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// --- transactions ---

// ListTransactionsBetween returns transactions inside the inclusive period,
// newest first, id ascending on equal dates.
func (r *SQLiteRepository) ListTransactionsBetween(ctx context.Context, p core.Period) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, type, category_id, description, date, created_at
		 FROM transactions
		 WHERE date BETWEEN ? AND ?
		 ORDER BY date DESC, id ASC`,
		p.Start.UTC().Format(dateFormat), p.End.UTC().Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, type, category_id, description, date, created_at
		 FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount_cents, type, category_id, description, date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, string(t.Type), t.CategoryID, t.Description,
		t.Date.UTC().Format(dateFormat), t.CreatedAt.UTC().Format(dateFormat))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", t.Type,
		"category_id", t.CategoryID,
		"amount_cents", t.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ExpenseTotalsByCategory sums expense amounts per category inside the
// period with a single grouped query, so the budget listing does not issue
// one aggregate query per budget row.
func (r *SQLiteRepository) ExpenseTotalsByCategory(ctx context.Context, p core.Period) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, SUM(amount_cents)
		 FROM transactions
		 WHERE type = 'expense' AND date BETWEEN ? AND ?
		 GROUP BY category_id`,
		p.Start.UTC().Format(dateFormat), p.End.UTC().Format(dateFormat))
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]core.Money)
	for rows.Next() {
		var id string
		var cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		totals[id] = core.Money{Cents: cents}
	}
	return totals, rows.Err()
}

// --- budgets ---

// ListBudgets returns budgets for one cadence and period, ordered by expense
// type then category name.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, bt core.BudgetType, month string, year int) ([]core.Budget, error) {
	query := `SELECT b.id, b.category_id, b.amount_cents, b.budget_type, b.expense_type, b.month, b.year, b.month_num, b.created_at
		 FROM budgets b
		 LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.budget_type = ?`
	args := []any{string(bt)}
	if bt == core.MonthlyBudget {
		query += ` AND b.month = ?`
		args = append(args, month)
	} else {
		query += ` AND b.year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY b.expense_type ASC, c.name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ListMonthlyBudgets returns every monthly budget whose month token matches.
func (r *SQLiteRepository) ListMonthlyBudgets(ctx context.Context, month string) ([]core.Budget, error) {
	return r.ListBudgets(ctx, core.MonthlyBudget, month, 0)
}

// FindBudgetByPeriod looks up an existing budget for the same category,
// cadence and period. Used as the duplicate pre-check on the create path.
func (r *SQLiteRepository) FindBudgetByPeriod(ctx context.Context, categoryID string, bt core.BudgetType, month string, year int) (core.Budget, error) {
	query := `SELECT id, category_id, amount_cents, budget_type, expense_type, month, year, month_num, created_at
		 FROM budgets WHERE category_id = ? AND budget_type = ?`
	args := []any{categoryID, string(bt)}
	if bt == core.MonthlyBudget {
		query += ` AND month = ?`
		args = append(args, month)
	} else {
		query += ` AND year = ?`
		args = append(args, year)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget for category %s: %w", categoryID, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget by period: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, amount_cents, budget_type, expense_type, month, year, month_num, created_at
		 FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	var month any
	if b.Month != "" {
		month = b.Month
	}
	var monthNum any
	if b.MonthNum != 0 {
		monthNum = b.MonthNum
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category_id, amount_cents, budget_type, expense_type, month, year, month_num, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CategoryID, b.Amount.Cents, string(b.BudgetType), string(b.Expense),
		month, b.Year, monthNum, b.CreatedAt.UTC().Format(dateFormat))
	if isUniqueViolation(err) {
		return fmt.Errorf("budget for category %s in %s: %w", b.CategoryID, b.PeriodKey(), core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"category_id", b.CategoryID,
		"budget_type", b.BudgetType,
		"period", b.PeriodKey(),
		"amount_cents", b.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id)
	return nil
}

// --- scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var typ, createdAt string
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Color, &createdAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.EntryType(typ)
	c.CreatedAt = parseStoredTime(createdAt)
	return c, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, createdAt string
	if err := row.Scan(&t.ID, &t.Amount.Cents, &typ, &t.CategoryID, &t.Description, &date, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.EntryType(typ)
	t.Date = parseStoredTime(date)
	t.CreatedAt = parseStoredTime(createdAt)
	return t, nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var bt, et, createdAt string
	var month sql.NullString
	var monthNum sql.NullInt64
	if err := row.Scan(&b.ID, &b.CategoryID, &b.Amount.Cents, &bt, &et, &month, &b.Year, &monthNum, &createdAt); err != nil {
		return core.Budget{}, err
	}
	b.BudgetType = core.BudgetType(bt)
	b.Expense = core.ExpenseType(et)
	b.Month = month.String
	b.MonthNum = int(monthNum.Int64)
	b.CreatedAt = parseStoredTime(createdAt)
	return b, nil
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
