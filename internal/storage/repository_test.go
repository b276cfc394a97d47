package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kakeibo/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kakeibo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateCategory(t *testing.T, repo *SQLiteRepository, id, name string, typ core.EntryType) core.Category {
	t.Helper()
	c := core.Category{ID: id, Name: name, Type: typ, Color: "#123456", CreatedAt: time.Now().UTC()}
	if err := repo.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreateCategory(t, repo, "c2", "Rent", core.Expense)
	mustCreateCategory(t, repo, "c1", "Food", core.Expense)
	mustCreateCategory(t, repo, "c3", "Salary", core.Income)

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// type asc (expense before income), then name asc
	wantNames := []string{"Food", "Rent", "Salary"}
	if len(cats) != 3 {
		t.Fatalf("len = %d", len(cats))
	}
	for i, name := range wantNames {
		if cats[i].Name != name {
			t.Fatalf("position %d: got %q, want %q", i, cats[i].Name, name)
		}
	}

	got, err := repo.GetCategory(ctx, "c1")
	if err != nil || got.Name != "Food" || got.Type != core.Expense {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	if err := repo.DeleteCategory(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetCategory(ctx, "c1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteCategory(ctx, "c1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestDuplicateCategoryName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreateCategory(t, repo, "c1", "food", core.Expense)
	dup := core.Category{ID: "c2", Name: "food", Type: core.Expense, Color: "#000", CreatedAt: time.Now().UTC()}
	if err := repo.CreateCategory(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestTransactionsBetween(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "food", "Food", core.Expense)

	dates := []time.Time{
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), // outside
		time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC), // outside
	}
	for i, d := range dates {
		tx := core.Transaction{
			ID:         string(rune('a' + i)),
			Amount:     core.Money{Cents: 1000},
			Type:       core.Expense,
			CategoryID: "food",
			Date:       d,
			CreatedAt:  time.Now().UTC(),
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create tx %d: %v", i, err)
		}
	}

	p, _ := core.MonthPeriod("2024-06")
	txs, err := repo.ListTransactionsBetween(ctx, p)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2 (boundaries inclusive, neighbors excluded)", len(txs))
	}
	if txs[0].ID != "b" || txs[1].ID != "a" {
		t.Fatalf("order wrong: %s, %s", txs[0].ID, txs[1].ID)
	}
}

func TestExpenseTotalsByCategory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "food", "Food", core.Expense)
	mustCreateCategory(t, repo, "rent", "Rent", core.Expense)
	mustCreateCategory(t, repo, "salary", "Salary", core.Income)

	mk := func(id, cat string, typ core.EntryType, cents int64, day int) {
		tx := core.Transaction{
			ID: id, Amount: core.Money{Cents: cents}, Type: typ, CategoryID: cat,
			Date:      time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("t1", "food", core.Expense, 30000, 2)
	mk("t2", "food", core.Expense, 90000, 20)
	mk("t3", "rent", core.Expense, 80000, 1)
	mk("t4", "salary", core.Income, 250000, 25)

	p, _ := core.MonthPeriod("2024-06")
	totals, err := repo.ExpenseTotalsByCategory(ctx, p)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals["food"].Cents != 120000 {
		t.Fatalf("food = %d", totals["food"].Cents)
	}
	if totals["rent"].Cents != 80000 {
		t.Fatalf("rent = %d", totals["rent"].Cents)
	}
	if _, ok := totals["salary"]; ok {
		t.Fatalf("income must not appear in expense totals")
	}
}

func TestBudgetUniquePerPeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "food", "Food", core.Expense)

	b := core.Budget{
		ID: "b1", CategoryID: "food", Amount: core.Money{Cents: 100000},
		BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
		Month: "2024-06", Year: 2024, MonthNum: 6, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := b
	dup.ID = "b2"
	if err := repo.CreateBudget(ctx, dup); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict for same period, got %v", err)
	}

	// Same category, different month: fine.
	other := b
	other.ID = "b3"
	other.Month = "2024-07"
	other.MonthNum = 7
	if err := repo.CreateBudget(ctx, other); err != nil {
		t.Fatalf("different month should not conflict: %v", err)
	}

	// Yearly budget for the same category coexists with monthly ones.
	yearly := core.Budget{
		ID: "b4", CategoryID: "food", Amount: core.Money{Cents: 1200000},
		BudgetType: core.YearlyBudget, Expense: core.VariableExpense,
		Year: 2024, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, yearly); err != nil {
		t.Fatalf("yearly should not conflict: %v", err)
	}
	dup2 := yearly
	dup2.ID = "b5"
	if err := repo.CreateBudget(ctx, dup2); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict for same year, got %v", err)
	}
}

func TestFindBudgetByPeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "food", "Food", core.Expense)

	if _, err := repo.FindBudgetByPeriod(ctx, "food", core.MonthlyBudget, "2024-06", 0); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	b := core.Budget{
		ID: "b1", CategoryID: "food", Amount: core.Money{Cents: 100000},
		BudgetType: core.MonthlyBudget, Expense: core.FixedExpense,
		Month: "2024-06", Year: 2024, MonthNum: 6, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindBudgetByPeriod(ctx, "food", core.MonthlyBudget, "2024-06", 0)
	if err != nil || got.ID != "b1" {
		t.Fatalf("find: %+v err=%v", got, err)
	}
}

func TestListBudgetsOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "rent", "Rent", core.Expense)
	mustCreateCategory(t, repo, "food", "Food", core.Expense)
	mustCreateCategory(t, repo, "fun", "Entertainment", core.Expense)

	mk := func(id, cat string, et core.ExpenseType) {
		b := core.Budget{
			ID: id, CategoryID: cat, Amount: core.Money{Cents: 1000},
			BudgetType: core.MonthlyBudget, Expense: et,
			Month: "2024-06", Year: 2024, MonthNum: 6, CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateBudget(ctx, b); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("b1", "food", core.VariableExpense)
	mk("b2", "rent", core.FixedExpense)
	mk("b3", "fun", core.VariableExpense)

	budgets, err := repo.ListBudgets(ctx, core.MonthlyBudget, "2024-06", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// fixed before variable; within variable, category name asc.
	wantIDs := []string{"b2", "b3", "b1"}
	if len(budgets) != 3 {
		t.Fatalf("len = %d", len(budgets))
	}
	for i, id := range wantIDs {
		if budgets[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, budgets[i].ID, id)
		}
	}
}

func TestCategoryDeleteCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	mustCreateCategory(t, repo, "food", "Food", core.Expense)

	tx := core.Transaction{
		ID: "t1", Amount: core.Money{Cents: 1000}, Type: core.Expense, CategoryID: "food",
		Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create tx: %v", err)
	}
	b := core.Budget{
		ID: "b1", CategoryID: "food", Amount: core.Money{Cents: 100000},
		BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
		Month: "2024-06", Year: 2024, MonthNum: 6, CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	if err := repo.DeleteCategory(ctx, "food"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("transaction should cascade, got %v", err)
	}
	if _, err := repo.GetBudget(ctx, "b1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("budget should cascade, got %v", err)
	}
}
