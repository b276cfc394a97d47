package core

import (
	"testing"
	"time"
)

func june(day int) time.Time {
	return time.Date(2024, 6, day, 9, 0, 0, 0, time.UTC)
}

func TestRecentTransactionsOrderAndLimit(t *testing.T) {
	txs := []Transaction{
		{ID: "c", Date: june(10)},
		{ID: "a", Date: june(10)}, // same date as "c": id breaks the tie
		{ID: "f", Date: june(1)},
		{ID: "d", Date: june(20)},
		{ID: "e", Date: june(5)},
		{ID: "b", Date: june(15)},
	}
	got := RecentTransactions(txs, 5)
	wantIDs := []string{"d", "b", "a", "c", "e"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: got %q, want %q", i, got[i].ID, id)
		}
	}
	// Input must not be reordered.
	if txs[0].ID != "c" {
		t.Fatalf("input slice was mutated")
	}
}

func TestTopExpenseCategories(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: Money{Cents: 5000}, Type: Expense, CategoryID: "b", Date: june(1)},
		{ID: "2", Amount: Money{Cents: 5000}, Type: Expense, CategoryID: "a", Date: june(2)},
		{ID: "3", Amount: Money{Cents: 9000}, Type: Expense, CategoryID: "c", Date: june(3)},
		{ID: "4", Amount: Money{Cents: 100}, Type: Income, CategoryID: "d", Date: june(4)},
		{ID: "5", Amount: Money{Cents: 1000}, Type: Expense, CategoryID: "b", Date: june(5)},
	}
	got := TopExpenseCategories(txs, 5)
	// c=9000, b=6000, a=5000; equal sums tie-break by category id ascending.
	wantIDs := []string{"c", "b", "a"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].CategoryID != id {
			t.Fatalf("position %d: got %q, want %q", i, got[i].CategoryID, id)
		}
	}
}

func TestTopExpenseCategoriesTieBreak(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: Money{Cents: 5000}, Type: Expense, CategoryID: "z", Date: june(1)},
		{ID: "2", Amount: Money{Cents: 5000}, Type: Expense, CategoryID: "a", Date: june(2)},
		{ID: "3", Amount: Money{Cents: 5000}, Type: Expense, CategoryID: "m", Date: june(3)},
	}
	got := TopExpenseCategories(txs, 2)
	if len(got) != 2 || got[0].CategoryID != "a" || got[1].CategoryID != "m" {
		t.Fatalf("tie-break order wrong: %+v", got)
	}
}

func TestBuildDashboard(t *testing.T) {
	p, _ := MonthPeriod("2024-06")
	cats := map[string]CategoryRef{
		"food":   {ID: "food", Name: "Food", Color: "#ff0000"},
		"salary": {ID: "salary", Name: "Salary", Color: "#00ff00"},
	}
	txs := []Transaction{
		{ID: "t1", Amount: Money{Cents: 30000}, Type: Expense, CategoryID: "food", Date: june(2)},
		{ID: "t2", Amount: Money{Cents: 90000}, Type: Expense, CategoryID: "food", Date: june(28)},
		{ID: "t3", Amount: Money{Cents: 250000}, Type: Income, CategoryID: "salary", Date: june(25)},
		{ID: "t4", Amount: Money{Cents: 4000}, Type: Expense, CategoryID: "ghost", Date: june(10)},
	}
	budgets := []Budget{
		{ID: "b1", CategoryID: "food", Amount: Money{Cents: 100000}, BudgetType: MonthlyBudget, Month: "2024-06"},
	}

	d := BuildDashboard("2024-06", p, txs, budgets, cats)

	if d.TotalIncome.Cents != 250000 {
		t.Fatalf("totalIncome = %d", d.TotalIncome.Cents)
	}
	if d.TotalExpense.Cents != 124000 {
		t.Fatalf("totalExpense = %d", d.TotalExpense.Cents)
	}
	if d.Balance.Cents != 126000 {
		t.Fatalf("balance = %d", d.Balance.Cents)
	}

	if len(d.BudgetProgress) != 1 {
		t.Fatalf("budgetProgress len = %d", len(d.BudgetProgress))
	}
	bp := d.BudgetProgress[0]
	if bp.Spent.Cents != 120000 || bp.Remaining.Cents != -20000 {
		t.Fatalf("spent/remaining = %d/%d", bp.Spent.Cents, bp.Remaining.Cents)
	}
	if bp.Progress != 100 || !bp.IsOverBudget {
		t.Fatalf("displayed progress should clamp to 100 with over-budget flag set, got %v/%v", bp.Progress, bp.IsOverBudget)
	}
	if bp.CategoryName != "Food" || bp.CategoryColor != "#ff0000" {
		t.Fatalf("category resolution wrong: %+v", bp)
	}

	if len(d.RecentTransactions) != 4 {
		t.Fatalf("recentTransactions len = %d", len(d.RecentTransactions))
	}
	if d.RecentTransactions[0].ID != "t2" {
		t.Fatalf("most recent should be t2, got %s", d.RecentTransactions[0].ID)
	}

	// Ranking: food=120000, ghost=4000; ghost's category is gone and degrades.
	if len(d.CategoryExpenseDetails) != 2 {
		t.Fatalf("categoryExpenseDetails len = %d", len(d.CategoryExpenseDetails))
	}
	ghost := d.CategoryExpenseDetails[1]
	if ghost.CategoryName != UnknownCategoryName || ghost.CategoryColor != UnknownCategoryColor {
		t.Fatalf("missing category should degrade, got %+v", ghost)
	}
}

func TestBuildDashboardEmptyMonth(t *testing.T) {
	p, _ := MonthPeriod("2024-01")
	d := BuildDashboard("2024-01", p, nil, nil, nil)
	if d.TotalIncome.Cents != 0 || d.TotalExpense.Cents != 0 || d.Balance.Cents != 0 {
		t.Fatalf("totals should be zero: %+v", d)
	}
	if d.BudgetProgress == nil || d.RecentTransactions == nil || d.CategoryExpenseDetails == nil {
		t.Fatalf("empty month must yield empty arrays, not nil")
	}
	if len(d.BudgetProgress)+len(d.RecentTransactions)+len(d.CategoryExpenseDetails) != 0 {
		t.Fatalf("expected all lists empty: %+v", d)
	}
}
