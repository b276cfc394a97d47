package core

import (
	"testing"
	"time"
)

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Food", Type: Expense, Color: "#ff0000"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{Name: "", Type: Expense, Color: "#fff"},
		{Name: "  ", Type: Expense, Color: "#fff"},
		{Name: "Food", Type: "other", Color: "#fff"},
		{Name: "Food", Type: Expense, Color: ""},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:     Money{Cents: 100},
		Type:       Expense,
		CategoryID: "cat",
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: 0}, Type: Expense, CategoryID: "c", Date: good.Date},
		{Amount: Money{Cents: 100}, Type: "transfer", CategoryID: "c", Date: good.Date},
		{Amount: Money{Cents: 100}, Type: Expense, CategoryID: "", Date: good.Date},
		{Amount: Money{Cents: 100}, Type: Expense, CategoryID: "c"}, // zero date
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{
		CategoryID: "cat",
		Amount:     Money{Cents: 100000},
		BudgetType: MonthlyBudget,
		Expense:    VariableExpense,
		Month:      "2024-06",
		Year:       2024,
		MonthNum:   6,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	yearly := Budget{CategoryID: "cat", Amount: Money{Cents: 1}, BudgetType: YearlyBudget, Expense: FixedExpense, Year: 2024}
	if err := yearly.Validate(); err != nil {
		t.Fatalf("yearly without month should be valid, got %v", err)
	}

	bads := []Budget{
		{CategoryID: "cat", Amount: Money{Cents: 0}, BudgetType: MonthlyBudget, Expense: FixedExpense, Month: "2024-06"},
		{CategoryID: "cat", Amount: Money{Cents: 1}, BudgetType: "weekly", Expense: FixedExpense},
		{CategoryID: "cat", Amount: Money{Cents: 1}, BudgetType: MonthlyBudget, Expense: "luxury", Month: "2024-06"},
		{CategoryID: "", Amount: Money{Cents: 1}, BudgetType: YearlyBudget, Expense: FixedExpense},
		{CategoryID: "cat", Amount: Money{Cents: 1}, BudgetType: MonthlyBudget, Expense: FixedExpense, Month: ""},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetPeriodKey(t *testing.T) {
	monthly := Budget{BudgetType: MonthlyBudget, Month: "2024-06", Year: 2024}
	if got := monthly.PeriodKey(); got != "2024-06" {
		t.Fatalf("monthly key = %q", got)
	}
	yearly := Budget{BudgetType: YearlyBudget, Year: 2024}
	if got := yearly.PeriodKey(); got != "2024" {
		t.Fatalf("yearly key = %q", got)
	}
}
