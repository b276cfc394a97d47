package worker

import (
	"context"
	"testing"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/events"
)

type stubRepo struct {
	categories map[string]core.Category
	budgets    []core.Budget
	spent      map[string]core.Money
}

func (r *stubRepo) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (r *stubRepo) FindBudgetByPeriod(ctx context.Context, categoryID string, bt core.BudgetType, month string, year int) (core.Budget, error) {
	for _, b := range r.budgets {
		if b.CategoryID != categoryID || b.BudgetType != bt {
			continue
		}
		if bt == core.MonthlyBudget && b.Month == month {
			return b, nil
		}
		if bt == core.YearlyBudget && b.Year == year {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (r *stubRepo) ExpenseTotalsByCategory(ctx context.Context, p core.Period) (map[string]core.Money, error) {
	return r.spent, nil
}

func groceries() core.Category {
	return core.Category{ID: "cat1", Name: "Groceries", Type: core.Expense, Color: "#ff6b6b", CreatedAt: time.Now()}
}

func TestEvaluateOverBudget(t *testing.T) {
	repo := &stubRepo{
		categories: map[string]core.Category{"cat1": groceries()},
		budgets: []core.Budget{{
			ID: "b1", CategoryID: "cat1", Amount: core.Money{Cents: 100000},
			BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
			Month: "2024-06", Year: 2024, MonthNum: 6,
		}},
		spent: map[string]core.Money{"cat1": {Cents: 120000}},
	}

	alerts, err := NewBudgetAlertWorker(repo).Evaluate(context.Background(), "cat1", "2024-06")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if !a.OverBudget || a.Percent != 120 {
		t.Fatalf("unexpected alert %+v", a)
	}
	if a.Period != "2024-06" {
		t.Fatalf("period = %q", a.Period)
	}
}

func TestEvaluateWarnThreshold(t *testing.T) {
	repo := &stubRepo{
		categories: map[string]core.Category{"cat1": groceries()},
		budgets: []core.Budget{{
			ID: "b1", CategoryID: "cat1", Amount: core.Money{Cents: 100000},
			BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
			Month: "2024-06", Year: 2024, MonthNum: 6,
		}},
		spent: map[string]core.Money{"cat1": {Cents: 85000}},
	}

	alerts, err := NewBudgetAlertWorker(repo).Evaluate(context.Background(), "cat1", "2024-06")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert at 85%%, got %d", len(alerts))
	}
	if alerts[0].OverBudget {
		t.Fatal("85% should not be over budget")
	}
}

func TestEvaluateQuietBudget(t *testing.T) {
	repo := &stubRepo{
		categories: map[string]core.Category{"cat1": groceries()},
		budgets: []core.Budget{{
			ID: "b1", CategoryID: "cat1", Amount: core.Money{Cents: 100000},
			BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
			Month: "2024-06", Year: 2024, MonthNum: 6,
		}},
		spent: map[string]core.Money{"cat1": {Cents: 20000}},
	}

	alerts, err := NewBudgetAlertWorker(repo).Evaluate(context.Background(), "cat1", "2024-06")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts at 20%%, got %d", len(alerts))
	}
}

func TestEvaluateYearlyBudgetToo(t *testing.T) {
	repo := &stubRepo{
		categories: map[string]core.Category{"cat1": groceries()},
		budgets: []core.Budget{
			{
				ID: "b1", CategoryID: "cat1", Amount: core.Money{Cents: 100000},
				BudgetType: core.MonthlyBudget, Expense: core.VariableExpense,
				Month: "2024-06", Year: 2024, MonthNum: 6,
			},
			{
				ID: "b2", CategoryID: "cat1", Amount: core.Money{Cents: 110000},
				BudgetType: core.YearlyBudget, Expense: core.VariableExpense,
				Year: 2024,
			},
		},
		spent: map[string]core.Money{"cat1": {Cents: 120000}},
	}

	alerts, err := NewBudgetAlertWorker(repo).Evaluate(context.Background(), "cat1", "2024-06")
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected monthly and yearly alerts, got %d", len(alerts))
	}
	if alerts[1].BudgetType != core.YearlyBudget || alerts[1].Period != "2024" {
		t.Fatalf("unexpected yearly alert %+v", alerts[1])
	}
}

func TestHandleEventMissingCategory(t *testing.T) {
	repo := &stubRepo{categories: map[string]core.Category{}}
	w := NewBudgetAlertWorker(repo)

	e := events.NewTransactionEvent("tx1", "ghost", "2024-06", events.ActionDeleted)
	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("expected vanished category to be skipped, got %v", err)
	}
}
