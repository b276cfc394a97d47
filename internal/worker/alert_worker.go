package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kakeibo/internal/core"
	"kakeibo/internal/events"
)

// WarnThreshold is the spending percentage above which a budget is
// reported as nearly exhausted.
const WarnThreshold = 80.0

// Repository is the persistence surface the alert worker needs.
type Repository interface {
	GetCategory(ctx context.Context, id string) (core.Category, error)
	FindBudgetByPeriod(ctx context.Context, categoryID string, bt core.BudgetType, month string, year int) (core.Budget, error)
	ExpenseTotalsByCategory(ctx context.Context, p core.Period) (map[string]core.Money, error)
}

// Alert describes a budget that crossed the warning threshold after a
// transaction mutation.
type Alert struct {
	CategoryID   string
	CategoryName string
	BudgetType   core.BudgetType
	Period       string
	Budget       core.Money
	Spent        core.Money
	Percent      float64
	OverBudget   bool
}

// BudgetAlertWorker recomputes budget progress for the category touched by
// a transaction event and logs budgets running hot.
type BudgetAlertWorker struct {
	repo Repository
}

func NewBudgetAlertWorker(repo Repository) *BudgetAlertWorker {
	return &BudgetAlertWorker{repo: repo}
}

// HandleEvent processes a single transaction event from the queue.
func (w *BudgetAlertWorker) HandleEvent(ctx context.Context, event *events.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"transaction_id", event.TransactionID,
		"category_id", event.CategoryID,
		"month", event.Month,
		"action", event.Action)

	alerts, err := w.Evaluate(ctx, event.CategoryID, event.Month)
	if err != nil {
		return err
	}

	for _, a := range alerts {
		level := slog.LevelInfo
		msg := "Budget nearly exhausted"
		if a.OverBudget {
			level = slog.LevelWarn
			msg = "Budget exceeded"
		}
		slog.Log(ctx, level, msg,
			"category_id", a.CategoryID,
			"category", a.CategoryName,
			"budget_type", string(a.BudgetType),
			"period", a.Period,
			"budget", a.Budget.DecimalString(),
			"spent", a.Spent.DecimalString(),
			"percent", a.Percent)
	}
	return nil
}

// Evaluate checks the category's monthly budget for the event month and its
// yearly budget for the containing year. Categories or budgets that no
// longer exist are skipped, not errors: deletes race with queued events.
func (w *BudgetAlertWorker) Evaluate(ctx context.Context, categoryID, month string) ([]Alert, error) {
	cat, err := w.repo.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	year, _, err := core.SplitMonthToken(month)
	if err != nil {
		return nil, err
	}

	var alerts []Alert

	monthly, err := w.checkBudget(ctx, cat, core.MonthlyBudget, month, year)
	if err != nil {
		return nil, err
	}
	if monthly != nil {
		alerts = append(alerts, *monthly)
	}

	yearly, err := w.checkBudget(ctx, cat, core.YearlyBudget, "", year)
	if err != nil {
		return nil, err
	}
	if yearly != nil {
		alerts = append(alerts, *yearly)
	}

	return alerts, nil
}

func (w *BudgetAlertWorker) checkBudget(ctx context.Context, cat core.Category, bt core.BudgetType, month string, year int) (*Alert, error) {
	b, err := w.repo.FindBudgetByPeriod(ctx, cat.ID, bt, month, year)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s budget: %w", bt, err)
	}

	var p core.Period
	if bt == core.MonthlyBudget {
		if p, err = core.MonthPeriod(month); err != nil {
			return nil, err
		}
	} else {
		p = core.YearPeriod(year)
	}

	totals, err := w.repo.ExpenseTotalsByCategory(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("total spending: %w", err)
	}

	spent := totals[cat.ID]
	prog := core.ComputeProgress(b.Amount, spent)
	if prog.Percent < WarnThreshold {
		return nil, nil
	}

	return &Alert{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		BudgetType:   bt,
		Period:       b.PeriodKey(),
		Budget:       b.Amount,
		Spent:        spent,
		Percent:      prog.Percent,
		OverBudget:   prog.OverBudget,
	}, nil
}
