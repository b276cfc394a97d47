package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/cache"
	"kakeibo/internal/core"
	"kakeibo/internal/events"
)

// Repository is the persistence surface the tracker needs.
type Repository interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	GetCategoryByName(ctx context.Context, name string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListTransactionsBetween(ctx context.Context, p core.Period) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ExpenseTotalsByCategory(ctx context.Context, p core.Period) (map[string]core.Money, error)

	ListBudgets(ctx context.Context, bt core.BudgetType, month string, year int) ([]core.Budget, error)
	ListMonthlyBudgets(ctx context.Context, month string) ([]core.Budget, error)
	FindBudgetByPeriod(ctx context.Context, categoryID string, bt core.BudgetType, month string, year int) (core.Budget, error)
	GetBudget(ctx context.Context, id string) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id string) error
}

// Publisher emits transaction mutation events. A nil publisher disables
// publishing without changing request semantics.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, event *events.TransactionEvent) error
}

// Tracker orchestrates category, transaction and budget operations over
// the repository, the dashboard cache and the event bus.
type Tracker struct {
	repo       Repository
	publisher  Publisher
	dashboards cache.Cache[core.Dashboard]
}

func NewTracker(repo Repository, publisher Publisher, dashboards cache.Cache[core.Dashboard]) *Tracker {
	return &Tracker{
		repo:       repo,
		publisher:  publisher,
		dashboards: dashboards,
	}
}

// ListCategories returns all categories, income before expense, names ascending.
func (s *Tracker) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory validates and stores a new category. Names are unique
// across both types.
func (s *Tracker) CreateCategory(ctx context.Context, name string, typ core.EntryType, color string) (core.Category, error) {
	c := core.Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Type:      typ,
		Color:     strings.TrimSpace(color),
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if _, err := s.repo.GetCategoryByName(ctx, c.Name); err == nil {
		return core.Category{}, core.ErrConflict
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category. Its transactions and budgets go with
// it, which can touch any month, so the whole dashboard cache is dropped.
func (s *Tracker) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.dashboards.Clear()
	return nil
}

// ListTransactions returns the month's transactions joined with their
// categories, newest first.
func (s *Tracker) ListTransactions(ctx context.Context, month string) ([]core.TransactionWithCategory, error) {
	p, err := core.MonthPeriod(month)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactionsBetween(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	cats, err := s.categoryRefs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.TransactionWithCategory, 0, len(txs))
	for _, t := range txs {
		ref, ok := cats[t.CategoryID]
		if !ok {
			ref = core.CategoryRef{ID: t.CategoryID, Name: core.UnknownCategoryName, Color: core.UnknownCategoryColor}
		}
		out = append(out, core.TransactionWithCategory{Transaction: t, Category: ref})
	}
	return out, nil
}

// CreateTransaction validates and stores a transaction. The transaction
// type must match its category's type.
func (s *Tracker) CreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error) {
	t.ID = uuid.NewString()
	t.Date = t.Date.UTC()
	t.CreatedAt = time.Now().UTC()
	if err := t.Validate(); err != nil {
		return core.TransactionWithCategory{}, err
	}

	cat, err := s.repo.GetCategory(ctx, t.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.TransactionWithCategory{}, core.ErrNotFound
		}
		return core.TransactionWithCategory{}, fmt.Errorf("resolve category: %w", err)
	}
	if t.Type != cat.Type {
		return core.TransactionWithCategory{}, core.ErrTypeMismatch
	}

	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("create transaction: %w", err)
	}

	month := core.MonthToken(t.Date)
	s.dashboards.Delete(month)
	s.publishEvent(ctx, events.NewTransactionEvent(t.ID, t.CategoryID, month, events.ActionCreated))

	return core.TransactionWithCategory{
		Transaction: t,
		Category:    core.CategoryRef{ID: cat.ID, Name: cat.Name, Color: cat.Color},
	}, nil
}

// DeleteTransaction removes a transaction and invalidates its month.
func (s *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	month := core.MonthToken(t.Date)
	s.dashboards.Delete(month)
	s.publishEvent(ctx, events.NewTransactionEvent(t.ID, t.CategoryID, month, events.ActionDeleted))
	return nil
}

// ListBudgets returns budgets of one cadence for one period, each with its
// category and raw spending progress. For monthly budgets the period is a
// "YYYY-MM" token, for yearly ones a year.
func (s *Tracker) ListBudgets(ctx context.Context, bt core.BudgetType, period string) ([]core.BudgetWithProgress, error) {
	if !bt.Valid() {
		return nil, core.ErrInvalidType
	}

	var (
		month string
		year  int
		p     core.Period
	)
	switch bt {
	case core.MonthlyBudget:
		var err error
		if p, err = core.MonthPeriod(period); err != nil {
			return nil, err
		}
		month = period
		year, _, _ = core.SplitMonthToken(period)
	case core.YearlyBudget:
		y, err := strconv.Atoi(period)
		if err != nil || y < 1 {
			return nil, core.ErrInvalidPeriod
		}
		year = y
		p = core.YearPeriod(y)
	}

	budgets, err := s.repo.ListBudgets(ctx, bt, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	totals, err := s.repo.ExpenseTotalsByCategory(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("total spending: %w", err)
	}
	cats, err := s.categoryRefs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.BudgetWithProgress, 0, len(budgets))
	for _, b := range budgets {
		ref, ok := cats[b.CategoryID]
		if !ok {
			ref = core.CategoryRef{ID: b.CategoryID, Name: core.UnknownCategoryName, Color: core.UnknownCategoryColor}
		}
		spent := totals[b.CategoryID]
		prog := core.ComputeProgress(b.Amount, spent)
		out = append(out, core.BudgetWithProgress{
			Budget:   b,
			Category: ref,
			Spent:    spent,
			Progress: prog.Percent,
		})
	}
	return out, nil
}

// CreateBudget validates and stores a budget cap. At most one budget may
// exist per category, cadence and period.
func (s *Tracker) CreateBudget(ctx context.Context, b core.Budget) (core.BudgetWithCategory, error) {
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.Month = strings.TrimSpace(b.Month)

	switch b.BudgetType {
	case core.MonthlyBudget:
		year, monthNum, err := core.SplitMonthToken(b.Month)
		if err != nil {
			return core.BudgetWithCategory{}, err
		}
		b.Year = year
		b.MonthNum = monthNum
	case core.YearlyBudget:
		if b.Year < 1 {
			return core.BudgetWithCategory{}, core.ErrInvalidPeriod
		}
		b.Month = ""
		b.MonthNum = 0
	}
	if err := b.Validate(); err != nil {
		return core.BudgetWithCategory{}, err
	}

	cat, err := s.repo.GetCategory(ctx, b.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.BudgetWithCategory{}, core.ErrNotFound
		}
		return core.BudgetWithCategory{}, fmt.Errorf("resolve category: %w", err)
	}

	if _, err := s.repo.FindBudgetByPeriod(ctx, b.CategoryID, b.BudgetType, b.Month, b.Year); err == nil {
		return core.BudgetWithCategory{}, core.ErrConflict
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.BudgetWithCategory{}, fmt.Errorf("check budget period: %w", err)
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return core.BudgetWithCategory{}, fmt.Errorf("create budget: %w", err)
	}

	if b.BudgetType == core.MonthlyBudget {
		s.dashboards.Delete(b.Month)
	}
	return core.BudgetWithCategory{
		Budget:   b,
		Category: core.CategoryRef{ID: cat.ID, Name: cat.Name, Color: cat.Color},
	}, nil
}

// DeleteBudget removes a budget cap.
func (s *Tracker) DeleteBudget(ctx context.Context, id string) error {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBudget(ctx, id); err != nil {
		return err
	}
	if b.BudgetType == core.MonthlyBudget {
		s.dashboards.Delete(b.Month)
	}
	return nil
}

// Dashboard assembles the month's aggregate view, served from cache when
// the month has not changed since the last computation.
func (s *Tracker) Dashboard(ctx context.Context, month string) (core.Dashboard, error) {
	p, err := core.MonthPeriod(month)
	if err != nil {
		return core.Dashboard{}, err
	}

	if d, ok := s.dashboards.Get(month); ok {
		return d, nil
	}

	txs, err := s.repo.ListTransactionsBetween(ctx, p)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := s.repo.ListMonthlyBudgets(ctx, month)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("list budgets: %w", err)
	}
	cats, err := s.categoryRefs(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}

	d := core.BuildDashboard(month, p, txs, budgets, cats)
	s.dashboards.Set(month, d)
	return d, nil
}

func (s *Tracker) categoryRefs(ctx context.Context) (map[string]core.CategoryRef, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	refs := make(map[string]core.CategoryRef, len(cats))
	for _, c := range cats {
		refs[c.ID] = core.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	return refs, nil
}

func (s *Tracker) publishEvent(ctx context.Context, event *events.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", event.TransactionID, "action", event.Action, "error", err)
		// Don't fail the request, the write already succeeded
	}
}
