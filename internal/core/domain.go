package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"

	MonthlyBudget BudgetType = "monthly"
	YearlyBudget  BudgetType = "yearly"

	FixedExpense    ExpenseType = "fixed"
	VariableExpense ExpenseType = "variable"
)

type (
	// EntryType classifies categories and transactions as income or expense.
	EntryType string

	// BudgetType is the cadence of a budget cap.
	BudgetType string

	// ExpenseType tags a budget as a fixed or variable cost.
	ExpenseType string

	Money struct {
		Cents int64
	}

	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Type      EntryType `json:"type"`
		Color     string    `json:"color"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// CategoryRef is the compact category shape embedded in joined responses.
	CategoryRef struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	Transaction struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Type        EntryType `json:"type"`
		CategoryID  string    `json:"categoryId"`
		Description string    `json:"description,omitempty"`
		Date        time.Time `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	Budget struct {
		ID         string      `json:"id"`
		CategoryID string      `json:"categoryId"`
		Amount     Money       `json:"amount"`
		BudgetType BudgetType  `json:"budgetType"`
		Expense    ExpenseType `json:"expenseType"`
		// Month is the "YYYY-MM" token, present only for monthly budgets.
		Month     string    `json:"month,omitempty"`
		Year      int       `json:"year"`
		MonthNum  int       `json:"monthNum,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrInvalidPeriod = errors.New("invalid period")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid type")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 100 characters)")
	ErrEmptyColor    = errors.New("empty color")
	ErrEmptyCategory = errors.New("empty category")
	ErrZeroDate      = errors.New("date cannot be zero")
	ErrNoteTooLong   = errors.New("description too long (max 200 characters)")
	ErrMonthRequired = errors.New("monthly budget requires a month")
	ErrTypeMismatch  = errors.New("transaction type does not match category type")
)

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

func (t BudgetType) Valid() bool {
	return t == MonthlyBudget || t == YearlyBudget
}

func (t ExpenseType) Valid() bool {
	return t == FixedExpense || t == VariableExpense
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrNameTooLong
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrNoteTooLong
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.BudgetType.Valid() {
		return ErrInvalidType
	}
	if !b.Expense.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if b.BudgetType == MonthlyBudget && strings.TrimSpace(b.Month) == "" {
		return ErrMonthRequired
	}
	return nil
}

// PeriodKey returns the value identifying the budget's period: the month
// token for monthly budgets, the year for yearly ones. Empty-string and
// absent month are treated the same.
func (b Budget) PeriodKey() string {
	if b.BudgetType == MonthlyBudget {
		return b.Month
	}
	return strconv.Itoa(b.Year)
}
