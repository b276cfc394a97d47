package core

import "sort"

// Fallback identity for transactions whose category vanished mid-query
// (e.g. deleted concurrently). The aggregation degrades instead of failing.
const (
	UnknownCategoryName  = "unknown"
	UnknownCategoryColor = "#000000"
)

// RecentTransactionLimit and TopCategoryLimit bound the dashboard lists.
const (
	RecentTransactionLimit = 5
	TopCategoryLimit       = 5
)

type (
	// TransactionWithCategory is a transaction joined with its category's
	// compact shape for API responses.
	TransactionWithCategory struct {
		Transaction
		Category CategoryRef `json:"category"`
	}

	// BudgetWithCategory is a budget joined with its category.
	BudgetWithCategory struct {
		Budget
		Category CategoryRef `json:"category"`
	}

	// BudgetWithProgress is the budget listing row: the stored budget plus
	// its category and the raw, unclamped progress over the listing period.
	BudgetWithProgress struct {
		Budget
		Category CategoryRef `json:"category"`
		Spent    Money       `json:"spent"`
		Progress float64     `json:"progress"`
	}

	// BudgetProgressRow is the dashboard's per-budget line. Progress here is
	// clamped for the progress bar; IsOverBudget is derived from the raw
	// percentage before clamping.
	BudgetProgressRow struct {
		CategoryID    string  `json:"categoryId"`
		CategoryName  string  `json:"categoryName"`
		CategoryColor string  `json:"categoryColor"`
		Budget        Money   `json:"budget"`
		Spent         Money   `json:"spent"`
		Remaining     Money   `json:"remaining"`
		Progress      float64 `json:"progress"`
		IsOverBudget  bool    `json:"isOverBudget"`
	}

	// CategoryExpense is one row of the top-spending-categories ranking.
	CategoryExpense struct {
		CategoryID    string `json:"categoryId"`
		CategoryName  string `json:"categoryName"`
		CategoryColor string `json:"categoryColor"`
		Amount        Money  `json:"amount"`
	}

	// Dashboard is the aggregated month view.
	Dashboard struct {
		Month                  string                    `json:"month"`
		TotalIncome            Money                     `json:"totalIncome"`
		TotalExpense           Money                     `json:"totalExpense"`
		Balance                Money                     `json:"balance"`
		BudgetProgress         []BudgetProgressRow       `json:"budgetProgress"`
		RecentTransactions     []TransactionWithCategory `json:"recentTransactions"`
		CategoryExpenseDetails []CategoryExpense         `json:"categoryExpenseDetails"`
	}
)

// SumByType totals the amounts of all transactions of the given type.
func SumByType(txs []Transaction, typ EntryType) Money {
	var cents int64
	for _, t := range txs {
		if t.Type == typ {
			cents += t.Amount.Cents
		}
	}
	return Money{Cents: cents}
}

// RecentTransactions returns up to n transactions ordered by date descending,
// id ascending on equal dates so the ordering is deterministic.
func RecentTransactions(txs []Transaction, n int) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// CategoryAmount pairs a category id with an aggregated amount.
type CategoryAmount struct {
	CategoryID string
	Amount     Money
}

// TopExpenseCategories ranks categories by summed expense amount, descending,
// with category id ascending as the tie-break, and returns at most n rows.
func TopExpenseCategories(txs []Transaction, n int) []CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Type == Expense {
			sums[t.CategoryID] += t.Amount.Cents
		}
	}
	ranked := make([]CategoryAmount, 0, len(sums))
	for id, cents := range sums {
		ranked = append(ranked, CategoryAmount{CategoryID: id, Amount: Money{Cents: cents}})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount.Cents != ranked[j].Amount.Cents {
			return ranked[i].Amount.Cents > ranked[j].Amount.Cents
		}
		return ranked[i].CategoryID < ranked[j].CategoryID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BuildDashboard assembles the month view from one fetch of the period's
// transactions, the month's budgets, and a category lookup. Budget spending
// is computed by filtering the already-fetched transactions rather than
// issuing one aggregate query per budget.
func BuildDashboard(month string, p Period, txs []Transaction, budgets []Budget, cats map[string]CategoryRef) Dashboard {
	d := Dashboard{
		Month:                  month,
		TotalIncome:            SumByType(txs, Income),
		TotalExpense:           SumByType(txs, Expense),
		BudgetProgress:         make([]BudgetProgressRow, 0, len(budgets)),
		RecentTransactions:     make([]TransactionWithCategory, 0, RecentTransactionLimit),
		CategoryExpenseDetails: make([]CategoryExpense, 0, TopCategoryLimit),
	}
	d.Balance = Money{Cents: d.TotalIncome.Cents - d.TotalExpense.Cents}

	for _, b := range budgets {
		spent := SpentInPeriod(txs, b.CategoryID, p)
		prog := ComputeProgress(b.Amount, spent)
		ref := lookupCategory(cats, b.CategoryID)
		d.BudgetProgress = append(d.BudgetProgress, BudgetProgressRow{
			CategoryID:    b.CategoryID,
			CategoryName:  ref.Name,
			CategoryColor: ref.Color,
			Budget:        b.Amount,
			Spent:         prog.Spent,
			Remaining:     prog.Remaining,
			Progress:      DisplayPercent(prog.Percent),
			IsOverBudget:  prog.OverBudget,
		})
	}

	for _, t := range RecentTransactions(txs, RecentTransactionLimit) {
		d.RecentTransactions = append(d.RecentTransactions, TransactionWithCategory{
			Transaction: t,
			Category:    lookupCategory(cats, t.CategoryID),
		})
	}

	for _, ca := range TopExpenseCategories(txs, TopCategoryLimit) {
		ref := lookupCategory(cats, ca.CategoryID)
		d.CategoryExpenseDetails = append(d.CategoryExpenseDetails, CategoryExpense{
			CategoryID:    ca.CategoryID,
			CategoryName:  ref.Name,
			CategoryColor: ref.Color,
			Amount:        ca.Amount,
		})
	}

	return d
}

func lookupCategory(cats map[string]CategoryRef, id string) CategoryRef {
	if ref, ok := cats[id]; ok {
		return ref
	}
	return CategoryRef{ID: id, Name: UnknownCategoryName, Color: UnknownCategoryColor}
}
