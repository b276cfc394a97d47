package core

// Progress is the derived state of one budget over one period. Percent is the
// raw, unclamped percentage; clamping for progress bars is a presentation
// concern applied via DisplayPercent, never baked into this value.
type Progress struct {
	Spent      Money
	Remaining  Money
	Percent    float64
	OverBudget bool
}

// ComputeProgress derives spent/remaining/percentage state for a budget
// amount. A zero budget amount yields exactly 0%, never NaN or Inf.
func ComputeProgress(amount, spent Money) Progress {
	var percent float64
	if amount.Cents > 0 {
		percent = float64(spent.Cents) / float64(amount.Cents) * 100
	}
	return Progress{
		Spent:      spent,
		Remaining:  Money{Cents: amount.Cents - spent.Cents},
		Percent:    percent,
		OverBudget: spent.Cents > amount.Cents,
	}
}

// DisplayPercent clamps a raw percentage to 100 for progress-bar rendering.
func DisplayPercent(percent float64) float64 {
	if percent > 100 {
		return 100
	}
	return percent
}

// SpentInPeriod sums the expense transactions of one category inside the
// period, boundaries inclusive. Income transactions never count against a
// budget.
func SpentInPeriod(txs []Transaction, categoryID string, p Period) Money {
	var cents int64
	for _, t := range txs {
		if t.Type != Expense || t.CategoryID != categoryID {
			continue
		}
		if p.Contains(t.Date) {
			cents += t.Amount.Cents
		}
	}
	return Money{Cents: cents}
}
