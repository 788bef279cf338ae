package core

import "sort"

const (
	PlanBalanced       PlanStatus = "balanced"
	PlanUnderallocated PlanStatus = "underallocated"
	PlanOverallocated  PlanStatus = "overallocated"
)

type (
	// PlanStatus is the three-way sign of the unassigned balance.
	PlanStatus string

	// CategoryStats is the per-category view for one month.
	CategoryStats struct {
		Category  Category
		Spent     int64
		Remaining int64
		Percent   float64
		IsSavings bool
	}

	// MonthSummary is the dashboard view for one month.
	MonthSummary struct {
		MonthID     string
		TotalBudget int64
		TotalSpent  int64
		Remaining   int64
		PercentUsed float64
		Categories  []CategoryStats
	}

	// PlanSummary reconciles declared income against category limits
	// while the budget is being edited.
	PlanSummary struct {
		MonthID          string
		Income           int64
		ExpensesSum      int64
		SavingsLimit     int64
		TotalAllocated   int64
		Unassigned       int64
		PotentialSavings int64
		Status           PlanStatus
	}

	// MonthReview summarizes how much of the income survived the month.
	MonthReview struct {
		MonthID         string
		TotalIncome     int64
		TotalSpent      int64
		SavingsAmount   int64
		ExpensesPercent float64
		SavingsPercent  float64
	}
)

// monthTransactions filters by date-prefix month match. Order is irrelevant:
// every aggregate below is a plain sum.
func monthTransactions(transactions []Transaction, monthID string) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.InMonth(monthID) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize computes the dashboard view: per-category spent/remaining plus
// household totals. Savings is included in TotalBudget and TotalSpent;
// refunds are negative amounts and offset spending arithmetically.
func Summarize(categories []Category, transactions []Transaction, monthID string) MonthSummary {
	current := monthTransactions(transactions, monthID)

	spentByCategory := make(map[string]int64, len(categories))
	var totalSpent int64
	for _, t := range current {
		spentByCategory[t.CategoryID] += t.Amount
		totalSpent += t.Amount
	}

	var totalBudget int64
	stats := make([]CategoryStats, 0, len(categories))
	for _, c := range categories {
		totalBudget += c.Limit
		spent := spentByCategory[c.ID]
		percent := 0.0
		if c.Limit > 0 {
			percent = float64(spent) / float64(c.Limit)
		}
		stats = append(stats, CategoryStats{
			Category:  c,
			Spent:     spent,
			Remaining: c.Limit - spent,
			Percent:   percent,
			IsSavings: c.ID == SavingsCategoryID,
		})
	}

	// Savings pinned last, everything else most-used-up first.
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].IsSavings != stats[j].IsSavings {
			return !stats[i].IsSavings
		}
		return stats[i].Percent > stats[j].Percent
	})

	percentUsed := 0.0
	if totalBudget > 0 {
		percentUsed = float64(totalSpent) / float64(totalBudget)
	}

	return MonthSummary{
		MonthID:     monthID,
		TotalBudget: totalBudget,
		TotalSpent:  totalSpent,
		Remaining:   totalBudget - totalSpent,
		PercentUsed: percentUsed,
		Categories:  stats,
	}
}

// Reconcile computes the zero-based planning view for the given limits.
// Unassigned == 0 is the desired terminal state; a negative value means the
// plan over-allocates income and must not be committed.
func Reconcile(categories []Category, income int64, monthID string) PlanSummary {
	var expensesSum, savingsLimit int64
	for _, c := range categories {
		if c.ID == SavingsCategoryID {
			savingsLimit = c.Limit
			continue
		}
		expensesSum += c.Limit
	}

	totalAllocated := expensesSum + savingsLimit
	unassigned := income - totalAllocated

	status := PlanBalanced
	switch {
	case unassigned > 0:
		status = PlanUnderallocated
	case unassigned < 0:
		status = PlanOverallocated
	}

	potential := income - expensesSum
	if potential < 0 {
		potential = 0
	}

	return PlanSummary{
		MonthID:          monthID,
		Income:           income,
		ExpensesSum:      expensesSum,
		SavingsLimit:     savingsLimit,
		TotalAllocated:   totalAllocated,
		Unassigned:       unassigned,
		PotentialSavings: potential,
		Status:           status,
	}
}

// Review computes the month-review statistics: total spent against income
// and the share of income that was kept.
func Review(transactions []Transaction, income int64, monthID string) MonthReview {
	var totalSpent int64
	for _, t := range monthTransactions(transactions, monthID) {
		totalSpent += t.Amount
	}

	saved := income - totalSpent
	if saved < 0 {
		saved = 0
	}

	expensesPercent, savingsPercent := 0.0, 0.0
	if income > 0 {
		expensesPercent = float64(totalSpent) / float64(income)
		savingsPercent = float64(saved) / float64(income)
	}

	return MonthReview{
		MonthID:         monthID,
		TotalIncome:     income,
		TotalSpent:      totalSpent,
		SavingsAmount:   saved,
		ExpensesPercent: expensesPercent,
		SavingsPercent:  savingsPercent,
	}
}
