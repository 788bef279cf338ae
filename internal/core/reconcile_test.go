package core

import (
	"math/rand"
	"testing"
)

func testCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food", Limit: 2000, Icon: "ShoppingBasket"},
		{ID: "fun", Name: "Fun", Limit: 500, Icon: "Film"},
		{ID: SavingsCategoryID, Name: "Savings", Limit: 0, Icon: "PiggyBank"},
	}
}

func TestSummarizeRefundOffsetsSpending(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: 120, CategoryID: "food", Date: "2025-11-03", CreatedBy: Artur},
		{ID: "2", Amount: -50, CategoryID: "food", Date: "2025-11-10", CreatedBy: Marlena},
	}
	sum := Summarize(testCategories(), txs, "2025-11")

	if sum.TotalSpent != 70 {
		t.Fatalf("TotalSpent = %d, want 70", sum.TotalSpent)
	}
	var food CategoryStats
	for _, cs := range sum.Categories {
		if cs.Category.ID == "food" {
			food = cs
		}
	}
	if food.Spent != 70 {
		t.Fatalf("food spent = %d, want 70", food.Spent)
	}
	if food.Remaining != 2000-70 {
		t.Fatalf("food remaining = %d, want %d", food.Remaining, 2000-70)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: 120, CategoryID: "food", Date: "2025-11-03", CreatedBy: Artur},
		{ID: "2", Amount: -50, CategoryID: "food", Date: "2025-11-10", CreatedBy: Marlena},
		{ID: "3", Amount: 75, CategoryID: "fun", Date: "2025-11-12", CreatedBy: Artur},
		{ID: "4", Amount: 9999, CategoryID: "fun", Date: "2025-10-12", CreatedBy: Artur}, // other month
	}
	want := Summarize(testCategories(), txs, "2025-11")

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]Transaction, len(txs))
		copy(shuffled, txs)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Summarize(testCategories(), shuffled, "2025-11")
		if got.TotalSpent != want.TotalSpent || got.TotalBudget != want.TotalBudget {
			t.Fatalf("totals depend on order: got %+v want %+v", got, want)
		}
	}
	if want.TotalSpent != 145 {
		t.Fatalf("TotalSpent = %d, want 145", want.TotalSpent)
	}
}

func TestSummarizeZeroBudgetGuard(t *testing.T) {
	cats := []Category{
		{ID: "a", Name: "A", Limit: 0},
		{ID: SavingsCategoryID, Name: "Savings", Limit: 0},
	}
	txs := []Transaction{{ID: "1", Amount: 100, CategoryID: "a", Date: "2025-11-01", CreatedBy: Artur}}
	sum := Summarize(cats, txs, "2025-11")
	if sum.PercentUsed != 0 {
		t.Fatalf("PercentUsed = %v, want 0 for zero budget", sum.PercentUsed)
	}
	if sum.Categories[0].Percent != 0 {
		t.Fatalf("category percent = %v, want 0 for zero limit", sum.Categories[0].Percent)
	}
}

func TestSummarizeSortsSavingsLastThenPercentDesc(t *testing.T) {
	cats := []Category{
		{ID: SavingsCategoryID, Name: "Savings", Limit: 1000},
		{ID: "low", Name: "Low", Limit: 1000},
		{ID: "high", Name: "High", Limit: 100},
	}
	txs := []Transaction{
		{ID: "1", Amount: 90, CategoryID: "high", Date: "2025-11-01", CreatedBy: Artur},
		{ID: "2", Amount: 100, CategoryID: "low", Date: "2025-11-01", CreatedBy: Artur},
		{ID: "3", Amount: 900, CategoryID: SavingsCategoryID, Date: "2025-11-01", CreatedBy: Artur},
	}
	sum := Summarize(cats, txs, "2025-11")

	gotOrder := []string{}
	for _, cs := range sum.Categories {
		gotOrder = append(gotOrder, cs.Category.ID)
	}
	want := []string{"high", "low", SavingsCategoryID}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotOrder, want)
		}
	}
}

func TestReconcileMoveRemainderToSavings(t *testing.T) {
	// income=5000, Food 2000 + Fun 500, Savings 0:
	// expensesSum=2500, unassigned=2500, potential=2500.
	cats := testCategories()
	plan := Reconcile(cats, 5000, "2025-11")
	if plan.ExpensesSum != 2500 {
		t.Fatalf("ExpensesSum = %d, want 2500", plan.ExpensesSum)
	}
	if plan.Unassigned != 2500 || plan.Status != PlanUnderallocated {
		t.Fatalf("Unassigned = %d (%s), want 2500 underallocated", plan.Unassigned, plan.Status)
	}
	if plan.PotentialSavings != 2500 {
		t.Fatalf("PotentialSavings = %d, want 2500", plan.PotentialSavings)
	}

	// Applying the suggestion balances the plan exactly.
	for i := range cats {
		if cats[i].ID == SavingsCategoryID {
			cats[i].Limit = plan.PotentialSavings
		}
	}
	plan = Reconcile(cats, 5000, "2025-11")
	if plan.Unassigned != 0 || plan.Status != PlanBalanced {
		t.Fatalf("after suggestion: Unassigned = %d (%s), want 0 balanced", plan.Unassigned, plan.Status)
	}
}

func TestReconcileOverallocated(t *testing.T) {
	cats := []Category{
		{ID: "a", Name: "A", Limit: 4000},
		{ID: SavingsCategoryID, Name: "Savings", Limit: 2000},
	}
	plan := Reconcile(cats, 5000, "2025-11")
	if plan.Unassigned != -1000 || plan.Status != PlanOverallocated {
		t.Fatalf("Unassigned = %d (%s), want -1000 overallocated", plan.Unassigned, plan.Status)
	}
}

func TestReconcilePotentialSavingsFloorsAtZero(t *testing.T) {
	cats := []Category{
		{ID: "a", Name: "A", Limit: 6000},
		{ID: SavingsCategoryID, Name: "Savings", Limit: 0},
	}
	plan := Reconcile(cats, 5000, "2025-11")
	if plan.PotentialSavings != 0 {
		t.Fatalf("PotentialSavings = %d, want 0", plan.PotentialSavings)
	}

	// With the floored suggestion applied, unassigned stays income-expensesSum.
	plan = Reconcile(cats, 5000, "2025-11")
	if plan.Unassigned != -1000 {
		t.Fatalf("Unassigned = %d, want -1000", plan.Unassigned)
	}
}

func TestReconcileZeroIncome(t *testing.T) {
	plan := Reconcile(testCategories(), 0, "2025-11")
	if plan.Unassigned != -2500 || plan.Status != PlanOverallocated {
		t.Fatalf("Unassigned = %d (%s), want -2500 overallocated", plan.Unassigned, plan.Status)
	}
	if plan.PotentialSavings != 0 {
		t.Fatalf("PotentialSavings = %d, want 0", plan.PotentialSavings)
	}
}

func TestReview(t *testing.T) {
	txs := []Transaction{
		{ID: "1", Amount: 3000, CategoryID: "food", Date: "2025-11-01", CreatedBy: Artur},
		{ID: "2", Amount: 1000, CategoryID: "fun", Date: "2025-11-02", CreatedBy: Marlena},
	}
	rev := Review(txs, 5000, "2025-11")
	if rev.TotalSpent != 4000 {
		t.Fatalf("TotalSpent = %d, want 4000", rev.TotalSpent)
	}
	if rev.SavingsAmount != 1000 {
		t.Fatalf("SavingsAmount = %d, want 1000", rev.SavingsAmount)
	}
	if rev.ExpensesPercent != 0.8 || rev.SavingsPercent != 0.2 {
		t.Fatalf("percents = %v/%v, want 0.8/0.2", rev.ExpensesPercent, rev.SavingsPercent)
	}

	// Overspending floors savings at zero; zero income guards the divide.
	rev = Review(txs, 3500, "2025-11")
	if rev.SavingsAmount != 0 {
		t.Fatalf("SavingsAmount = %d, want 0", rev.SavingsAmount)
	}
	rev = Review(txs, 0, "2025-11")
	if rev.ExpensesPercent != 0 || rev.SavingsPercent != 0 {
		t.Fatalf("zero income percents = %v/%v, want 0/0", rev.ExpensesPercent, rev.SavingsPercent)
	}
}
