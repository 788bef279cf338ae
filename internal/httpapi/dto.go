package httpapi

import (
	"spokoj/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

type readyResponse struct {
	Status     string `json:"status"`
	SyncOnline bool   `json:"syncOnline"`
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Limit int64  `json:"limit"`
	Icon  string `json:"icon"`
}

type updateCategoryRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

type updateLimitRequest struct {
	Limit int64 `json:"limit"`
}

type updateLimitsRequest struct {
	Limits map[string]int64 `json:"limits"`
}

type commitPlanRequest struct {
	Income int64            `json:"income"`
	Limits map[string]int64 `json:"limits"`
}

type createTransactionRequest struct {
	Amount     int64       `json:"amount"`
	CategoryID string      `json:"categoryId"`
	Date       string      `json:"date"`
	Note       string      `json:"note"`
	CreatedBy  core.Member `json:"createdBy"`
}

type updateTransactionRequest struct {
	Amount     *int64       `json:"amount"`
	CategoryID *string      `json:"categoryId"`
	Date       *string      `json:"date"`
	Note       *string      `json:"note"`
	CreatedBy  *core.Member `json:"createdBy"`
}

// importItem is one row of a bank-statement import. CategoryID may be empty;
// the merchant text is then matched against the learned mappings.
type importItem struct {
	MerchantText string      `json:"merchantText"`
	Amount       int64       `json:"amount"`
	Date         string      `json:"date"`
	Note         string      `json:"note"`
	CreatedBy    core.Member `json:"createdBy"`
	CategoryID   string      `json:"categoryId"`
}

type importRequest struct {
	Items []importItem `json:"items"`
}

type importResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Matched      int                `json:"matched"`
}

type matchResponse struct {
	CategoryID string `json:"categoryId"`
	Matched    bool   `json:"matched"`
}

type categoryStatsResponse struct {
	Category  core.Category `json:"category"`
	Spent     int64         `json:"spent"`
	Remaining int64         `json:"remaining"`
	Percent   float64       `json:"percent"`
	IsSavings bool          `json:"isSavings"`
}

type dashboardResponse struct {
	MonthID     string                  `json:"monthId"`
	TotalBudget int64                   `json:"totalBudget"`
	TotalSpent  int64                   `json:"totalSpent"`
	Remaining   int64                   `json:"remaining"`
	PercentUsed float64                 `json:"percentUsed"`
	Categories  []categoryStatsResponse `json:"categories"`
}

type planResponse struct {
	MonthID          string          `json:"monthId"`
	Income           int64           `json:"income"`
	ExpensesSum      int64           `json:"expensesSum"`
	SavingsLimit     int64           `json:"savingsLimit"`
	TotalAllocated   int64           `json:"totalAllocated"`
	Unassigned       int64           `json:"unassigned"`
	PotentialSavings int64           `json:"potentialSavings"`
	Status           core.PlanStatus `json:"status"`
}

type statisticsResponse struct {
	MonthID         string  `json:"monthId"`
	TotalIncome     int64   `json:"totalIncome"`
	TotalSpent      int64   `json:"totalSpent"`
	SavingsAmount   int64   `json:"savingsAmount"`
	ExpensesPercent float64 `json:"expensesPercent"`
	SavingsPercent  float64 `json:"savingsPercent"`
}

func toDashboardResponse(sum core.MonthSummary) dashboardResponse {
	stats := make([]categoryStatsResponse, 0, len(sum.Categories))
	for _, cs := range sum.Categories {
		stats = append(stats, categoryStatsResponse{
			Category:  cs.Category,
			Spent:     cs.Spent,
			Remaining: cs.Remaining,
			Percent:   cs.Percent,
			IsSavings: cs.IsSavings,
		})
	}
	return dashboardResponse{
		MonthID:     sum.MonthID,
		TotalBudget: sum.TotalBudget,
		TotalSpent:  sum.TotalSpent,
		Remaining:   sum.Remaining,
		PercentUsed: sum.PercentUsed,
		Categories:  stats,
	}
}

func toPlanResponse(plan core.PlanSummary) planResponse {
	return planResponse{
		MonthID:          plan.MonthID,
		Income:           plan.Income,
		ExpensesSum:      plan.ExpensesSum,
		SavingsLimit:     plan.SavingsLimit,
		TotalAllocated:   plan.TotalAllocated,
		Unassigned:       plan.Unassigned,
		PotentialSavings: plan.PotentialSavings,
		Status:           plan.Status,
	}
}

func toStatisticsResponse(review core.MonthReview) statisticsResponse {
	return statisticsResponse{
		MonthID:         review.MonthID,
		TotalIncome:     review.TotalIncome,
		TotalSpent:      review.TotalSpent,
		SavingsAmount:   review.SavingsAmount,
		ExpensesPercent: review.ExpensesPercent,
		SavingsPercent:  review.SavingsPercent,
	}
}
