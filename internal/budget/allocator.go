package budget

import "budgetmate-backend/internal/models"

// SpendStatus compares a budget against recorded spending.
// Remaining is the raw arithmetic value; RemainingDisplay is clamped to
// zero for presentation only.
type SpendStatus struct {
	HasBudget        bool              `json:"has_budget"`
	BudgetAmount     float64           `json:"budget_amount"`
	PeriodType       models.PeriodType `json:"period_type,omitempty"`
	TotalSpent       float64           `json:"total_spent"`
	Remaining        float64           `json:"remaining"`
	RemainingDisplay float64           `json:"remaining_display"`
	PercentSpent     float64           `json:"percent_spent"`
	WithinBudget     bool              `json:"within_budget"`
}

// ComputeSpendStatus sums the expenses and derives remaining/percent
// figures. A nil budget yields an explicit empty status instead of a
// division by zero; expense ordering is irrelevant and nothing is mutated.
func ComputeSpendStatus(b *models.Budget, expenses []models.Expense) SpendStatus {
	if b == nil {
		return SpendStatus{}
	}

	var totalSpent float64
	for _, e := range expenses {
		totalSpent += e.Amount
	}

	remaining := b.Amount - totalSpent

	status := SpendStatus{
		HasBudget:        true,
		BudgetAmount:     b.Amount,
		PeriodType:       b.PeriodType,
		TotalSpent:       totalSpent,
		Remaining:        remaining,
		RemainingDisplay: remaining,
		WithinBudget:     remaining > 0,
	}
	if status.RemainingDisplay < 0 {
		status.RemainingDisplay = 0
	}
	if b.Amount > 0 {
		status.PercentSpent = 100 * totalSpent / b.Amount
	}
	return status
}
