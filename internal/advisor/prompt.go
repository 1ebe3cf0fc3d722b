package advisor

import (
	"fmt"

	"budgetmate-backend/internal/models"
)

const ApologyReply = "I'm having trouble responding. Please try again."

func budgetPrompt(amount float64, period models.PeriodType) string {
	return fmt.Sprintf(`As a financial advisor, suggest a budget breakdown for a %s budget of %.2f.
Provide specific allocations for Food, Transportation, and Other expenses.
Format response strictly as a single JSON object: { "food": amount, "transportation": amount, "other": amount, "tips": "string" }`,
		period, amount)
}

// chatPrompt frames the assistant by role; the history is the serialized
// prior-turn transcript ("User: ..." / "Assistant: ..." lines).
func chatPrompt(message, history string, role models.UserRole) string {
	systemPrompt := "You are a helpful budgeting assistant. "
	switch role {
	case models.RoleAdmin:
		systemPrompt += "You have administrative privileges. Provide system insights and financial analytics."
	case models.RoleUser:
		systemPrompt += "Provide personalized budgeting advice and expense tracking tips."
	default:
		systemPrompt += "Provide general financial advice and budgeting tips."
	}

	return fmt.Sprintf("%s\n\nChat history:\n%s\n\nUser: %s\nAssistant:", systemPrompt, history, message)
}
