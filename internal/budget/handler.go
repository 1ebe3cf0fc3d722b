package budget

import (
	"encoding/json"
	"errors"
	"time"

	"budgetmate-backend/internal/advisor"
	"budgetmate-backend/internal/auth"
	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SplitSuggester is what the handlers need from the advice service.
// The concrete client never fails; it falls back to the 40/30/30 split.
type SplitSuggester interface {
	SuggestBudget(amount float64, period models.PeriodType) advisor.Suggestion
}

type CreateBudgetRequest struct {
	Amount     float64 `json:"amount"`
	PeriodType string  `json:"period_type"`
}

type BudgetResponse struct {
	ID         uint               `json:"id"`
	Amount     float64            `json:"amount"`
	PeriodType models.PeriodType  `json:"period_type"`
	Categories map[string]float64 `json:"categories"`
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	CreatedAt  string             `json:"created_at"`
}

type GuestSuggestRequest struct {
	Amount     float64 `json:"amount"`
	PeriodType string  `json:"period_type"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type SpendingChartResponse struct {
	From       string       `json:"from"`
	To         string       `json:"to"`
	Points     []ChartPoint `json:"points"`
	GrandTotal float64      `json:"grand_total"`
}

func getUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not resolve user identity")
	}
	return userID, nil
}

func toBudgetResponse(b *models.Budget) BudgetResponse {
	categories := map[string]float64{}
	// Stored as a JSON string; an unreadable value renders as an empty map.
	_ = json.Unmarshal([]byte(b.Categories), &categories)

	return BudgetResponse{
		ID:         b.ID,
		Amount:     b.Amount,
		PeriodType: b.PeriodType,
		Categories: categories,
		StartDate:  b.StartDate.Format("2006-01-02"),
		EndDate:    b.EndDate.Format("2006-01-02"),
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

// fetchCurrentBudget: newest budget row for the owner, nil when none exists.
func fetchCurrentBudget(userID uint) (*models.Budget, error) {
	var b models.Budget
	err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// POST /api/budgets
// Asks the advice service for a split (falls back to 40/30/30), then
// inserts a new budget row; existing rows are never mutated.
func CreateBudgetHandler(ai SplitSuggester) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		var body CreateBudgetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
		}

		period := models.PeriodType(body.PeriodType)
		if period == "" {
			period = models.PeriodWeekly
		}
		if !period.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "period_type must be 'weekly' or 'monthly'")
		}

		suggestion := ai.SuggestBudget(body.Amount, period)

		categories, err := json.Marshal(map[string]float64{
			"food":           suggestion.Food,
			"transportation": suggestion.Transportation,
			"other":          suggestion.Other,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not encode category split")
		}

		start := time.Now()
		b := models.Budget{
			UserID:     userID,
			Amount:     body.Amount,
			PeriodType: period,
			Categories: string(categories),
			StartDate:  start,
			EndDate:    start.AddDate(0, 0, period.Days()),
		}

		if err := database.DB.Create(&b).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save budget")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"budget":     toBudgetResponse(&b),
			"suggestion": suggestion,
		})
	}
}

// GET /api/budgets/current
func CurrentBudgetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		b, err := fetchCurrentBudget(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load budget")
		}
		if b == nil {
			return c.JSON(fiber.Map{"budget": nil})
		}

		resp := toBudgetResponse(b)
		return c.JSON(fiber.Map{"budget": resp})
	}
}

// GET /api/budgets
func ListBudgetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		var rows []models.Budget
		if err := database.DB.
			Where("user_id = ?", userID).
			Order("created_at desc, id desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list budgets")
		}

		resp := make([]BudgetResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toBudgetResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/budgets/status
func SpendStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		b, err := fetchCurrentBudget(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load budget")
		}

		var expenses []models.Expense
		if err := database.DB.
			Where("user_id = ?", userID).
			Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expenses")
		}

		return c.JSON(ComputeSpendStatus(b, expenses))
	}
}

// GET /api/budgets/chart
// Daily spending buckets across the current budget window.
func SpendingChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		b, err := fetchCurrentBudget(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load budget")
		}
		if b == nil {
			return c.JSON(SpendingChartResponse{Points: []ChartPoint{}})
		}

		var expenses []models.Expense
		if err := database.DB.
			Where("user_id = ? AND date >= ? AND date <= ?", userID, b.StartDate, b.EndDate).
			Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expenses")
		}

		// One bucket per calendar day of the window, zero-filled.
		dailyMap := make(map[string]float64)
		current := b.StartDate
		for !current.After(b.EndDate) {
			dailyMap[current.Format("2006-01-02")] = 0
			current = current.AddDate(0, 0, 1)
		}

		grand := 0.0
		for _, e := range expenses {
			label := e.Date.Format("2006-01-02")
			dailyMap[label] += e.Amount
			grand += e.Amount
		}

		points := make([]ChartPoint, 0, len(dailyMap))
		current = b.StartDate
		for !current.After(b.EndDate) {
			label := current.Format("2006-01-02")
			points = append(points, ChartPoint{Label: label, Total: dailyMap[label]})
			current = current.AddDate(0, 0, 1)
		}

		return c.JSON(SpendingChartResponse{
			From:       b.StartDate.Format("2006-01-02"),
			To:         b.EndDate.Format("2006-01-02"),
			Points:     points,
			GrandTotal: grand,
		})
	}
}

// POST /api/guest/suggest
// The guest view never calls the advice service; it always uses the
// deterministic split.
func GuestSuggestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GuestSuggestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
		}

		period := models.PeriodType(body.PeriodType)
		if period == "" {
			period = models.PeriodWeekly
		}
		if !period.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "period_type must be 'weekly' or 'monthly'")
		}

		return c.JSON(advisor.FallbackSplit(body.Amount))
	}
}
