package expense

import (
	"strings"
	"time"

	"budgetmate-backend/internal/auth"
	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"` // "2025-12-09", defaults to today
}

type ExpenseResponse struct {
	ID          uint                   `json:"id"`
	Description string                 `json:"description"`
	Amount      float64                `json:"amount"`
	Category    models.ExpenseCategory `json:"category"`
	Date        string                 `json:"date"`
}

type CategorySummaryItem struct {
	Category models.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
}

type CategorySummaryResponse struct {
	Items      []CategorySummaryItem `json:"items"`
	GrandTotal float64               `json:"grand_total"`
}

func getUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not resolve user identity")
	}
	return userID, nil
}

func toExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date.Format("2006-01-02"),
	}
}

// POST /api/expenses
// Validation rejects before anything is written: missing description,
// non-positive amount and unknown categories never reach the store.
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Description = strings.TrimSpace(body.Description)
		if body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Description is required")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
		}

		category := models.ExpenseCategory(body.Category)
		if !category.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Category must be one of food, transport, utilities, entertainment, other")
		}

		date := time.Now()
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
			}
			date = d
		}

		e := models.Expense{
			UserID:      userID,
			Description: body.Description,
			Amount:      body.Amount,
			Category:    category,
			Date:        date,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(&e))
	}
}

// GET /api/expenses
// Owner's expenses, newest first.
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		var rows []models.Expense
		if err := database.DB.
			Where("user_id = ?", userID).
			Order("date desc, id desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toExpenseResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/expenses/summary
func CategorySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		type row struct {
			Category string  `gorm:"column:category"`
			Total    float64 `gorm:"column:total"`
		}
		var rows []row

		if err := database.DB.
			Model(&models.Expense{}).
			Select("category, SUM(amount) as total").
			Where("user_id = ?", userID).
			Group("category").
			Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute summary")
		}

		resp := CategorySummaryResponse{
			Items: make([]CategorySummaryItem, 0, len(rows)),
		}
		for _, r := range rows {
			resp.Items = append(resp.Items, CategorySummaryItem{
				Category: models.ExpenseCategory(r.Category),
				Total:    r.Total,
			})
			resp.GrandTotal += r.Total
		}

		return c.JSON(resp)
	}
}

// DELETE /api/expenses/:id
// Owner-scoped: deleting someone else's expense reports not found.
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid expense id")
		}

		res := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Expense{})
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete expense")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Expense not found")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
