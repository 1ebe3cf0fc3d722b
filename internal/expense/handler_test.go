package expense

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budgetmate-backend/internal/auth"
	"budgetmate-backend/internal/config"
	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret"

func newTestApp(t *testing.T) (*fiber.App, *config.Config, models.User, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	user := models.User{Email: "sam@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	cfg := &config.Config{JWTSecret: testSecret}
	token, err := auth.GenerateToken(cfg.JWTSecret, &user)
	require.NoError(t, err)

	app := fiber.New()
	protected := app.Group("/api", auth.JWTMiddleware(cfg))
	protected.Post("/expenses", CreateExpenseHandler())
	protected.Get("/expenses", ListExpensesHandler())
	protected.Get("/expenses/summary", CategorySummaryHandler())
	protected.Delete("/expenses/:id", DeleteExpenseHandler())

	return app, cfg, user, token
}

func doJSON(t *testing.T, app *fiber.App, method, target, token, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateExpense(t *testing.T) {
	app, _, user, token := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/expenses", token,
		`{"description":"weekly groceries","amount":850.50,"category":"food","date":"2026-08-20"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body ExpenseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "weekly groceries", body.Description)
	assert.Equal(t, 850.50, body.Amount)
	assert.Equal(t, models.CategoryFood, body.Category)
	assert.Equal(t, "2026-08-20", body.Date)

	var stored models.Expense
	require.NoError(t, database.DB.First(&stored, "user_id = ?", user.ID).Error)
	assert.Equal(t, models.CategoryFood, stored.Category)
}

func TestCreateExpenseValidation(t *testing.T) {
	app, _, _, token := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing description", body: `{"description":"  ","amount":10,"category":"food"}`},
		{name: "zero amount", body: `{"description":"coffee","amount":0,"category":"food"}`},
		{name: "negative amount", body: `{"description":"coffee","amount":-3,"category":"food"}`},
		{name: "unknown category", body: `{"description":"coffee","amount":3,"category":"coffee"}`},
		{name: "missing category", body: `{"description":"coffee","amount":3}`},
		{name: "bad date", body: `{"description":"coffee","amount":3,"category":"food","date":"20/08/2026"}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			resp := doJSON(t, app, "POST", "/api/expenses", token, testCase.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}

	var count int64
	database.DB.Model(&models.Expense{}).Count(&count)
	assert.Zero(t, count, "rejected requests must not write rows")
}

func TestListExpensesNewestFirst(t *testing.T) {
	app, _, user, token := newTestApp(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, database.DB.Create(&models.Expense{
			UserID:      user.ID,
			Description: fmt.Sprintf("expense %d", i),
			Amount:      float64(10 * (i + 1)),
			Category:    models.CategoryOther,
			Date:        base.AddDate(0, 0, i),
		}).Error)
	}

	// Another user's rows must not leak into the list.
	other := models.User{Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&other).Error)
	require.NoError(t, database.DB.Create(&models.Expense{
		UserID: other.ID, Description: "not mine", Amount: 999,
		Category: models.CategoryOther, Date: base,
	}).Error)

	resp := doJSON(t, app, "GET", "/api/expenses", token, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []ExpenseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Len(t, body, 3)
	assert.Equal(t, "expense 2", body[0].Description)
	assert.Equal(t, "expense 0", body[2].Description)
}

func TestCategorySummary(t *testing.T) {
	app, _, user, token := newTestApp(t)

	now := time.Now()
	rows := []models.Expense{
		{UserID: user.ID, Description: "groceries", Amount: 100, Category: models.CategoryFood, Date: now},
		{UserID: user.ID, Description: "snacks", Amount: 50, Category: models.CategoryFood, Date: now},
		{UserID: user.ID, Description: "bus", Amount: 30, Category: models.CategoryTransport, Date: now},
	}
	for i := range rows {
		require.NoError(t, database.DB.Create(&rows[i]).Error)
	}

	resp := doJSON(t, app, "GET", "/api/expenses/summary", token, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body CategorySummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	totals := map[models.ExpenseCategory]float64{}
	for _, item := range body.Items {
		totals[item.Category] = item.Total
	}
	assert.Equal(t, 150.0, totals[models.CategoryFood])
	assert.Equal(t, 30.0, totals[models.CategoryTransport])
	assert.Equal(t, 180.0, body.GrandTotal)
}

func TestDeleteExpenseIsOwnerScoped(t *testing.T) {
	app, _, user, token := newTestApp(t)

	mine := models.Expense{UserID: user.ID, Description: "mine", Amount: 10,
		Category: models.CategoryOther, Date: time.Now()}
	require.NoError(t, database.DB.Create(&mine).Error)

	other := models.User{Email: "other@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&other).Error)
	theirs := models.Expense{UserID: other.ID, Description: "theirs", Amount: 20,
		Category: models.CategoryOther, Date: time.Now()}
	require.NoError(t, database.DB.Create(&theirs).Error)

	resp := doJSON(t, app, "DELETE", fmt.Sprintf("/api/expenses/%d", theirs.ID), token, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/expenses/%d", mine.ID), token, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var count int64
	database.DB.Model(&models.Expense{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count, "the owner's expense must actually be deleted")

	database.DB.Model(&models.Expense{}).Where("user_id = ?", other.ID).Count(&count)
	assert.EqualValues(t, 1, count, "the other user's expense must survive")

	resp = doJSON(t, app, "DELETE", fmt.Sprintf("/api/expenses/%d", mine.ID), token, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
