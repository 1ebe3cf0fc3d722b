package admin

import (
	"encoding/json"
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

func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	admin := models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	cfg := &config.Config{JWTSecret: testSecret}
	token, err := auth.GenerateToken(cfg.JWTSecret, &admin)
	require.NoError(t, err)

	app := fiber.New()
	protected := app.Group("/api", auth.JWTMiddleware(cfg))
	adminRoutes := protected.Group("/admin", auth.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/users", ListUsersHandler())
	adminRoutes.Post("/users", CreateUserHandler())
	adminRoutes.Get("/stats", UsageStatsHandler())

	return app, token
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

func TestListUsersNewestFirst(t *testing.T) {
	app, token := newTestApp(t)

	older := models.User{Email: "older@example.com", PasswordHash: "x", Role: models.RoleUser,
		CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, database.DB.Create(&older).Error)
	newer := models.User{Email: "newer@example.com", PasswordHash: "x", Role: models.RoleUser,
		CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, database.DB.Create(&newer).Error)

	resp := doJSON(t, app, "GET", "/api/admin/users", token, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var users []UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	resp.Body.Close()

	require.Len(t, users, 3)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "newer@example.com", users[1].Email)
	assert.Equal(t, "older@example.com", users[2].Email)
}

func TestCreateUserWithRole(t *testing.T) {
	app, token := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/admin/users", token,
		`{"email":"second-admin@example.com","password":"hunter22","role":"admin"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, models.RoleAdmin, created.Role)

	resp = doJSON(t, app, "POST", "/api/admin/users", token,
		`{"email":"bad-role@example.com","password":"hunter22","role":"owner"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, "POST", "/api/admin/users", token,
		`{"email":"second-admin@example.com","password":"hunter22","role":"user"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestUsageStats(t *testing.T) {
	app, token := newTestApp(t)

	user := models.User{Email: "user@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&user).Error)

	now := time.Now()
	require.NoError(t, database.DB.Create(&models.Budget{
		UserID: user.ID, Amount: 5000, PeriodType: models.PeriodWeekly,
		Categories: "{}", StartDate: now, EndDate: now.AddDate(0, 0, 7),
	}).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, database.DB.Create(&models.Expense{
			UserID: user.ID, Description: "expense", Amount: 10,
			Category: models.CategoryOther, Date: now,
		}).Error)
	}

	resp := doJSON(t, app, "GET", "/api/admin/stats", token, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats UsageStatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()

	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.Budgets)
	assert.EqualValues(t, 3, stats.Expenses)
	assert.Equal(t, "System analytics: 2 users, 3 expenses logged. Consider sending budget reminders to users with 80%+ budget usage.", stats.Insight)
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	app, _ := newTestApp(t)

	user := models.User{Email: "user@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&user).Error)
	userToken, err := auth.GenerateToken(testSecret, &user)
	require.NoError(t, err)

	resp := doJSON(t, app, "GET", "/api/admin/stats", userToken, "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
