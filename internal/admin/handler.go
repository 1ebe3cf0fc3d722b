package admin

import (
	"fmt"
	"strings"

	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID        uint            `json:"id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"created_at"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UsageStatsResponse struct {
	TotalUsers int64  `json:"total_users"`
	Budgets    int64  `json:"budgets"`
	Expenses   int64  `json:"expenses"`
	Insight    string `json:"insight"`
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.
			Order("created_at desc, id desc").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, UserResponse{
				ID:        u.ID,
				Email:     u.Email,
				Role:      u.Role,
				CreatedAt: u.CreatedAt.Format("2006-01-02"),
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/users
// The only path that assigns a role explicitly; public registration
// always stores "user".
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
		}

		role := models.UserRole(body.Role)
		if role == "" {
			role = models.RoleUser
		}
		if !role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be 'user' or 'admin'")
		}

		var count int64
		database.DB.Model(&models.User{}).
			Where("email = ?", body.Email).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Email is already registered")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user")
		}

		return c.Status(fiber.StatusCreated).JSON(UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedAt: user.CreatedAt.Format("2006-01-02"),
		})
	}
}

// GET /api/admin/stats
func UsageStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp UsageStatsResponse

		if err := database.DB.Model(&models.User{}).Count(&resp.TotalUsers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count users")
		}
		if err := database.DB.Model(&models.Budget{}).Count(&resp.Budgets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count budgets")
		}
		if err := database.DB.Model(&models.Expense{}).Count(&resp.Expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count expenses")
		}

		resp.Insight = fmt.Sprintf(
			"System analytics: %d users, %d expenses logged. Consider sending budget reminders to users with 80%%+ budget usage.",
			resp.TotalUsers, resp.Expenses)

		return c.JSON(resp)
	}
}
