package main

import (
	"log"
	"strings"

	"budgetmate-backend/internal/admin"
	"budgetmate-backend/internal/advisor"
	"budgetmate-backend/internal/auth"
	"budgetmate-backend/internal/budget"
	"budgetmate-backend/internal/chat"
	"budgetmate-backend/internal/config"
	"budgetmate-backend/internal/database"
	"budgetmate-backend/internal/expense"
	"budgetmate-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	gemini := advisor.NewClient(cfg.GeminiEndpoint, cfg.GeminiAPIKey, cfg.GeminiModel)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/guest/suggest", budget.GuestSuggestHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Budgets
	protected.Post("/budgets", budget.CreateBudgetHandler(gemini))
	protected.Get("/budgets", budget.ListBudgetsHandler())
	protected.Get("/budgets/current", budget.CurrentBudgetHandler())
	protected.Get("/budgets/status", budget.SpendStatusHandler())
	protected.Get("/budgets/chart", budget.SpendingChartHandler())

	// Expenses
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Get("/expenses/summary", expense.CategorySummaryHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Assistant chat
	protected.Post("/chat", chat.SendMessageHandler(gemini))
	protected.Get("/chat/history", chat.HistoryHandler())

	// Admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/stats", admin.UsageStatsHandler())

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
