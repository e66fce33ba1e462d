package api

import (
	"finpulse/docs"
	"finpulse/internal/api/handlers"
	"finpulse/pkg/auth"
	"finpulse/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	messageHandler *handlers.MessageHandler,
	txHandler *handlers.TransactionHandler,
	insightsHandler *handlers.InsightsHandler,
	profileHandler *handlers.ProfileHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Importing the docs package registers the swagger definition via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	messages := protected.Group("/messages")
	messages.Post("/import", messageHandler.ImportMessages)

	transactions := protected.Group("/transactions")
	transactions.Get("", txHandler.ListTransactions)
	transactions.Post("", txHandler.CreateTransaction)
	transactions.Patch("/:id/category", txHandler.UpdateCategory)

	insights := protected.Group("/insights")
	insights.Get("/forecast", insightsHandler.GetForecast)
	insights.Get("/subscriptions", insightsHandler.GetSubscriptions)
	insights.Get("/upcoming", insightsHandler.GetUpcomingBills)
	insights.Get("/buffer", insightsHandler.GetBuffer)
	insights.Get("/overview", insightsHandler.GetOverview)

	profile := protected.Group("/profile")
	profile.Get("", profileHandler.GetProfile)
	profile.Put("", profileHandler.UpdateProfile)

	return app
}
