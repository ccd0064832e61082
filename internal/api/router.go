package api

import (
	"rateguard/docs"
	"rateguard/internal/api/handlers"
	"rateguard/pkg/auth"
	"rateguard/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	quoteHandler *handlers.QuoteHandler,
	orgHandler *handlers.OrganizationHandler,
	billingHandler *handlers.BillingHandler,
	rateHandler *handlers.RateHandler,
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
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // ensure docs package is imported and init() is called
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	user := app.Group("/user")
	authGroup := user.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	profile := protected.Group("/profile")
	profile.Get("", profileHandler.GetProfile)
	profile.Put("/onboarding", profileHandler.CompleteOnboarding)

	quotes := protected.Group("/quotes")
	quotes.Post("/upload", quoteHandler.UploadQuote)
	quotes.Get("", quoteHandler.ListQuotes)
	quotes.Get("/:id", quoteHandler.GetQuote)
	quotes.Post("/:id/advance", quoteHandler.AdvanceStatus)
	quotes.Post("/:id/notes", quoteHandler.AddNote)

	organizations := protected.Group("/organizations")
	organizations.Post("", orgHandler.CreateOrganization)
	organizations.Get("/me", orgHandler.GetOrganization)
	organizations.Get("/audit", orgHandler.GetAuditTrail)
	organizations.Post("/members", orgHandler.AddMember)
	organizations.Delete("/members/:id", orgHandler.RemoveMember)

	billing := protected.Group("/billing")
	billing.Post("/checkout/complete", billingHandler.CompleteCheckout)
	billing.Get("/plan", billingHandler.GetPlan)

	rates := protected.Group("/rates")
	rates.Get("", rateHandler.ResolveRate)
	rates.Get("/ticker", rateHandler.ListRates)

	return app
}
