package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sanchawla17/Invosight/controllers"
	"github.com/sanchawla17/Invosight/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints, throttled per IP
	auth := api.Group("/auth", middlewares.AuthRateLimit())
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/logout", controllers.Logout)

	// Public share-link endpoint (the token is the capability)
	api.Get("/invoices/share/:token", controllers.GetSharedInvoice)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating requests
	protected.Use(middlewares.Idempotency())

	// Profile
	protected.Get("/auth/me", controllers.GetMe)
	protected.Put("/auth/me", controllers.UpdateProfile)

	// Invoices
	protected.Post("/invoices", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Delete("/invoices/:id", controllers.DeleteInvoice)
	protected.Post("/invoices/:id/share", controllers.CreateShareLink)
	protected.Post("/invoices/:id/share/disable", controllers.DisableShareLink)

	// Stats + clients
	protected.Get("/stats", controllers.GetStats)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/clients/:clientKey", controllers.GetClientDetail)

	// AI assistant (separate, stricter limiter)
	aiGroup := protected.Group("/ai", middlewares.AIRateLimit())
	aiGroup.Post("/parse-text", controllers.ParseInvoiceFromText)
	aiGroup.Post("/parse-image", controllers.ParseInvoiceFromImage)
	aiGroup.Post("/generate-reminder", controllers.GenerateReminderEmail)
	aiGroup.Get("/dashboard-summary", controllers.GetDashboardSummary)
	aiGroup.Get("/stats-insights", controllers.GetStatsInsights)

	// Tools
	protected.Get("/tools/convert", controllers.ConvertCurrency)
}
