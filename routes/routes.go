package routes

import (
	"github.com/gofiber/fiber/v2"

	"trademark-backend/controllers"
	"trademark-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, invoices *controllers.InvoiceController, leads *controllers.LeadController) {
	api := app.Group("/api")

	// Public lead-intake endpoints (email relay)
	api.Post("/contact", leads.Contact)
	api.Post("/consultancy", leads.Consultancy)
	api.Post("/trademark-registration", leads.TrademarkRegistration)
	api.Post("/trademark-revival", leads.TrademarkRevival)

	// Public payer-facing invoice endpoints (status is reconciled on read)
	api.Get("/invoices/:id", invoices.Get)
	api.Get("/invoices/:id/intent", invoices.PaymentIntent)

	// Admin session
	api.Post("/admin/login", controllers.AdminLogin)
	api.Post("/admin/logout", controllers.AdminLogout)

	// Protected admin endpoints (JWT auth)
	admin := api.Group("/admin")
	admin.Use(middlewares.IsAdmin())

	// Idempotency guard so a retried create cannot open a second intent
	admin.Use(middlewares.Idempotency())

	admin.Get("/invoices", invoices.List)
	admin.Post("/invoices", invoices.Create)
	admin.Put("/invoices/:id/payment-link", invoices.AttachPaymentLink)
	admin.Delete("/invoices/:id", invoices.Delete)
}
