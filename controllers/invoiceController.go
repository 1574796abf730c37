package controllers

import (
	"github.com/gofiber/fiber/v2"

	"trademark-backend/services"
)

// InvoiceController exposes the invoice lifecycle over HTTP. All error
// mapping lives in the global error handler.
type InvoiceController struct {
	svc *services.InvoiceService
}

func NewInvoiceController(svc *services.InvoiceService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

// Create handles POST /api/admin/invoices.
func (ct *InvoiceController) Create(c *fiber.Ctx) error {
	var input services.CreateInvoiceInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	invoice, err := ct.svc.Create(input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "invoice created successfully",
		"invoice_id": invoice.ID,
		"invoice":    invoice,
	})
}

// List handles GET /api/admin/invoices, newest first.
func (ct *InvoiceController) List(c *fiber.Ctx) error {
	invoices, err := ct.svc.List()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"invoices": invoices,
	})
}

// Get handles GET /api/invoices/:id. The returned status is reconciled
// against the payment processor on every read.
func (ct *InvoiceController) Get(c *fiber.Ctx) error {
	invoice, err := ct.svc.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

// PaymentIntent handles GET /api/invoices/:id/intent. It returns what the
// payer-facing widget needs to confirm the charge.
func (ct *InvoiceController) PaymentIntent(c *fiber.Ctx) error {
	session, err := ct.svc.PaymentSession(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"client_secret": session.ClientSecret,
		"status":        session.Status,
		"amount":        session.Amount,
		"currency":      session.Currency,
		"invoice":       session.Invoice,
	})
}

// AttachPaymentLink handles PUT /api/admin/invoices/:id/payment-link.
func (ct *InvoiceController) AttachPaymentLink(c *fiber.Ctx) error {
	var input struct {
		PaymentLinkURL string `json:"payment_link_url"`
	}
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	invoice, err := ct.svc.AttachPaymentLink(c.Params("id"), input.PaymentLinkURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

// Delete handles DELETE /api/admin/invoices/:id. The external payment
// intent is left as-is.
func (ct *InvoiceController) Delete(c *fiber.Ctx) error {
	if err := ct.svc.Delete(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "invoice deleted",
	})
}
