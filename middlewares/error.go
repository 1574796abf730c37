package middlewares

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"trademark-backend/apperrors"
	"trademark-backend/services"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
// It maps the service error taxonomy so no handler needs its own switch.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Not-found is a normal outcome, never logged.
	if errors.Is(err, apperrors.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "invoice not found"})
	}
	if errors.Is(err, services.ErrNoPaymentIntent) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": vErr.Message,
			"field":   vErr.Field,
		})
	}

	var gErr *apperrors.GatewayError
	if errors.As(err, &gErr) {
		log.Printf("gateway error: %v", gErr)
		if gErr.Config {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false, "message": "payment processing is not configured",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false, "message": "payment processor unavailable, please retry",
		})
	}

	var sErr *apperrors.StorageError
	if errors.As(err, &sErr) {
		log.Printf("storage error: %v", sErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "message": "could not access invoice records",
		})
	}

	// Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}

	// Validation errors from the request binder (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": "validation failed",
			"errors":  out,
		})
	}

	// Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "internal server error",
	})
}
