package controllers

import (
	"crypto/subtle"
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"trademark-backend/middlewares"
)

var (
	errAuthNotConfigured = errors.New("admin password not configured")
	errInvalidPassword   = errors.New("invalid password")
)

// verifyAdminPassword checks the shared admin secret. A bcrypt hash in
// ADMIN_PASSWORD_HASH is preferred; ADMIN_PASSWORD is the plaintext
// fallback for local setups.
func verifyAdminPassword(password string) error {
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return errInvalidPassword
		}
		return nil
	}
	expected := os.Getenv("ADMIN_PASSWORD")
	if expected == "" {
		return errAuthNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return errInvalidPassword
	}
	return nil
}

// AdminLogin handles POST /api/admin/login and issues a bearer session.
func AdminLogin(c *fiber.Ctx) error {
	var input struct {
		Password string `json:"password" validate:"required"`
	}
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	if err := verifyAdminPassword(input.Password); err != nil {
		if errors.Is(err, errAuthNotConfigured) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "ADMIN_PASSWORD is not configured",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "invalid password",
		})
	}

	token, err := middlewares.GenerateAdminJWT()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "could not create session",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// AdminLogout handles POST /api/admin/logout. Sessions are stateless
// bearer tokens; the client discards the token.
func AdminLogout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}
