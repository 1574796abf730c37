package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminApp() *fiber.App {
	app := fiber.New()
	admin := app.Group("/admin")
	admin.Use(IsAdmin())
	admin.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("userID")})
	})
	return app
}

func TestIsAdminRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	app := adminApp()

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIsAdminRejectsGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	app := adminApp()

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIsAdminAcceptsGeneratedToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	app := adminApp()

	token, err := GenerateAdminJWT()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
