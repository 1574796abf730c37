package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"trademark-backend/utils"
)

var validate = validator.New()

// BindAndValidate parses the request body into dst, normalizes it (trims
// strings, rounds money floats) and validates it. Returns
// fiber.ErrBadRequest for parse errors and validator.ValidationErrors for
// validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(dst)
	return validate.Struct(dst)
}
