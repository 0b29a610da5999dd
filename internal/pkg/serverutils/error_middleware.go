package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the handlers into the
// standard envelope so clients never see a bare Fiber error page.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
