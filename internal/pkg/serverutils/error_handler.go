// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors returned by handlers into the
// standard JSON envelope. Validation failures become 400s, fiber errors
// keep their status, everything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, validationMessage(validationErrs)))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("field '%s' failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	return strings.Join(messages, "; ")
}
