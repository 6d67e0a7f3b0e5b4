package serverutils

import (
	"errors"

	"ai-research-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts typed application errors into the JSON
// error envelope. Controllers just return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := statusForKind(appErr.Kind)
			body := ErrorBody{
				Success: false,
				Code:    status,
				Error:   appErr.Kind.String(),
				Message: appErr.Message,
				Status:  appErr.CurrentStatus,
				Fields:  appErr.Fields,
			}
			return ctx.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidTransition:
		return fiber.StatusConflict
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindExecutorFailure:
		return fiber.StatusBadGateway
	case apperror.KindConcurrencyConflict:
		// Surfaces only when internal retries are exhausted.
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
