package middleware

import (
	"log"

	"academy/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse renders a service error with the status its kind maps to.
// Internal errors are logged and hidden from the caller.
func ErrorResponse(c *fiber.Ctx, err error) error {
	status := StatusFor(apperr.KindOf(err))
	if status == fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return JsonResponse(c, status, false, "Something went wrong!", nil)
	}
	if status == fiber.StatusBadGateway {
		log.Printf("[HTTP] %s %s: provider error: %v", c.Method(), c.Path(), err)
	}
	return JsonResponse(c, status, false, apperr.MessageOf(err), nil)
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Conflict:
		return fiber.StatusConflict
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.Validation:
		return fiber.StatusUnprocessableEntity
	case apperr.External:
		return fiber.StatusBadGateway
	case apperr.SignatureInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
