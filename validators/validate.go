// Package validators holds the shared request-validation helpers used by the
// per-area validator middlewares.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"academy/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates v's `validate` tags and returns one message per failing
// field, or nil when v is valid.
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": err.Error()}
	}
	errors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		errors[fe.Field()] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "email":
		return "Invalid email!"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s!", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", field)
	case "eqfield":
		return fmt.Sprintf("%s does not match!", field)
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

// Body parses the JSON body into req, validates it and stores it in Locals
// under key.
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := Struct(req); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// IDParam parses a positive numeric route parameter into Locals as a uint
func IDParam(param, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}
		c.Locals(key, uint(id))
		return c.Next()
	}
}
