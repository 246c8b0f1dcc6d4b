package authValidator

import (
	"strings"

	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	CnfPassword     string `json:"cnf_password" validate:"eqfield=NewPassword"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.Body[SignupRequest]("validatedSignup")
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest]("validatedLogin")
}

func ChangePassword() fiber.Handler {
	return validators.Body[ChangePasswordRequest]("validatedChangePassword")
}

// Email lowercases an address the way it is stored
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
