package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// AuthHandler issues admin tokens.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates an admin by email and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	result, err := h.service.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return ok(c, result)
}
