package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// NavigationHandler manages header/footer navigation and social links.
type NavigationHandler struct {
	service NavigationService
}

// NewNavigationHandler constructs NavigationHandler.
func NewNavigationHandler(service NavigationService) *NavigationHandler {
	return &NavigationHandler{service: service}
}

func (h *NavigationHandler) ListNav(c *fiber.Ctx) error {
	items, err := h.service.ListNav(c.UserContext(), c.Query("location"), c.QueryBool("active_only", false))
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *NavigationHandler) GetNav(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.service.GetNav(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *NavigationHandler) CreateNav(c *fiber.Ctx) error {
	var input services.NavItemInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	item, err := h.service.CreateNav(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusCreated, item, "Navigation item created successfully")
}

func (h *NavigationHandler) UpdateNav(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.NavItemInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	item, err := h.service.UpdateNav(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, item, "Navigation item updated successfully")
}

func (h *NavigationHandler) DeleteNav(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteNav(c.UserContext(), id); err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, nil, "Navigation item deleted successfully")
}

// ListIcons returns the icon names accepted by nav items and social links.
func (h *NavigationHandler) ListIcons(c *fiber.Ctx) error {
	return ok(c, services.Icons())
}
