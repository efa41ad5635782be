package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// ListSocialLinks returns {links, total}.
func (h *NavigationHandler) ListSocialLinks(c *fiber.Ctx) error {
	links, err := h.service.ListSocialLinks(c.UserContext(), c.QueryBool("active_only", false))
	if err != nil {
		return err
	}
	return ok(c, links)
}

func (h *NavigationHandler) CreateSocialLink(c *fiber.Ctx) error {
	var input services.SocialLinkInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	link, err := h.service.CreateSocialLink(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusCreated, link, "Social media link created successfully")
}

func (h *NavigationHandler) UpdateSocialLink(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.SocialLinkInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	link, err := h.service.UpdateSocialLink(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, link, "Social media link updated successfully")
}

func (h *NavigationHandler) DeleteSocialLink(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSocialLink(c.UserContext(), id); err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, nil, "Social media link deleted successfully")
}
