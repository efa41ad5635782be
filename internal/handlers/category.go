package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// CategoryHandler serves the category tree and admin category writes.
type CategoryHandler struct {
	service CategoryService
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(service CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListCategories returns categories flat or, with ?tree=true, nested.
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext(), services.CategoryFilter{
		Tree:     c.QueryBool("tree", false),
		ParentID: c.Query("parent_id"),
		IsActive: c.Query("is_active"),
	})
	if err != nil {
		return err
	}
	return ok(c, categories)
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var input services.CategoryInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusCreated, category, "Category created successfully")
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.CategoryInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	category, err := h.service.UpdateCategory(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, category, "Category updated successfully")
}

func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, nil, "Category deleted successfully")
}
