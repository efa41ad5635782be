package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/utils"
)

// ProductHandler serves the storefront catalog and admin product writes.
type ProductHandler struct {
	service ProductService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(service ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterProductRoutes mounts the public product routes and, behind
// admin, the write routes.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router, admin fiber.Handler) {
	router.Get("/", h.ListProducts)
	router.Get("/slug/:slug", h.GetProductBySlug)
	router.Post("/", admin, h.CreateProduct)
	router.Put("/:id", admin, h.UpdateProduct)
	router.Delete("/:id", admin, h.DeleteProduct)
}

// ListProducts returns a filtered page of products.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c, 12)
	list, err := h.service.ListProducts(c.UserContext(), services.ProductFilter{
		CategoryID: c.Query("category_id"),
		MinPrice:   c.Query("min_price"),
		MaxPrice:   c.Query("max_price"),
		IsFeatured: c.Query("is_featured"),
		IsActive:   c.Query("is_active"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
		Page:       pg.Page,
		Limit:      pg.Limit,
	})
	if err != nil {
		return err
	}
	return ok(c, list)
}

// GetProductBySlug returns an active product with its category chain and
// related products.
func (h *ProductHandler) GetProductBySlug(c *fiber.Ctx) error {
	detail, err := h.service.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return ok(c, detail)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusCreated, product, "Product created successfully")
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var input services.ProductInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, product, "Product updated successfully")
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, nil, "Product deleted successfully")
}
