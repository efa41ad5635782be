package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// AdminHandler serves the back-office dashboard.
type AdminHandler struct {
	revenue  RevenueService
	products ProductService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(revenue RevenueService, products ProductService) *AdminHandler {
	return &AdminHandler{revenue: revenue, products: products}
}

// RevenueOverview returns revenue totals, period comparisons and recent
// transactions.
func (h *AdminHandler) RevenueOverview(c *fiber.Ctx) error {
	overview, err := h.revenue.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, overview)
}

// RevenueAnalytics buckets revenue by ?period over a default or explicit
// ?startDate..?endDate window.
func (h *AdminHandler) RevenueAnalytics(c *fiber.Ctx) error {
	analytics, err := h.revenue.Analytics(c.UserContext(), services.AnalyticsQuery{
		Period:    c.Query("period", "month"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		return err
	}
	return ok(c, analytics)
}

// LowStockProducts lists active products at or below their threshold.
func (h *AdminHandler) LowStockProducts(c *fiber.Ctx) error {
	products, err := h.products.LowStock(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"products": products, "total": len(products)})
}
