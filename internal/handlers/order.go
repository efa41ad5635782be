package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// OrderHandler places orders and serves the admin order views.
type OrderHandler struct {
	service OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrder checks out a cart. A replay with a known Idempotency-Key
// returns the original order with 200 instead of 201.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var input services.PlaceOrderInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if header := strings.TrimSpace(c.Get("Idempotency-Key")); header != "" {
		input.IdempotencyKey = header
	}

	order, isNew, err := h.service.PlaceOrder(c.UserContext(), input)
	if err != nil {
		return err
	}
	if !isNew {
		return okMessage(c, fiber.StatusOK, order, "Order already exists")
	}
	return okMessage(c, fiber.StatusCreated, order, "Order created successfully")
}

// ListOrders returns recent orders with their items.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), services.OrderFilter{
		Status:        c.Query("status"),
		CustomerEmail: c.Query("customer_email"),
		Limit:         c.QueryInt("limit", 0),
	})
	if err != nil {
		return err
	}
	return ok(c, orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along its lifecycle.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, order, "Order status updated successfully")
}
