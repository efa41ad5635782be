package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// PaymentHandler serves the Stripe payment link flow.
type PaymentHandler struct {
	service PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CheckPayment reports the payment status of ?orderId.
func (h *PaymentHandler) CheckPayment(c *fiber.Ctx) error {
	status, err := h.service.GetPaymentStatus(c.UserContext(), c.Query("orderId"))
	if err != nil {
		return err
	}
	return ok(c, status)
}

type createPaymentLinkRequest struct {
	OrderID string `json:"orderId"`
}

// CreatePaymentLink creates (or returns the existing) Stripe link for an order.
func (h *PaymentHandler) CreatePaymentLink(c *fiber.Ctx) error {
	var req createPaymentLinkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	link, err := h.service.CreatePaymentLink(c.UserContext(), req.OrderID)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, link, link.Message)
}

// SavePaymentLink stores externally created Stripe references on an order.
func (h *PaymentHandler) SavePaymentLink(c *fiber.Ctx) error {
	var input services.SavePaymentLinkInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	link, err := h.service.AttachPaymentLink(c.UserContext(), input)
	if err != nil {
		return err
	}
	return okMessage(c, fiber.StatusOK, link, link.Message)
}

// Webhook applies a signed Stripe event.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.service.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
