package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
)

// PaymentEventKind is the outcome reported by a provider webhook.
type PaymentEventKind int

const (
	PaymentEventIgnored PaymentEventKind = iota
	PaymentEventSucceeded
	PaymentEventFailed
)

// PaymentEvent is a verified provider notification about one order.
type PaymentEvent struct {
	ID            string
	Type          string
	Kind          PaymentEventKind
	OrderID       string
	PaymentLinkID string
}

// PaymentLinkRequest describes the hosted checkout to create for an order.
type PaymentLinkRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	RedirectURL string
}

// PaymentProvider creates payment links and verifies webhook payloads.
type PaymentProvider interface {
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (repository.PaymentLinkRefs, error)
	ParseEvent(payload []byte, signature string) (PaymentEvent, error)
}

// PaymentStatusView is returned by payment status checks.
type PaymentStatusView struct {
	OrderID       uuid.UUID       `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	IsPaid        bool            `json:"isPaid"`
}

// PaymentLinkView is returned after a payment link is stored.
type PaymentLinkView struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	PaymentURL  string    `json:"paymentUrl"`
	Message     string    `json:"message"`
}

// SavePaymentLinkInput carries provider references created elsewhere.
type SavePaymentLinkInput struct {
	OrderID              string `json:"orderId"`
	StripeProductID      string `json:"stripeProductId"`
	StripePriceID        string `json:"stripePriceId"`
	StripePaymentLinkID  string `json:"stripePaymentLinkId"`
	StripePaymentLinkURL string `json:"stripePaymentLinkUrl"`
}

// PaymentService associates payment links with orders and applies
// provider notifications.
type PaymentService struct {
	orders        repository.OrderRepository
	provider      PaymentProvider
	notifier      OrderNotifier
	storefrontURL string
	logger        *zap.Logger
}

// NewPaymentService constructs PaymentService. provider and notifier may be nil.
func NewPaymentService(orders repository.OrderRepository, provider PaymentProvider, notifier OrderNotifier, storefrontURL string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:        orders,
		provider:      provider,
		notifier:      notifier,
		storefrontURL: strings.TrimRight(storefrontURL, "/"),
		logger:        logger,
	}
}

// GetPaymentStatus reports the payment state of an order.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, rawOrderID string) (*PaymentStatusView, error) {
	order, err := s.loadOrder(ctx, rawOrderID)
	if err != nil {
		return nil, err
	}
	return &PaymentStatusView{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		IsPaid:        order.IsPaid(),
	}, nil
}

// AttachPaymentLink stores provider references on an order. Repeating the
// call with the same input is harmless.
func (s *PaymentService) AttachPaymentLink(ctx context.Context, input SavePaymentLinkInput) (*PaymentLinkView, error) {
	if strings.TrimSpace(input.OrderID) == "" || strings.TrimSpace(input.StripePaymentLinkURL) == "" {
		return nil, validationError("Order ID and payment link URL are required")
	}
	id, err := uuid.Parse(input.OrderID)
	if err != nil {
		return nil, validationError("Order ID is invalid")
	}

	order, err := s.orders.SavePaymentLink(ctx, id, repository.PaymentLinkRefs{
		ProductID:     input.StripeProductID,
		PriceID:       input.StripePriceID,
		PaymentLinkID: input.StripePaymentLinkID,
		URL:           input.StripePaymentLinkURL,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Order not found")
		}
		return nil, storageError("Failed to save payment link", err)
	}

	return &PaymentLinkView{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		PaymentURL:  order.StripePaymentLinkURL,
		Message:     "Stripe payment link saved successfully",
	}, nil
}

// CreatePaymentLink asks the provider for a hosted checkout covering the
// order total and stores it. An order that already has a link keeps it.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, rawOrderID string) (*PaymentLinkView, error) {
	order, err := s.loadOrder(ctx, rawOrderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return nil, conflictError("Order is already paid")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, conflictError("Order is cancelled")
	}
	if order.StripePaymentLinkURL != "" {
		return &PaymentLinkView{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			PaymentURL:  order.StripePaymentLinkURL,
			Message:     "Stripe payment link already exists",
		}, nil
	}
	if s.provider == nil {
		return nil, externalError("payment provider not configured", nil)
	}

	refs, err := s.provider.CreatePaymentLink(ctx, PaymentLinkRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		RedirectURL: s.storefrontURL + "/orders/" + order.ID.String() + "/success",
	})
	if err != nil {
		s.logger.Error("payment link creation failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, externalError("Failed to create payment link", err)
	}

	return s.AttachPaymentLink(ctx, SavePaymentLinkInput{
		OrderID:              order.ID.String(),
		StripeProductID:      refs.ProductID,
		StripePriceID:        refs.PriceID,
		StripePaymentLinkID:  refs.PaymentLinkID,
		StripePaymentLinkURL: refs.URL,
	})
}

// HandleWebhook verifies and applies a provider notification. Events that
// do not concern a known order are acknowledged without change.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return externalError("payment provider not configured", nil)
	}
	event, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		s.logger.Warn("webhook signature verification failed", zap.Error(err))
		return validationError("invalid webhook")
	}

	s.logger.Info("processing payment webhook", zap.String("event_id", event.ID), zap.String("event_type", event.Type))
	if event.Kind == PaymentEventIgnored {
		return nil
	}

	orderID, err := s.resolveOrderID(ctx, event)
	if err != nil {
		if IsKind(err, KindNotFound) {
			s.logger.Warn("webhook references unknown order",
				zap.String("event_id", event.ID),
				zap.String("order_id", event.OrderID),
				zap.String("payment_link_id", event.PaymentLinkID),
			)
			return nil
		}
		return err
	}

	markedPaid, refundDue := false, false
	order, err := s.orders.Mutate(ctx, orderID, func(o *models.Order) (map[string]any, []repository.StockLine, error) {
		switch event.Kind {
		case PaymentEventSucceeded:
			if o.IsPaid() {
				return nil, nil, nil
			}
			// Stock was already released; the order stays cancelled.
			if o.Status == models.OrderStatusCancelled {
				refundDue = true
				return nil, nil, nil
			}
			markedPaid = true
			updates := map[string]any{"payment_status": models.PaymentStatusPaid}
			if o.Status == models.OrderStatusPending {
				updates["status"] = models.OrderStatusProcessing
			}
			return updates, nil, nil
		case PaymentEventFailed:
			if o.IsPaid() || o.PaymentStatus == models.PaymentStatusFailed {
				return nil, nil, nil
			}
			return map[string]any{"payment_status": models.PaymentStatusFailed}, nil, nil
		}
		return nil, nil, nil
	})
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("webhook references unknown order",
				zap.String("event_id", event.ID),
				zap.String("order_id", orderID.String()),
			)
			return nil
		}
		return mutationError(err)
	}

	if refundDue {
		s.logger.Error("payment received for cancelled order, refund required",
			zap.String("event_id", event.ID),
			zap.String("order_id", order.ID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.String("amount", order.Total.StringFixed(2)),
		)
		return nil
	}

	s.logger.Info("order payment updated",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_status", order.PaymentStatus),
		zap.String("status", order.Status),
	)
	if markedPaid && s.notifier != nil {
		s.notifier.OrderPaid(*order)
	}
	return nil
}

func (s *PaymentService) resolveOrderID(ctx context.Context, event PaymentEvent) (uuid.UUID, error) {
	if event.OrderID != "" {
		if id, err := uuid.Parse(event.OrderID); err == nil {
			return id, nil
		}
	}
	if event.PaymentLinkID != "" {
		order, err := s.orders.FindByPaymentLinkID(ctx, event.PaymentLinkID)
		if err == nil {
			return order.ID, nil
		}
		if !repository.IsNotFound(err) {
			return uuid.Nil, storageError("Failed to resolve order", err)
		}
	}
	return uuid.Nil, notFoundError("Order not found")
}

func (s *PaymentService) loadOrder(ctx context.Context, rawOrderID string) (*models.Order, error) {
	if strings.TrimSpace(rawOrderID) == "" {
		return nil, validationError("Order ID is required")
	}
	id, err := uuid.Parse(rawOrderID)
	if err != nil {
		return nil, validationError("Order ID is invalid")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Order not found")
		}
		return nil, storageError("Failed to fetch order", err)
	}
	return order, nil
}
