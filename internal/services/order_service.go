package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/utils"
)

const (
	defaultPaymentMethod  = "stripe"
	defaultOrderListLimit = 50
	// maxLineQuantity bounds a merged cart line; quantity columns are int4.
	maxLineQuantity = math.MaxInt32
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusCompleted, models.OrderStatusCancelled},
}

// OrderItemInput is one cart line. Only product_id and quantity are used
// for pricing; the remaining fields are accepted for compatibility.
type OrderItemInput struct {
	ProductID    string           `json:"product_id" validate:"required"`
	ProductName  string           `json:"product_name"`
	ProductSKU   string           `json:"product_sku"`
	ProductImage string           `json:"product_image"`
	Quantity     int              `json:"quantity" validate:"gt=0"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
}

// PlaceOrderInput is a checkout request.
type PlaceOrderInput struct {
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string           `json:"customer_phone"`
	ShippingAddress json.RawMessage  `json:"shipping_address"`
	BillingAddress  json.RawMessage  `json:"billing_address"`
	Items           []OrderItemInput `json:"items" validate:"dive"`
	Tax             *decimal.Decimal `json:"tax"`
	ShippingCost    *decimal.Decimal `json:"shipping_cost"`
	Discount        *decimal.Decimal `json:"discount"`
	PaymentMethod   string           `json:"payment_method"`
	Notes           string           `json:"notes"`
	IdempotencyKey  string           `json:"idempotency_key"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	Status        string
	CustomerEmail string
	Limit         int
}

// PricingProvider supplies the settings used to price an order.
type PricingProvider interface {
	Pricing(ctx context.Context) (PricingSettings, error)
}

// OrderNotifier is told about order lifecycle events. Implementations must
// not block the caller.
type OrderNotifier interface {
	OrderPlaced(order models.Order)
	OrderPaid(order models.Order)
}

// OrderService runs checkout and order administration.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	pricing  PricingProvider
	notifier OrderNotifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService constructs OrderService. notifier may be nil.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, pricing PricingProvider, notifier OrderNotifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		pricing:  pricing,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

// PlaceOrder prices the cart from the catalog, takes stock and stores the
// order atomically. The boolean result is false when an earlier order with
// the same idempotency key is returned instead.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, bool, error) {
	lines, err := normalizeOrderInput(input)
	if err != nil {
		return nil, false, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		existing, err := s.orders.FindByIdempotencyKey(ctx, key)
		if err == nil {
			return existing, false, nil
		}
		if !repository.IsNotFound(err) {
			return nil, false, storageError("Failed to create order", err)
		}
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.productID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, false, storageError("Failed to create order", err)
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(lines))
	stock := make([]repository.StockLine, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		product, ok := byID[line.productID]
		if !ok || !product.IsActive {
			return nil, false, validationError("Product %s is not available", line.productID)
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.quantity))).Round(2)
		subtotal = subtotal.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSKU:   product.SKU,
			ProductImage: primaryImageURL(product),
			Quantity:     line.quantity,
			UnitPrice:    product.Price,
			Subtotal:     lineTotal,
		})
		stock = append(stock, repository.StockLine{ProductID: product.ID, Quantity: line.quantity})
	}

	pricing, err := s.pricing.Pricing(ctx)
	if err != nil {
		return nil, false, err
	}
	totals := ComputeTotals(subtotal, decimal.Zero, pricing)

	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	order := &models.Order{
		OrderNumber:     utils.GenerateOrderNumber(s.now()),
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		ShippingAddress: jsonOrNil(input.ShippingAddress),
		BillingAddress:  jsonOrNil(input.BillingAddress),
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingCost:    totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          models.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           input.Notes,
		Items:           items,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	if err := s.orders.Place(ctx, order, stock); err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			name := stockErr.ProductID.String()
			if p, ok := byID[stockErr.ProductID]; ok {
				name = p.Name
			}
			return nil, false, &ServiceError{Kind: KindInsufficientStock, Message: "Insufficient stock for product " + name, Err: err}
		}
		if key != "" && repository.IsUniqueViolation(err) {
			if existing, findErr := s.orders.FindByIdempotencyKey(ctx, key); findErr == nil {
				return existing, false, nil
			}
		}
		s.logger.Error("order placement failed", zap.Error(err))
		return nil, false, storageError("Failed to create order", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
	)
	if s.notifier != nil {
		s.notifier.OrderPlaced(*order)
	}
	return order, true, nil
}

// normalizeOrderInput validates the cart and merges repeated products.
func normalizeOrderInput(input PlaceOrderInput) ([]orderLine, error) {
	if len(input.Items) == 0 {
		return nil, validationError("Order must have at least one item")
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	lines := make([]orderLine, 0, len(input.Items))
	index := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, validationError("product_id %q is invalid", item.ProductID)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return nil, validationError("unit_price must not be negative")
		}
		if item.Quantity > maxLineQuantity {
			return nil, validationError("quantity must not exceed %d", maxLineQuantity)
		}
		if i, seen := index[id]; seen {
			if lines[i].quantity > maxLineQuantity-item.Quantity {
				return nil, validationError("quantity must not exceed %d", maxLineQuantity)
			}
			lines[i].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, orderLine{productID: id, quantity: item.Quantity})
	}
	return lines, nil
}

// ListOrders returns orders newest first with their items.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}
	orders, err := s.orders.List(ctx, repository.OrderQuery{
		Status:        filter.Status,
		CustomerEmail: filter.CustomerEmail,
		Limit:         limit,
	})
	if err != nil {
		return nil, storageError("Failed to fetch orders", err)
	}
	return orders, nil
}

// GetOrder returns one order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFoundError("Order not found")
		}
		return nil, storageError("Failed to fetch order", err)
	}
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling puts the
// ordered quantities back into stock in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !isOrderStatus(status) {
		return nil, validationError("status must be one of: pending processing completed cancelled")
	}

	order, err := s.orders.Mutate(ctx, id, func(o *models.Order) (map[string]any, []repository.StockLine, error) {
		if o.Status == status {
			return nil, nil, nil
		}
		if !CanTransition(o.Status, status) {
			return nil, nil, validationError("Cannot change order status from %s to %s", o.Status, status)
		}
		var restock []repository.StockLine
		if status == models.OrderStatusCancelled {
			for _, item := range o.Items {
				restock = append(restock, repository.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
			}
		}
		return map[string]any{"status": status}, restock, nil
	})
	if err != nil {
		return nil, mutationError(err)
	}

	s.logger.Info("order status changed", zap.String("order_id", id.String()), zap.String("status", order.Status))
	return order, nil
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusProcessing, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	}
	return false
}

func mutationError(err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if repository.IsNotFound(err) {
		return notFoundError("Order not found")
	}
	return storageError("Failed to update order", err)
}

func primaryImageURL(product models.Product) string {
	for _, img := range product.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(product.Images) > 0 {
		return product.Images[0].ImageURL
	}
	return ""
}

func jsonOrNil(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return datatypes.JSON(trimmed)
}
