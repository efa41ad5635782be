package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Order struct {
	BaseModel
	OrderNumber          string          `gorm:"uniqueIndex;not null" json:"order_number"`
	IdempotencyKey       *string         `gorm:"uniqueIndex" json:"-"`
	CustomerName         string          `json:"customer_name"`
	CustomerEmail        string          `gorm:"index" json:"customer_email"`
	CustomerPhone        string          `json:"customer_phone"`
	ShippingAddress      datatypes.JSON  `json:"shipping_address"`
	BillingAddress       datatypes.JSON  `json:"billing_address"`
	Subtotal             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax                  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	ShippingCost         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_cost"`
	Discount             decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total                decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Status               string          `gorm:"not null;index" json:"status"`
	PaymentMethod        string          `gorm:"not null" json:"payment_method"`
	PaymentStatus        string          `gorm:"not null" json:"payment_status"`
	StripeProductID      string          `json:"stripe_product_id"`
	StripePriceID        string          `json:"stripe_price_id"`
	StripePaymentLinkID  string          `gorm:"index" json:"stripe_payment_link_id"`
	StripePaymentLinkURL string          `json:"stripe_payment_link_url"`
	Notes                string          `json:"notes"`
	Items                []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// IsPaid reports whether the payment provider settled the order.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusCompleted
}

// OrderItem snapshots the product at purchase time and is never updated.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductSKU   string          `gorm:"column:product_sku" json:"product_sku"`
	ProductImage string          `json:"product_image"`
	Quantity     int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
}
