package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name              string           `gorm:"not null" json:"name"`
	Slug              string           `gorm:"uniqueIndex;not null" json:"slug"`
	SKU               string           `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	CompareAtPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"compare_at_price"`
	StockQuantity     int              `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0" json:"stock_quantity"`
	LowStockThreshold int              `gorm:"not null;default:5" json:"low_stock_threshold"`
	CategoryID        uuid.UUID        `gorm:"type:uuid;index;not null" json:"category_id"`
	Category          *Category        `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	IsFeatured        bool             `gorm:"not null;index" json:"is_featured"`
	IsActive          bool             `gorm:"not null;index" json:"is_active"`
	Tags              pq.StringArray   `gorm:"type:text[]" json:"tags"`
	Images            []ProductImage   `gorm:"constraint:OnDelete:CASCADE" json:"images"`
}

// ProductImage belongs to a product. At most one image per product carries
// IsPrimary; the catalog service keeps that true on writes.
type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	ImageURL     string    `gorm:"not null" json:"image_url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsPrimary    bool      `gorm:"not null" json:"is_primary"`
}
