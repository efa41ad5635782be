package models

import "github.com/google/uuid"

// Category groups products. Categories nest at most through parent_id and
// the parent chain must terminate.
type Category struct {
	BaseModel
	Name         string     `gorm:"not null" json:"name"`
	Slug         string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string     `json:"description"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	ImageURL     string     `json:"image_url"`
	DisplayOrder int        `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
}

// CategoryWithStats is a category row enriched for listings.
type CategoryWithStats struct {
	Category
	ParentName   *string              `gorm:"column:parent_name" json:"parent_name"`
	ProductCount int64                `gorm:"column:product_count" json:"product_count"`
	Children     []*CategoryWithStats `gorm:"-" json:"children,omitempty"`
}
