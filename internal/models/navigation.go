package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NavItem struct {
	BaseModel
	Label        string         `gorm:"not null" json:"label"`
	Href         string         `gorm:"not null" json:"href"`
	ParentID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	Type         string         `gorm:"not null;default:link" json:"type"`
	Target       string         `gorm:"not null;default:_self" json:"target"`
	Icon         string         `json:"icon"`
	DisplayOrder int            `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool           `gorm:"not null" json:"is_active"`
	Location     string         `gorm:"not null;index;default:header" json:"location"`
	Meta         datatypes.JSON `json:"meta"`
}

type SocialMediaLink struct {
	BaseModel
	Platform     string `gorm:"not null" json:"platform"`
	URL          string `gorm:"column:url;not null" json:"url"`
	Icon         string `gorm:"not null" json:"icon"`
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}
