package models

import "time"

// Setting value types.
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

// StoreSetting is a typed key/value pair. Values are stored as text and
// parsed on read according to SettingType.
type StoreSetting struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `gorm:"not null" json:"setting_value"`
	SettingType  string    `gorm:"not null;default:string" json:"setting_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
