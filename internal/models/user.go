package models

// AdminUser is a back-office operator allowed to mutate the catalog.
type AdminUser struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}
