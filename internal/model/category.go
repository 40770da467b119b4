package model

import "time"

// Category groups notes by area (work, health, study, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	Color     string `gorm:"default:#3498db"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Notes     []Note `gorm:"foreignKey:CategoryID"`
}
