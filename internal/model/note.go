package model

import "time"

// Note is a free-form user record, optionally filed under a category.
type Note struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index"`
	CategoryID *uint `gorm:"index"`
	Title      string
	Content    string
	IsPinned   bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
