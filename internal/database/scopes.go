package database

import (
	"time"

	"gorm.io/gorm"
)

// WithinWindow filters rows whose column falls in [start, end).
func WithinWindow(column string, start, end time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ? AND "+column+" < ?", start, end)
	}
}

// WithStatus filters by status when one is given.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// ForContent filters by content id.
func ForContent(contentID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("content_id = ?", contentID)
	}
}
