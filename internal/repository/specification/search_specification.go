package specification

import "gorm.io/gorm"

// DocumentSearchQuery filters documents by name or content explicitly
type DocumentSearchQuery struct {
	Query string
}

func (s DocumentSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	// Search in Name OR Content
	// Using ILIKE for Postgres (case insensitive)
	return db.Where("name ILIKE ? OR content ILIKE ?", pattern, pattern)
}
