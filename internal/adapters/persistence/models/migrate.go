package models

import "gorm.io/gorm"

// AutoMigrate creates or updates all tables managed by the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&Client{},
		&Location{},
		&Category{},
		&Customer{},
		&Moderator{},
		&Media{},
		&Application{},
		&RefreshToken{},
	)
}
