package models

import (
	"gorm.io/gorm"
)

// Init creates or updates all tables
func Init(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Grant{},
		&Album{},
		&Photo{},
		&Video{},
		&Audio{},
		&UserPhoto{},
	)
}
