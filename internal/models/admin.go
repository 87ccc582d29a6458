package models

import (
	"gorm.io/gorm"
)

// Admin is an operator allowed to view and export registrations.
type Admin struct {
	gorm.Model
	DiscordID string `gorm:"uniqueIndex"`
	Username  string
	Email     string
	Avatar    string
}
